package manifest

import (
	"strings"
	"testing"

	"woodway/internal/metadata"
	"woodway/internal/queue"
)

func testBundle() metadata.TagBundle {
	return metadata.TagBundle{
		Filename: "fanera-fsf-berezova.webp",
		UA: metadata.LanguageEntry{
			AltText:     "Фанера ФСФ березова 18 мм",
			Title:       "Фанера ФСФ | WoodWay Expert",
			Description: "Вологостійка фанера ФСФ з берези, 18 мм.",
			Tags:        metadata.TagList{"фанера", "фсф", "береза"},
		},
		EN: metadata.LanguageEntry{
			AltText:     "FSF birch plywood 18 mm",
			Title:       "FSF Plywood | WoodWay Expert",
			Description: "Moisture resistant birch FSF plywood, 18 mm.",
			Tags:        metadata.TagList{"plywood", "fsf", "birch"},
		},
		RU: metadata.LanguageEntry{
			AltText:     "Фанера ФСФ березовая 18 мм",
			Title:       "Фанера ФСФ | WoodWay Expert",
			Description: "Влагостойкая фанера ФСФ из березы, 18 мм.",
			Tags:        metadata.TagList{"фанера", "фсф", "береза"},
		},
	}
}

func TestEntryForItemUsesInstalledFilename(t *testing.T) {
	item := &queue.Item{
		ID:         7,
		BatchID:    "batch-1",
		Ordinal:    2,
		SourcePath: "/intake/IMG_0001.png",
		OutputPath: "/output/fanera-fsf-berezova.webp",
		PosterPath: "",
		Status:     queue.StatusCompleted,
	}

	entry := EntryForItem(item)

	if entry.NewFilename != "fanera-fsf-berezova.webp" {
		t.Fatalf("NewFilename = %q, want installed basename", entry.NewFilename)
	}
	if entry.OriginalFilename != "IMG_0001.png" {
		t.Errorf("OriginalFilename = %q", entry.OriginalFilename)
	}
	if entry.Ordinal != 2 || entry.ItemID != 7 {
		t.Errorf("ordinal/item id not carried: %d/%d", entry.Ordinal, entry.ItemID)
	}
	if entry.CompletedAt.IsZero() {
		t.Error("CompletedAt not stamped")
	}
}

func TestEntryForItemFallsBackToPlannedName(t *testing.T) {
	item := &queue.Item{
		ID:           3,
		BatchID:      "batch-1",
		SourcePath:   "/intake/IMG_0002.png",
		NamingJSON:   `{"base":"doshka-dubova","final":"doshka-dubova.webp","ext":"webp"}`,
		Status:       queue.StatusFailed,
		ErrorKind:    "conversion",
		ErrorMessage: "ffmpeg exited with status 1",
	}

	entry := EntryForItem(item)

	if entry.NewFilename != "doshka-dubova.webp" {
		t.Fatalf("NewFilename = %q, want planned name", entry.NewFilename)
	}
	if entry.ErrorKind != "conversion" || entry.ErrorMessage == "" {
		t.Errorf("error detail not carried: %q %q", entry.ErrorKind, entry.ErrorMessage)
	}
}

func TestEntryForItemWithoutPlanLeavesFilenameEmpty(t *testing.T) {
	item := &queue.Item{SourcePath: "/intake/IMG_0003.png", Status: queue.StatusFailed}

	entry := EntryForItem(item)

	if entry.NewFilename != "" {
		t.Fatalf("NewFilename = %q, want empty", entry.NewFilename)
	}
}

func TestRecordFromEntryIncludesWordPressFields(t *testing.T) {
	bundleJSON, err := testBundle().ToJSON()
	if err != nil {
		t.Fatalf("bundle to json: %v", err)
	}
	entry := &queue.ManifestEntry{
		Ordinal:          0,
		OriginalFilename: "IMG_0001.png",
		NewFilename:      "fanera-fsf-berezova.webp",
		Status:           queue.StatusCompleted,
		MetadataVariant:  "algorithmic",
		BundleJSON:       bundleJSON,
	}

	record := RecordFromEntry(entry, "WoodWay Expert", true)

	if record.Metadata == nil {
		t.Fatal("metadata block missing")
	}
	if record.Metadata.UA.AltText != "Фанера ФСФ березова 18 мм" {
		t.Errorf("UA alt text = %q", record.Metadata.UA.AltText)
	}
	if got := record.Metadata.EN.Tags; len(got) != 3 || got[0] != "plywood" {
		t.Errorf("EN tags = %v", got)
	}
	wp := record.WPAttachment
	if wp == nil {
		t.Fatal("wp_attachment missing")
	}
	if wp.PostTitle != "Фанера ФСФ" {
		t.Errorf("post_title = %q, want brand stripped", wp.PostTitle)
	}
	if wp.TitleUA != "Фанера ФСФ | WoodWay Expert" {
		t.Errorf("_title_ua = %q, want brand kept", wp.TitleUA)
	}
	if wp.PostContent != "" {
		t.Errorf("post_content = %q, want empty", wp.PostContent)
	}
	if wp.ImageAlt != record.Metadata.UA.AltText {
		t.Errorf("_wp_attachment_image_alt = %q", wp.ImageAlt)
	}
	if wp.PostExcerpt != record.Metadata.UA.Description {
		t.Errorf("post_excerpt = %q", wp.PostExcerpt)
	}
}

func TestRecordFromEntryWithoutBundle(t *testing.T) {
	entry := &queue.ManifestEntry{
		Ordinal:          1,
		OriginalFilename: "IMG_0002.png",
		Status:           queue.StatusFailed,
		ErrorKind:        "conversion",
		ErrorMessage:     "ffmpeg exited with status 1",
	}

	record := RecordFromEntry(entry, "WoodWay Expert", true)

	if record.Metadata != nil {
		t.Errorf("metadata = %+v, want nil for bundle-less entry", record.Metadata)
	}
	if record.WPAttachment != nil {
		t.Error("wp_attachment present for bundle-less entry")
	}
	if record.Status != "failed" || record.ErrorKind != "conversion" {
		t.Errorf("status/error not carried: %q %q", record.Status, record.ErrorKind)
	}
}

func TestRecordFromEntrySkipsWordPressWhenDisabled(t *testing.T) {
	bundleJSON, err := testBundle().ToJSON()
	if err != nil {
		t.Fatalf("bundle to json: %v", err)
	}
	entry := &queue.ManifestEntry{BundleJSON: bundleJSON, Status: queue.StatusCompleted}

	record := RecordFromEntry(entry, "WoodWay Expert", false)

	if record.WPAttachment != nil {
		t.Error("wp_attachment present with wordpress fields disabled")
	}
	if record.Metadata == nil {
		t.Error("metadata block should still export")
	}
}

func TestStripBrand(t *testing.T) {
	if got := stripBrand("Фанера ФСФ | WoodWay Expert", "WoodWay Expert"); got != "Фанера ФСФ" {
		t.Errorf("stripBrand = %q", got)
	}
	if got := stripBrand("Фанера ФСФ", "WoodWay Expert"); got != "Фанера ФСФ" {
		t.Errorf("stripBrand without suffix = %q", got)
	}
	if got := stripBrand("Фанера ФСФ | WoodWay Expert", ""); got != "Фанера ФСФ | WoodWay Expert" {
		t.Errorf("stripBrand with empty brand = %q", got)
	}
	if got := stripBrand("Дошка дубова| WoodWay Expert", "WoodWay Expert"); !strings.Contains(got, "| WoodWay Expert") {
		t.Errorf("stripBrand touched unspaced suffix: %q", got)
	}
}
