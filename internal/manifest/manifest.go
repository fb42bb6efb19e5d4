// Package manifest assembles batch processing records and exports them
// for audit and CMS import.
package manifest

import (
	"path/filepath"
	"strings"
	"time"

	"woodway/internal/metadata"
	"woodway/internal/naming"
	"woodway/internal/queue"
)

// generatorLabel identifies the producing tool inside exported files.
const generatorLabel = "WoodWay Media Pipeline"

// EntryForItem snapshots a terminal item into an append-only manifest
// entry. The new filename falls back to the planned name when the item
// never reached installation.
func EntryForItem(item *queue.Item) *queue.ManifestEntry {
	entry := &queue.ManifestEntry{
		BatchID:          item.BatchID,
		ItemID:           item.ID,
		Ordinal:          item.Ordinal,
		SourcePath:       item.SourcePath,
		OriginalFilename: item.OriginalFilename(),
		SourceInfoJSON:   item.SourceInfoJSON,
		OutputPath:       item.OutputPath,
		PosterPath:       item.PosterPath,
		Status:           item.Status,
		MetadataVariant:  item.MetadataVariant,
		Degraded:         item.Degraded,
		DegradedReason:   item.DegradedReason,
		BundleJSON:       item.BundleJSON,
		ErrorKind:        item.ErrorKind,
		ErrorMessage:     item.ErrorMessage,
		CompletedAt:      time.Now().UTC(),
	}
	if item.OutputPath != "" {
		entry.NewFilename = filepath.Base(item.OutputPath)
	} else if plan, err := naming.ResultFromJSON(item.NamingJSON); err == nil && !plan.IsZero() {
		entry.NewFilename = plan.Final
	}
	return entry
}

// Record is one exported item in the JSON document.
type Record struct {
	Index            int            `json:"index"`
	OriginalFilename string         `json:"original_filename"`
	NewFilename      string         `json:"new_filename"`
	SourcePath       string         `json:"source_path"`
	OutputPath       string         `json:"output_path"`
	PosterPath       string         `json:"poster_path,omitempty"`
	Status           string         `json:"status"`
	Variant          string         `json:"variant,omitempty"`
	Degraded         bool           `json:"degraded,omitempty"`
	DegradedReason   string         `json:"degraded_reason,omitempty"`
	ErrorKind        string         `json:"error_kind,omitempty"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	Metadata         *LanguageBlock `json:"metadata,omitempty"`
	WPAttachment     *WPAttachment  `json:"wp_attachment,omitempty"`
}

// LanguageBlock mirrors the bundle's three language sections.
type LanguageBlock struct {
	UA LanguageFields `json:"ua"`
	EN LanguageFields `json:"en"`
	RU LanguageFields `json:"ru"`
}

// LanguageFields is the SEO field set exported per language.
type LanguageFields struct {
	AltText     string   `json:"alt_text"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// WPAttachment carries the WordPress media-library field map, including
// the WPML/Polylang per-language keys.
type WPAttachment struct {
	ImageAlt      string `json:"_wp_attachment_image_alt"`
	PostTitle     string `json:"post_title"`
	PostExcerpt   string `json:"post_excerpt"`
	PostContent   string `json:"post_content"`
	AltTextUA     string `json:"_alt_text_ua"`
	AltTextEN     string `json:"_alt_text_en"`
	AltTextRU     string `json:"_alt_text_ru"`
	TitleUA       string `json:"_title_ua"`
	TitleEN       string `json:"_title_en"`
	TitleRU       string `json:"_title_ru"`
	DescriptionUA string `json:"_description_ua"`
	DescriptionEN string `json:"_description_en"`
	DescriptionRU string `json:"_description_ru"`
}

// RecordFromEntry flattens a stored manifest entry for export. Entries
// without a bundle (failed or skipped items) export with empty metadata
// sections so the audit trail stays complete.
func RecordFromEntry(entry *queue.ManifestEntry, brand string, includeWP bool) Record {
	record := Record{
		Index:            entry.Ordinal,
		OriginalFilename: entry.OriginalFilename,
		NewFilename:      entry.NewFilename,
		SourcePath:       entry.SourcePath,
		OutputPath:       entry.OutputPath,
		PosterPath:       entry.PosterPath,
		Status:           string(entry.Status),
		Variant:          entry.MetadataVariant,
		Degraded:         entry.Degraded,
		DegradedReason:   entry.DegradedReason,
		ErrorKind:        entry.ErrorKind,
		ErrorMessage:     entry.ErrorMessage,
	}
	bundle, err := metadata.BundleFromJSON(entry.BundleJSON)
	if err != nil || entry.BundleJSON == "" {
		return record
	}
	record.Metadata = &LanguageBlock{
		UA: languageFields(bundle.UA),
		EN: languageFields(bundle.EN),
		RU: languageFields(bundle.RU),
	}
	if includeWP {
		record.WPAttachment = &WPAttachment{
			ImageAlt:      bundle.UA.AltText,
			PostTitle:     stripBrand(bundle.UA.Title, brand),
			PostExcerpt:   bundle.UA.Description,
			AltTextUA:     bundle.UA.AltText,
			AltTextEN:     bundle.EN.AltText,
			AltTextRU:     bundle.RU.AltText,
			TitleUA:       bundle.UA.Title,
			TitleEN:       bundle.EN.Title,
			TitleRU:       bundle.RU.Title,
			DescriptionUA: bundle.UA.Description,
			DescriptionEN: bundle.EN.Description,
			DescriptionRU: bundle.RU.Description,
		}
	}
	return record
}

func languageFields(entry metadata.LanguageEntry) LanguageFields {
	return LanguageFields{
		AltText:     entry.AltText,
		Title:       entry.Title,
		Description: entry.Description,
		Tags:        []string(entry.Tags),
	}
}

// stripBrand removes the brand suffix from a title so WordPress does
// not double it when themes append the site name.
func stripBrand(title, brand string) string {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return title
	}
	return strings.TrimSpace(strings.ReplaceAll(title, " | "+brand, ""))
}
