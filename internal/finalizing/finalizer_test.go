package finalizing_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"woodway/internal/finalizing"
	"woodway/internal/logging"
	"woodway/internal/metadata"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/testsupport"
)

func finalizedItem(t *testing.T, store *queue.Store) *queue.Item {
	t.Helper()

	batch := testsupport.NewBatch(t, store)
	item := testsupport.NewItem(t, store, batch.ID, "/intake/IMG_0001.png", queue.KindImage)

	output := filepath.Join(t.TempDir(), "fanera-fsf-berezova.webp")
	if err := os.WriteFile(output, []byte("webp"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}

	bundle := metadata.TagBundle{
		Filename: "fanera-fsf-berezova.webp",
		UA: metadata.LanguageEntry{
			AltText:     "Фанера ФСФ березова 18 мм",
			Title:       "Фанера ФСФ | WoodWay Expert",
			Description: "Вологостійка фанера ФСФ з берези.",
			Tags:        metadata.TagList{"фанера", "фсф"},
		},
		EN: metadata.LanguageEntry{
			AltText:     "FSF birch plywood 18 mm",
			Title:       "FSF Plywood | WoodWay Expert",
			Description: "Moisture resistant birch FSF plywood.",
			Tags:        metadata.TagList{"plywood", "fsf"},
		},
		RU: metadata.LanguageEntry{
			AltText:     "Фанера ФСФ березовая 18 мм",
			Title:       "Фанера ФСФ | WoodWay Expert",
			Description: "Влагостойкая фанера ФСФ из березы.",
			Tags:        metadata.TagList{"фанера", "фсф"},
		},
	}
	bundleJSON, err := bundle.ToJSON()
	if err != nil {
		t.Fatalf("bundle to json: %v", err)
	}

	item.Status = queue.StatusTagged
	item.OutputPath = output
	item.BundleJSON = bundleJSON
	item.MetadataVariant = "algorithmic"
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}
	return item
}

func TestFinalizerAppendsManifestAndSidecar(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := finalizedItem(t, store)

	fin := finalizing.NewFinalizer(cfg, store, logging.NewNop())
	ctx := context.Background()

	if err := fin.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := fin.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, err := os.Stat(item.OutputPath + ".json"); err != nil {
		t.Errorf("sidecar missing: %v", err)
	}
	entries, err := store.ManifestForBatch(ctx, item.BatchID)
	if err != nil {
		t.Fatalf("ManifestForBatch: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Status != queue.StatusCompleted {
		t.Errorf("entry status = %s, want completed", entries[0].Status)
	}
	if entries[0].NewFilename != "fanera-fsf-berezova.webp" {
		t.Errorf("entry new_filename = %q", entries[0].NewFilename)
	}
	if item.ProgressPercent != 100 {
		t.Errorf("progress = %v, want 100", item.ProgressPercent)
	}
}

func TestFinalizerRequiresBundle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := finalizedItem(t, store)
	item.BundleJSON = ""

	fin := finalizing.NewFinalizer(cfg, store, logging.NewNop())
	err := fin.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestFinalizerRequiresOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := finalizedItem(t, store)
	item.OutputPath = ""

	fin := finalizing.NewFinalizer(cfg, store, logging.NewNop())
	err := fin.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string, metadata.TagBundle) error {
	return errors.New("disk full")
}

func TestFinalizerEmbedFailureLeavesNoEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := finalizedItem(t, store)

	fin := finalizing.NewFinalizerWithEmbedder(cfg, store, logging.NewNop(), failingEmbedder{})
	ctx := context.Background()

	err := fin.Execute(ctx, item)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("err = %v, want transient error", err)
	}
	entries, err := store.ManifestForBatch(ctx, item.BatchID)
	if err != nil {
		t.Fatalf("ManifestForBatch: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d, want none after embed failure", len(entries))
	}
}
