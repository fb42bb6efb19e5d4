package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"woodway/internal/queue"
	"woodway/internal/testsupport"
)

func seedManifestEntry(t *testing.T, env *cliTestEnv, batchID string) *queue.ManifestEntry {
	t.Helper()
	item := seedItem(t, env, batchID, "oak-board.jpg")
	entry := &queue.ManifestEntry{
		BatchID:          batchID,
		ItemID:           item.ID,
		Ordinal:          item.Ordinal,
		SourcePath:       item.SourcePath,
		OriginalFilename: "oak-board.jpg",
		NewFilename:      "shpon-dub-naturalnyy.webp",
		OutputPath:       filepath.Join(env.cfg.Paths.OutputDir, "shpon-dub-naturalnyy.webp"),
		Status:           queue.StatusCompleted,
		MetadataVariant:  "algorithmic",
	}
	if err := env.store.AppendManifest(context.Background(), entry); err != nil {
		t.Fatalf("append manifest: %v", err)
	}
	return entry
}

func TestExportCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	batch := testsupport.NewBatch(t, env.store)
	seedManifestEntry(t, env, batch.ID)

	outDir := filepath.Join(env.baseDir, "exports")
	out, _, err := runCLI(t, env.configPath, "export", batch.ID,
		"--format", "csv", "--format", "json", "--out", outDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Exported batch")
	requireContains(t, out, "export.csv")
	requireContains(t, out, "export.json")

	for _, name := range []string{"export.csv", "export.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestExportDefaultsToLatestBatch(t *testing.T) {
	env := setupCLITestEnv(t)

	batch := testsupport.NewBatch(t, env.store)
	seedManifestEntry(t, env, batch.ID)

	out, _, err := runCLI(t, env.configPath, "export")
	if err != nil {
		t.Fatalf("export latest: %v", err)
	}
	requireContains(t, out, shortBatchID(batch.ID))
	requireContains(t, out, "export.csv")

	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "export.csv")); err != nil {
		t.Fatalf("expected export.csv in output dir: %v", err)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t)

	batch := testsupport.NewBatch(t, env.store)
	seedManifestEntry(t, env, batch.ID)

	_, _, err := runCLI(t, env.configPath, "export", batch.ID, "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "Unsupported export format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestExportNoBatches(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env.configPath, "export")
	if err == nil || !strings.Contains(err.Error(), "no batches exist") {
		t.Fatalf("expected no batches error, got %v", err)
	}
}

func TestExportEmptyBatch(t *testing.T) {
	env := setupCLITestEnv(t)

	batch := testsupport.NewBatch(t, env.store)

	_, _, err := runCLI(t, env.configPath, "export", batch.ID)
	if err == nil || !strings.Contains(err.Error(), "no manifest entries") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
}
