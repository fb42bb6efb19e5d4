package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"woodway/internal/logging"
	"woodway/internal/naming"
	"woodway/internal/organizer"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/testsupport"
)

func planJSON(t *testing.T, base, ext string) string {
	t.Helper()
	res := naming.Result{Base: base, Final: base + "." + ext, Ext: ext}
	raw, err := res.ToJSON()
	if err != nil {
		t.Fatalf("encode plan: %v", err)
	}
	return raw
}

func stageFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("converted payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOrganizerInstallsUnderPlannedName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	batch := testsupport.NewBatch(t, store)
	item := testsupport.NewItem(t, store, batch.ID, "shield.jpg", queue.KindImage)
	item.NamingJSON = planJSON(t, "mebelnyj-shhit-dub", "webp")
	item.StagedPath = stageFile(t, filepath.Join(cfg.Paths.StagingDir, "work"), "shield.webp")

	org := organizer.NewOrganizer(cfg, store, logging.NewNop())
	ctx := context.Background()
	if err := org.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := org.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := filepath.Join(cfg.NamingDir(), "mebelnyj-shhit-dub.webp")
	if item.OutputPath != want {
		t.Fatalf("output path = %q, want %q", item.OutputPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("installed file missing: %v", err)
	}
	if item.StagedPath != "" {
		t.Fatalf("staged path should be cleared, got %q", item.StagedPath)
	}
	if item.NeedsReview {
		t.Fatal("clean install must not flag review")
	}
}

func TestOrganizerInstallsPosterAlongside(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	batch := testsupport.NewBatch(t, store)
	item := testsupport.NewItem(t, store, batch.ID, "clip.mov", queue.KindVideo)
	item.NamingJSON = planJSON(t, "fanera-fsf-berezova", "mp4")
	workDir := filepath.Join(cfg.Paths.StagingDir, "work")
	item.StagedPath = stageFile(t, workDir, "clip.mp4")
	item.PosterPath = stageFile(t, workDir, "clip-poster.webp")

	org := organizer.NewOrganizer(cfg, store, logging.NewNop())
	if err := org.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	wantPoster := filepath.Join(cfg.NamingDir(), "fanera-fsf-berezova-poster.webp")
	if item.PosterPath != wantPoster {
		t.Fatalf("poster path = %q, want %q", item.PosterPath, wantPoster)
	}
	if _, err := os.Stat(wantPoster); err != nil {
		t.Fatalf("poster missing: %v", err)
	}
}

func TestOrganizerDuplicateOnDiskFlagsReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	batch := testsupport.NewBatch(t, store)
	item := testsupport.NewItem(t, store, batch.ID, "shield.jpg", queue.KindImage)
	item.NamingJSON = planJSON(t, "mebelnyj-shhit-dub", "webp")
	item.StagedPath = stageFile(t, filepath.Join(cfg.Paths.StagingDir, "work"), "shield.webp")

	// A file appears at the planned target between planning and install.
	stageFile(t, cfg.NamingDir(), "mebelnyj-shhit-dub.webp")

	org := organizer.NewOrganizer(cfg, store, logging.NewNop())
	if err := org.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := filepath.Join(cfg.NamingDir(), "mebelnyj-shhit-dub-2.webp")
	if item.OutputPath != want {
		t.Fatalf("output path = %q, want %q", item.OutputPath, want)
	}
	if !item.NeedsReview {
		t.Fatal("duplicate on disk must flag review")
	}
	if item.ReviewReason == "" {
		t.Fatal("review reason missing")
	}
}

func TestOrganizerRequiresStagedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	batch := testsupport.NewBatch(t, store)
	item := testsupport.NewItem(t, store, batch.ID, "shield.jpg", queue.KindImage)
	item.NamingJSON = planJSON(t, "dub", "webp")

	org := organizer.NewOrganizer(cfg, store, logging.NewNop())
	err := org.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOrganizerRequiresNamingPlan(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	batch := testsupport.NewBatch(t, store)
	item := testsupport.NewItem(t, store, batch.ID, "shield.jpg", queue.KindImage)
	item.StagedPath = stageFile(t, filepath.Join(cfg.Paths.StagingDir, "work"), "shield.webp")

	org := organizer.NewOrganizer(cfg, store, logging.NewNop())
	err := org.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
