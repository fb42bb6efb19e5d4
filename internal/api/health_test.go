package api

import (
	"context"
	"testing"

	"woodway/internal/testsupport"
)

func TestGatherStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	store := testsupport.MustOpenStore(t, cfg)

	status, err := GatherStatus(context.Background(), StatusRequest{
		Config: cfg,
		Store:  store,
	})
	if err != nil {
		t.Fatalf("GatherStatus: %v", err)
	}
	if status.QueueDBPath != cfg.DatabasePath() {
		t.Fatalf("unexpected db path: %q", status.QueueDBPath)
	}
	if !status.Database.Exists || !status.Database.Readable || !status.Database.Integrity {
		t.Fatalf("expected healthy database, got %+v", status.Database)
	}
	if len(status.Dependencies) != 2 {
		t.Fatalf("expected 2 dependency checks, got %d", len(status.Dependencies))
	}
	for _, dep := range status.Dependencies {
		if !dep.Available {
			t.Fatalf("expected %s to be available, detail %q", dep.Name, dep.Detail)
		}
	}
	if status.LatestBatch != nil {
		t.Fatalf("expected no batch summary, got %+v", status.LatestBatch)
	}
}

func TestGatherStatusLatestBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	store := testsupport.MustOpenStore(t, cfg)
	batch := testsupport.NewBatch(t, store)
	testsupport.NewItem(t, store, batch.ID, "/intake/dub.jpg", "image")

	status, err := GatherStatus(context.Background(), StatusRequest{
		Config: cfg,
		Store:  store,
	})
	if err != nil {
		t.Fatalf("GatherStatus: %v", err)
	}
	if status.LatestBatch == nil || status.LatestBatch.ID != batch.ID {
		t.Fatalf("expected latest batch summary, got %+v", status.LatestBatch)
	}
	if status.LatestBatch.Counts["pending"] != 1 {
		t.Fatalf("unexpected counts: %+v", status.LatestBatch.Counts)
	}
	if status.QueueStats["pending"] != 1 {
		t.Fatalf("unexpected queue stats: %+v", status.QueueStats)
	}
}
