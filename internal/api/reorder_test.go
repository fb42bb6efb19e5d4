package api

import (
	"context"
	"errors"
	"testing"

	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/testsupport"
)

func TestReorderBatchRewritesOrdinals(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	batch := testsupport.NewBatch(t, store)
	a := testsupport.NewItem(t, store, batch.ID, "/intake/a.jpg", queue.KindImage)
	b := testsupport.NewItem(t, store, batch.ID, "/intake/b.jpg", queue.KindImage)
	c := testsupport.NewItem(t, store, batch.ID, "/intake/c.jpg", queue.KindImage)

	result, err := ReorderBatch(ctx, ReorderRequest{
		Config:  cfg,
		Store:   store,
		BatchID: batch.ID,
		IDs:     []int64{c.ID, a.ID, b.ID},
	})
	if err != nil {
		t.Fatalf("ReorderBatch: %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result.Items))
	}
	wantIDs := []int64{c.ID, a.ID, b.ID}
	for i, item := range result.Items {
		if item.ID != wantIDs[i] {
			t.Fatalf("position %d: got id %d, want %d", i, item.ID, wantIDs[i])
		}
		if item.Ordinal != i {
			t.Fatalf("position %d: got ordinal %d", i, item.Ordinal)
		}
	}
}

func TestReorderBatchRejectsPartialSequence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	batch := testsupport.NewBatch(t, store)
	a := testsupport.NewItem(t, store, batch.ID, "/intake/a.jpg", queue.KindImage)
	testsupport.NewItem(t, store, batch.ID, "/intake/b.jpg", queue.KindImage)

	_, err := ReorderBatch(ctx, ReorderRequest{
		Config:  cfg,
		Store:   store,
		BatchID: batch.ID,
		IDs:     []int64{a.ID},
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
