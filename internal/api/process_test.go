package api

import (
	"context"
	"errors"
	"testing"

	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/testsupport"
)

func TestProcessRequiresConfig(t *testing.T) {
	_, err := Process(context.Background(), ProcessRequest{})
	if err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestProcessRejectsEmptyInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := Process(context.Background(), ProcessRequest{
		Config: cfg,
		Store:  store,
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunBatchUnknownBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := RunBatch(context.Background(), RunBatchRequest{
		Config:  cfg,
		Store:   store,
		BatchID: "no-such-batch",
	})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRunBatchNoBatches(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := RunBatch(context.Background(), RunBatchRequest{
		Config: cfg,
		Store:  store,
	})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRunBatchAlreadyTerminalBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	batch := testsupport.NewBatch(t, store)
	item := testsupport.NewItem(t, store, batch.ID, "/intake/dub.jpg", queue.KindImage)
	item.Status = queue.StatusCompleted
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	result, err := RunBatch(ctx, RunBatchRequest{
		Config: cfg,
		Store:  store,
	})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if result.Completed != 1 || result.Cancelled {
		t.Fatalf("unexpected result: %+v", result)
	}
}
