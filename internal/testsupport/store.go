package testsupport

import (
	"context"
	"testing"

	"woodway/internal/config"
	"woodway/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewBatch creates a batch for tests using the provided store.
func NewBatch(t testing.TB, store *queue.Store) *queue.Batch {
	t.Helper()

	batch, err := store.NewBatch(context.Background(), "", false)
	if err != nil {
		t.Fatalf("store.NewBatch: %v", err)
	}
	return batch
}

// NewItem enqueues a pending item for tests using the provided store.
func NewItem(t testing.TB, store *queue.Store, batchID, sourcePath string, kind queue.MediaKind) *queue.Item {
	t.Helper()

	item, err := store.AddItem(context.Background(), batchID, sourcePath, kind, "")
	if err != nil {
		t.Fatalf("store.AddItem: %v", err)
	}
	return item
}
