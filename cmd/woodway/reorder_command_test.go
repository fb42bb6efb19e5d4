package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"woodway/internal/testsupport"
)

func TestReorderCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	batch := testsupport.NewBatch(t, env.store)
	first := seedItem(t, env, batch.ID, "oak-board.jpg")
	second := seedItem(t, env, batch.ID, "walnut-veneer.mp4")

	out, _, err := runCLI(t, env.configPath, "reorder",
		fmt.Sprintf("%d", second.ID), fmt.Sprintf("%d", first.ID))
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	requireContains(t, out, "Batch "+shortBatchID(batch.ID)+" reordered (2 items)")

	// walnut now leads
	walnutIdx := strings.Index(out, "walnut-veneer.mp4")
	oakIdx := strings.Index(out, "oak-board.jpg")
	if walnutIdx < 0 || oakIdx < 0 || walnutIdx > oakIdx {
		t.Fatalf("expected walnut before oak in reorder output:\n%s", out)
	}

	items, err := env.store.ItemsByBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("items by batch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != second.ID || items[0].Ordinal != 0 {
		t.Fatalf("expected item %d ordinal 0, got item %d ordinal %d",
			second.ID, items[0].ID, items[0].Ordinal)
	}
	if items[1].ID != first.ID || items[1].Ordinal != 1 {
		t.Fatalf("expected item %d ordinal 1, got item %d ordinal %d",
			first.ID, items[1].ID, items[1].Ordinal)
	}
}

func TestReorderRejectsIncompleteIDList(t *testing.T) {
	env := setupCLITestEnv(t)

	batch := testsupport.NewBatch(t, env.store)
	first := seedItem(t, env, batch.ID, "oak-board.jpg")
	seedItem(t, env, batch.ID, "walnut-veneer.mp4")

	_, _, err := runCLI(t, env.configPath, "reorder", fmt.Sprintf("%d", first.ID))
	if err == nil {
		t.Fatal("expected error for incomplete id list")
	}
}

func TestReorderNoBatches(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env.configPath, "reorder", "1")
	if err == nil || !strings.Contains(err.Error(), "no batches exist") {
		t.Fatalf("expected no batches error, got %v", err)
	}
}
