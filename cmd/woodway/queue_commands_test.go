package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"woodway/internal/queue"
	"woodway/internal/testsupport"
)

func TestQueueStatusAndList(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	batch := testsupport.NewBatch(t, env.store)
	seedItem(t, env, batch.ID, "oak-board.jpg")

	beta := seedItem(t, env, batch.ID, "walnut-veneer.mp4")
	beta.Status = queue.StatusFailed
	if err := env.store.Update(ctx, beta); err != nil {
		t.Fatalf("beta failed: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Pending")
	requireContains(t, out, "Failed")

	out, _, err = runCLI(t, env.configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "oak-board.jpg")
	requireContains(t, out, "walnut-veneer.mp4")
}

func TestQueueListStatusFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	batch := testsupport.NewBatch(t, env.store)
	seedItem(t, env, batch.ID, "oak-board.jpg")
	failed := seedItem(t, env, batch.ID, "walnut-veneer.mp4")
	failed.Status = queue.StatusFailed
	if err := env.store.Update(ctx, failed); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "queue", "list", "--status", "failed")
	if err != nil {
		t.Fatalf("queue list --status failed: %v", err)
	}
	requireContains(t, out, "walnut-veneer.mp4")
	if strings.Contains(out, "oak-board.jpg") {
		t.Fatalf("pending item should be filtered out, got:\n%s", out)
	}

	_, _, err = runCLI(t, env.configPath, "queue", "list", "--status", "bogus")
	if err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestQueueRetryAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	batch := testsupport.NewBatch(t, env.store)
	alpha := seedItem(t, env, batch.ID, "oak-board.jpg")
	alpha.Status = queue.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "queue", "retry")
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retried 1 failed items")

	updated, err := env.store.GetByID(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("lookup alpha: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", updated.Status)
	}

	updated.Status = queue.StatusFailed
	if err := env.store.Update(ctx, updated); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	out, _, err = runCLI(t, env.configPath, "queue", "clear", "--failed")
	if err != nil {
		t.Fatalf("queue clear failed: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed items")

	out, _, err = runCLI(t, env.configPath, "queue", "clear")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Cleared")
}

func TestQueueRetrySpecificID(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	batch := testsupport.NewBatch(t, env.store)
	alpha := seedItem(t, env, batch.ID, "oak-board.jpg")
	alpha.Status = queue.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}
	pending := seedItem(t, env, batch.ID, "walnut-veneer.mp4")

	out, _, err := runCLI(t, env.configPath, "queue", "retry",
		fmt.Sprintf("%d", alpha.ID), fmt.Sprintf("%d", pending.ID), "9999")
	if err != nil {
		t.Fatalf("queue retry specific: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d reset for retry", alpha.ID))
	requireContains(t, out, fmt.Sprintf("Item %d is not in failed state", pending.ID))
	requireContains(t, out, "Item 9999 not found")
}

func TestQueueRetryInvalidID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env.configPath, "queue", "retry", "abc")
	if err == nil || !strings.Contains(err.Error(), "invalid item id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestQueueShowText(t *testing.T) {
	env := setupCLITestEnv(t)

	batch := testsupport.NewBatch(t, env.store)
	item := seedItem(t, env, batch.ID, "oak-board.jpg")

	out, _, err := runCLI(t, env.configPath, "queue", "show", fmt.Sprintf("%d", item.ID))
	if err != nil {
		t.Fatalf("queue show: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d", item.ID))
	requireContains(t, out, "oak-board.jpg")
	requireContains(t, out, "Status:")
}

func TestQueueShowNotFound(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env.configPath, "queue", "show", "9999")
	if err == nil || !strings.Contains(err.Error(), "item 9999") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestQueueResetStuck(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	batch := testsupport.NewBatch(t, env.store)
	item := seedItem(t, env, batch.ID, "oak-board.jpg")
	item.Status = queue.StatusConverting
	if err := env.store.Update(ctx, item); err != nil {
		t.Fatalf("mark converting: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "queue", "reset-stuck")
	if err != nil {
		t.Fatalf("queue reset-stuck: %v", err)
	}
	requireContains(t, out, "Reset 1 items")

	updated, err := env.store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("lookup item: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", updated.Status)
	}
}

func TestQueueRemove(t *testing.T) {
	env := setupCLITestEnv(t)

	batch := testsupport.NewBatch(t, env.store)
	item := seedItem(t, env, batch.ID, "oak-board.jpg")

	out, _, err := runCLI(t, env.configPath, "queue", "remove", fmt.Sprintf("%d", item.ID), "9999")
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Removed item %d", item.ID))
	requireContains(t, out, "Item 9999 not found")
}

func TestQueueHealthCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	batch := testsupport.NewBatch(t, env.store)
	seedItem(t, env, batch.ID, "oak-board.jpg")

	out, _, err := runCLI(t, env.configPath, "queue", "health")
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	requireContains(t, out, "Database path:")
	requireContains(t, out, "Integrity check: yes")
	requireContains(t, out, "Total items: 1")
}

func TestQueueListJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	batch := testsupport.NewBatch(t, env.store)
	seedItem(t, env, batch.ID, "oak-board.jpg")
	seedItem(t, env, batch.ID, "walnut-veneer.mp4")

	out, _, err := runCLI(t, env.configPath, "queue", "list", "--json")
	if err != nil {
		t.Fatalf("queue list --json: %v", err)
	}

	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(payload.Items))
	}
	for _, item := range payload.Items {
		if _, ok := item["id"]; !ok {
			t.Fatal("missing 'id' key in JSON item")
		}
		if _, ok := item["status"]; !ok {
			t.Fatal("missing 'status' key in JSON item")
		}
	}
}

func TestQueueStatusJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	batch := testsupport.NewBatch(t, env.store)
	seedItem(t, env, batch.ID, "oak-board.jpg")
	beta := seedItem(t, env, batch.ID, "walnut-veneer.mp4")
	beta.Status = queue.StatusFailed
	if err := env.store.Update(ctx, beta); err != nil {
		t.Fatalf("beta failed: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "queue", "status", "--json")
	if err != nil {
		t.Fatalf("queue status --json: %v", err)
	}

	var payload struct {
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if payload.Counts["pending"] != 1 {
		t.Fatalf("expected pending=1, got %v", payload.Counts)
	}
	if payload.Counts["failed"] != 1 {
		t.Fatalf("expected failed=1, got %v", payload.Counts)
	}
}

func TestQueueShowJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	batch := testsupport.NewBatch(t, env.store)
	item := seedItem(t, env, batch.ID, "oak-board.jpg")

	out, _, err := runCLI(t, env.configPath, "queue", "show", fmt.Sprintf("%d", item.ID), "--json")
	if err != nil {
		t.Fatalf("queue show --json: %v", err)
	}

	var payload struct {
		Item map[string]any `json:"item"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if payload.Item["id"] != float64(item.ID) {
		t.Fatalf("expected id %d, got %v", item.ID, payload.Item["id"])
	}
	if payload.Item["originalFilename"] != "oak-board.jpg" {
		t.Fatalf("expected originalFilename oak-board.jpg, got %v", payload.Item["originalFilename"])
	}
}
