package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"woodway/internal/logging"
	"woodway/internal/manifest"
	"woodway/internal/queue"
	"woodway/internal/services"
)

// Run processes every item in the batch and blocks until the batch drains
// or the context is cancelled. Cancellation is not an error: in-flight
// stages get the configured grace period to finish, everything still
// unfinished is marked skipped, and the returned result has Cancelled set.
// The returned error reports setup and persistence failures only; per-item
// stage failures land in the result counts.
func (m *Manager) Run(ctx context.Context, batchID string) (BatchResult, error) {
	result := BatchResult{BatchID: batchID}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return result, errors.New("workflow manager is already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return result, errors.New("no stages configured")
	}
	m.running = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	lock, err := acquireLock(m.cfg.DatabasePath() + ".lock")
	if err != nil {
		return result, err
	}
	defer func() { _ = lock.Unlock() }()

	// Persistence must survive cancellation so failure states, manifest
	// entries, and the final sweep still land during shutdown.
	dbCtx := context.WithoutCancel(ctx)
	start := time.Now()
	logger := m.logger.With(logging.String(logging.FieldBatchID, batchID))

	batch, err := m.store.GetBatch(dbCtx, batchID)
	if err != nil {
		return result, fmt.Errorf("load batch: %w", err)
	}
	if batch == nil {
		return result, fmt.Errorf("%w: batch %s", services.ErrNotFound, batchID)
	}

	// The process lock guarantees exclusivity, so any row still marked
	// processing was left behind by a crashed run and is safe to reset.
	reset, err := m.store.ResetStuckProcessing(dbCtx)
	if err != nil {
		return result, fmt.Errorf("reset stuck items: %w", err)
	}
	if reset > 0 {
		logger.Info("reset items stuck in processing", logging.Int64("count", reset))
	}

	items, err := m.store.ItemsByBatch(dbCtx, batchID)
	if err != nil {
		return result, fmt.Errorf("load batch items: %w", err)
	}
	if len(items) == 0 {
		return result, fmt.Errorf("%w: batch %s has no items", services.ErrNotFound, batchID)
	}
	result.Total = len(items)

	if err := m.planNames(dbCtx, batch, items); err != nil {
		m.notifyError(dbCtx, "name planning", err)
		return result, err
	}

	runnable := 0
	for _, item := range items {
		if !queue.IsTerminalStatus(item.Status) {
			runnable++
		}
	}
	if runnable > 0 {
		if err := m.store.MarkBatchStarted(dbCtx, batchID); err != nil {
			return result, fmt.Errorf("mark batch started: %w", err)
		}
		m.notifyBatchStarted(dbCtx, batchID, runnable)

		workers := m.cfg.Workers.Count
		if workers <= 0 {
			workers = 1
		}
		if workers > runnable {
			workers = runnable
		}
		logger.Info("batch started",
			logging.String(logging.FieldEventType, "batch_start"),
			logging.Int("items", len(items)),
			logging.Int("runnable", runnable),
			logging.Int("workers", workers),
		)

		hbCtx, hbCancel := context.WithCancel(ctx)
		var hbWG sync.WaitGroup
		hbWG.Add(1)
		go m.heartbeat.ReclaimLoop(hbCtx, &hbWG)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go m.worker(ctx, dbCtx, &wg, batchID, i)
		}
		wg.Wait()
		hbCancel()
		hbWG.Wait()
	}

	if ctx.Err() != nil {
		result.Cancelled = true
		if err := m.sweepUnfinished(dbCtx, batchID, logger); err != nil {
			m.notifyError(dbCtx, "cancellation sweep", err)
			return result, err
		}
	}

	if err := m.store.MarkBatchFinished(dbCtx, batchID); err != nil {
		return result, fmt.Errorf("mark batch finished: %w", err)
	}
	if err := m.collect(dbCtx, &result); err != nil {
		return result, err
	}
	result.Duration = time.Since(start)

	m.notifyBatchCompleted(dbCtx, result)
	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("completed", result.Completed),
		logging.Int("failed", result.Failed),
		logging.Int("skipped", result.Skipped),
		logging.Int("degraded", result.Degraded),
		logging.Bool("cancelled", result.Cancelled),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// sweepUnfinished marks every non-terminal item in the batch skipped and
// appends its manifest entry, so a cancelled run leaves no item in an
// indeterminate status.
func (m *Manager) sweepUnfinished(ctx context.Context, batchID string, logger *slog.Logger) error {
	items, err := m.store.ItemsByBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("load items for sweep: %w", err)
	}
	swept := 0
	for _, item := range items {
		if queue.IsTerminalStatus(item.Status) {
			continue
		}
		item.SetSkipped(queue.CancelReason)
		if err := m.store.Update(ctx, item); err != nil {
			return fmt.Errorf("persist skip for item %d: %w", item.ID, err)
		}
		if err := m.store.AppendManifest(ctx, manifest.EntryForItem(item)); err != nil {
			return fmt.Errorf("append manifest for item %d: %w", item.ID, err)
		}
		m.sink.ItemFinished(item)
		swept++
	}
	if swept > 0 {
		logger.Info("skipped unfinished items after cancellation", logging.Int("count", swept))
	}
	return nil
}

func (m *Manager) collect(ctx context.Context, result *BatchResult) error {
	items, err := m.store.ItemsByBatch(ctx, result.BatchID)
	if err != nil {
		return fmt.Errorf("collect batch result: %w", err)
	}
	result.Total = len(items)
	result.Completed, result.Failed, result.Skipped, result.Degraded = 0, 0, 0, 0
	for _, item := range items {
		switch item.Status {
		case queue.StatusCompleted:
			result.Completed++
			if item.Degraded {
				result.Degraded++
			}
		case queue.StatusFailed:
			result.Failed++
		case queue.StatusSkipped:
			result.Skipped++
		}
	}
	return nil
}
