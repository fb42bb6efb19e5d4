package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"woodway/internal/logging"
	"woodway/internal/queue"
)

// HeartbeatMonitor keeps processing items fresh and reclaims items whose
// worker stopped heartbeating.
type HeartbeatMonitor struct {
	store    *queue.Store
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

// NewHeartbeatMonitor creates a new monitor.
func NewHeartbeatMonitor(store *queue.Store, logger *slog.Logger, interval, timeout time.Duration) *HeartbeatMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &HeartbeatMonitor{
		store:    store,
		logger:   logging.NewComponentLogger(logger, "heartbeat"),
		interval: interval,
		timeout:  timeout,
	}
}

// ReclaimStale rolls items with expired heartbeats back to the start of
// their stage so another worker can pick them up.
func (h *HeartbeatMonitor) ReclaimStale(ctx context.Context) error {
	if h.timeout <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-h.timeout)
	reclaimed, err := h.store.ReclaimStaleProcessing(ctx, cutoff)
	if err != nil {
		return err
	}
	if reclaimed > 0 {
		h.logger.Info("reclaimed stale items", logging.Int64("count", reclaimed))
	}
	return nil
}

// ReclaimLoop periodically reclaims stale items until the context ends.
func (h *HeartbeatMonitor) ReclaimLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	if h.timeout <= 0 {
		return
	}
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.ReclaimStale(ctx); err != nil && !errors.Is(err, context.Canceled) {
				h.logger.Warn("stale item reclaim failed", logging.Error(err))
			}
		}
	}
}

// StartLoop refreshes one item's heartbeat until the context ends.
func (h *HeartbeatMonitor) StartLoop(ctx context.Context, wg *sync.WaitGroup, itemID int64) {
	defer wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.store.UpdateHeartbeat(ctx, itemID); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logging.WithContext(ctx, h.logger).Warn("heartbeat update failed", logging.Error(err))
			}
		}
	}
}
