package workflow

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"woodway/internal/logging"
	"woodway/internal/queue"
	"woodway/internal/stage"
)

// worker claims and processes one stage at a time until the batch drains or
// the context is cancelled. Lanes are swept from the tail of the pipeline
// backwards so items closest to completion finish first, which is also what
// lets a resumed batch drain its half-done items before starting new ones.
func (m *Manager) worker(ctx, dbCtx context.Context, wg *sync.WaitGroup, batchID string, id int) {
	defer wg.Done()
	logger := m.logger.With(logging.Int("worker", id))

	for {
		if ctx.Err() != nil {
			return
		}
		claimed := false
		for i := len(m.stages) - 1; i >= 0; i-- {
			st := &m.stages[i]
			item, err := m.store.ClaimNext(ctx, batchID, st.startStatus, st.processingStatus)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("claim failed", logging.String(logging.FieldStage, st.name), logging.Error(err))
				m.setLastError(err)
				break
			}
			if item == nil {
				continue
			}
			claimed = true
			m.processItem(ctx, dbCtx, logger, st, item)
			break
		}
		if claimed {
			continue
		}
		if m.batchDrained(dbCtx, batchID) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.pollInterval):
		}
	}
}

// batchDrained reports whether every item in the batch reached a terminal
// status. Items another worker still holds count as not drained.
func (m *Manager) batchDrained(ctx context.Context, batchID string) bool {
	counts, err := m.store.BatchStats(ctx, batchID)
	if err != nil {
		return false
	}
	for status, count := range counts {
		if count > 0 && !queue.IsTerminalStatus(status) {
			return false
		}
	}
	return true
}

// processItem runs one claimed item through one stage. The claim already
// moved the item into the stage's processing status, so all that remains is
// prepare, execute under heartbeat, and persisting the outcome. Failures
// never propagate; they are written to the item and the manifest.
func (m *Manager) processItem(ctx, dbCtx context.Context, logger *slog.Logger, st *pipelineStage, item *queue.Item) {
	requestID := uuid.NewString()
	stageCtx := withStageContext(ctx, st.name, item, requestID)
	stageLogger := logging.WithContext(stageCtx, logger)

	// The stage keeps running for the grace period after cancellation so
	// a nearly finished conversion can land instead of being thrown away.
	graceCtx, release := m.graceContext(stageCtx)
	defer release()

	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("source_file", strings.TrimSpace(item.SourcePath)),
		logging.String("processing_status", string(st.processingStatus)),
	)
	m.sink.StageStarted(item, st.name)

	if err := st.handler.Prepare(graceCtx, item); err != nil {
		m.handleStageFailure(dbCtx, st.name, item, err, stageLogger)
		return
	}
	if err := m.store.Update(dbCtx, item); err != nil {
		stageLogger.Error("failed to persist stage preparation", logging.Error(err))
		m.setLastError(err)
		return
	}

	if err := m.executeWithHeartbeat(graceCtx, st.handler, item); err != nil {
		m.handleStageFailure(dbCtx, st.name, item, err, stageLogger)
		return
	}

	if item.Status == st.processingStatus || item.Status == "" {
		item.Status = st.doneStatus
	}
	item.LastHeartbeat = nil
	if item.Status == queue.StatusCompleted {
		if !item.NeedsReview {
			item.ProgressStage = "Completed"
		}
		if item.ProgressPercent < 100 {
			item.ProgressPercent = 100
		}
		if strings.TrimSpace(item.ProgressMessage) == "" {
			item.ProgressMessage = "Completed"
		}
	}
	if err := m.store.Update(dbCtx, item); err != nil {
		stageLogger.Error("failed to persist stage result", logging.Error(err))
		m.setLastError(err)
		return
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.sink.StageCompleted(item, st.name)
	if queue.IsTerminalStatus(item.Status) {
		m.sink.ItemFinished(item)
	}
	m.setLastItem(item)
}

// executeWithHeartbeat runs the handler while a background loop refreshes
// the item's heartbeat, so a stalled worker is detectable from the queue.
func (m *Manager) executeWithHeartbeat(ctx context.Context, handler stage.Handler, item *queue.Item) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, item.ID)

	execErr := handler.Execute(ctx, item)
	hbCancel()
	hbWG.Wait()
	return execErr
}

// graceContext returns a context that outlives parent cancellation by the
// configured shutdown grace period. When the parent ends, a timer starts;
// the returned context cancels when the timer fires or release is called,
// whichever comes first.
func (m *Manager) graceContext(parent context.Context) (context.Context, context.CancelFunc) {
	if m.grace <= 0 {
		return context.WithCancel(parent)
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(parent, func() {
		timer := time.NewTimer(m.grace)
		defer timer.Stop()
		select {
		case <-timer.C:
			cancel()
		case <-ctx.Done():
		}
	})
	release := func() {
		stop()
		cancel()
	}
	return ctx, release
}
