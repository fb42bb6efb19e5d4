package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"woodway/internal/logging"
	"woodway/internal/manifest"
	"woodway/internal/queue"
	"woodway/internal/services"
)

// handleStageFailure persists the item's terminal state and manifest entry
// after a stage error. Cancellation maps to skipped, everything else to
// failed with the error taxonomy kind; either way the rest of the batch
// keeps going.
func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, cause error, logger *slog.Logger) {
	if services.FailureStatus(cause) == queue.StatusSkipped {
		item.SetSkipped(queue.CancelReason)
		logger.Info("stage interrupted, item skipped", logging.String(logging.FieldStage, stageName))
	} else {
		item.SetFailed(services.Kind(cause), fmt.Sprintf("%s stage: %v", stageName, cause))
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failed"),
			logging.String("error_kind", services.Kind(cause)),
			logging.Error(cause),
		)
		m.setLastError(cause)
	}

	if err := m.store.Update(ctx, item); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
		m.setLastError(err)
		return
	}
	if err := m.store.AppendManifest(ctx, manifest.EntryForItem(item)); err != nil {
		logger.Error("failed to append manifest entry", logging.Error(err))
		m.setLastError(err)
	}
	if item.Status == queue.StatusFailed {
		m.notifyItemFailed(ctx, item)
	}
	m.sink.ItemFinished(item)
	m.setLastItem(item)
}
