package workflow

import (
	"context"

	"woodway/internal/logging"
	"woodway/internal/notifications"
	"woodway/internal/queue"
)

// Notifications are best effort; delivery failures are logged and dropped.

func (m *Manager) notifyBatchStarted(ctx context.Context, batchID string, count int) {
	m.publish(ctx, notifications.EventBatchStarted, notifications.Payload{
		"batch_id": batchID,
		"count":    count,
	})
}

func (m *Manager) notifyBatchCompleted(ctx context.Context, result BatchResult) {
	m.publish(ctx, notifications.EventBatchCompleted, notifications.Payload{
		"batch_id":  result.BatchID,
		"completed": result.Completed,
		"failed":    result.Failed,
		"skipped":   result.Skipped,
		"duration":  result.Duration,
	})
}

func (m *Manager) notifyItemFailed(ctx context.Context, item *queue.Item) {
	m.publish(ctx, notifications.EventItemFailed, notifications.Payload{
		"filename": item.OriginalFilename(),
		"error":    item.ErrorMessage,
	})
}

func (m *Manager) notifyError(ctx context.Context, label string, err error) {
	m.publish(ctx, notifications.EventError, notifications.Payload{
		"context": label,
		"error":   err,
	})
}

func (m *Manager) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		m.logger.Debug("notification publish failed",
			logging.String(logging.FieldEventType, string(event)),
			logging.Error(err),
		)
	}
}
