// Package stageexec runs a single pipeline stage against a single queue
// item, applying the same status transitions and failure handling the
// batch workflow uses. It backs one-shot flows such as reprocessing an
// individual item without re-running its whole batch.
package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"woodway/internal/logging"
	"woodway/internal/manifest"
	"woodway/internal/notifications"
	"woodway/internal/queue"
	"woodway/internal/services"
)

// Handler is the stage contract used by the execution helper. Every
// pipeline stage satisfies it.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
}

type loggerAware interface {
	SetLogger(*slog.Logger)
}

// Options controls stage execution and queue persistence behavior.
type Options struct {
	Logger     *slog.Logger
	Store      *queue.Store
	Notifier   notifications.Service
	Handler    Handler
	StageName  string
	Processing queue.Status
	Done       queue.Status
	Item       *queue.Item
}

// Run executes one stage and applies the queue transition semantics used
// by one-shot workflows. The item moves into the processing status before
// the handler runs and into the done status after it succeeds; failures
// land on the item and in the manifest, mirroring the batch workers.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return fmt.Errorf("stage handler unavailable: %s", opts.StageName)
	}
	if opts.Store == nil {
		return fmt.Errorf("queue store is required")
	}
	if opts.Item == nil {
		return fmt.Errorf("queue item is required")
	}

	stageCtx := services.WithBatchID(ctx, opts.Item.BatchID)
	stageCtx = services.WithItemID(stageCtx, opts.Item.ID)
	stageCtx = services.WithStage(stageCtx, opts.StageName)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	if aware, ok := opts.Handler.(loggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(opts.Processing)),
		logging.String("source_file", strings.TrimSpace(opts.Item.SourcePath)),
	)

	setItemProcessingState(opts.Item, opts.Processing)
	if err := opts.Store.Update(stageCtx, opts.Item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	if err := opts.Handler.Prepare(stageCtx, opts.Item); err != nil {
		return handleFailure(stageCtx, stageLogger, opts, err)
	}
	if err := opts.Store.Update(stageCtx, opts.Item); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := opts.Handler.Execute(stageCtx, opts.Item); err != nil {
		return handleFailure(stageCtx, stageLogger, opts, err)
	}

	if opts.Item.Status == opts.Processing || opts.Item.Status == "" {
		opts.Item.Status = opts.Done
	}
	opts.Item.LastHeartbeat = nil
	if opts.Item.Status == queue.StatusCompleted {
		if !opts.Item.NeedsReview {
			opts.Item.ProgressStage = "Completed"
		}
		if opts.Item.ProgressPercent < 100 {
			opts.Item.ProgressPercent = 100
		}
		if strings.TrimSpace(opts.Item.ProgressMessage) == "" {
			opts.Item.ProgressMessage = "Completed"
		}
	}
	if err := opts.Store.Update(stageCtx, opts.Item); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(opts.Item.Status)),
		logging.String("progress_stage", strings.TrimSpace(opts.Item.ProgressStage)),
		logging.String("progress_message", strings.TrimSpace(opts.Item.ProgressMessage)),
	)

	return nil
}

// handleFailure maps the stage error onto the item the same way the batch
// workers do: cancellation skips, everything else fails with the error
// taxonomy kind. The terminal state is persisted and appended to the
// manifest before the original error is returned.
func handleFailure(ctx context.Context, logger *slog.Logger, opts Options, stageErr error) error {
	item := opts.Item
	if services.FailureStatus(stageErr) == queue.StatusSkipped {
		item.SetSkipped(queue.CancelReason)
		logger.Info("stage interrupted, item skipped",
			logging.String(logging.FieldStage, opts.StageName),
		)
	} else {
		item.SetFailed(services.Kind(stageErr), fmt.Sprintf("%s stage: %v", opts.StageName, stageErr))
		logger.Error(
			"stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("error_kind", services.Kind(stageErr)),
			logging.Error(stageErr),
		)
	}

	if err := opts.Store.Update(ctx, item); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
	if err := opts.Store.AppendManifest(ctx, manifest.EntryForItem(item)); err != nil {
		logger.Error("failed to append manifest entry", logging.Error(err))
	}

	if opts.Notifier != nil && item.Status == queue.StatusFailed {
		contextLabel := fmt.Sprintf("%s (item #%d)", opts.StageName, item.ID)
		if err := opts.Notifier.Publish(ctx, notifications.EventError, notifications.Payload{
			"error":   stageErr,
			"context": contextLabel,
		}); err != nil {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}

	return stageErr
}

func setItemProcessingState(item *queue.Item, processing queue.Status) {
	now := time.Now().UTC()
	item.Status = processing
	if item.ProgressStage == "" {
		item.ProgressStage = deriveStageLabel(processing)
	}
	if item.ProgressMessage == "" {
		item.ProgressMessage = fmt.Sprintf("%s started", deriveStageLabel(processing))
	}
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	item.ErrorKind = ""
	item.LastHeartbeat = &now
}

func deriveStageLabel(status queue.Status) string {
	if status == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(string(status), "_", " "))
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
