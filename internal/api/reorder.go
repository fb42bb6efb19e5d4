package api

import (
	"context"
	"fmt"
	"log/slog"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/ordering"
	"woodway/internal/queue"
)

// ReorderRequest rewrites a batch's item order. IDs must contain every
// item of the batch exactly once.
type ReorderRequest struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *queue.Store
	BatchID string
	IDs     []int64
}

// ReorderResult returns the batch items in their new order.
type ReorderResult struct {
	BatchID string
	Items   []QueueItem
}

// ReorderBatch applies the new ordinal sequence and reports the
// resulting order. Planned names are invalidated by the store and will
// be recomputed on the next run.
func ReorderBatch(ctx context.Context, req ReorderRequest) (ReorderResult, error) {
	cfg := req.Config
	if cfg == nil {
		return ReorderResult{}, fmt.Errorf("configuration is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	store := req.Store
	if store == nil {
		opened, err := queue.Open(cfg)
		if err != nil {
			return ReorderResult{}, fmt.Errorf("open queue store: %w", err)
		}
		defer opened.Close()
		store = opened
	}

	batchID, err := resolveBatchID(ctx, store, req.BatchID)
	if err != nil {
		return ReorderResult{}, err
	}
	if err := ordering.Reorder(ctx, store, batchID, req.IDs); err != nil {
		return ReorderResult{}, err
	}

	items, err := store.ItemsByBatch(ctx, batchID)
	if err != nil {
		return ReorderResult{}, fmt.Errorf("list batch items: %w", err)
	}
	logger.Info("batch reordered",
		logging.String(logging.FieldBatchID, batchID),
		logging.String(logging.FieldEventType, "batch_reordered"),
		logging.Int("items", len(items)),
	)
	return ReorderResult{BatchID: batchID, Items: FromQueueItems(items)}, nil
}
