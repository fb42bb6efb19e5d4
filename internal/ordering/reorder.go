// Package ordering rewrites batch processing order ahead of a run.
package ordering

import (
	"context"
	"fmt"

	"woodway/internal/queue"
	"woodway/internal/services"
)

// Reorder rewrites the ordinals of a batch to follow the supplied item
// identifier sequence. The sequence must name every item in the batch
// exactly once; anything else is rejected before the store is touched.
// Cached naming plans are invalidated so the next run re-plans names in
// the new order.
func Reorder(ctx context.Context, store *queue.Store, batchID string, ids []int64) error {
	if store == nil {
		return services.Wrap(services.ErrConfiguration, "ordering", "reorder", "Queue store unavailable", nil)
	}
	items, err := store.ItemsByBatch(ctx, batchID)
	if err != nil {
		return services.Wrap(nil, "ordering", "reorder", "Failed to load batch items", err)
	}
	if len(items) == 0 {
		return services.Wrap(services.ErrNotFound, "ordering", "reorder",
			fmt.Sprintf("Batch %s has no items", batchID), nil)
	}
	if err := validateSequence(items, ids); err != nil {
		return err
	}
	if err := store.ReassignOrdinals(ctx, batchID, ids); err != nil {
		return services.Wrap(nil, "ordering", "reorder", "Failed to rewrite ordinals", err)
	}
	return nil
}

// validateSequence checks that ids is a permutation of the batch's item
// identifiers.
func validateSequence(items []*queue.Item, ids []int64) error {
	if len(ids) != len(items) {
		return services.Wrap(services.ErrValidation, "ordering", "reorder",
			fmt.Sprintf("Expected %d item ids, got %d", len(items), len(ids)), nil)
	}
	current := make(map[int64]bool, len(items))
	for _, item := range items {
		current[item.ID] = true
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !current[id] {
			return services.Wrap(services.ErrValidation, "ordering", "reorder",
				fmt.Sprintf("Item %d is not part of the batch", id), nil)
		}
		if seen[id] {
			return services.Wrap(services.ErrValidation, "ordering", "reorder",
				fmt.Sprintf("Item %d listed more than once", id), nil)
		}
		seen[id] = true
	}
	return nil
}
