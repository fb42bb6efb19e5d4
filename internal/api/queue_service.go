package api

import (
	"context"

	"woodway/internal/queue"
)

// QueueReader is the slice of queue.Store the read-only views need.
type QueueReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	GetByID(ctx context.Context, id int64) (*queue.Item, error)
}

// QueueService answers queue queries with DTOs ready for table or JSON
// rendering. A nil service or reader yields empty results rather than panics.
type QueueService struct {
	store QueueReader
}

// NewQueueService wraps a reader; a nil reader produces a nil service.
func NewQueueService(store QueueReader) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store}
}

func (s *QueueService) ready() bool {
	return s != nil && s.store != nil
}

// List returns items filtered to the given statuses; no filter means all.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]QueueItem, error) {
	if !s.ready() {
		return nil, nil
	}
	items, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromQueueItems(items), nil
}

// Stats returns per-status counts keyed by status string.
func (s *QueueService) Stats(ctx context.Context) (map[string]int, error) {
	if !s.ready() {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeQueueStats(stats), nil
}

// Describe fetches one item by id; a missing id returns nil without error.
func (s *QueueService) Describe(ctx context.Context, id int64) (*QueueItem, error) {
	if !s.ready() {
		return nil, nil
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	dto := FromQueueItem(item)
	return &dto, nil
}
