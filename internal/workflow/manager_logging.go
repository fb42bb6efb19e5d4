package workflow

import (
	"context"

	"woodway/internal/queue"
	"woodway/internal/services"
)

// withStageContext threads item identity through the context so stage and
// service logs downstream carry the same correlation fields.
func withStageContext(ctx context.Context, stageName string, item *queue.Item, requestID string) context.Context {
	ctx = services.WithBatchID(ctx, item.BatchID)
	ctx = services.WithItemID(ctx, item.ID)
	ctx = services.WithStage(ctx, stageName)
	ctx = services.WithRequestID(ctx, requestID)
	return ctx
}
