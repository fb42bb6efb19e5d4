package api

import (
	"context"
	"fmt"
	"log/slog"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/manifest"
	"woodway/internal/queue"
	"woodway/internal/services"
)

// ExportRequest names a batch manifest to render. An empty BatchID
// resolves to the latest batch; empty Dir and Formats fall back to the
// configured output directory and format list.
type ExportRequest struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *queue.Store
	BatchID string
	Dir     string
	Formats []string
}

// ExportResult reports the resolved batch and the files written.
type ExportResult struct {
	BatchID string
	Paths   []string
}

// ExportManifest renders a batch's manifest into the requested formats.
func ExportManifest(ctx context.Context, req ExportRequest) (ExportResult, error) {
	cfg := req.Config
	if cfg == nil {
		return ExportResult{}, fmt.Errorf("configuration is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	store := req.Store
	if store == nil {
		opened, err := queue.Open(cfg)
		if err != nil {
			return ExportResult{}, fmt.Errorf("open queue store: %w", err)
		}
		defer opened.Close()
		store = opened
	}

	batchID, err := resolveBatchID(ctx, store, req.BatchID)
	if err != nil {
		return ExportResult{}, err
	}

	exporter := manifest.NewExporter(cfg, store, logger)
	paths, err := exporter.Export(ctx, batchID, req.Dir, req.Formats)
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{BatchID: batchID, Paths: paths}, nil
}

// resolveBatchID validates an explicit batch id or falls back to the
// most recently created batch.
func resolveBatchID(ctx context.Context, store *queue.Store, batchID string) (string, error) {
	if batchID != "" {
		batch, err := store.GetBatch(ctx, batchID)
		if err != nil {
			return "", fmt.Errorf("get batch: %w", err)
		}
		if batch == nil {
			return "", fmt.Errorf("%w: batch %s", services.ErrNotFound, batchID)
		}
		return batch.ID, nil
	}
	latest, err := store.LatestBatch(ctx)
	if err != nil {
		return "", fmt.Errorf("latest batch: %w", err)
	}
	if latest == nil {
		return "", fmt.Errorf("%w: no batches exist", services.ErrNotFound)
	}
	return latest.ID, nil
}
