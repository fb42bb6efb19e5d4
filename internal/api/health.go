package api

import (
	"context"
	"fmt"
	"log/slog"

	"woodway/internal/config"
	"woodway/internal/deps"
	"woodway/internal/logging"
	"woodway/internal/queue"
)

// StatusRequest gathers pipeline diagnostics. Store is optional.
type StatusRequest struct {
	Config *config.Config
	Logger *slog.Logger
	Store  *queue.Store
}

// GatherStatus collects external tool availability, queue database
// health, and aggregate queue state for the status command. Individual
// probe failures are reported inside the payload instead of aborting.
func GatherStatus(ctx context.Context, req StatusRequest) (PipelineStatus, error) {
	cfg := req.Config
	if cfg == nil {
		return PipelineStatus{}, fmt.Errorf("configuration is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	status := PipelineStatus{
		QueueDBPath:  cfg.DatabasePath(),
		Dependencies: FromDependencyStatuses(deps.CheckTools(ctx, cfg)),
	}

	store := req.Store
	if store == nil {
		opened, err := queue.Open(cfg)
		if err != nil {
			status.Database = DatabaseStatus{Path: cfg.DatabasePath(), Error: err.Error()}
			return status, nil
		}
		defer opened.Close()
		store = opened
	}

	health, err := store.CheckHealth(ctx)
	status.Database = FromDatabaseHealth(health)
	if err != nil && status.Database.Error == "" {
		status.Database.Error = err.Error()
	}

	if stats, err := store.Stats(ctx); err != nil {
		logger.Warn("queue stats unavailable", logging.Error(err))
	} else {
		status.QueueStats = MergeQueueStats(stats)
	}

	if latest, err := store.LatestBatch(ctx); err != nil {
		logger.Warn("latest batch unavailable", logging.Error(err))
	} else if latest != nil {
		counts, err := store.BatchStats(ctx, latest.ID)
		if err != nil {
			logger.Warn("batch stats unavailable", logging.Error(err))
		}
		summary := FromBatch(latest, counts)
		status.LatestBatch = &summary
	}

	return status, nil
}
