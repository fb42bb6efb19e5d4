// Package finalizing closes out successful items: it appends the
// manifest entry and embeds the tag bundle next to the installed file.
package finalizing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/manifest"
	"woodway/internal/metadata"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/stage"
)

// Finalizer is the last pipeline stage. Failed and skipped items never
// reach it; their manifest entries are appended by the run manager.
type Finalizer struct {
	store    *queue.Store
	cfg      *config.Config
	embedder manifest.Embedder
	logger   *slog.Logger
}

// NewFinalizer constructs the stage with the sidecar embedder.
func NewFinalizer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Finalizer {
	return NewFinalizerWithEmbedder(cfg, store, logger, manifest.SidecarEmbedder{})
}

// NewFinalizerWithEmbedder allows tests to substitute the embedder.
func NewFinalizerWithEmbedder(cfg *config.Config, store *queue.Store, logger *slog.Logger, embedder manifest.Embedder) *Finalizer {
	return &Finalizer{
		store:    store,
		cfg:      cfg,
		embedder: embedder,
		logger:   logging.NewComponentLogger(logger, "finalizing"),
	}
}

// SetLogger replaces the stage logger.
func (f *Finalizer) SetLogger(logger *slog.Logger) {
	f.logger = logging.NewComponentLogger(logger, "finalizing")
}

// Prepare seeds progress for the finalize pass.
func (f *Finalizer) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Finalizing", "Recording manifest entry")
	return nil
}

// Execute embeds the sidecar and appends the item's manifest entry. The
// sidecar is written first so an embed failure leaves no completed
// entry behind.
func (f *Finalizer) Execute(ctx context.Context, item *queue.Item) error {
	stageStart := time.Now()
	logger := logging.WithContext(ctx, f.logger)

	bundle, err := metadata.BundleFromJSON(item.BundleJSON)
	if err != nil || item.BundleJSON == "" {
		return services.Wrap(services.ErrValidation, "finalizing", "decode bundle",
			"Tag bundle missing or invalid; rerun the tagging stage", err)
	}
	if item.OutputPath == "" {
		return services.Wrap(services.ErrValidation, "finalizing", "locate output",
			"Item has no installed output; rerun the naming stage", nil)
	}

	if err := f.embedder.Embed(ctx, item.OutputPath, bundle); err != nil {
		marker := services.ErrTransient
		if ctx.Err() != nil {
			marker = services.ErrCancelled
		}
		return services.Wrap(marker, "finalizing", "embed sidecar",
			fmt.Sprintf("Failed to write metadata sidecar for %s", item.OutputPath), err)
	}

	entry := manifest.EntryForItem(item)
	entry.Status = queue.StatusCompleted
	if err := f.store.AppendManifest(ctx, entry); err != nil {
		marker := services.ErrTransient
		if ctx.Err() != nil {
			marker = services.ErrCancelled
		}
		return services.Wrap(marker, "finalizing", "append manifest",
			"Failed to record manifest entry", err)
	}

	item.SetProgressComplete("Finalizing", "Completed")
	logger.Info("item finalized",
		logging.Int64("item_id", item.ID),
		logging.String("output", item.OutputPath),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

// HealthCheck verifies the stage has its collaborators.
func (f *Finalizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "finalizing"
	if f.cfg == nil {
		return stage.Unhealthy(name, "configuration not loaded")
	}
	if f.store == nil {
		return stage.Unhealthy(name, "queue store unavailable")
	}
	if f.embedder == nil {
		return stage.Unhealthy(name, "embedder not configured")
	}
	return stage.Healthy(name)
}
