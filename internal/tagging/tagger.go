// Package tagging hosts the workflow stage that attaches the
// three-language metadata bundle to converted items.
package tagging

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"log/slog"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/media/convert"
	"woodway/internal/metadata"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/stage"
	"woodway/internal/taxonomy"
)

// Tagger generates alt text, titles, descriptions, and tag lists for
// each item through the metadata engine.
type Tagger struct {
	store  *queue.Store
	cfg    *config.Config
	engine *metadata.Engine
	logger *slog.Logger

	mu       sync.Mutex
	variants map[string]metadata.Variant
}

// NewTagger constructs the tagging stage handler, wiring the provider
// selected in config.
func NewTagger(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Tagger, error) {
	tree, err := taxonomy.Load(cfg.Paths.TaxonomyPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "tagging", "load taxonomy",
			"Failed to load the taxonomy tree", err)
	}
	engine, err := metadata.NewEngine(cfg, tree, NewProvider(cfg), logger)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "tagging", "build engine",
			"Metadata settings are invalid; check the [metadata] config section", err)
	}
	return NewTaggerWithEngine(cfg, store, logger, engine), nil
}

// NewTaggerWithEngine allows injecting a custom engine (used for tests).
func NewTaggerWithEngine(cfg *config.Config, store *queue.Store, logger *slog.Logger, engine *metadata.Engine) *Tagger {
	tagger := &Tagger{store: store, cfg: cfg, engine: engine, variants: make(map[string]metadata.Variant)}
	tagger.SetLogger(logger)
	return tagger
}

// SetLogger updates the tagger's logging destination while preserving component labeling.
func (t *Tagger) SetLogger(logger *slog.Logger) {
	t.logger = logging.NewComponentLogger(logger, "tagger")
}

// Prepare primes queue progress fields before executing the stage.
func (t *Tagger) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	item.InitProgress("Tagging", "Generating metadata bundle")
	logger.Debug("starting tagging preparation")
	return nil
}

// Execute generates the bundle for the item and records how it was
// produced.
func (t *Tagger) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	stageStart := time.Now()

	if t.engine == nil {
		return services.Wrap(services.ErrConfiguration, "tagging", "validate engine",
			"Tagging stage is not configured", nil)
	}
	output := strings.TrimSpace(item.OutputPath)
	if output == "" {
		return services.Wrap(services.ErrValidation, "tagging", "validate inputs",
			"No installed output present; run naming before tagging", nil)
	}
	sel, err := stage.ItemSelection(item)
	if err != nil {
		return err
	}

	itemCtx := metadata.ItemContext{
		Selection: sel,
		Ordinal:   item.Ordinal,
		Filename:  filepath.Base(output),
		MediaKind: item.MediaKind,
		MediaPath: output,
		MimeType:  mimeTypeFor(output),
		Duration:  sourceDuration(item),
		Variant:   t.batchVariant(ctx, item.BatchID),
	}
	result, err := t.engine.Generate(ctx, itemCtx)
	if err != nil {
		return err
	}

	raw, err := result.Bundle.ToJSON()
	if err != nil {
		return services.Wrap(services.ErrValidation, "tagging", "encode bundle",
			"Generated bundle could not be encoded", err)
	}
	item.BundleJSON = raw
	item.MetadataVariant = string(result.Variant)
	item.Degraded = result.Degraded
	item.DegradedReason = result.DegradedReason

	message := fmt.Sprintf("Bundle ready (%s)", result.Variant)
	if result.Degraded {
		message = "Bundle ready (algorithmic fallback)"
	}
	item.SetProgressComplete("Tagging", message)
	logger.Info("tagging finished",
		logging.String("variant", string(result.Variant)),
		logging.Bool("degraded", result.Degraded),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

// batchVariant resolves the variant the batch was enqueued with,
// memoized because every item in a run shares the batch.
func (t *Tagger) batchVariant(ctx context.Context, batchID string) metadata.Variant {
	t.mu.Lock()
	defer t.mu.Unlock()
	if variant, ok := t.variants[batchID]; ok {
		return variant
	}
	var variant metadata.Variant
	if t.store != nil {
		if batch, err := t.store.GetBatch(ctx, batchID); err == nil && batch != nil {
			if parsed, err := metadata.ParseVariant(batch.Variant); err == nil {
				variant = parsed
			}
		}
	}
	t.variants[batchID] = variant
	return variant
}

// HealthCheck verifies the tagging prerequisites.
func (t *Tagger) HealthCheck(ctx context.Context) stage.Health {
	const name = "tagger"
	if t.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if t.engine == nil {
		return stage.Unhealthy(name, "metadata engine unavailable")
	}
	return stage.Healthy(name)
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "webp":
		return "image/webp"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "mp4":
		return "video/mp4"
	case "webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

// sourceDuration recovers the probed clip length for videos; images
// report zero.
func sourceDuration(item *queue.Item) time.Duration {
	if item.MediaKind != queue.KindVideo {
		return 0
	}
	info, err := convert.SourceInfoFromJSON(item.SourceInfoJSON)
	if err != nil {
		return 0
	}
	return time.Duration(info.DurationSeconds * float64(time.Second))
}
