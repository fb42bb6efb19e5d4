package metadata

import (
	"context"
	"log/slog"
	"time"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/queue"
	"woodway/internal/taxonomy"
)

// ItemContext carries the per-item inputs for bundle generation.
type ItemContext struct {
	Selection taxonomy.Selection
	Ordinal   int
	// Filename is the resolved output name the bundle describes.
	Filename  string
	MediaKind queue.MediaKind
	// MediaPath points at the converted file for multimodal providers.
	MediaPath string
	MimeType  string
	// Duration is the clip length for videos, zero for images.
	Duration time.Duration
	// Variant overrides the engine default when set.
	Variant Variant
}

// Result pairs a bundle with how it was produced. Degraded marks a
// generative request that fell back to templates.
type Result struct {
	Bundle         TagBundle
	Variant        Variant
	Degraded       bool
	DegradedReason string
}

// Engine routes items to the configured variant. The orchestrator calls
// Generate without branching on mode; both variants sit behind it.
type Engine struct {
	defaultVariant Variant
	algo           *Algorithmic
	generator      *Generator
	logger         *slog.Logger
}

// NewEngine wires the variants from config. A nil provider (no API key,
// or a provider name nothing implements) leaves only the algorithmic
// variant; generative requests then resolve to it without marking
// bundles degraded.
func NewEngine(cfg *config.Config, tree *taxonomy.Tree, provider Provider, logger *slog.Logger) (*Engine, error) {
	variant, err := ParseVariant(cfg.Metadata.Variant)
	if err != nil {
		return nil, err
	}
	brand := cfg.Metadata.Brand
	algo := NewAlgorithmic(tree, brand)
	e := &Engine{
		defaultVariant: variant,
		algo:           algo,
		logger:         logging.NewComponentLogger(logger, "metadata"),
	}
	if provider != nil {
		e.generator = NewGenerator(provider, NewPromptBuilder(tree, brand), algo, NewTranslator(tree), GeneratorOptionsFromConfig(cfg), logger)
	} else if variant == VariantGenerative {
		e.logger.Info("no generative provider configured; algorithmic variant active",
			logging.FieldEventType, "generative_unavailable")
	}
	return e, nil
}

// DefaultVariant reports the variant items use when they carry no
// override.
func (e *Engine) DefaultVariant() Variant {
	return e.defaultVariant
}

// GenerativeReady reports whether a provider is wired and not disabled.
func (e *Engine) GenerativeReady() bool {
	return e.generator != nil && !e.generator.Disabled()
}

// Generate produces the bundle for one item using its effective
// variant. The error is non-nil only on cancellation.
func (e *Engine) Generate(ctx context.Context, item ItemContext) (Result, error) {
	variant := item.Variant
	if variant == "" {
		variant = e.defaultVariant
	}
	if variant == VariantGenerative && e.generator != nil {
		return e.generator.Generate(ctx, item)
	}
	bundle := e.algo.Generate(item.Selection, item.Ordinal)
	bundle.Filename = item.Filename
	return Result{Bundle: bundle, Variant: VariantAlgorithmic}, nil
}
