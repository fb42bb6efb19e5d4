package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/services"
)

// GeneratorOptions bound the retry behavior for one batch.
type GeneratorOptions struct {
	// MaxAttempts caps provider calls per item, counting schema
	// rejections as failed attempts.
	MaxAttempts int
	// Backoff is the base delay before a retry; it doubles per attempt
	// with up to one extra base of jitter.
	Backoff time.Duration
	// Cooldown is the batch-wide wait after a rate-limit response that
	// carries no explicit retry-after.
	Cooldown time.Duration
	// Timeout bounds a single provider call.
	Timeout time.Duration
}

// GeneratorOptionsFromConfig copies the retry settings from the loaded
// config.
func GeneratorOptionsFromConfig(cfg *config.Config) GeneratorOptions {
	return GeneratorOptions{
		MaxAttempts: cfg.Metadata.RetryMaxAttempts,
		Backoff:     time.Duration(cfg.Metadata.RetryBackoffSeconds) * time.Second,
		Cooldown:    time.Duration(cfg.Metadata.RateLimitCooldownSeconds) * time.Second,
		Timeout:     time.Duration(cfg.Metadata.TimeoutSeconds) * time.Second,
	}
}

func (o GeneratorOptions) withDefaults() GeneratorOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.Backoff < 0 {
		o.Backoff = 0
	}
	if o.Cooldown < 0 {
		o.Cooldown = 0
	}
	return o
}

// Generator runs the generative variant with a shared retry policy:
// transient failures back off exponentially with jitter, rate limits
// start a batch-wide cooldown, permanent failures disable the provider
// for the rest of the batch, and exhaustion falls back to the
// algorithmic variant with the bundle marked degraded. One Generator
// serves a whole batch and is safe for concurrent workers.
type Generator struct {
	provider   Provider
	prompts    *PromptBuilder
	algo       *Algorithmic
	translator *Translator
	opts       GeneratorOptions
	logger     *slog.Logger

	mu             sync.Mutex
	disabledReason string
	coolUntil      time.Time
}

func NewGenerator(provider Provider, prompts *PromptBuilder, algo *Algorithmic, translator *Translator, opts GeneratorOptions, logger *slog.Logger) *Generator {
	return &Generator{
		provider:   provider,
		prompts:    prompts,
		algo:       algo,
		translator: translator,
		opts:       opts.withDefaults(),
		logger:     logging.NewComponentLogger(logger, "metadata"),
	}
}

// Disabled reports whether a permanent provider failure turned the
// generative variant off for this batch.
func (g *Generator) Disabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disabledReason != ""
}

// Generate produces the bundle for one item. The returned error is
// non-nil only on cancellation; every provider failure resolves to an
// algorithmic fallback instead.
func (g *Generator) Generate(ctx context.Context, item ItemContext) (Result, error) {
	if reason := g.currentDisabledReason(); reason != "" {
		return g.fallback(item, reason), nil
	}

	req := Request{
		Prompt:    g.prompts.Build(item),
		MediaPath: item.MediaPath,
		MimeType:  item.MimeType,
	}
	log := logging.WithContext(ctx, g.logger)

	var lastErr error
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		if err := g.awaitCooldown(ctx, log); err != nil {
			return Result{}, services.Wrap(services.ErrCancelled, "tagging", "generate", "cancelled while waiting for provider", err)
		}

		raw, err := g.complete(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, services.Wrap(services.ErrCancelled, "tagging", "generate", "cancelled during provider call", ctx.Err())
			}
			lastErr = err
			switch {
			case errors.Is(err, services.ErrRateLimited):
				wait := services.RetryAfter(err)
				if wait <= 0 {
					wait = g.opts.Cooldown
				}
				g.startCooldown(wait)
				log.Warn("provider rate limited; batch cooling down",
					logging.FieldEventType, "generative_rate_limited",
					"provider", g.provider.Name(),
					"attempt", attempt,
					"cooldown", wait)
			case errors.Is(err, services.ErrPermanent):
				reason := fmt.Sprintf("generative disabled: %v", err)
				g.disable(reason)
				logging.ErrorWithContext(log, "provider rejected credentials; generative variant disabled for batch",
					"generative_disabled",
					logging.String("provider", g.provider.Name()),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check metadata.api_key and provider quota"))
				return g.fallback(item, reason), nil
			default:
				log.Warn("provider attempt failed",
					logging.FieldEventType, "generative_attempt_failed",
					"provider", g.provider.Name(),
					"attempt", attempt,
					"error", err)
				if err := g.backoff(ctx, attempt); err != nil {
					return Result{}, services.Wrap(services.ErrCancelled, "tagging", "generate", "cancelled during backoff", err)
				}
			}
			continue
		}

		bundle, decodeErr := decodeBundle(raw)
		if decodeErr != nil {
			lastErr = decodeErr
			log.Warn("provider response rejected",
				logging.FieldEventType, "generative_response_rejected",
				"provider", g.provider.Name(),
				"attempt", attempt,
				"error", decodeErr)
			if err := g.backoff(ctx, attempt); err != nil {
				return Result{}, services.Wrap(services.ErrCancelled, "tagging", "generate", "cancelled during backoff", err)
			}
			continue
		}

		g.translator.Localize(&bundle)
		bundle.Filename = item.Filename
		return Result{Bundle: bundle, Variant: VariantGenerative}, nil
	}

	reason := fmt.Sprintf("generative attempts exhausted: %v", lastErr)
	logging.WarnWithContext(log, "generative attempts exhausted; using algorithmic fallback",
		"generative_fallback",
		logging.Int("attempts", g.opts.MaxAttempts),
		logging.Error(lastErr),
		logging.String(logging.FieldImpact, "item tagged with template metadata and marked degraded"))
	return g.fallback(item, reason), nil
}

func (g *Generator) complete(ctx context.Context, req Request) (string, error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}
	return g.provider.Complete(ctx, req)
}

func (g *Generator) fallback(item ItemContext, reason string) Result {
	bundle := g.algo.Generate(item.Selection, item.Ordinal)
	bundle.Filename = item.Filename
	return Result{
		Bundle:         bundle,
		Variant:        VariantAlgorithmic,
		Degraded:       true,
		DegradedReason: reason,
	}
}

// backoff sleeps before the next attempt unless this was the last one.
func (g *Generator) backoff(ctx context.Context, attempt int) error {
	if attempt >= g.opts.MaxAttempts || g.opts.Backoff <= 0 {
		return nil
	}
	delay := g.opts.Backoff << (attempt - 1)
	delay += time.Duration(rand.Int63n(int64(g.opts.Backoff)))
	return sleepContext(ctx, delay)
}

func (g *Generator) startCooldown(wait time.Duration) {
	if wait <= 0 {
		return
	}
	until := time.Now().Add(wait)
	g.mu.Lock()
	if until.After(g.coolUntil) {
		g.coolUntil = until
	}
	g.mu.Unlock()
}

func (g *Generator) awaitCooldown(ctx context.Context, log *slog.Logger) error {
	g.mu.Lock()
	until := g.coolUntil
	g.mu.Unlock()
	wait := time.Until(until)
	if wait <= 0 {
		return ctx.Err()
	}
	log.Info("waiting out rate-limit cooldown",
		logging.FieldEventType, "generative_cooldown_wait",
		"cooldown", wait)
	return sleepContext(ctx, wait)
}

func (g *Generator) disable(reason string) {
	g.mu.Lock()
	if g.disabledReason == "" {
		g.disabledReason = reason
	}
	g.mu.Unlock()
}

func (g *Generator) currentDisabledReason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disabledReason
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
