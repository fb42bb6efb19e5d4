package metadata_test

import (
	"context"
	"strings"
	"testing"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/metadata"
	"woodway/internal/services"
)

func newTestEngine(t *testing.T, variant string, provider metadata.Provider) *metadata.Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Metadata.Variant = variant
	engine, err := metadata.NewEngine(&cfg, loadTree(t), provider, logging.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestEngineDefaultsToAlgorithmic(t *testing.T) {
	provider := &fakeProvider{fn: func(int, metadata.Request) (string, error) {
		return validResponse(t), nil
	}}
	engine := newTestEngine(t, "", provider)

	if engine.DefaultVariant() != metadata.VariantAlgorithmic {
		t.Fatalf("default variant = %q", engine.DefaultVariant())
	}
	res, err := engine.Generate(context.Background(), testItem())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Variant != metadata.VariantAlgorithmic || res.Degraded {
		t.Errorf("result = variant %q degraded %v", res.Variant, res.Degraded)
	}
	if provider.calls != 0 {
		t.Errorf("algorithmic default must not call the provider, calls = %d", provider.calls)
	}
	if res.Bundle.Filename != "fanera-fsf-bereza-18mm.webp" {
		t.Errorf("bundle filename = %q", res.Bundle.Filename)
	}
}

func TestEngineGenerativeWithoutProviderIsNotDegraded(t *testing.T) {
	engine := newTestEngine(t, "generative", nil)

	if engine.GenerativeReady() {
		t.Error("no provider wired, GenerativeReady should be false")
	}
	res, err := engine.Generate(context.Background(), testItem())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Variant != metadata.VariantAlgorithmic {
		t.Errorf("variant = %q, want algorithmic", res.Variant)
	}
	if res.Degraded {
		t.Error("missing provider is a configuration state, not a degradation")
	}
	if err := res.Bundle.Validate(); err != nil {
		t.Errorf("bundle invalid: %v", err)
	}
}

func TestEngineHonorsPerItemVariant(t *testing.T) {
	provider := &fakeProvider{fn: func(int, metadata.Request) (string, error) {
		return validResponse(t), nil
	}}
	engine := newTestEngine(t, "algorithmic", provider)

	item := testItem()
	item.Variant = metadata.VariantGenerative
	res, err := engine.Generate(context.Background(), item)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Variant != metadata.VariantGenerative {
		t.Errorf("variant = %q, want generative override", res.Variant)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestEngineRejectsUnknownVariant(t *testing.T) {
	cfg := config.Default()
	cfg.Metadata.Variant = "telepathic"
	if _, err := metadata.NewEngine(&cfg, loadTree(t), nil, logging.NewNop()); err == nil {
		t.Fatal("expected variant rejection")
	} else if !strings.Contains(err.Error(), "telepathic") {
		t.Errorf("error should name the bad value, got %v", err)
	}
}

func TestEngineGenerativeReadyTracksDisable(t *testing.T) {
	provider := &fakeProvider{fn: func(int, metadata.Request) (string, error) {
		return "", services.Wrap(services.ErrPermanent, "tagging", "provider", "401 unauthorized", nil)
	}}
	engine := newTestEngine(t, "generative", provider)

	if !engine.GenerativeReady() {
		t.Fatal("provider wired, GenerativeReady should start true")
	}
	res, err := engine.Generate(context.Background(), testItem())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Degraded {
		t.Error("permanent provider failure should degrade the result")
	}
	if engine.GenerativeReady() {
		t.Error("GenerativeReady should flip after a permanent failure")
	}
}
