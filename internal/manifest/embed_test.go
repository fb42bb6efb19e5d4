package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"woodway/internal/metadata"
)

func TestSidecarEmbedderWritesBundle(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "fanera-fsf-berezova.webp")
	if err := os.WriteFile(output, []byte("webp"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}

	if err := (SidecarEmbedder{}).Embed(context.Background(), output, testBundle()); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	payload, err := os.ReadFile(output + ".json")
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	var bundle metadata.TagBundle
	if err := json.Unmarshal(payload, &bundle); err != nil {
		t.Fatalf("decode sidecar: %v", err)
	}
	if bundle.UA.AltText != "Фанера ФСФ березова 18 мм" {
		t.Errorf("sidecar UA alt text = %q", bundle.UA.AltText)
	}
	if bundle.Filename != "fanera-fsf-berezova.webp" {
		t.Errorf("sidecar filename = %q", bundle.Filename)
	}
}

func TestSidecarEmbedderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (SidecarEmbedder{}).Embed(ctx, filepath.Join(t.TempDir(), "x.webp"), testBundle())
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestNoopEmbedder(t *testing.T) {
	output := filepath.Join(t.TempDir(), "x.webp")
	if err := (NoopEmbedder{}).Embed(context.Background(), output, testBundle()); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if _, err := os.Stat(output + ".json"); !os.IsNotExist(err) {
		t.Error("noop embedder wrote a sidecar")
	}
}
