package manifest

import (
	"context"
	"encoding/json"
	"os"

	"woodway/internal/metadata"
)

// Embedder attaches a tag bundle to an installed media file so the SEO
// text travels with the asset.
type Embedder interface {
	Embed(ctx context.Context, path string, bundle metadata.TagBundle) error
}

// SidecarEmbedder writes the bundle as a JSON sidecar next to the media
// file. CMS importers pick the sidecar up by matching the filename.
type SidecarEmbedder struct{}

// Embed writes <path>.json containing the full three-language bundle.
func (SidecarEmbedder) Embed(ctx context.Context, path string, bundle metadata.TagBundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	return os.WriteFile(path+".json", payload, 0o644)
}

// NoopEmbedder skips embedding. Used when sidecars are disabled.
type NoopEmbedder struct{}

// Embed does nothing.
func (NoopEmbedder) Embed(context.Context, string, metadata.TagBundle) error { return nil }
