package metadata

import "context"

// Provider performs one generative completion. Implementations are
// single-shot: retry, backoff, and rate-limit handling belong to the
// Generator so every provider shares the same policy. Errors should be
// tagged with the services sentinels (rate limited, permanent,
// transient) so the Generator can classify them.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is one completion request. MediaPath points at the converted
// output file for providers that accept images; text-only providers
// ignore it.
type Request struct {
	Prompt    string
	MediaPath string
	MimeType  string
}
