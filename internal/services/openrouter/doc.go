// Package openrouter implements the metadata.Provider interface on top
// of the OpenRouter chat completion API.
//
// The client is single-shot: one Complete call issues one HTTP request.
// Retry, backoff, and rate-limit cooldown belong to the metadata
// generator, which shares that policy across providers. This package
// only classifies failures: HTTP 429 becomes a services.RateLimitError
// carrying the Retry-After hint, 401/403 map to services.ErrPermanent,
// and everything else is services.ErrTransient.
//
// Images small enough to inline are attached to the request as a
// base64 data URL so multimodal models can describe the actual frame.
// Videos are described from the taxonomy context alone.
//
// # Configuration
//
// metadata.provider = "openrouter" selects this client. api_key and
// model are required; base_url, referer, title, and timeout_seconds
// are optional.
package openrouter
