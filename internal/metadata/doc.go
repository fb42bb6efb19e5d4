// Package metadata produces the three-language SEO tag bundles attached
// to converted files.
//
// Two variants implement one capability. The algorithmic variant
// renders fixed phrase templates from taxonomy labels, rotating four
// template sets by batch ordinal. The generative variant prompts an
// external model and validates the JSON response against the bundle
// schema; transient failures retry with exponential backoff and jitter,
// rate limits start a batch-wide cooldown, credential failures disable
// the provider for the batch, and exhaustion falls back to the
// algorithmic variant with the bundle marked degraded. A batch never
// fails because generation did.
package metadata
