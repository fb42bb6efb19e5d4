package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeBundle parses a provider response into a validated bundle.
// Models wrap JSON in code fences or commentary often enough that the
// payload is trimmed down to its outermost object before decoding.
func decodeBundle(payload string) (TagBundle, error) {
	cleaned := extractJSONObject(stripCodeFences(payload))
	if cleaned == "" {
		return TagBundle{}, fmt.Errorf("response contains no JSON object: %s", summarizePayload(payload))
	}
	var bundle TagBundle
	if err := json.Unmarshal([]byte(cleaned), &bundle); err != nil {
		return TagBundle{}, fmt.Errorf("parse response JSON: %w: %s", err, summarizePayload(cleaned))
	}
	if err := bundle.Validate(); err != nil {
		return TagBundle{}, fmt.Errorf("response schema: %w", err)
	}
	return bundle, nil
}

// stripCodeFences unwraps a ```json ... ``` block when the whole payload
// is fenced; otherwise the payload is returned trimmed.
func stripCodeFences(payload string) string {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// extractJSONObject returns the substring spanning the first '{' to the
// last '}', or "" when no object is present.
func extractJSONObject(payload string) string {
	start := strings.IndexByte(payload, '{')
	end := strings.LastIndexByte(payload, '}')
	if start < 0 || end <= start {
		return ""
	}
	return payload[start : end+1]
}

const payloadSnippetLimit = 160

// summarizePayload renders a short single-line excerpt for error
// messages so logs stay readable when a model returns prose.
func summarizePayload(payload string) string {
	flat := strings.Join(strings.Fields(payload), " ")
	runes := []rune(flat)
	if len(runes) > payloadSnippetLimit {
		return string(runes[:payloadSnippetLimit]) + "..."
	}
	if flat == "" {
		return "<empty>"
	}
	return flat
}
