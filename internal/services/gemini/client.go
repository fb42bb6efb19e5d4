package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"woodway/internal/config"
	"woodway/internal/metadata"
	"woodway/internal/services"
)

const (
	defaultModel   = "gemini-2.0-flash"
	generationTemp = 0.7

	// maxInlineMediaBytes caps the media blob attached to a request.
	// Larger files are described from the taxonomy context alone.
	maxInlineMediaBytes = 15 << 20
)

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey string
	Model  string
}

// ConfigFromLLM maps the loaded provider settings onto the client config.
func ConfigFromLLM(llm config.LLMConfig) Config {
	return Config{APIKey: llm.APIKey, Model: llm.Model}
}

// Client sends single-shot generation requests to the Gemini API. Like
// the OpenRouter client it performs no retries; it classifies failures
// with the services error markers and leaves the retry policy to the
// metadata generator.
type Client struct {
	cfg Config

	mu     sync.Mutex
	client *genai.Client
}

// NewClient constructs a Gemini client. The underlying API connection
// is established lazily on the first request.
func NewClient(cfg Config) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Client{cfg: cfg}
}

// Name identifies the provider in logs and manifest records.
func (c *Client) Name() string { return "gemini" }

// Close releases the underlying API connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// Complete sends one generation request and returns the raw model
// output. Media small enough to inline rides along as a blob so the
// model can describe the actual image or clip.
func (c *Client) Complete(ctx context.Context, req metadata.Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, "tagging", "gemini", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrPermanent, "tagging", "gemini", "api key required", nil)
	}

	model, err := c.generativeModel(ctx)
	if err != nil {
		return "", err
	}

	parts := []genai.Part{genai.Text(prompt)}
	if blob, ok := c.mediaBlob(req); ok {
		parts = append(parts, blob)
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classifyError(err)
	}
	content := extractText(resp)
	if content == "" {
		return "", services.Wrap(services.ErrTransient, "tagging", "gemini",
			fmt.Sprintf("empty content (finish_reason=%q)", finishReason(resp)), nil)
	}
	return content, nil
}

// HealthCheck verifies the API key and model by counting tokens on a
// trivial prompt.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrPermanent, "preflight", "gemini", "api key required", nil)
	}
	model, err := c.generativeModel(ctx)
	if err != nil {
		return err
	}
	if _, err := model.CountTokens(ctx, genai.Text("ping")); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classifyError(err)
	}
	return nil
}

func (c *Client) generativeModel(ctx context.Context) (*genai.GenerativeModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		client, err := genai.NewClient(ctx, option.WithAPIKey(c.cfg.APIKey))
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "tagging", "gemini", "create client", err)
		}
		c.client = client
	}
	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(generationTemp)
	model.ResponseMIMEType = "application/json"
	return model, nil
}

func (c *Client) mediaBlob(req metadata.Request) (genai.Blob, bool) {
	if req.MediaPath == "" || req.MimeType == "" {
		return genai.Blob{}, false
	}
	data, err := os.ReadFile(req.MediaPath)
	if err != nil || len(data) == 0 || len(data) > maxInlineMediaBytes {
		return genai.Blob{}, false
	}
	return genai.Blob{MIMEType: req.MimeType, Data: data}, true
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
		if builder.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(builder.String())
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	return resp.Candidates[0].FinishReason.String()
}

// classifyError maps a Gemini API failure onto the services error
// taxonomy. The API reports an invalid key as HTTP 400, so that body
// is inspected alongside the usual credential statuses.
func classifyError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		detail := fmt.Sprintf("http %d: %s", apiErr.Code, strings.TrimSpace(apiErr.Message))
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			retryAfter, _ := parseRetryAfterHeader(apiErr.Header)
			return fmt.Errorf("gemini: %s: %w", detail, &services.RateLimitError{RetryAfter: retryAfter})
		case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden:
			return services.Wrap(services.ErrPermanent, "tagging", "gemini", detail, nil)
		case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "API key"):
			return services.Wrap(services.ErrPermanent, "tagging", "gemini", detail, nil)
		default:
			return services.Wrap(services.ErrTransient, "tagging", "gemini", detail, nil)
		}
	}
	return services.Wrap(services.ErrTransient, "tagging", "gemini", "request failed", err)
}

func parseRetryAfterHeader(header http.Header) (time.Duration, bool) {
	value := strings.TrimSpace(header.Get("Retry-After"))
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

var _ metadata.Provider = (*Client)(nil)
