package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"woodway/internal/config"
	"woodway/internal/metadata"
	"woodway/internal/services"
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout = 60 * time.Second
	generationTemp     = 0.7

	// maxInlineMediaBytes caps the file size attached as a data URL.
	// Larger files fall back to a text-only request.
	maxInlineMediaBytes = 10 << 20
)

// Config captures the runtime settings required to talk to OpenRouter.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// ConfigFromLLM maps the loaded provider settings onto the client config.
func ConfigFromLLM(llm config.LLMConfig) Config {
	return Config{
		APIKey:         llm.APIKey,
		BaseURL:        llm.BaseURL,
		Model:          llm.Model,
		Referer:        llm.Referer,
		Title:          llm.Title,
		TimeoutSeconds: llm.TimeoutSeconds,
	}
}

// Client sends single-shot chat completion requests to OpenRouter. It
// performs no retries of its own; failures are classified with the
// services error markers and the caller decides whether to try again.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an OpenRouter client from the supplied
// configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			Referer:        strings.TrimSpace(cfg.Referer),
			Title:          strings.TrimSpace(cfg.Title),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Name identifies the provider in logs and manifest records.
func (c *Client) Name() string { return "openrouter" }

// Complete sends one completion request and returns the raw model
// output. Images small enough to inline ride along as a data URL so
// multimodal models can describe the actual picture; videos and
// oversized files go prompt-only.
func (c *Client) Complete(ctx context.Context, req metadata.Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, "tagging", "openrouter", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrPermanent, "tagging", "openrouter", "api key required", nil)
	}

	payload := chatCompletionRequest{
		Model:          c.cfg.Model,
		Messages:       []chatMessage{{Role: "user", Content: c.messageContent(prompt, req)}},
		Temperature:    generationTemp,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	completion, body, err := c.send(ctx, payload)
	if err != nil {
		return "", err
	}

	content, finishReason := extractCompletionPayload(completion)
	if content == "" {
		detail := fmt.Sprintf("empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
			finishReason, extractCompletionRefusal(completion), summarizeSnippet(string(body)))
		return "", services.Wrap(services.ErrTransient, "tagging", "openrouter", detail, nil)
	}
	return content, nil
}

// HealthCheck issues a fast ping to verify the API key and model are
// usable. Preflight calls it before a batch claims any items.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrPermanent, "preflight", "openrouter", "api key required", nil)
	}
	payload := chatCompletionRequest{
		Model:          c.cfg.Model,
		Messages:       []chatMessage{{Role: "user", Content: "Respond with {\"ok\":true}"}},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	completion, _, err := c.send(ctx, payload)
	if err != nil {
		return err
	}
	if content, _ := extractCompletionPayload(completion); content == "" {
		return services.Wrap(services.ErrTransient, "preflight", "openrouter", "empty health response", nil)
	}
	return nil
}

// messageContent returns either a plain string or a multimodal part
// list, depending on whether an image can be attached.
func (c *Client) messageContent(prompt string, req metadata.Request) any {
	if req.MediaPath == "" || !strings.HasPrefix(req.MimeType, "image/") {
		return prompt
	}
	data, err := os.ReadFile(req.MediaPath)
	if err != nil || len(data) == 0 || len(data) > maxInlineMediaBytes {
		return prompt
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return []contentPart{
		{Type: "text", Text: prompt},
		{Type: "image_url", ImageURL: &imageURL{URL: "data:" + req.MimeType + ";base64," + encoded}},
	}
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
		// Some providers return the streaming schema (delta) even when
		// stream=false, so tolerate it as a fallback.
		Delta chatCompletionMessage `json:"delta"`
		// Legacy "text" field (completion-style responses).
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatCompletionMessage struct {
	Content string `json:"content"`
	Refusal string `json:"refusal"`
}

func (c *Client) send(ctx context.Context, payload chatCompletionRequest) (chatCompletionResponse, []byte, error) {
	var completion chatCompletionResponse
	encoded, err := json.Marshal(payload)
	if err != nil {
		return completion, nil, services.Wrap(services.ErrValidation, "tagging", "openrouter", "encode body", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return completion, nil, services.Wrap(services.ErrValidation, "tagging", "openrouter", "build request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.cfg.Referer)
		httpReq.Header.Set("Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		httpReq.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return completion, nil, ctx.Err()
		}
		return completion, nil, services.Wrap(services.ErrTransient, "tagging", "openrouter",
			fmt.Sprintf("http error (timeout=%s)", c.timeoutDuration()), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return completion, nil, services.Wrap(services.ErrTransient, "tagging", "openrouter", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return completion, body, classifyStatus(resp.StatusCode, body, resp.Header.Get("Retry-After"))
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return completion, body, services.Wrap(services.ErrTransient, "tagging", "openrouter", "decode response", err)
	}
	if completion.Error != nil {
		return completion, body, services.Wrap(services.ErrTransient, "tagging", "openrouter",
			"api error: "+strings.TrimSpace(completion.Error.Message), nil)
	}
	return completion, body, nil
}

// classifyStatus maps an HTTP failure onto the services error taxonomy:
// 429 carries the Retry-After hint, credential failures are permanent,
// everything else is worth another attempt.
func classifyStatus(status int, body []byte, retryAfterHeader string) error {
	detail := fmt.Sprintf("http %d: %s", status, summarizeSnippet(string(body)))
	switch {
	case status == http.StatusTooManyRequests:
		retryAfter, _ := parseRetryAfter(retryAfterHeader)
		return fmt.Errorf("openrouter: %s: %w", detail, &services.RateLimitError{RetryAfter: retryAfter})
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return services.Wrap(services.ErrPermanent, "tagging", "openrouter", detail, nil)
	default:
		return services.Wrap(services.ErrTransient, "tagging", "openrouter", detail, nil)
	}
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func extractCompletionPayload(completion chatCompletionResponse) (string, string) {
	var finishReason string
	for _, choice := range completion.Choices {
		if finishReason == "" {
			finishReason = strings.TrimSpace(choice.FinishReason)
		}
		if content := firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text); content != "" {
			return content, finishReason
		}
	}
	return "", finishReason
}

func extractCompletionRefusal(completion chatCompletionResponse) string {
	for _, choice := range completion.Choices {
		if refusal := firstNonEmpty(choice.Message.Refusal, choice.Delta.Refusal); refusal != "" {
			return refusal
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
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

func summarizeSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

var _ metadata.Provider = (*Client)(nil)
