package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"woodway/internal/config"
)

const userAgent = "Woodway/0.1.0"

// Event identifies a notification-worthy moment in a batch run.
type Event string

const (
	EventBatchStarted   Event = "batch_started"
	EventBatchCompleted Event = "batch_completed"
	EventItemFailed     Event = "item_failed"
	EventError          Event = "error"
	EventTest           Event = "test"
)

// Payload carries event-specific values used to format the message.
type Payload map[string]any

// Service publishes notification events. Implementations must tolerate
// missing payload keys.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		batchEvents:  cfg.Notifications.Batch,
		itemFailures: cfg.Notifications.ItemFailures,
		errors:       cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	batchEvents  bool
	itemFailures bool
	errors       bool
}

// Publish formats the event and posts it to the configured ntfy topic.
// Events disabled in configuration are dropped silently.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.enabled(event) {
		return nil
	}
	msg, ok := formatMessage(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) enabled(event Event) bool {
	switch event {
	case EventBatchStarted, EventBatchCompleted:
		return n.batchEvents
	case EventItemFailed:
		return n.itemFailures
	case EventError:
		return n.errors
	default:
		return true
	}
}

func formatMessage(event Event, payload Payload) (message, bool) {
	switch event {
	case EventBatchStarted:
		return message{
			title: "Woodway - Batch Started",
			body:  fmt.Sprintf("🚀 Processing %d items (batch %s)", payloadInt(payload, "count"), payloadString(payload, "batch_id")),
			tags:  []string{"woodway", "batch", "started"},
		}, true
	case EventBatchCompleted:
		body := fmt.Sprintf(
			"✅ Batch %s done: %d completed, %d failed, %d skipped in %s",
			payloadString(payload, "batch_id"),
			payloadInt(payload, "completed"),
			payloadInt(payload, "failed"),
			payloadInt(payload, "skipped"),
			formatDuration(payloadDuration(payload, "duration")),
		)
		priority := ""
		if payloadInt(payload, "failed") > 0 {
			priority = "high"
		}
		return message{
			title:    "Woodway - Batch Complete",
			body:     body,
			tags:     []string{"woodway", "batch", "completed"},
			priority: priority,
		}, true
	case EventItemFailed:
		return message{
			title:    "Woodway - Item Failed",
			body:     fmt.Sprintf("⚠️ %s: %s", payloadString(payload, "filename"), payloadString(payload, "error")),
			tags:     []string{"woodway", "item", "failed"},
			priority: "high",
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if label := payloadString(payload, "context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		if err, ok := payload["error"].(error); ok && err != nil {
			builder.WriteString(strings.TrimSpace(err.Error()))
		} else if detail := payloadString(payload, "error"); detail != "" {
			builder.WriteString(detail)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "Woodway - Error",
			body:     builder.String(),
			tags:     []string{"woodway", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Woodway - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"woodway", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func payloadDuration(payload Payload, key string) time.Duration {
	if payload == nil {
		return 0
	}
	if v, ok := payload[key].(time.Duration); ok {
		return v
	}
	return 0
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(time.Second).String()
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
