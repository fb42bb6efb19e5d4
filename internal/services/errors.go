package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"woodway/internal/queue"
)

var (
	ErrExternalTool    = errors.New("external tool error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrTimeout         = errors.New("timeout")
	ErrTransient       = errors.New("transient service failure")
	ErrPermanent       = errors.New("permanent service failure")
	ErrConversion      = errors.New("conversion error")
	ErrNamingExhausted = errors.New("naming collision suffixes exhausted")
	ErrCancelled       = errors.New("cancelled")
	ErrRateLimited     = errors.New("rate limited")
)

// RateLimitError is a transient failure carrying the provider's requested
// wait. Callers honor RetryAfter as a cool-down before the next attempt
// instead of the ordinary backoff schedule.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RetryAfter extracts the provider-requested cool-down from an error
// chain, or zero when the error carries none.
func RetryAfter(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a stage error to the terminal status the workflow
// manager should persist after the stage fails. Cancellation is not a
// failure; the item becomes skipped.
func FailureStatus(err error) queue.Status {
	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return queue.StatusSkipped
	}
	return queue.StatusFailed
}

// Kind names an error's place in the taxonomy. The name feeds manifest
// records and CLI hints; unknown errors report "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrConversion):
		return "conversion"
	case errors.Is(err, ErrNamingExhausted):
		return "naming"
	case errors.Is(err, ErrPermanent):
		return "permanent"
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrRateLimited):
		return "rate limited"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.Is(err, ErrExternalTool):
		return "external"
	case errors.Is(err, ErrNotFound):
		return "not found"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
