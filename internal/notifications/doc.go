// Package notifications pushes pipeline events to an ntfy topic.
//
// NewService builds the implementation from config: with ntfy_topic set it
// posts batch_started, batch_completed, item_failed and error events over
// HTTP, without one it returns a no-op. Per-event toggles under
// [notifications] filter what goes out. Delivery is best effort; the workflow
// manager logs a failed push and keeps going.
package notifications
