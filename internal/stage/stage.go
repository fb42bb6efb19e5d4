// Package stage defines the contract between the workflow manager and the
// pipeline stages that carry a catalog item from pending to completed.
package stage

import (
	"context"

	"woodway/internal/queue"
)

// Handler is implemented by each pipeline stage (convert, organize, tag,
// finalize). Prepare only mutates the item record; the manager persists the
// item after Prepare returns. Execute performs the stage's real work and may
// run for minutes under an external tool, so it must honor ctx cancellation.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}

// Health reports whether a stage can currently take work. Detail carries the
// reason when it cannot and is surfaced by the status command.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy marks a stage ready.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy marks a stage not ready with a reason for the status view.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
