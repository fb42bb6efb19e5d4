package workflow

import (
	"fmt"
	"log/slog"

	"woodway/internal/queue"
	"woodway/internal/stage"
)

// StageSet carries the four stage handlers in pipeline order.
type StageSet struct {
	Converter stage.Handler
	Organizer stage.Handler
	Tagger    stage.Handler
	Finalizer stage.Handler
}

// pipelineStage binds a handler to the status lane it services.
type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

type loggerAware interface {
	SetLogger(*slog.Logger)
}

// ConfigureStages registers the stage table. Handlers are shared across
// workers, so each receives the manager's logger exactly once here; per-item
// fields reach stage logs through the context.
func (m *Manager) ConfigureStages(set StageSet) error {
	table := []pipelineStage{
		{name: "convert", handler: set.Converter, startStatus: queue.StatusPending, processingStatus: queue.StatusConverting, doneStatus: queue.StatusConverted},
		{name: "name", handler: set.Organizer, startStatus: queue.StatusConverted, processingStatus: queue.StatusNaming, doneStatus: queue.StatusNamed},
		{name: "tag", handler: set.Tagger, startStatus: queue.StatusNamed, processingStatus: queue.StatusTagging, doneStatus: queue.StatusTagged},
		{name: "finalize", handler: set.Finalizer, startStatus: queue.StatusTagged, processingStatus: queue.StatusFinalizing, doneStatus: queue.StatusCompleted},
	}
	for _, entry := range table {
		if entry.handler == nil {
			return fmt.Errorf("stage %s has no handler", entry.name)
		}
		if aware, ok := entry.handler.(loggerAware); ok {
			aware.SetLogger(m.logger)
		}
	}
	m.stages = table
	return nil
}
