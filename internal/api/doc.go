// Package api hosts the CLI-facing workflows and transport DTOs. It
// translates internal queue models into presentation-friendly types and
// bundles the multi-step operations the commands run: enqueue a batch,
// process it through the stage pipeline, export its manifest, reorder
// its items, and report pipeline health.
//
// # Key Types
//
// QueueItem: transport representation of a queue entry with progress,
// planned name, output artifacts, and the three-language tag bundle.
//
// WorkflowStatus: manager running state, queue stats, stage health, and
// last item.
//
// PipelineStatus: aggregated runtime information including external
// tool availability and database health.
//
// # Workflows
//
// Enqueue: validate an attribute selection against the taxonomy, expand
// file and directory inputs, and create a batch with ordered items.
//
// Process: Enqueue plus a full manager run over the four stage handlers.
//
// ExportManifest/ReorderBatch: batch-scoped operations resolving the
// latest batch when no identifier is given.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Internal enums (queue.Status,
// queue.MediaKind) are exposed as lowercase strings. Timestamps use
// RFC3339 with milliseconds. Selections and tag bundles are passed
// through as json.RawMessage to avoid double-encoding.
//
// Workflow functions take a Request struct carrying Config, Logger, and
// an optional Store; when Store is nil the function opens the queue
// database itself and closes it before returning.
package api
