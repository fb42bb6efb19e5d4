package api

import (
	"encoding/json"
	"slices"
	"time"

	"woodway/internal/deps"
	"woodway/internal/naming"
	"woodway/internal/queue"
	"woodway/internal/stage"
	"woodway/internal/workflow"
)

// FromQueueItem converts a queue record to its API representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}

	dto := QueueItem{
		ID:               item.ID,
		BatchID:          item.BatchID,
		Ordinal:          item.Ordinal,
		OriginalFilename: item.OriginalFilename(),
		SourcePath:       item.SourcePath,
		MediaKind:        string(item.MediaKind),
		Status:           string(item.Status),
		StageKey:         item.Status.StageKey(),
		Progress: QueueProgress{
			Stage:   item.ProgressStage,
			Percent: item.ProgressPercent,
			Message: item.ProgressMessage,
		},
		OutputFile:      item.OutputPath,
		PosterFile:      item.PosterPath,
		MetadataVariant: item.MetadataVariant,
		Degraded:        item.Degraded,
		DegradedReason:  item.DegradedReason,
		NeedsReview:     item.NeedsReview,
		ReviewReason:    item.ReviewReason,
		ErrorMessage:    item.ErrorMessage,
		ErrorKind:       item.ErrorKind,
	}
	if plan, err := naming.ResultFromJSON(item.NamingJSON); err == nil && !plan.IsZero() {
		dto.PlannedName = plan.Final
	}
	if !item.CreatedAt.IsZero() {
		dto.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if raw := item.AttributesJSON; raw != "" {
		dto.Selection = json.RawMessage(raw)
	}
	if raw := item.BundleJSON; raw != "" {
		dto.Tags = json.RawMessage(raw)
	}
	return dto
}

// FromQueueItems converts a slice of queue records into API DTOs.
func FromQueueItems(items []*queue.Item) []QueueItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromBatch converts a batch record plus its status counts.
func FromBatch(batch *queue.Batch, counts map[queue.Status]int) BatchSummary {
	if batch == nil {
		return BatchSummary{}
	}
	summary := BatchSummary{
		ID:        batch.ID,
		Variant:   batch.Variant,
		Numbering: batch.NumberingEnabled,
		CreatedAt: FormatTime(batch.CreatedAt),
	}
	if batch.StartedAt != nil {
		summary.StartedAt = FormatTime(*batch.StartedAt)
	}
	if batch.FinishedAt != nil {
		summary.FinishedAt = FormatTime(*batch.FinishedAt)
	}
	if len(counts) > 0 {
		summary.Counts = MergeQueueStats(counts)
	}
	return summary
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	wf := WorkflowStatus{
		Running:     summary.Running,
		QueueStats:  MergeQueueStats(summary.QueueStats),
		StageHealth: StageHealthSlice(summary.StageHealth),
	}
	if summary.LastError != "" {
		wf.LastError = summary.LastError
	}
	if summary.LastItem != nil {
		last := FromQueueItem(summary.LastItem)
		wf.LastItem = &last
	}
	return wf
}

// MergeQueueStats produces a string-keyed representation of queue stats.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// StageHealthSlice converts a stage health map into a deterministic slice.
func StageHealthSlice(health map[string]stage.Health) []StageHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]StageHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// FromDependencyStatuses converts external tool checks to API DTOs.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		})
	}
	return out
}

// FromDatabaseHealth condenses store diagnostics for display.
func FromDatabaseHealth(health queue.DatabaseHealth) DatabaseStatus {
	return DatabaseStatus{
		Path:       health.DBPath,
		Exists:     health.DatabaseExists,
		Readable:   health.DatabaseReadable,
		Integrity:  health.IntegrityCheck,
		TotalItems: health.TotalItems,
		Error:      health.Error,
	}
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
