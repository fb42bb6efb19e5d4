package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue entry in a transport-friendly format.
type QueueItem struct {
	ID               int64           `json:"id"`
	BatchID          string          `json:"batchId"`
	Ordinal          int             `json:"ordinal"`
	OriginalFilename string          `json:"originalFilename"`
	SourcePath       string          `json:"sourcePath"`
	MediaKind        string          `json:"mediaKind"`
	Status           string          `json:"status"`
	StageKey         string          `json:"stageKey,omitempty"`
	Progress         QueueProgress   `json:"progress"`
	PlannedName      string          `json:"plannedName,omitempty"`
	OutputFile       string          `json:"outputFile,omitempty"`
	PosterFile       string          `json:"posterFile,omitempty"`
	MetadataVariant  string          `json:"metadataVariant,omitempty"`
	Degraded         bool            `json:"degraded"`
	DegradedReason   string          `json:"degradedReason,omitempty"`
	NeedsReview      bool            `json:"needsReview"`
	ReviewReason     string          `json:"reviewReason,omitempty"`
	ErrorMessage     string          `json:"errorMessage,omitempty"`
	ErrorKind        string          `json:"errorKind,omitempty"`
	CreatedAt        string          `json:"createdAt,omitempty"`
	UpdatedAt        string          `json:"updatedAt,omitempty"`
	Selection        json.RawMessage `json:"selection,omitempty"`
	Tags             json.RawMessage `json:"tags,omitempty"`
}

// QueueProgress captures stage progress information for a queue entry.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// BatchSummary describes one batch with aggregate status counts.
type BatchSummary struct {
	ID         string         `json:"id"`
	Variant    string         `json:"variant"`
	Numbering  bool           `json:"numbering"`
	CreatedAt  string         `json:"createdAt,omitempty"`
	StartedAt  string         `json:"startedAt,omitempty"`
	FinishedAt string         `json:"finishedAt,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastItem    *QueueItem     `json:"lastItem,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DatabaseStatus condenses queue database diagnostics for display.
type DatabaseStatus struct {
	Path       string `json:"path"`
	Exists     bool   `json:"exists"`
	Readable   bool   `json:"readable"`
	Integrity  bool   `json:"integrity"`
	TotalItems int    `json:"totalItems"`
	Error      string `json:"error,omitempty"`
}

// PipelineStatus aggregates runtime information for status output.
type PipelineStatus struct {
	QueueDBPath  string             `json:"queueDbPath"`
	Database     DatabaseStatus     `json:"database"`
	Dependencies []DependencyStatus `json:"dependencies"`
	QueueStats   map[string]int     `json:"queueStats"`
	LatestBatch  *BatchSummary      `json:"latestBatch,omitempty"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// QueueListResponse wraps a collection of queue items for API responses.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single queue item.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}
