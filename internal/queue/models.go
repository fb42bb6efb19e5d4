package queue

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Status represents the lifecycle of a batch item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConverting Status = "converting"
	StatusConverted  Status = "converted"
	StatusNaming     Status = "naming"
	StatusNamed      Status = "named"
	StatusTagging    Status = "tagging"
	StatusTagged     Status = "tagged"
	StatusFinalizing Status = "finalizing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// CancelReason is the error message set when items are skipped because the
// batch was cancelled before they started.
const CancelReason = "Batch cancelled"

var allStatuses = []Status{
	StatusPending,
	StatusConverting,
	StatusConverted,
	StatusNaming,
	StatusNamed,
	StatusTagging,
	StatusTagged,
	StatusFinalizing,
	StatusCompleted,
	StatusFailed,
	StatusSkipped,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusConverting: {},
	StatusNaming:     {},
	StatusTagging:    {},
	StatusFinalizing: {},
}

type statusTransition struct {
	from Status
	to   Status
}

var stageRollbackTransitions = []statusTransition{
	{from: StatusConverting, to: StatusPending},
	{from: StatusNaming, to: StatusConverted},
	{from: StatusTagging, to: StatusNamed},
	{from: StatusFinalizing, to: StatusTagged},
}

func processingRollbackTransitions() []statusTransition {
	return stageRollbackTransitions
}

// TerminalStatuses lists the states a finished item can occupy.
func TerminalStatuses() []Status {
	return []Status{StatusCompleted, StatusFailed, StatusSkipped}
}

// IsTerminalStatus reports whether a status ends an item's lifecycle.
func IsTerminalStatus(status Status) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// MediaKind distinguishes still images from videos.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}, ".bmp": {}, ".tif": {}, ".tiff": {}, ".gif": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {}, ".m4v": {}, ".wmv": {}, ".flv": {}, ".ogv": {},
}

// KindForPath infers the media kind from a file extension. Unrecognized
// extensions return "" so callers can reject the file up front.
func KindForPath(path string) MediaKind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	return ""
}

// DatabaseHealth captures diagnostic information about the batch database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// HealthSummary describes aggregated item counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
	Skipped    int
}

// Batch groups the items enqueued together and records run options.
type Batch struct {
	ID               string
	Variant          string
	NumberingEnabled bool
	CreatedAt        time.Time
	StartedAt        *time.Time
	FinishedAt       *time.Time
}

// Item represents one media file moving through the pipeline.
type Item struct {
	ID              int64
	BatchID         string
	Ordinal         int
	SourcePath      string
	MediaKind       MediaKind
	SourceInfoJSON  string
	Status          Status
	AttributesJSON  string
	NamingJSON      string
	BundleJSON      string
	MetadataVariant string
	Degraded        bool
	DegradedReason  string
	StagedPath      string
	OutputPath      string
	PosterPath      string
	ErrorMessage    string
	ErrorKind       string
	NeedsReview     bool
	ReviewReason    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	LastHeartbeat   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// OriginalFilename returns the basename of the source file.
func (i Item) OriginalFilename() string {
	return filepath.Base(i.SourcePath)
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// StagingRoot returns the per-item staging directory rooted at base, where
// conversion output lives until the naming stage installs it.
func (i Item) StagingRoot(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	segment := strings.TrimSpace(i.BatchID)
	if segment == "" {
		segment = "batch"
	}
	return filepath.Join(base, segment, fmt.Sprintf("item-%03d", i.Ordinal))
}

// InitProgress seeds progress for a stage about to run, clearing any
// error left over from a previous attempt.
func (i *Item) InitProgress(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = 0
	i.ErrorMessage = ""
	i.ErrorKind = ""
}

// SetProgress updates all three progress fields together.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message and
// taxonomy kind, clearing the heartbeat.
func (i *Item) SetFailed(kind, message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ErrorKind = kind
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}

// SetSkipped marks the item as skipped with the given reason.
func (i *Item) SetSkipped(reason string) {
	i.Status = StatusSkipped
	i.ErrorMessage = reason
	i.ErrorKind = "cancelled"
	i.ProgressPercent = 0
	i.ProgressMessage = reason
	i.LastHeartbeat = nil
	i.ProgressStage = "Skipped"
}

// StageKey returns the normalized stage identifier used in CLI presentation.
func (s Status) StageKey() string {
	switch s {
	case "":
		return ""
	case StatusPending:
		return "planned"
	case StatusCompleted:
		return "final"
	default:
		if _, ok := statusSet[s]; ok {
			return string(s)
		}
		return ""
	}
}
