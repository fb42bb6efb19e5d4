package preflight

import (
	"fmt"
	"os"
	"strings"
	"time"

	"woodway/internal/config"
	"woodway/internal/metadata"
	"woodway/internal/queue"
)

// CheckMetadataFromConfig summarizes the tagging setup without touching
// the network. Status UIs use it when a live API roundtrip is not worth
// the wait.
func CheckMetadataFromConfig(cfg *config.Config) Result {
	const name = "Metadata"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	variant, err := metadata.ParseVariant(cfg.Metadata.Variant)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if variant == metadata.VariantAlgorithmic {
		return Result{Name: name, Passed: true, Detail: "Algorithmic templates (no API)"}
	}
	llm := cfg.MetadataLLM()
	if llm.APIKey == "" {
		return Result{Name: name, Optional: true,
			Detail: "Generative variant without API key; bundles will degrade to algorithmic"}
	}
	return Result{Name: name, Passed: true, Optional: true,
		Detail: fmt.Sprintf("Generative via %s", llm.Provider)}
}

// CheckNotificationsFromConfig reports whether batch events will be
// published anywhere.
func CheckNotificationsFromConfig(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Optional: true, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return Result{Name: name, Passed: true, Optional: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: "ntfy topic configured"}
}

// IntakeProbe reports the current intake directory snapshot.
type IntakeProbe struct {
	Path       string
	Exists     bool
	MediaFiles int
	Newest     time.Time
}

// ProbeIntake counts supported media files waiting in the intake
// directory. Subdirectories are not descended, matching the
// non-recursive input expansion used by enqueue.
func ProbeIntake(dir string) IntakeProbe {
	probe := IntakeProbe{Path: strings.TrimSpace(dir)}
	if probe.Path == "" {
		return probe
	}
	entries, err := os.ReadDir(probe.Path)
	if err != nil {
		return probe
	}
	probe.Exists = true
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if queue.KindForPath(entry.Name()) == "" {
			continue
		}
		probe.MediaFiles++
		if info, err := entry.Info(); err == nil && info.ModTime().After(probe.Newest) {
			probe.Newest = info.ModTime()
		}
	}
	return probe
}

// Detail renders a display-friendly summary for status UIs.
func (p IntakeProbe) Detail() string {
	if p.Path == "" {
		return "No intake directory configured"
	}
	if !p.Exists {
		return fmt.Sprintf("%s (missing)", p.Path)
	}
	switch p.MediaFiles {
	case 0:
		return fmt.Sprintf("%s (empty)", p.Path)
	case 1:
		return fmt.Sprintf("1 media file waiting in %s", p.Path)
	default:
		return fmt.Sprintf("%d media files waiting in %s", p.MediaFiles, p.Path)
	}
}
