package convert

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"woodway/internal/media/ffprobe"
)

// SourceInfo summarizes what inspection learned about a source file
// before conversion. It is stored as JSON on the queue item and echoed
// into the manifest.
type SourceInfo struct {
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	FrameRate       float64 `json:"frame_rate,omitempty"`
	HasAudio        bool    `json:"has_audio,omitempty"`
	SizeBytes       int64   `json:"size_bytes,omitempty"`
	CapturedAt      string  `json:"captured_at,omitempty"`
	Orientation     int     `json:"orientation,omitempty"`
	CameraMake      string  `json:"camera_make,omitempty"`
	CameraModel     string  `json:"camera_model,omitempty"`
}

// BuildSourceInfo combines an ffprobe result with EXIF headers.
func BuildSourceInfo(probe ffprobe.Result, ex EXIFInfo) SourceInfo {
	info := SourceInfo{}
	info.Width, info.Height = probe.Dimensions()
	if d := probe.Duration(); d > 0 {
		info.DurationSeconds = d.Seconds()
	}
	if rate := probe.FrameRate(); rate > 0 {
		info.FrameRate = rate
	}
	info.HasAudio = probe.HasAudio()
	if size := probe.SizeBytes(); size > 0 {
		info.SizeBytes = size
	}
	if !ex.CapturedAt.IsZero() {
		info.CapturedAt = ex.CapturedAt.UTC().Format(time.RFC3339)
	}
	info.Orientation = ex.Orientation
	info.CameraMake = ex.CameraMake
	info.CameraModel = ex.CameraModel
	return info
}

// ToJSON encodes the info for storage on a queue item.
func (i SourceInfo) ToJSON() (string, error) {
	data, err := json.Marshal(i)
	if err != nil {
		return "", fmt.Errorf("encode source info: %w", err)
	}
	return string(data), nil
}

// SourceInfoFromJSON decodes the info stored on a queue item. An empty
// payload yields a zero value.
func SourceInfoFromJSON(payload string) (SourceInfo, error) {
	var info SourceInfo
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return info, nil
	}
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return SourceInfo{}, fmt.Errorf("decode source info: %w", err)
	}
	return info, nil
}
