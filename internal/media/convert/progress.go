package convert

import (
	"strconv"
	"strings"
	"time"
)

// ProgressUpdate is one snapshot of a running conversion. Percent is
// -1 when the total duration is unknown.
type ProgressUpdate struct {
	Percent float64
	Speed   float64
	OutTime time.Duration
	ETA     time.Duration
}

// progressParser consumes the key=value lines ffmpeg writes with
// -progress pipe:1. Each block ends with a progress= line, which is
// when a snapshot is emitted; out_time_ms values are microseconds
// despite the name.
type progressParser struct {
	total   time.Duration
	current time.Duration
	speed   float64
}

func newProgressParser(total time.Duration) *progressParser {
	return &progressParser{total: total}
}

// Parse feeds one line and returns a snapshot when the line closes a
// progress block.
func (p *progressParser) Parse(line string) (ProgressUpdate, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return ProgressUpdate{}, false
	}
	value = strings.TrimSpace(value)
	switch strings.TrimSpace(key) {
	case "out_time_ms":
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			p.current = time.Duration(us) * time.Microsecond
		}
	case "speed":
		if value == "N/A" {
			break
		}
		raw := strings.TrimSuffix(value, "x")
		if s, err := strconv.ParseFloat(raw, 64); err == nil && s > 0 {
			p.speed = s
		}
	case "progress":
		return p.snapshot(value == "end"), true
	}
	return ProgressUpdate{}, false
}

func (p *progressParser) snapshot(end bool) ProgressUpdate {
	update := ProgressUpdate{Percent: -1, Speed: p.speed, OutTime: p.current}
	if p.total > 0 {
		percent := p.current.Seconds() / p.total.Seconds() * 100
		if percent > 100 {
			percent = 100
		}
		update.Percent = percent
		if remaining := p.total - p.current; remaining > 0 && p.speed > 0 {
			update.ETA = time.Duration(float64(remaining) / p.speed)
		}
	}
	if end {
		if p.total > 0 {
			update.Percent = 100
		}
		update.ETA = 0
	}
	return update
}
