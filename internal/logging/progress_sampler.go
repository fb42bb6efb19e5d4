package logging

import "strings"

// ProgressSampler suppresses repetitive conversion progress logs while
// preserving signal when stages or percentage buckets change.
type ProgressSampler struct {
	bucketSize float64
	lastStage  string
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%) or when the stage changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged. Percent can be
// negative to indicate "unknown"; stage is trimmed before comparison. The
// message parameter is ignored for deduplication because encoder messages
// carry volatile fields like frame counters and ETA.
func (s *ProgressSampler) ShouldLog(percent float64, stage, message string) bool {
	if s == nil {
		return true
	}
	emit := s.noteStage(stage)
	if s.noteBucket(percent) {
		emit = true
	}
	return emit
}

// noteStage records a stage transition. A new stage restarts bucket tracking
// so the first progress line of the stage always logs.
func (s *ProgressSampler) noteStage(stage string) bool {
	stage = strings.TrimSpace(stage)
	if stage == "" || stage == s.lastStage {
		return false
	}
	s.lastStage = stage
	s.lastBucket = -1
	return true
}

func (s *ProgressSampler) noteBucket(percent float64) bool {
	if percent < 0 {
		return false
	}
	if percent > 100 {
		percent = 100
	}
	bucket := int(percent / s.bucketSize)
	if bucket <= s.lastBucket {
		return false
	}
	s.lastBucket = bucket
	return true
}

// Reset clears the sampler state when a new item starts converting.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastStage = ""
	s.lastBucket = -1
}
