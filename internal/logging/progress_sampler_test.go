package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 5},
		{"default bucket size for negative", -1, 5},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNilReceiver(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "Converting", "frame=120") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset() // should not panic
}

func TestProgressSamplerStageChange(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, "Converting", "starting") {
		t.Error("first stage should log")
	}
	if s.ShouldLog(0, "Converting", "still starting") {
		t.Error("same stage and percent should not log again")
	}
	if !s.ShouldLog(0, "Generating poster", "starting") {
		t.Error("different stage should log")
	}
	if s.lastStage != "Generating poster" {
		t.Errorf("lastStage = %q, want %q", s.lastStage, "Generating poster")
	}
}

func TestProgressSamplerPercentBuckets(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, "Converting", "") {
		t.Error("0%% should log")
	}
	if s.ShouldLog(3, "Converting", "") {
		t.Error("3%% should not log (same bucket)")
	}
	if !s.ShouldLog(5, "Converting", "") {
		t.Error("5%% should log (new bucket)")
	}
	if s.ShouldLog(7, "Converting", "") {
		t.Error("7%% should not log (same bucket)")
	}
	if !s.ShouldLog(10, "Converting", "") {
		t.Error("10%% should log (new bucket)")
	}
}

func TestProgressSamplerCapsAtHundred(t *testing.T) {
	s := NewProgressSampler(5)

	s.ShouldLog(95, "Converting", "")
	if !s.ShouldLog(100, "Converting", "") {
		t.Error("100%% should log")
	}
	if s.ShouldLog(105, "Converting", "") {
		t.Error("105%% should not log again (same as 100%% bucket)")
	}
}

func TestProgressSamplerBucketResetsOnStageChange(t *testing.T) {
	s := NewProgressSampler(5)

	s.ShouldLog(50, "Converting", "")
	s.ShouldLog(0, "Generating poster", "")

	if !s.ShouldLog(10, "Generating poster", "") {
		t.Error("10%% should log after stage change reset bucket")
	}
}

func TestProgressSamplerIgnoresMessage(t *testing.T) {
	s := NewProgressSampler(5)

	s.ShouldLog(10, "Converting", "frame=100")
	if s.ShouldLog(10, "Converting", "frame=101 speed=4.2x") {
		t.Error("different message should not trigger logging")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "Converting", "")

	s.Reset()

	if s.lastStage != "" {
		t.Errorf("lastStage = %q, want empty after reset", s.lastStage)
	}
	if s.lastBucket != -1 {
		t.Errorf("lastBucket = %d, want -1 after reset", s.lastBucket)
	}
	if !s.ShouldLog(50, "Converting", "") {
		t.Error("should log after reset")
	}
}
