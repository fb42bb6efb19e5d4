package convert

import (
	"fmt"
	"strconv"
	"time"
)

const (
	defaultSpeedPreset  = "medium"
	defaultAudioBitrate = "128k"

	// DefaultPosterOffset is the seek point for poster extraction
	// before duration clamping is applied.
	DefaultPosterOffset = time.Second

	// posterQuality is the libwebp quality for extracted poster frames.
	posterQuality = 85

	maxCRFH264 = 51
	maxCRFVP9  = 63
)

// VideoOptions selects the target container, codec tuning, and size
// for a video conversion.
type VideoOptions struct {
	Format       string // mp4 or webm
	CRF          int
	SpeedPreset  string // libx264 -preset, mp4 only
	ScalePreset  string // bounding box name, see VideoPresetNames
	AudioBitrate string // e.g. 128k
	HasAudio     bool
}

// BuildVideoArgs returns the ffmpeg argument list that transcodes src
// into dst. srcW and srcH are the probed source dimensions; pass
// zeroes when unknown and scaling is skipped. Sources without an audio
// stream get -an so ffmpeg never fails mapping a missing track.
func BuildVideoArgs(src, dst string, srcW, srcH int, opts VideoOptions) ([]string, error) {
	bounds, err := VideoBounds(opts.ScalePreset)
	if err != nil {
		return nil, err
	}

	args := []string{"-y", "-i", guardPath(src)}
	if bounds != nil {
		if w, h, scaled := EvenFitWithin(srcW, srcH, *bounds); scaled {
			args = append(args, "-vf", scaleFilter(w, h))
		}
	}

	speed := opts.SpeedPreset
	if speed == "" {
		speed = defaultSpeedPreset
	}
	bitrate := opts.AudioBitrate
	if bitrate == "" {
		bitrate = defaultAudioBitrate
	}

	switch opts.Format {
	case "mp4":
		args = append(args,
			"-c:v", "libx264",
			"-preset", speed,
			"-crf", strconv.Itoa(clampCRF(opts.CRF, maxCRFH264)),
			"-movflags", "+faststart",
			"-pix_fmt", "yuv420p",
		)
		args = appendAudioArgs(args, "aac", bitrate, opts.HasAudio)
	case "webm":
		args = append(args,
			"-c:v", "libvpx-vp9",
			"-crf", strconv.Itoa(clampCRF(opts.CRF, maxCRFVP9)),
			"-b:v", "0",
			"-deadline", "good",
			"-pix_fmt", "yuv420p",
		)
		args = appendAudioArgs(args, "libopus", bitrate, opts.HasAudio)
	default:
		return nil, fmt.Errorf("unsupported video format %q", opts.Format)
	}
	args = append(args, guardPath(dst))
	return args, nil
}

// BuildPosterArgs returns the ffmpeg argument list that extracts a
// single high-quality frame at offset into dst. A non-nil bounds caps
// the poster size while preserving aspect ratio.
func BuildPosterArgs(src, dst string, offset time.Duration, bounds *Dimensions) []string {
	args := []string{
		"-y",
		"-ss", formatSeconds(offset),
		"-i", guardPath(src),
		"-vframes", "1",
		"-c:v", "libwebp",
		"-q:v", strconv.Itoa(posterQuality),
	}
	if bounds != nil {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", bounds.Width, bounds.Height))
	}
	args = append(args, guardPath(dst))
	return args
}

// ClampPosterOffset keeps the poster seek point inside the middle 90%
// of the video so the frame is neither a fade-in nor the end card.
// Unknown durations leave the offset untouched.
func ClampPosterOffset(offset, duration time.Duration) time.Duration {
	if offset < 0 {
		offset = 0
	}
	if duration <= 0 {
		return offset
	}
	lo := duration * 5 / 100
	hi := duration * 95 / 100
	if offset < lo {
		return lo
	}
	if offset > hi {
		return hi
	}
	return offset
}

func appendAudioArgs(args []string, codec, bitrate string, hasAudio bool) []string {
	if !hasAudio {
		return append(args, "-an")
	}
	return append(args, "-c:a", codec, "-b:a", bitrate)
}

func clampCRF(crf, max int) int {
	if crf < 0 {
		return 0
	}
	if crf > max {
		return max
	}
	return crf
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 2, 64)
}
