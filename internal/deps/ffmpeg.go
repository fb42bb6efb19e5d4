package deps

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
	"time"

	"woodway/internal/config"
)

const versionProbeTimeout = 5 * time.Second

// Requirements returns the external binaries the pipeline needs. Commands are
// resolved from config so ffmpeg_binary/ffprobe_binary overrides are honored.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Converts images and videos to web formats",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Probes media dimensions and duration",
		},
	}
}

// CheckTools reports availability of ffmpeg and ffprobe. Available entries
// carry the tool's version banner in Detail.
func CheckTools(ctx context.Context, cfg *config.Config) []Status {
	statuses := CheckBinaries(Requirements(cfg))
	for i := range statuses {
		if !statuses[i].Available {
			continue
		}
		if version, err := ProbeVersion(ctx, statuses[i].Command); err == nil && version != "" {
			statuses[i].Detail = version
		}
	}
	return statuses
}

// ProbeVersion runs "<binary> -version" and returns the first output line.
func ProbeVersion(ctx context.Context, binary string) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(probeCtx, binary, "-version").Output()
	if err != nil {
		return "", err
	}
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", nil
}
