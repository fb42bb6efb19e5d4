// Package converting hosts the workflow stage that turns intake media
// into web-ready formats.
package converting

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/media/convert"
	"woodway/internal/media/ffprobe"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/stage"
)

// persisted progress updates are throttled to this interval.
const progressPersistInterval = 2 * time.Second

// Converter renders queue items into their target format inside the
// item's staging directory. The naming stage later installs the staged
// output under its final name.
type Converter struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	runner *convert.Runner
}

// NewConverter constructs the conversion handler.
func NewConverter(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Converter {
	runner := convert.NewRunner(cfg.FFmpegBinary())
	return NewConverterWithRunner(cfg, store, logger, runner)
}

// NewConverterWithRunner allows injecting a custom runner (used for tests).
func NewConverterWithRunner(cfg *config.Config, store *queue.Store, logger *slog.Logger, runner *convert.Runner) *Converter {
	conv := &Converter{store: store, cfg: cfg, runner: runner}
	conv.SetLogger(logger)
	return conv
}

// SetLogger updates the converter's logging destination while preserving component labeling.
func (c *Converter) SetLogger(logger *slog.Logger) {
	c.logger = logging.NewComponentLogger(logger, "converter")
}

// Prepare primes queue progress fields before executing the stage.
func (c *Converter) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	item.InitProgress("Converting", "Probing source media")
	logger.Debug("starting conversion preparation")
	return nil
}

// Execute converts the item's source file into the configured target
// format, recording probed source details and the staged output path.
func (c *Converter) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	stageStart := time.Now()

	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(services.ErrValidation, "converting", "validate inputs",
			"Queue item has no source path", nil)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrValidation, "converting", "validate inputs",
			fmt.Sprintf("Source file %s is not readable", source), err)
	}

	info, err := c.probeSource(ctx, item, logger)
	if err != nil {
		return err
	}
	if raw, err := info.ToJSON(); err == nil {
		item.SourceInfoJSON = raw
	}

	stagingRoot := item.StagingRoot(c.cfg.Paths.StagingDir)
	convertedDir := filepath.Join(stagingRoot, "converted")
	if err := resetDir(convertedDir); err != nil {
		return services.Wrap(services.ErrConfiguration, "converting", "ensure staging dir",
			"Failed to prepare staging directory; set staging_dir to a writable path", err)
	}

	target, err := c.convertMedia(ctx, item, info, convertedDir, logger)
	if err != nil {
		return err
	}
	item.StagedPath = target

	if item.MediaKind == queue.KindVideo && c.cfg.Conversion.GeneratePoster {
		posterPath, err := c.extractPoster(ctx, item, info, convertedDir, logger)
		if err != nil {
			return err
		}
		item.PosterPath = posterPath
	}

	item.SetProgressComplete("Converting", "Conversion complete")
	logger.Info("conversion finished",
		logging.String("staged_path", target),
		logging.Int64("source_bytes", info.SizeBytes),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

// probeSource inspects the source with ffprobe plus EXIF headers for
// images. Probe failures are fatal for videos, which need duration and
// stream data; images fall back to unscaled conversion.
func (c *Converter) probeSource(ctx context.Context, item *queue.Item, logger *slog.Logger) (convert.SourceInfo, error) {
	probe, err := inspectSource(ctx, c.cfg.FFprobeBinary(), item.SourcePath)
	if err != nil {
		if item.MediaKind == queue.KindVideo {
			return convert.SourceInfo{}, services.Wrap(services.ErrExternalTool, "converting", "probe source",
				"ffprobe could not inspect the video; verify the file is a valid media container", err)
		}
		logger.Warn("source probe failed, converting without scaling", logging.Error(err))
		probe = ffprobe.Result{}
	}

	var ex convert.EXIFInfo
	if item.MediaKind == queue.KindImage {
		if ex, err = convert.ProbeEXIF(item.SourcePath); err != nil {
			logger.Debug("no EXIF metadata", logging.Error(err))
		}
	}
	if size, err := os.Stat(item.SourcePath); err == nil {
		probe.Format.Size = fmt.Sprintf("%d", size.Size())
	}
	return convert.BuildSourceInfo(probe, ex), nil
}

func (c *Converter) convertMedia(ctx context.Context, item *queue.Item, info convert.SourceInfo, convertedDir string, logger *slog.Logger) (string, error) {
	var (
		args   []string
		target string
		err    error
	)
	switch item.MediaKind {
	case queue.KindImage:
		target = filepath.Join(convertedDir, stemOf(item.SourcePath)+"."+c.cfg.Conversion.ImageFormat)
		args, err = convert.BuildImageArgs(item.SourcePath, target, info.Width, info.Height, convert.ImageOptions{
			Format:  c.cfg.Conversion.ImageFormat,
			Quality: c.cfg.Conversion.ImageQuality,
			Preset:  c.cfg.Conversion.ScalePreset,
		})
	case queue.KindVideo:
		target = filepath.Join(convertedDir, stemOf(item.SourcePath)+"."+c.cfg.Conversion.VideoFormat)
		args, err = convert.BuildVideoArgs(item.SourcePath, target, info.Width, info.Height, convert.VideoOptions{
			Format:       c.cfg.Conversion.VideoFormat,
			CRF:          c.cfg.Conversion.VideoCRF,
			SpeedPreset:  c.cfg.Conversion.VideoPreset,
			ScalePreset:  c.cfg.Conversion.ScalePreset,
			AudioBitrate: c.cfg.Conversion.AudioBitrate,
			HasAudio:     info.HasAudio,
		})
	default:
		return "", services.Wrap(services.ErrValidation, "converting", "select target",
			fmt.Sprintf("Unsupported media kind %q", item.MediaKind), nil)
	}
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "converting", "build arguments",
			"Conversion settings are invalid; check the [conversion] config section", err)
	}

	duration := time.Duration(info.DurationSeconds * float64(time.Second))
	job := convert.Job{
		Args:       args,
		OutputPath: target,
		Duration:   duration,
		Progress:   c.progressCallback(ctx, item),
	}
	logger.Info("launching ffmpeg",
		logging.String("target", target),
		logging.String("format", formatFor(item.MediaKind, c.cfg)),
	)
	if err := c.runner.Run(ctx, job); err != nil {
		if ctx.Err() != nil {
			return "", services.Wrap(services.ErrCancelled, "converting", "convert media",
				"Conversion cancelled", err)
		}
		return "", services.Wrap(services.ErrConversion, "converting", "convert media",
			"ffmpeg failed to convert the source file", err)
	}
	return target, nil
}

func (c *Converter) extractPoster(ctx context.Context, item *queue.Item, info convert.SourceInfo, convertedDir string, logger *slog.Logger) (string, error) {
	duration := time.Duration(info.DurationSeconds * float64(time.Second))
	offset := convert.ClampPosterOffset(convert.DefaultPosterOffset, duration)
	bounds, err := convert.ImageBounds(c.cfg.Conversion.ScalePreset)
	if err != nil {
		bounds = nil
	}
	posterPath := filepath.Join(convertedDir, stemOf(item.SourcePath)+"-poster.webp")
	args := convert.BuildPosterArgs(item.SourcePath, posterPath, offset, bounds)
	logger.Info("extracting poster frame",
		logging.String("poster", posterPath),
		logging.Duration("offset", offset),
	)
	if err := c.runner.Run(ctx, convert.Job{Args: args, OutputPath: posterPath}); err != nil {
		if ctx.Err() != nil {
			return "", services.Wrap(services.ErrCancelled, "converting", "extract poster",
				"Poster extraction cancelled", err)
		}
		return "", services.Wrap(services.ErrConversion, "converting", "extract poster",
			"ffmpeg failed to extract a poster frame", err)
	}
	return posterPath, nil
}

// progressCallback persists ffmpeg progress at most every
// progressPersistInterval so long conversions stay observable without
// hammering the store.
func (c *Converter) progressCallback(ctx context.Context, item *queue.Item) func(convert.ProgressUpdate) {
	if c.store == nil {
		return nil
	}
	var lastPersisted time.Time
	return func(update convert.ProgressUpdate) {
		percent := update.Percent
		if percent < 0 {
			return
		}
		message := fmt.Sprintf("Converting %.1f%%", percent)
		if update.Speed > 0 {
			message = fmt.Sprintf("%s (@ %.1fx)", message, update.Speed)
		}
		item.SetProgress("Converting", message, percent)
		now := time.Now()
		if percent < 100 && now.Sub(lastPersisted) < progressPersistInterval {
			return
		}
		lastPersisted = now
		if err := c.store.UpdateProgress(ctx, item); err != nil {
			c.logger.Warn("failed to persist conversion progress", logging.Error(err))
		}
	}
}

// HealthCheck verifies the conversion prerequisites.
func (c *Converter) HealthCheck(ctx context.Context) stage.Health {
	const name = "converter"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(c.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if c.runner == nil {
		return stage.Unhealthy(name, "ffmpeg runner unavailable")
	}
	if _, err := exec.LookPath(c.runner.Binary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg binary %q not found", c.runner.Binary()))
	}
	return stage.Healthy(name)
}

func stemOf(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "converted"
	}
	return stem
}

func formatFor(kind queue.MediaKind, cfg *config.Config) string {
	if kind == queue.KindVideo {
		return cfg.Conversion.VideoFormat
	}
	return cfg.Conversion.ImageFormat
}

// resetDir clears leftovers from a previous attempt and recreates the
// directory.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
