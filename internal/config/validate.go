package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var audioBitrateRE = regexp.MustCompile(`^[0-9]+k$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateConversion() error {
	switch c.Conversion.ImageFormat {
	case "webp", "jpg", "png":
	default:
		return fmt.Errorf("conversion.image_format must be webp, jpg, or png (got %q)", c.Conversion.ImageFormat)
	}
	if c.Conversion.ImageQuality < 1 || c.Conversion.ImageQuality > 100 {
		return errors.New("conversion.image_quality must be between 1 and 100")
	}
	switch c.Conversion.ImagePreset {
	case "seo_optimal", "high_quality", "social_media", "thumbnail", "original":
	default:
		return fmt.Errorf("conversion.image_preset must be seo_optimal, high_quality, social_media, thumbnail, or original (got %q)", c.Conversion.ImagePreset)
	}
	switch c.Conversion.VideoFormat {
	case "mp4", "webm":
	default:
		return fmt.Errorf("conversion.video_format must be mp4 or webm (got %q)", c.Conversion.VideoFormat)
	}
	if c.Conversion.VideoCRF < 1 || c.Conversion.VideoCRF > 63 {
		return errors.New("conversion.video_crf must be between 1 and 63")
	}
	switch c.Conversion.VideoPreset {
	case "ultrafast", "superfast", "veryfast", "faster", "fast", "medium", "slow", "slower", "veryslow":
	default:
		return fmt.Errorf("conversion.video_preset must be a known ffmpeg preset (got %q)", c.Conversion.VideoPreset)
	}
	switch c.Conversion.ScalePreset {
	case "seo_optimal", "high_quality", "fast_loading", "social_media", "original":
	default:
		return fmt.Errorf("conversion.scale_preset must be seo_optimal, high_quality, fast_loading, social_media, or original (got %q)", c.Conversion.ScalePreset)
	}
	if !audioBitrateRE.MatchString(c.Conversion.AudioBitrate) {
		return fmt.Errorf("conversion.audio_bitrate must look like 128k (got %q)", c.Conversion.AudioBitrate)
	}
	return nil
}

func (c *Config) validateNaming() error {
	template := c.Naming.NumberingTemplate
	if !strings.Contains(template, "{base}") || !strings.Contains(template, "{nn}") {
		return fmt.Errorf("naming.numbering_template must contain {base} and {nn} (got %q)", template)
	}
	if c.Naming.NumberingWidth < 1 || c.Naming.NumberingWidth > 4 {
		return errors.New("naming.numbering_width must be between 1 and 4")
	}
	if c.Naming.MaxCollisionSuffix < 2 || c.Naming.MaxCollisionSuffix > 99 {
		return errors.New("naming.max_collision_suffix must be between 2 and 99")
	}
	if c.Naming.MaxBaseLength < 16 {
		return errors.New("naming.max_base_length must be at least 16")
	}
	if strings.Contains(c.Naming.Subdir, "..") {
		return errors.New("naming.subdir must not traverse upward")
	}
	return nil
}

func (c *Config) validateMetadata() error {
	switch c.Metadata.Variant {
	case "algorithmic", "generative":
	default:
		return fmt.Errorf("metadata.variant must be algorithmic or generative (got %q)", c.Metadata.Variant)
	}
	switch c.Metadata.Provider {
	case "gemini", "openrouter":
	default:
		return fmt.Errorf("metadata.provider must be gemini or openrouter (got %q)", c.Metadata.Provider)
	}
	if c.Metadata.Provider == "openrouter" && strings.TrimSpace(c.Metadata.BaseURL) == "" {
		return errors.New("metadata.base_url must be set when metadata.provider is openrouter")
	}
	if err := ensurePositiveMap(map[string]int{
		"metadata.timeout_seconds":             c.Metadata.TimeoutSeconds,
		"metadata.retry_max_attempts":          c.Metadata.RetryMaxAttempts,
		"metadata.retry_backoff_seconds":       c.Metadata.RetryBackoffSeconds,
		"metadata.rate_limit_cooldown_seconds": c.Metadata.RateLimitCooldownSeconds,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count < 1 {
		return errors.New("workers.count must be at least 1")
	}
	if c.Workers.Count > 64 {
		return errors.New("workers.count must be at most 64")
	}
	if c.Workers.ShutdownGraceSeconds <= 0 {
		return errors.New("workers.shutdown_grace_seconds must be positive")
	}
	if c.Workers.HeartbeatInterval <= 0 {
		return errors.New("workers.heartbeat_interval must be positive")
	}
	if c.Workers.HeartbeatTimeout <= 0 {
		return errors.New("workers.heartbeat_timeout must be positive")
	}
	if c.Workers.HeartbeatTimeout <= c.Workers.HeartbeatInterval {
		return errors.New("workers.heartbeat_timeout must be greater than workers.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateExport() error {
	for _, format := range c.Export.Formats {
		switch format {
		case "csv", "json", "parquet":
		default:
			return fmt.Errorf("export.formats entries must be csv, json, or parquet (got %q)", format)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
