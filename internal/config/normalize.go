package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeNaming()
	if err := c.normalizeMetadata(); err != nil {
		return err
	}
	c.normalizeWorkers()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.IntakeDir, err = expandPath(c.Paths.IntakeDir); err != nil {
		return fmt.Errorf("paths.intake_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DBPath) != "" {
		if c.Paths.DBPath, err = expandPath(c.Paths.DBPath); err != nil {
			return fmt.Errorf("paths.db_path: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.TaxonomyPath) != "" {
		if c.Paths.TaxonomyPath, err = expandPath(c.Paths.TaxonomyPath); err != nil {
			return fmt.Errorf("paths.taxonomy_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeConversion() {
	c.Conversion.ImageFormat = strings.ToLower(strings.TrimSpace(c.Conversion.ImageFormat))
	if c.Conversion.ImageFormat == "jpeg" {
		c.Conversion.ImageFormat = "jpg"
	}
	if c.Conversion.ImageFormat == "" {
		c.Conversion.ImageFormat = defaultImageFormat
	}
	if c.Conversion.ImageQuality <= 0 {
		c.Conversion.ImageQuality = defaultImageQuality
	}
	c.Conversion.ImagePreset = strings.ToLower(strings.TrimSpace(c.Conversion.ImagePreset))
	if c.Conversion.ImagePreset == "" {
		c.Conversion.ImagePreset = defaultImagePreset
	}
	c.Conversion.VideoFormat = strings.ToLower(strings.TrimSpace(c.Conversion.VideoFormat))
	if c.Conversion.VideoFormat == "" {
		c.Conversion.VideoFormat = defaultVideoFormat
	}
	if c.Conversion.VideoCRF <= 0 {
		if c.Conversion.VideoFormat == "webm" {
			c.Conversion.VideoCRF = defaultVideoCRFWebM
		} else {
			c.Conversion.VideoCRF = defaultVideoCRF
		}
	}
	c.Conversion.VideoPreset = strings.ToLower(strings.TrimSpace(c.Conversion.VideoPreset))
	if c.Conversion.VideoPreset == "" {
		c.Conversion.VideoPreset = defaultVideoPreset
	}
	c.Conversion.ScalePreset = strings.ToLower(strings.TrimSpace(c.Conversion.ScalePreset))
	if c.Conversion.ScalePreset == "" {
		c.Conversion.ScalePreset = defaultScalePreset
	}
	c.Conversion.AudioBitrate = strings.ToLower(strings.TrimSpace(c.Conversion.AudioBitrate))
	if c.Conversion.AudioBitrate == "" {
		c.Conversion.AudioBitrate = defaultAudioBitrate
	}
	c.Conversion.FFmpegBinary = strings.TrimSpace(c.Conversion.FFmpegBinary)
	c.Conversion.FFprobeBinary = strings.TrimSpace(c.Conversion.FFprobeBinary)
}

func (c *Config) normalizeNaming() {
	c.Naming.Subdir = strings.Trim(strings.TrimSpace(c.Naming.Subdir), "/")
	c.Naming.NumberingTemplate = strings.TrimSpace(c.Naming.NumberingTemplate)
	if c.Naming.NumberingTemplate == "" {
		c.Naming.NumberingTemplate = defaultNumberingTemplate
	}
	if c.Naming.NumberingWidth <= 0 {
		c.Naming.NumberingWidth = defaultNumberingWidth
	}
	if c.Naming.MaxCollisionSuffix <= 0 {
		c.Naming.MaxCollisionSuffix = defaultMaxCollisionSuffix
	}
	if c.Naming.MaxBaseLength <= 0 {
		c.Naming.MaxBaseLength = defaultMaxBaseLength
	}
}

func (c *Config) normalizeMetadata() error {
	c.Metadata.Variant = strings.ToLower(strings.TrimSpace(c.Metadata.Variant))
	if c.Metadata.Variant == "" {
		c.Metadata.Variant = defaultMetadataVariant
	}
	c.Metadata.Provider = strings.ToLower(strings.TrimSpace(c.Metadata.Provider))
	if c.Metadata.Provider == "" {
		c.Metadata.Provider = defaultMetadataProvider
	}
	c.Metadata.APIKey = strings.TrimSpace(c.Metadata.APIKey)
	if c.Metadata.APIKey == "" {
		switch c.Metadata.Provider {
		case "openrouter":
			if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
				c.Metadata.APIKey = strings.TrimSpace(value)
			}
		default:
			if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
				c.Metadata.APIKey = strings.TrimSpace(value)
			} else if value, ok := os.LookupEnv("GOOGLE_API_KEY"); ok {
				c.Metadata.APIKey = strings.TrimSpace(value)
			}
		}
	}
	c.Metadata.Model = strings.TrimSpace(c.Metadata.Model)
	if c.Metadata.Model == "" {
		if c.Metadata.Provider == "openrouter" {
			c.Metadata.Model = defaultOpenRouterModel
		} else {
			c.Metadata.Model = defaultGeminiModel
		}
	}
	c.Metadata.BaseURL = strings.TrimSpace(c.Metadata.BaseURL)
	if c.Metadata.BaseURL == "" && c.Metadata.Provider == "openrouter" {
		c.Metadata.BaseURL = defaultOpenRouterBaseURL
	}
	c.Metadata.Referer = strings.TrimSpace(c.Metadata.Referer)
	if c.Metadata.Referer == "" {
		c.Metadata.Referer = defaultMetadataReferer
	}
	c.Metadata.Title = strings.TrimSpace(c.Metadata.Title)
	if c.Metadata.Title == "" {
		c.Metadata.Title = defaultMetadataTitle
	}
	c.Metadata.Brand = strings.TrimSpace(c.Metadata.Brand)
	if c.Metadata.Brand == "" {
		c.Metadata.Brand = defaultMetadataBrand
	}
	if c.Metadata.TimeoutSeconds <= 0 {
		c.Metadata.TimeoutSeconds = defaultMetadataTimeout
	}
	if c.Metadata.RetryMaxAttempts <= 0 {
		c.Metadata.RetryMaxAttempts = defaultRetryMaxAttempts
	}
	if c.Metadata.RetryBackoffSeconds <= 0 {
		c.Metadata.RetryBackoffSeconds = defaultRetryBackoffSeconds
	}
	if c.Metadata.RateLimitCooldownSeconds <= 0 {
		c.Metadata.RateLimitCooldownSeconds = defaultRateLimitCooldownSec
	}
	return nil
}

func (c *Config) normalizeWorkers() {
	if c.Workers.Count <= 0 {
		c.Workers.Count = defaultWorkerCount()
	}
	if c.Workers.ShutdownGraceSeconds <= 0 {
		c.Workers.ShutdownGraceSeconds = defaultShutdownGraceSeconds
	}
	if c.Workers.HeartbeatInterval <= 0 {
		c.Workers.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Workers.HeartbeatTimeout <= 0 {
		c.Workers.HeartbeatTimeout = defaultHeartbeatTimeout
	}
}

func (c *Config) normalizeExport() {
	if len(c.Export.Formats) == 0 {
		c.Export.Formats = []string{"csv", "json"}
		return
	}
	formats := make([]string, 0, len(c.Export.Formats))
	seen := make(map[string]struct{}, len(c.Export.Formats))
	for _, format := range c.Export.Formats {
		normalized := strings.ToLower(strings.TrimSpace(format))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		formats = append(formats, normalized)
	}
	if len(formats) == 0 {
		formats = []string{"csv", "json"}
	}
	c.Export.Formats = formats
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
