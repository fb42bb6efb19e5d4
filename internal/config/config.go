package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	IntakeDir    string `toml:"intake_dir"`
	OutputDir    string `toml:"output_dir"`
	StagingDir   string `toml:"staging_dir"`
	LogDir       string `toml:"log_dir"`
	DBPath       string `toml:"db_path"`
	TaxonomyPath string `toml:"taxonomy_path"`
}

// Conversion contains configuration for media format conversion.
type Conversion struct {
	ImageFormat    string `toml:"image_format"`
	ImageQuality   int    `toml:"image_quality"`
	ImagePreset    string `toml:"image_preset"`
	VideoFormat    string `toml:"video_format"`
	VideoCRF       int    `toml:"video_crf"`
	VideoPreset    string `toml:"video_preset"`
	ScalePreset    string `toml:"scale_preset"`
	AudioBitrate   string `toml:"audio_bitrate"`
	GeneratePoster bool   `toml:"generate_poster"`
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
}

// Naming contains configuration for SEO filename generation.
type Naming struct {
	Subdir             string `toml:"subdir"`
	NumberingEnabled   bool   `toml:"numbering_enabled"`
	NumberingTemplate  string `toml:"numbering_template"`
	NumberingWidth     int    `toml:"numbering_width"`
	MaxCollisionSuffix int    `toml:"max_collision_suffix"`
	MaxBaseLength      int    `toml:"max_base_length"`
}

// Metadata contains configuration for tag bundle generation, including the
// generative provider connection settings.
type Metadata struct {
	Variant                  string `toml:"variant"`
	Provider                 string `toml:"provider"`
	APIKey                   string `toml:"api_key"`
	Model                    string `toml:"model"`
	BaseURL                  string `toml:"base_url"`
	Referer                  string `toml:"referer"`
	Title                    string `toml:"title"`
	Brand                    string `toml:"brand"`
	TimeoutSeconds           int    `toml:"timeout_seconds"`
	RetryMaxAttempts         int    `toml:"retry_max_attempts"`
	RetryBackoffSeconds      int    `toml:"retry_backoff_seconds"`
	RateLimitCooldownSeconds int    `toml:"rate_limit_cooldown_seconds"`
}

// Workers contains configuration for batch processing concurrency.
type Workers struct {
	Count                int `toml:"count"`
	ShutdownGraceSeconds int `toml:"shutdown_grace_seconds"`
	HeartbeatInterval    int `toml:"heartbeat_interval"`
	HeartbeatTimeout     int `toml:"heartbeat_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Batch          bool   `toml:"batch"`
	ItemFailures   bool   `toml:"item_failures"`
	Errors         bool   `toml:"errors"`
}

// Export contains configuration for manifest export.
type Export struct {
	Formats                []string `toml:"formats"`
	IncludeWordPressFields bool     `toml:"include_wordpress_fields"`
}

// Config encapsulates all configuration values for Woodway.
//
// Configuration sections by subsystem:
//   - Paths: intake/output/staging directories, database and taxonomy files
//   - Conversion: target formats, quality, scale presets, ffmpeg binaries
//   - Naming: SEO filename numbering and collision limits
//   - Metadata: tag bundle variant and generative provider connection
//   - Workers: concurrency, shutdown grace, heartbeat timing
//   - Logging: log format, level, and retention
//   - Notifications: ntfy push notification settings
//   - Export: manifest export formats
type Config struct {
	Paths         Paths         `toml:"paths"`
	Conversion    Conversion    `toml:"conversion"`
	Naming        Naming        `toml:"naming"`
	Metadata      Metadata      `toml:"metadata"`
	Workers       Workers       `toml:"workers"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
	Export        Export        `toml:"export"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/woodway/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/woodway/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("woodway.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
// IntakeDir is created on a best-effort basis so watch mode can start before
// the camera upload share is mounted.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.IntakeDir) != "" {
		_ = os.MkdirAll(c.Paths.IntakeDir, 0o755)
	}
	return nil
}

// DatabasePath returns the queue database location.
func (c *Config) DatabasePath() string {
	if strings.TrimSpace(c.Paths.DBPath) != "" {
		return c.Paths.DBPath
	}
	return filepath.Join(c.Paths.LogDir, "woodway.db")
}

// NamingDir returns the directory final renamed files land in. When
// naming.subdir is set it nests under the output directory.
func (c *Config) NamingDir() string {
	if strings.TrimSpace(c.Naming.Subdir) != "" {
		return filepath.Join(c.Paths.OutputDir, c.Naming.Subdir)
	}
	return c.Paths.OutputDir
}

// FFmpegBinary returns the ffmpeg executable used for conversion.
func (c *Config) FFmpegBinary() string {
	if strings.TrimSpace(c.Conversion.FFmpegBinary) != "" {
		return c.Conversion.FFmpegBinary
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if strings.TrimSpace(c.Conversion.FFprobeBinary) != "" {
		return c.Conversion.FFprobeBinary
	}
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the generative provider connection settings.
type LLMConfig struct {
	Provider       string
	APIKey         string
	Model          string
	BaseURL        string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// MetadataLLM returns the generative provider connection settings.
func (c *Config) MetadataLLM() LLMConfig {
	return LLMConfig{
		Provider:       strings.TrimSpace(c.Metadata.Provider),
		APIKey:         strings.TrimSpace(c.Metadata.APIKey),
		Model:          strings.TrimSpace(c.Metadata.Model),
		BaseURL:        strings.TrimSpace(c.Metadata.BaseURL),
		Referer:        strings.TrimSpace(c.Metadata.Referer),
		Title:          strings.TrimSpace(c.Metadata.Title),
		TimeoutSeconds: c.Metadata.TimeoutSeconds,
	}
}
