package config

import "runtime"

const (
	defaultIntakeDir  = "~/woodway/intake"
	defaultOutputDir  = "~/woodway/output"
	defaultStagingDir = "~/.local/share/woodway/staging"
	defaultLogDir     = "~/.local/share/woodway/logs"

	defaultImageFormat  = "webp"
	defaultImageQuality = 82
	defaultImagePreset  = "seo_optimal"
	defaultVideoFormat  = "mp4"
	defaultVideoCRF     = 23
	defaultVideoCRFWebM = 32
	defaultVideoPreset  = "medium"
	defaultScalePreset  = "seo_optimal"
	defaultAudioBitrate = "128k"

	defaultNumberingTemplate  = "{base}-{nn}"
	defaultNumberingWidth     = 2
	defaultMaxCollisionSuffix = 99
	defaultMaxBaseLength      = 80

	defaultMetadataVariant      = "algorithmic"
	defaultMetadataProvider     = "gemini"
	defaultGeminiModel          = "gemini-2.0-flash"
	defaultOpenRouterModel      = "google/gemini-2.0-flash-001"
	defaultOpenRouterBaseURL    = "https://openrouter.ai/api/v1/chat/completions"
	defaultMetadataReferer      = "https://github.com/wood-way/woodway"
	defaultMetadataTitle        = "Woodway Tagger"
	defaultMetadataBrand        = "WoodWay Expert"
	defaultMetadataTimeout      = 60
	defaultRetryMaxAttempts     = 3
	defaultRetryBackoffSeconds  = 2
	defaultRateLimitCooldownSec = 30

	defaultWorkerCap              = 4
	defaultShutdownGraceSeconds   = 30
	defaultHeartbeatInterval      = 15
	defaultHeartbeatTimeout       = 120
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 60
	defaultNotifyRequestTimeout   = 10
	defaultExportIncludeWordPress = true
)

// defaultWorkerCount ties the pool size to the machine, capped so small
// batches on big hosts do not hammer ffmpeg.
func defaultWorkerCount() int {
	if n := runtime.NumCPU(); n < defaultWorkerCap {
		return n
	}
	return defaultWorkerCap
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IntakeDir:  defaultIntakeDir,
			OutputDir:  defaultOutputDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Conversion: Conversion{
			ImageFormat:    defaultImageFormat,
			ImageQuality:   defaultImageQuality,
			ImagePreset:    defaultImagePreset,
			VideoFormat:    defaultVideoFormat,
			VideoCRF:       defaultVideoCRF,
			VideoPreset:    defaultVideoPreset,
			ScalePreset:    defaultScalePreset,
			AudioBitrate:   defaultAudioBitrate,
			GeneratePoster: true,
		},
		Naming: Naming{
			NumberingTemplate:  defaultNumberingTemplate,
			NumberingWidth:     defaultNumberingWidth,
			MaxCollisionSuffix: defaultMaxCollisionSuffix,
			MaxBaseLength:      defaultMaxBaseLength,
		},
		Metadata: Metadata{
			Variant:                  defaultMetadataVariant,
			Provider:                 defaultMetadataProvider,
			Referer:                  defaultMetadataReferer,
			Title:                    defaultMetadataTitle,
			Brand:                    defaultMetadataBrand,
			TimeoutSeconds:           defaultMetadataTimeout,
			RetryMaxAttempts:         defaultRetryMaxAttempts,
			RetryBackoffSeconds:      defaultRetryBackoffSeconds,
			RateLimitCooldownSeconds: defaultRateLimitCooldownSec,
		},
		Workers: Workers{
			Count:                defaultWorkerCount(),
			ShutdownGraceSeconds: defaultShutdownGraceSeconds,
			HeartbeatInterval:    defaultHeartbeatInterval,
			HeartbeatTimeout:     defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Batch:          true,
			ItemFailures:   true,
			Errors:         true,
		},
		Export: Export{
			Formats:                []string{"csv", "json"},
			IncludeWordPressFields: defaultExportIncludeWordPress,
		},
	}
}
