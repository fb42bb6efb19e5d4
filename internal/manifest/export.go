package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/queue"
	"woodway/internal/services"
)

// export file basenames, one per format.
const (
	jsonExportName    = "export.json"
	csvExportName     = "export.csv"
	parquetExportName = "export.parquet"
)

// Exporter writes manifest entries into the configured export formats.
type Exporter struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewExporter constructs an exporter over the queue store.
func NewExporter(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "manifest"),
	}
}

// Export renders the batch manifest into dir using the requested
// formats, defaulting to the configured format list. It returns the
// paths written.
func (e *Exporter) Export(ctx context.Context, batchID, dir string, formats []string) ([]string, error) {
	if len(formats) == 0 {
		formats = e.cfg.Export.Formats
	}
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	if strings.TrimSpace(dir) == "" {
		dir = e.cfg.Paths.OutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "export", "ensure dir",
			"Failed to create export directory", err)
	}

	entries, err := e.store.ManifestForBatch(ctx, batchID)
	if err != nil {
		return nil, services.Wrap(nil, "export", "load manifest",
			"Failed to load manifest entries", err)
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "export", "load manifest",
			fmt.Sprintf("Batch %s has no manifest entries; run processing first", batchID), nil)
	}

	brand := e.cfg.Metadata.Brand
	includeWP := e.cfg.Export.IncludeWordPressFields
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, RecordFromEntry(entry, brand, includeWP))
	}

	doc := Document{
		ExportDate: time.Now().Format(time.RFC3339),
		Generator:  generatorLabel,
		BatchID:    batchID,
		TotalItems: len(records),
		Settings:   e.settingsEcho(),
		Images:     records,
	}

	var written []string
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case "json":
			path = filepath.Join(dir, jsonExportName)
			err = writeJSONExport(path, doc)
		case "csv":
			path = filepath.Join(dir, csvExportName)
			err = writeCSVExport(path, records)
		case "parquet":
			path = filepath.Join(dir, parquetExportName)
			err = writeParquetExport(path, records)
		}
		if err != nil {
			return written, services.Wrap(nil, "export", "write "+format,
				fmt.Sprintf("Failed to write %s export", format), err)
		}
		e.logger.Info("manifest exported",
			logging.String("format", format),
			logging.String("path", path),
			logging.Int("entries", len(records)),
		)
		written = append(written, path)
	}
	return written, nil
}

// ValidateFormats rejects unknown export format names.
func ValidateFormats(formats []string) error {
	if len(formats) == 0 {
		return services.Wrap(services.ErrValidation, "export", "validate formats",
			"No export formats requested", nil)
	}
	for _, format := range formats {
		switch format {
		case "json", "csv", "parquet":
		default:
			return services.Wrap(services.ErrValidation, "export", "validate formats",
				fmt.Sprintf("Unsupported export format %q (expected json, csv, or parquet)", format), nil)
		}
	}
	return nil
}

// Document is the top-level JSON export payload. The images key keeps
// its name for compatibility with existing import tooling even though
// entries may describe videos.
type Document struct {
	ExportDate string       `json:"export_date"`
	Generator  string       `json:"generator"`
	BatchID    string       `json:"batch_id"`
	TotalItems int          `json:"total_images"`
	Settings   SettingsEcho `json:"settings"`
	Images     []Record     `json:"images"`
}

// SettingsEcho records the conversion settings active at export time so
// downstream consumers can tell how outputs were produced.
type SettingsEcho struct {
	ImageFormat  string `json:"image_format"`
	ImageQuality int    `json:"image_quality"`
	VideoFormat  string `json:"video_format"`
	ScalePreset  string `json:"scale_preset"`
	Variant      string `json:"variant"`
	Brand        string `json:"brand"`
}

func (e *Exporter) settingsEcho() SettingsEcho {
	return SettingsEcho{
		ImageFormat:  e.cfg.Conversion.ImageFormat,
		ImageQuality: e.cfg.Conversion.ImageQuality,
		VideoFormat:  e.cfg.Conversion.VideoFormat,
		ScalePreset:  e.cfg.Conversion.ScalePreset,
		Variant:      e.cfg.Metadata.Variant,
		Brand:        e.cfg.Metadata.Brand,
	}
}
