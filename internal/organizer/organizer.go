package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"woodway/internal/config"
	"woodway/internal/fileutil"
	"woodway/internal/logging"
	"woodway/internal/naming"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/stage"
)

// duplicate-name fallback stops probing after this many suffixes.
const maxInstallAttempts = 1000

// Organizer moves staged conversion output into the output directory
// under the planned SEO filename.
type Organizer struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewOrganizer constructs the naming stage handler.
func NewOrganizer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Organizer {
	org := &Organizer{store: store, cfg: cfg}
	org.SetLogger(logger)
	return org
}

// SetLogger updates the organizer's logging destination while preserving component labeling.
func (o *Organizer) SetLogger(logger *slog.Logger) {
	o.logger = logging.NewComponentLogger(logger, "organizer")
}

// Prepare primes queue progress fields before executing the stage.
func (o *Organizer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, o.logger)
	item.InitProgress("Naming", "Installing output under final name")
	logger.Debug("starting naming preparation",
		logging.String("staged_path", strings.TrimSpace(item.StagedPath)),
	)
	return nil
}

// Execute installs the staged output (and poster, when present) into
// the output directory under the planned name.
func (o *Organizer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, o.logger)
	stageStart := time.Now()

	staged := strings.TrimSpace(item.StagedPath)
	if staged == "" {
		return services.Wrap(services.ErrValidation, "naming", "validate inputs",
			"No staged file present; run conversion before naming", nil)
	}
	if _, err := os.Stat(staged); err != nil {
		return services.Wrap(services.ErrValidation, "naming", "validate inputs",
			fmt.Sprintf("Staged file %s is missing; rerun conversion", staged), err)
	}
	plan, err := stage.ItemNamingPlan(item)
	if err != nil {
		return err
	}

	outputDir := o.cfg.NamingDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "naming", "ensure output dir",
			"Failed to create output directory; set output_dir to a writable path", err)
	}

	finalPath, renamed, err := o.installFile(staged, outputDir, plan.Final)
	if err != nil {
		return services.Wrap(services.ErrTransient, "naming", "install output",
			"Failed to move converted file into the output directory", err)
	}
	if renamed {
		item.NeedsReview = true
		item.ReviewReason = fmt.Sprintf("planned name %s was taken on disk; installed as %s", plan.Final, filepath.Base(finalPath))
		logger.Warn("planned output name already on disk",
			logging.String("planned", plan.Final),
			logging.String("installed", filepath.Base(finalPath)),
		)
	}
	item.OutputPath = finalPath
	item.StagedPath = ""

	if poster := strings.TrimSpace(item.PosterPath); poster != "" {
		posterName := posterNameFor(plan, finalPath)
		posterPath, posterRenamed, err := o.installFile(poster, outputDir, posterName)
		if err != nil {
			return services.Wrap(services.ErrTransient, "naming", "install poster",
				"Failed to move poster frame into the output directory", err)
		}
		if posterRenamed {
			logger.Warn("poster name already on disk",
				logging.String("installed", filepath.Base(posterPath)),
			)
		}
		item.PosterPath = posterPath
	}

	item.SetProgressComplete("Naming", fmt.Sprintf("Installed as %s", filepath.Base(finalPath)))
	logger.Info("naming finished",
		logging.String("output_path", finalPath),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

// installFile moves src into dir under name. When the target already
// exists, which can only happen if a file appeared there after name
// planning, the file is installed under the first free numbered
// variant instead and the rename is reported.
func (o *Organizer) installFile(src, dir, name string) (string, bool, error) {
	target := filepath.Join(dir, name)
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return target, false, fileutil.MoveFile(src, target)
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for attempt := 2; attempt < maxInstallAttempts; attempt++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, attempt, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, true, fileutil.MoveFile(src, candidate)
		}
	}
	return "", false, fmt.Errorf("exhausted filename slots for %s in %s", name, dir)
}

// posterNameFor keeps the poster next to the file it belongs to even
// when the main output was renamed around an on-disk duplicate.
func posterNameFor(plan naming.Result, finalPath string) string {
	finalBase := filepath.Base(finalPath)
	if finalBase == plan.Final {
		return plan.PosterName()
	}
	ext := filepath.Ext(finalBase)
	return strings.TrimSuffix(finalBase, ext) + "-poster.webp"
}

// HealthCheck verifies the naming prerequisites.
func (o *Organizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "organizer"
	if o.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(o.cfg.Paths.OutputDir) == "" {
		return stage.Unhealthy(name, "output directory not configured")
	}
	return stage.Healthy(name)
}
