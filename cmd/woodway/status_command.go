package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"woodway/internal/api"
	"woodway/internal/config"
	"woodway/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline, dependency, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			status, err := api.GatherStatus(cmd.Context(), api.StatusRequest{Config: cfg})
			if err != nil {
				return err
			}

			directories := directoryResults(cfg)
			services := []preflight.Result{
				preflight.CheckMetadataFromConfig(cfg),
				preflight.CheckNotificationsFromConfig(cfg),
			}
			intake := preflight.ProbeIntake(cfg.Paths.IntakeDir)

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"pipeline":    status,
					"directories": buildCheckViews(directories),
					"services":    buildCheckViews(services),
					"intake":      buildIntakeView(intake),
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printSectionHeader(out, "Dependencies")
			for _, dep := range status.Dependencies {
				fmt.Fprintln(out, dependencyStatusLine(dep, colorize))
			}
			fmt.Fprintln(out)

			printSectionHeader(out, "Directories")
			fmt.Fprintln(out, intakeStatusLine(intake, colorize))
			for _, result := range directories {
				fmt.Fprintln(out, preflightStatusLine(result, colorize))
			}
			fmt.Fprintln(out)

			printSectionHeader(out, "Services")
			for _, result := range services {
				fmt.Fprintln(out, preflightStatusLine(result, colorize))
			}
			fmt.Fprintln(out)

			printSectionHeader(out, "Queue")
			fmt.Fprintln(out, databaseStatusLine(status.Database, colorize))
			rows := buildQueueStatusRows(status.QueueStats)
			if len(rows) == 0 {
				fmt.Fprintln(out, "Queue is empty")
			} else {
				fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
			}
			if status.LatestBatch != nil {
				printLatestBatch(out, status.LatestBatch)
			}
			return nil
		},
	}
}

func directoryResults(cfg *config.Config) []preflight.Result {
	return []preflight.Result{
		preflight.CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		preflight.CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
}

type statusCheckView struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional"`
	Detail   string `json:"detail,omitempty"`
}

func buildCheckViews(results []preflight.Result) []statusCheckView {
	views := make([]statusCheckView, 0, len(results))
	for _, result := range results {
		views = append(views, statusCheckView{
			Name:     result.Name,
			Passed:   result.Passed,
			Optional: result.Optional,
			Detail:   result.Detail,
		})
	}
	return views
}

type intakeView struct {
	Path       string `json:"path,omitempty"`
	Exists     bool   `json:"exists"`
	MediaFiles int    `json:"mediaFiles"`
	Newest     string `json:"newest,omitempty"`
}

func buildIntakeView(probe preflight.IntakeProbe) intakeView {
	view := intakeView{
		Path:       probe.Path,
		Exists:     probe.Exists,
		MediaFiles: probe.MediaFiles,
	}
	if !probe.Newest.IsZero() {
		view.Newest = probe.Newest.UTC().Format(time.RFC3339)
	}
	return view
}

func dependencyStatusLine(dep api.DependencyStatus, colorize bool) string {
	if dep.Available {
		message := "Ready"
		if dep.Command != "" {
			message = fmt.Sprintf("Ready (command: %s)", dep.Command)
		}
		return renderStatusLine(dep.Name, statusOK, message, colorize)
	}
	kind := statusError
	if dep.Optional {
		kind = statusWarn
	}
	message := dep.Detail
	if message == "" {
		message = "Not found"
	}
	return renderStatusLine(dep.Name, kind, message, colorize)
}

func preflightStatusLine(result preflight.Result, colorize bool) string {
	kind := statusError
	switch {
	case result.Passed:
		kind = statusOK
	case result.Optional:
		kind = statusWarn
	}
	return renderStatusLine(result.Name, kind, result.Detail, colorize)
}

func intakeStatusLine(probe preflight.IntakeProbe, colorize bool) string {
	const label = "Intake directory"
	switch {
	case probe.Path == "":
		return renderStatusLine(label, statusInfo, probe.Detail(), colorize)
	case !probe.Exists:
		return renderStatusLine(label, statusWarn, probe.Detail(), colorize)
	default:
		return renderStatusLine(label, statusOK, probe.Detail(), colorize)
	}
}

func databaseStatusLine(db api.DatabaseStatus, colorize bool) string {
	const label = "Database"
	if db.Error != "" {
		return renderStatusLine(label, statusError, fmt.Sprintf("%s (%s)", db.Path, db.Error), colorize)
	}
	if !db.Exists {
		return renderStatusLine(label, statusInfo, fmt.Sprintf("%s (not created yet)", db.Path), colorize)
	}
	if !db.Readable || !db.Integrity {
		return renderStatusLine(label, statusError, fmt.Sprintf("%s (integrity check failed)", db.Path), colorize)
	}
	return renderStatusLine(label, statusOK, fmt.Sprintf("%s (%d items)", db.Path, db.TotalItems), colorize)
}

func printLatestBatch(out io.Writer, batch *api.BatchSummary) {
	variant := batch.Variant
	if variant == "" {
		variant = "-"
	}
	fmt.Fprintf(out, "\nLatest batch: %s (variant %s, numbering %s)\n",
		shortBatchID(batch.ID), variant, onOff(batch.Numbering))
	if batch.CreatedAt != "" {
		fmt.Fprintf(out, "  Created:  %s\n", formatDisplayTime(batch.CreatedAt))
	}
	if batch.FinishedAt != "" {
		fmt.Fprintf(out, "  Finished: %s\n", formatDisplayTime(batch.FinishedAt))
	}
	if len(batch.Counts) > 0 {
		for _, row := range buildQueueStatusRows(batch.Counts) {
			fmt.Fprintf(out, "  %-12s %s\n", row[0]+":", row[1])
		}
	}
}
