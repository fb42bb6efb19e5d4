package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"woodway/internal/logging"
	"woodway/internal/queue"
	"woodway/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var listOnly bool
	var cleanAll bool
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean up staging directories",
		Long: `Clean up staging directories.

By default only orphaned directories are removed: batch directories whose
items have all reached a terminal state. --max-age removes directories
older than the given age instead, and --all removes everything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stagingDir := strings.TrimSpace(cfg.Paths.StagingDir)
			if stagingDir == "" {
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": 0, "errors": []any{}})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Staging directory not configured")
				return nil
			}

			if listOnly {
				return printStagingList(ctx, cmd, stagingDir)
			}

			logger, _, err := newRunLogger(cfg)
			if err != nil {
				return err
			}

			switch {
			case cleanAll:
				result := staging.CleanStale(cmd.Context(), stagingDir, 0, logger)
				return printCleanResult(ctx, cmd, result, "staging")
			case maxAge > 0:
				result := staging.CleanStale(cmd.Context(), stagingDir, maxAge, logger)
				return printCleanResult(ctx, cmd, result, "stale")
			default:
				return ctx.withStore(func(store *queue.Store) error {
					active, err := activeBatchIDs(cmd, store)
					if err != nil {
						return err
					}
					result := staging.CleanOrphaned(cmd.Context(), stagingDir, active, logger)
					return printCleanResult(ctx, cmd, result, "orphaned")
				})
			}
		},
	}

	cmd.Flags().BoolVar(&listOnly, "list", false, "List staging directories instead of cleaning")
	cmd.Flags().BoolVar(&cleanAll, "all", false, "Remove all staging directories (including active)")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Remove directories older than this age (for example 72h)")
	return cmd
}

// activeBatchIDs collects the batches that still have unfinished items.
// Their staging directories must survive an orphan sweep.
func activeBatchIDs(cmd *cobra.Command, store *queue.Store) (map[string]struct{}, error) {
	items, err := store.List(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	active := make(map[string]struct{})
	for _, item := range items {
		if item == nil || queue.IsTerminalStatus(item.Status) {
			continue
		}
		active[item.BatchID] = struct{}{}
	}
	return active, nil
}

func printStagingList(ctx *commandContext, cmd *cobra.Command, stagingDir string) error {
	dirs, err := staging.ListDirectories(stagingDir)
	if err != nil {
		return fmt.Errorf("list staging directories: %w", err)
	}

	if ctx.JSONMode() {
		if dirs == nil {
			dirs = []staging.DirInfo{}
		}
		var totalSize int64
		for _, dir := range dirs {
			totalSize += dir.Size
		}
		return writeJSON(cmd, map[string]any{
			"staging_dir":      stagingDir,
			"directories":      dirs,
			"total_size_bytes": totalSize,
		})
	}

	out := cmd.OutOrStdout()
	if len(dirs) == 0 {
		fmt.Fprintln(out, "No staging directories found")
		return nil
	}

	fmt.Fprintf(out, "Staging directory: %s\n\n", stagingDir)
	var totalSize int64
	rows := make([][]string, 0, len(dirs))
	for _, dir := range dirs {
		age := time.Since(dir.ModTime).Truncate(time.Minute)
		totalSize += dir.Size
		rows = append(rows, []string{shortBatchID(dir.Name), formatAge(age), logging.FormatBytes(dir.Size)})
	}
	table := renderTable(
		[]string{"Batch", "Age", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
	fmt.Fprintln(out, table)
	fmt.Fprintf(out, "Total: %d directories, %s\n", len(dirs), logging.FormatBytes(totalSize))
	return nil
}

func printCleanResult(ctx *commandContext, cmd *cobra.Command, result staging.CleanResult, label string) error {
	if ctx.JSONMode() {
		errs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Error))
		}
		return writeJSON(cmd, map[string]any{
			"removed": len(result.Removed),
			"errors":  errs,
		})
	}

	out := cmd.OutOrStdout()
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintf(out, "No %s directories to clean\n", label)
		return nil
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Removed %d %s directories, %d errors\n", len(result.Removed), label, len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
		}
		return nil
	}
	fmt.Fprintf(out, "Removed %d %s directories\n", len(result.Removed), label)
	return nil
}
