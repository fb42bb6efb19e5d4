package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"woodway/internal/api"
	"woodway/internal/queue"
	"woodway/internal/services"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the batch queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueResetCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

// queueActions adapts the store to the per-item retry workflow.
type queueActions struct {
	store   *queue.Store
	service *api.QueueService
}

func newQueueActions(store *queue.Store) *queueActions {
	return &queueActions{store: store, service: api.NewQueueService(store)}
}

func (a *queueActions) Describe(ctx context.Context, id int64) (*api.QueueItem, error) {
	return a.service.Describe(ctx, id)
}

func (a *queueActions) Retry(ctx context.Context, ids []int64) (int64, error) {
	return a.store.RetryFailed(ctx, ids...)
}

func parseStatusFilters(values []string) ([]queue.Status, error) {
	var statuses []queue.Status
	for _, value := range values {
		status, ok := queue.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", services.ErrValidation, value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func parseItemIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid item id %q", services.ErrValidation, arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				stats, err := api.NewQueueService(store).Stats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if stats == nil {
						stats = map[string]int{}
					}
					return writeJSON(cmd, api.QueueStatsResponse{Counts: stats})
				}
				rows := buildQueueStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var listBatch string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatusFilters(listStatuses)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				items, err := api.NewQueueService(store).List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if batch := strings.TrimSpace(listBatch); batch != "" {
					filtered := items[:0]
					for _, item := range items {
						if item.BatchID == batch || strings.HasPrefix(item.BatchID, batch) {
							filtered = append(filtered, item)
						}
					}
					items = filtered
				}

				if ctx.JSONMode() {
					sorted := api.SortQueueItemsByBatchOrder(items)
					if sorted == nil {
						sorted = []api.QueueItem{}
					}
					return writeJSON(cmd, api.QueueListResponse{Items: sorted})
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable(
					queueListHeaders,
					buildQueueListRows(api.SortQueueItemsNewestFirst(items)),
					queueListAligns,
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	cmd.Flags().StringVar(&listBatch, "batch", "", "Filter by batch id (prefix match)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show one queue item in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				item, err := api.NewQueueService(store).Describe(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("%w: item %d", services.ErrNotFound, ids[0])
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, api.QueueItemResponse{Item: *item})
				}
				printQueueItemDetail(cmd, item)
				return nil
			})
		},
	}
}

func printQueueItemDetail(cmd *cobra.Command, item *api.QueueItem) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Item %d (batch %s, ordinal %d)\n", item.ID, shortBatchID(item.BatchID), item.Ordinal)
	fmt.Fprintf(out, "  File:     %s\n", item.OriginalFilename)
	fmt.Fprintf(out, "  Source:   %s\n", item.SourcePath)
	fmt.Fprintf(out, "  Kind:     %s\n", item.MediaKind)
	fmt.Fprintf(out, "  Status:   %s\n", formatStatusLabel(item.Status))
	if item.Progress.Stage != "" {
		fmt.Fprintf(out, "  Progress: %s (%.0f%%)\n", item.Progress.Stage, item.Progress.Percent)
	}
	if item.PlannedName != "" {
		fmt.Fprintf(out, "  Planned:  %s\n", item.PlannedName)
	}
	if item.OutputFile != "" {
		fmt.Fprintf(out, "  Output:   %s\n", item.OutputFile)
	}
	if item.PosterFile != "" {
		fmt.Fprintf(out, "  Poster:   %s\n", item.PosterFile)
	}
	if item.MetadataVariant != "" {
		fmt.Fprintf(out, "  Variant:  %s\n", item.MetadataVariant)
	}
	if item.Degraded {
		fmt.Fprintf(out, "  Degraded: yes (%s)\n", item.DegradedReason)
	}
	if item.NeedsReview {
		fmt.Fprintf(out, "  Review:   yes (%s)\n", item.ReviewReason)
	}
	if item.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:    %s (%s)\n", item.ErrorMessage, item.ErrorKind)
	}
	fmt.Fprintf(out, "  Created:  %s\n", formatDisplayTime(item.CreatedAt))
	fmt.Fprintf(out, "  Updated:  %s\n", formatDisplayTime(item.UpdatedAt))
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return fmt.Errorf("%w: specify only one of --completed or --failed", services.ErrValidation)
			}
			scope := api.ClearScopeAll
			label := "queue"
			switch {
			case clearCompleted:
				scope = api.ClearScopeCompleted
				label = "completed"
			case clearFailed:
				scope = api.ClearScopeFailed
				label = "failed"
			}
			return ctx.withStore(func(store *queue.Store) error {
				removed, err := api.ClearQueue(cmd.Context(), store, scope)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": removed, "scope": string(scope)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s items\n", removed, label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed items")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed items")
	return cmd
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "retry [item-id...]",
		Short: "Retry failed queue items",
		Long: `Retry failed queue items.

Without arguments every failed item returns to pending and the next run
picks it up. With item ids only those items are reset. --now additionally
drives each named item through its remaining stages immediately.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			if runNow && len(ids) == 0 {
				return fmt.Errorf("%w: --now requires item ids", services.ErrValidation)
			}
			if runNow {
				return runRetryNow(ctx, cmd, ids)
			}

			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					updated, err := store.RetryFailed(cmd.Context())
					if err != nil {
						return err
					}
					if ctx.JSONMode() {
						return writeJSON(cmd, map[string]any{"updatedCount": updated})
					}
					fmt.Fprintf(out, "Retried %d failed items\n", updated)
					return nil
				}

				result, err := api.RetryFailedItemsByID(cmd.Context(), newQueueActions(store), ids)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, result)
				}
				for _, item := range result.Items {
					switch item.Outcome {
					case api.RetryItemUpdated:
						fmt.Fprintf(out, "Item %d reset for retry\n", item.ID)
					case api.RetryItemNotFound:
						fmt.Fprintf(out, "Item %d not found\n", item.ID)
					default:
						fmt.Fprintf(out, "Item %d is not in failed state\n", item.ID)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&runNow, "now", false, "Reprocess the named items immediately")
	return cmd
}

// runRetryNow reruns each named item through its remaining stages with a
// fresh run logger, independent of its batch.
func runRetryNow(ctx *commandContext, cmd *cobra.Command, ids []int64) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, _, err := newRunLogger(cfg)
	if err != nil {
		return err
	}

	return ctx.withStore(func(store *queue.Store) error {
		out := cmd.OutOrStdout()
		for _, id := range ids {
			result, err := api.ReprocessItem(cmd.Context(), api.ReprocessRequest{
				Config: cfg,
				Logger: logger,
				Store:  store,
				ItemID: id,
			})
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					fmt.Fprintf(out, "Item %d not found\n", id)
					continue
				}
				return err
			}
			if ctx.JSONMode() {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintf(out, "Item %d reprocessed (%s)\n", id, formatStatusLabel(result.Item.Status))
		}
		return nil
	})
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Return in-flight items to their stage start",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				updated, err := store.ResetStuckProcessing(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"updated": updated})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d items\n", updated)
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>...",
		Short: "Remove queue items by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				var removed int64
				for _, id := range ids {
					ok, err := store.Remove(cmd.Context(), id)
					if err != nil {
						return err
					}
					if ok {
						removed++
						if !ctx.JSONMode() {
							fmt.Fprintf(out, "Removed item %d\n", id)
						}
					} else if !ctx.JSONMode() {
						fmt.Fprintf(out, "Item %d not found\n", id)
					}
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": removed})
				}
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check queue database health (schema, integrity, counts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				summary, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				health, err := store.CheckHealth(cmd.Context())
				if err != nil && health.Error == "" {
					health.Error = err.Error()
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{
						"summary":  summary,
						"database": api.FromDatabaseHealth(health),
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total: %d\nPending: %d\nProcessing: %d\nCompleted: %d\nFailed: %d\nSkipped: %d\n",
					summary.Total,
					summary.Pending,
					summary.Processing,
					summary.Completed,
					summary.Failed,
					summary.Skipped,
				)
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Database path: %s\n", health.DBPath)
				fmt.Fprintf(out, "Database exists: %s\n", yesNo(health.DatabaseExists))
				fmt.Fprintf(out, "Readable: %s\n", yesNo(health.DatabaseReadable))
				fmt.Fprintf(out, "Schema version: %s\n", health.SchemaVersion)
				if len(health.MissingColumns) > 0 {
					missing := append([]string(nil), health.MissingColumns...)
					sort.Strings(missing)
					fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(missing, ", "))
				} else {
					fmt.Fprintln(out, "Missing columns: none")
				}
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(health.IntegrityCheck))
				fmt.Fprintf(out, "Total items: %d\n", health.TotalItems)
				if health.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", health.Error)
				}
				return nil
			})
		},
	}
}
