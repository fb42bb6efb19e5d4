package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"woodway/internal/api"
	"woodway/internal/queue"
)

func newReorderCommand(ctx *commandContext) *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "reorder <item-id>...",
		Short: "Rewrite a batch's item order",
		Long: `Rewrite a batch's item order.

The item ids must list every item of the batch exactly once, in the
desired order. Without --batch the most recent batch is reordered.
Planned names are recomputed from the new order on the next run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				result, err := api.ReorderBatch(cmd.Context(), api.ReorderRequest{
					Config:  cfg,
					Store:   store,
					BatchID: batchID,
					IDs:     ids,
				})
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Batch %s reordered (%d items)\n\n", shortBatchID(result.BatchID), len(result.Items))
				table := renderTable(
					[]string{"Ord", "ID", "File", "Status"},
					buildReorderRows(result.Items),
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Batch id to reorder (defaults to the latest batch)")
	return cmd
}

func buildReorderRows(items []api.QueueItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.Ordinal),
			fmt.Sprintf("%d", item.ID),
			item.OriginalFilename,
			formatStatusLabel(item.Status),
		})
	}
	return rows
}
