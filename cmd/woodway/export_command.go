package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"woodway/internal/api"
	"woodway/internal/queue"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var formats []string
	var outDir string

	cmd := &cobra.Command{
		Use:   "export [batch-id]",
		Short: "Export a batch manifest to CSV, JSON, or Parquet",
		Long: `Export a batch manifest to CSV, JSON, or Parquet.

Without a batch id the most recent batch is exported. Formats and the
target directory default to the [export] config section.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			batchID := ""
			if len(args) == 1 {
				batchID = args[0]
			}
			return ctx.withStore(func(store *queue.Store) error {
				result, err := api.ExportManifest(cmd.Context(), api.ExportRequest{
					Config:  cfg,
					Store:   store,
					BatchID: batchID,
					Dir:     outDir,
					Formats: formats,
				})
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Exported batch %s (%d files)\n", shortBatchID(result.BatchID), len(result.Paths))
				for _, path := range result.Paths {
					fmt.Fprintf(out, "  %s\n", path)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "Manifest formats to write (csv, json, parquet)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write manifests into")
	return cmd
}
