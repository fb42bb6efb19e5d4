package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"woodway/internal/api"
	"woodway/internal/queue"
	"woodway/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var sel selectionFlags
	var variant string
	var workers int
	var numbering bool

	cmd := &cobra.Command{
		Use:   "process <file-or-dir>...",
		Short: "Convert, name, tag, and publish a batch of product media",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, logPath, err := newRunLogger(cfg)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			req := api.ProcessRequest{
				Config:    cfg,
				Logger:    logger,
				Inputs:    args,
				Selection: sel.selection(),
				Variant:   variant,
				Workers:   workers,
			}
			if cmd.Flags().Changed("numbering") {
				req.Numbering = &numbering
			}
			if !ctx.JSONMode() {
				req.Sink = newConsoleSink(out)
			}

			result, err := api.Process(signalCtx, req)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				if err := writeJSON(cmd, newBatchReport(result.Batch, result.Result)); err != nil {
					return err
				}
				return batchRunError(result.Result)
			}
			printBatchResult(out, result.Batch, result.Result, logPath)
			return batchRunError(result.Result)
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVar(&variant, "variant", "", "Metadata variant (algorithmic or generative)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count override")
	cmd.Flags().BoolVar(&numbering, "numbering", false, "Append ordering numbers to filenames")
	return cmd
}

// batchRunError maps a finished run onto the process exit status. A drained
// batch with failures still exits non-zero so scripts notice.
func batchRunError(result workflow.BatchResult) error {
	if result.Cancelled {
		return fmt.Errorf("batch %s cancelled with %d items unfinished", shortBatchID(result.BatchID), result.Skipped)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d items failed", result.Failed, result.Total)
	}
	return nil
}

func printBatchResult(out io.Writer, batch *queue.Batch, result workflow.BatchResult, logPath string) {
	fmt.Fprintf(out, "\nBatch %s finished in %s\n", shortBatchID(result.BatchID), formatRunDuration(result.Duration))

	rows := [][]string{
		{"Completed", fmt.Sprintf("%d", result.Completed)},
		{"Failed", fmt.Sprintf("%d", result.Failed)},
		{"Skipped", fmt.Sprintf("%d", result.Skipped)},
	}
	if result.Degraded > 0 {
		rows = append(rows, []string{"Degraded", fmt.Sprintf("%d", result.Degraded)})
	}
	table := renderTable([]string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
	fmt.Fprintln(out, table)

	if batch != nil {
		fmt.Fprintf(out, "Variant: %s, numbering: %s\n", batch.Variant, onOff(batch.NumberingEnabled))
	}
	if result.Cancelled {
		fmt.Fprintln(out, "Run was cancelled; pending items were skipped")
	}
	if logPath != "" {
		fmt.Fprintf(out, "Log: %s\n", logPath)
	}
}

// batchReport is the JSON payload for process and watch runs.
type batchReport struct {
	BatchID   string `json:"batchId"`
	Variant   string `json:"variant,omitempty"`
	Numbering bool   `json:"numbering"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	Degraded  int    `json:"degraded"`
	Cancelled bool   `json:"cancelled"`
	Duration  string `json:"duration"`
}

func newBatchReport(batch *queue.Batch, result workflow.BatchResult) batchReport {
	report := batchReport{
		BatchID:   result.BatchID,
		Total:     result.Total,
		Completed: result.Completed,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
		Degraded:  result.Degraded,
		Cancelled: result.Cancelled,
		Duration:  result.Duration.Round(time.Millisecond).String(),
	}
	if batch != nil {
		report.Variant = batch.Variant
		report.Numbering = batch.NumberingEnabled
	}
	return report
}

func formatRunDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func onOff(value bool) string {
	if value {
		return "on"
	}
	return "off"
}
