package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"woodway/internal/api"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var sel selectionFlags
	var variant string
	var workers int
	var numbering bool
	var settle time.Duration
	var poll time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the intake directory and process drops continuously",
		Long: `Watch the intake directory and process drops continuously.

Files are considered stable once they stop growing for the settle window,
then the pending set is enqueued as one batch with the attribute flags
given here. Batches run one at a time; files dropped during a run are
picked up by the next sweep. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Paths.IntakeDir) == "" {
				return fmt.Errorf("%w: paths.intake_dir is not configured", services.ErrValidation)
			}
			logger, logPath, err := newRunLogger(cfg)
			if err != nil {
				return err
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			batcher := watch.BatcherFunc(func(runCtx context.Context, paths []string) error {
				req := api.ProcessRequest{
					Config:    cfg,
					Logger:    logger,
					Store:     store,
					Inputs:    paths,
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

				result, err := api.Process(runCtx, req)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, newBatchReport(result.Batch, result.Result))
				}
				printBatchResult(out, result.Batch, result.Result, "")
				return nil
			})

			watcher, err := watch.New(cfg.Paths.IntakeDir, batcher, logger, watch.Options{
				Settle: settle,
				Poll:   poll,
			})
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if !ctx.JSONMode() {
				fmt.Fprintf(out, "Watching %s; press Ctrl-C to stop\n", cfg.Paths.IntakeDir)
				fmt.Fprintf(out, "Log: %s\n", logPath)
			}
			return watcher.Run(signalCtx)
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVar(&variant, "variant", "", "Metadata variant (algorithmic or generative)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count override")
	cmd.Flags().BoolVar(&numbering, "numbering", false, "Append ordering numbers to filenames")
	cmd.Flags().DurationVar(&settle, "settle", 0, "Quiet period before a dropped file counts as stable")
	cmd.Flags().DurationVar(&poll, "poll", 0, "Interval between stability sweeps")
	return cmd
}
