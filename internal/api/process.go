package api

import (
	"context"
	"fmt"
	"log/slog"

	"woodway/internal/config"
	"woodway/internal/converting"
	"woodway/internal/finalizing"
	"woodway/internal/logging"
	"woodway/internal/notifications"
	"woodway/internal/organizer"
	"woodway/internal/queue"
	"woodway/internal/tagging"
	"woodway/internal/taxonomy"
	"woodway/internal/workflow"
)

// ProcessRequest describes a full pipeline run: enqueue the inputs and
// drive the batch through every stage. Store, Sink, and Notifier are
// optional.
type ProcessRequest struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *queue.Store
	Inputs    []string
	Selection taxonomy.Selection
	Numbering *bool
	Variant   string
	Workers   int
	Sink      workflow.ProgressSink
	Notifier  notifications.Service
}

// ProcessResult carries the created batch and the run outcome.
type ProcessResult struct {
	Batch  *queue.Batch
	Result workflow.BatchResult
}

// Process enqueues the inputs as a new batch and runs it to completion.
// Cancellation is reported through Result.Cancelled rather than an error.
func Process(ctx context.Context, req ProcessRequest) (ProcessResult, error) {
	cfg := req.Config
	if cfg == nil {
		return ProcessResult{}, fmt.Errorf("configuration is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return ProcessResult{}, fmt.Errorf("ensure directories: %w", err)
	}
	if req.Workers > 0 {
		cfg.Workers.Count = req.Workers
	}

	store := req.Store
	if store == nil {
		opened, err := queue.Open(cfg)
		if err != nil {
			return ProcessResult{}, fmt.Errorf("open queue store: %w", err)
		}
		defer opened.Close()
		store = opened
	}

	enq, err := Enqueue(ctx, EnqueueRequest{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Inputs:    req.Inputs,
		Selection: req.Selection,
		Numbering: req.Numbering,
		Variant:   req.Variant,
	})
	if err != nil {
		return ProcessResult{}, err
	}

	result, err := RunBatch(ctx, RunBatchRequest{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		BatchID:  enq.Batch.ID,
		Sink:     req.Sink,
		Notifier: req.Notifier,
	})
	return ProcessResult{Batch: enq.Batch, Result: result}, err
}

// RunBatchRequest drives an existing batch through the pipeline, for
// example after a reorder or an interrupted run.
type RunBatchRequest struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *queue.Store
	BatchID  string
	Sink     workflow.ProgressSink
	Notifier notifications.Service
}

// RunBatch assembles the stage handlers and runs the workflow manager
// over the given batch. An empty BatchID resolves to the latest batch.
func RunBatch(ctx context.Context, req RunBatchRequest) (workflow.BatchResult, error) {
	cfg := req.Config
	if cfg == nil {
		return workflow.BatchResult{}, fmt.Errorf("configuration is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	store := req.Store
	if store == nil {
		opened, err := queue.Open(cfg)
		if err != nil {
			return workflow.BatchResult{}, fmt.Errorf("open queue store: %w", err)
		}
		defer opened.Close()
		store = opened
	}

	batchID, err := resolveBatchID(ctx, store, req.BatchID)
	if err != nil {
		return workflow.BatchResult{}, err
	}

	tagger, err := tagging.NewTagger(cfg, store, logger)
	if err != nil {
		return workflow.BatchResult{}, fmt.Errorf("create tagger: %w", err)
	}
	stages := workflow.StageSet{
		Converter: converting.NewConverter(cfg, store, logger),
		Organizer: organizer.NewOrganizer(cfg, store, logger),
		Tagger:    tagger,
		Finalizer: finalizing.NewFinalizer(cfg, store, logger),
	}

	var opts []workflow.Option
	if req.Sink != nil {
		opts = append(opts, workflow.WithProgressSink(req.Sink))
	}
	if req.Notifier != nil {
		opts = append(opts, workflow.WithNotifier(req.Notifier))
	}

	manager := workflow.NewManager(cfg, store, logger, opts...)
	if err := manager.ConfigureStages(stages); err != nil {
		return workflow.BatchResult{}, fmt.Errorf("configure stages: %w", err)
	}
	return manager.Run(ctx, batchID)
}
