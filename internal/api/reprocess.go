package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"woodway/internal/config"
	"woodway/internal/converting"
	"woodway/internal/finalizing"
	"woodway/internal/logging"
	"woodway/internal/naming"
	"woodway/internal/notifications"
	"woodway/internal/organizer"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/stageexec"
	"woodway/internal/tagging"
	"woodway/internal/taxonomy"
)

// ReprocessRequest re-runs a single queue item through its remaining
// stages without touching the rest of its batch. Store and Notifier are
// optional.
type ReprocessRequest struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *queue.Store
	ItemID   int64
	Notifier notifications.Service
}

// ReprocessResult carries the item's state after the run.
type ReprocessResult struct {
	Item QueueItem
}

// ReprocessItem resets a failed or interrupted item and drives it through
// every remaining stage in order. Completed items are rejected. A name
// planned on the original run stays in force; an item that never got one
// is planned against the current output directory with every sibling's
// name reserved, so reprocessing cannot steal a filename from the batch.
func ReprocessItem(ctx context.Context, req ReprocessRequest) (*ReprocessResult, error) {
	cfg := req.Config
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	store := req.Store
	if store == nil {
		opened, err := queue.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open queue store: %w", err)
		}
		defer opened.Close()
		store = opened
	}

	item, err := store.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %d", services.ErrNotFound, req.ItemID)
	}

	if err := rewindItem(ctx, store, item); err != nil {
		return nil, err
	}
	if err := ensureNamingPlan(ctx, cfg, store, item); err != nil {
		return nil, err
	}

	notifier := req.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	tagger, err := tagging.NewTagger(cfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("create tagger: %w", err)
	}

	lanes := []struct {
		name       string
		handler    stageexec.Handler
		start      queue.Status
		processing queue.Status
		done       queue.Status
	}{
		{"convert", converting.NewConverter(cfg, store, logger), queue.StatusPending, queue.StatusConverting, queue.StatusConverted},
		{"name", organizer.NewOrganizer(cfg, store, logger), queue.StatusConverted, queue.StatusNaming, queue.StatusNamed},
		{"tag", tagger, queue.StatusNamed, queue.StatusTagging, queue.StatusTagged},
		{"finalize", finalizing.NewFinalizer(cfg, store, logger), queue.StatusTagged, queue.StatusFinalizing, queue.StatusCompleted},
	}

	for _, lane := range lanes {
		if item.Status != lane.start {
			continue
		}
		err := stageexec.Run(ctx, stageexec.Options{
			Logger:     logger,
			Store:      store,
			Notifier:   notifier,
			Handler:    lane.handler,
			StageName:  lane.name,
			Processing: lane.processing,
			Done:       lane.done,
			Item:       item,
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Info("item reprocessed",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldEventType, "item_reprocessed"),
		logging.String("status", string(item.Status)),
	)
	return &ReprocessResult{Item: FromQueueItem(item)}, nil
}

// rewindItem returns the item to the stage boundary it should resume
// from. Failed and skipped items restart from pending with their error
// state cleared; items left mid-stage by a crashed run roll back to that
// stage's start, matching the store's stuck-processing reset.
func rewindItem(ctx context.Context, store *queue.Store, item *queue.Item) error {
	rollback := func(to queue.Status) error {
		item.Status = to
		item.ProgressStage = "Reset from stuck processing"
		item.ProgressPercent = 0
		item.ProgressMessage = ""
		item.LastHeartbeat = nil
		if err := store.Update(ctx, item); err != nil {
			return fmt.Errorf("roll back item %d: %w", item.ID, err)
		}
		return nil
	}

	switch item.Status {
	case queue.StatusCompleted:
		return fmt.Errorf("%w: item %d is already completed", services.ErrValidation, item.ID)
	case queue.StatusFailed:
		if _, err := store.RetryFailed(ctx, item.ID); err != nil {
			return fmt.Errorf("reset failed item: %w", err)
		}
		fresh, err := store.GetByID(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("reload item: %w", err)
		}
		*item = *fresh
	case queue.StatusSkipped:
		item.Status = queue.StatusPending
		item.ProgressStage = "Retry requested"
		item.ProgressPercent = 0
		item.ProgressMessage = ""
		item.ErrorMessage = ""
		item.ErrorKind = ""
		if err := store.Update(ctx, item); err != nil {
			return fmt.Errorf("reset skipped item: %w", err)
		}
	case queue.StatusConverting:
		return rollback(queue.StatusPending)
	case queue.StatusNaming:
		return rollback(queue.StatusConverted)
	case queue.StatusTagging:
		return rollback(queue.StatusNamed)
	case queue.StatusFinalizing:
		return rollback(queue.StatusTagged)
	}
	return nil
}

// ensureNamingPlan plans a filename for an item that has none. Sibling
// plans and the current output directory are reserved first, so the solo
// plan resolves exactly as the batch pass would have.
func ensureNamingPlan(ctx context.Context, cfg *config.Config, store *queue.Store, item *queue.Item) error {
	if plan, err := naming.ResultFromJSON(item.NamingJSON); err == nil && !plan.IsZero() {
		return nil
	}

	batch, err := store.GetBatch(ctx, item.BatchID)
	if err != nil {
		return fmt.Errorf("load batch: %w", err)
	}
	if batch == nil {
		return fmt.Errorf("%w: batch %s", services.ErrNotFound, item.BatchID)
	}

	opts := naming.OptionsFromConfig(cfg)
	opts.NumberingEnabled = batch.NumberingEnabled

	existing, err := outputDirNames(cfg.NamingDir())
	if err != nil {
		return fmt.Errorf("snapshot output directory: %w", err)
	}
	resolver := naming.NewResolver(opts, existing)

	siblings, err := store.ItemsByBatch(ctx, item.BatchID)
	if err != nil {
		return fmt.Errorf("load batch items: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID == item.ID {
			continue
		}
		plan, err := naming.ResultFromJSON(sibling.NamingJSON)
		if err != nil || plan.IsZero() {
			continue
		}
		resolver.Reserve(plan.Final)
		if sibling.MediaKind == queue.KindVideo {
			resolver.Reserve(plan.PosterName())
		}
	}

	sel, err := taxonomy.SelectionFromJSON(item.AttributesJSON)
	if err != nil {
		return fmt.Errorf("%w: decode selection: %v", services.ErrValidation, err)
	}
	ext := cfg.Conversion.ImageFormat
	if item.MediaKind == queue.KindVideo {
		ext = cfg.Conversion.VideoFormat
	}
	result, err := resolver.Resolve(sel, item.Ordinal, ext)
	if err != nil {
		return err
	}
	payload, err := result.ToJSON()
	if err != nil {
		return fmt.Errorf("encode naming plan: %w", err)
	}
	item.NamingJSON = payload
	if err := store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist naming plan: %w", err)
	}
	return nil
}

// outputDirNames snapshots the filenames already present in the output
// directory. A missing directory is an empty namespace, not an error.
func outputDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
