package workflow

import (
	"context"
	"fmt"
	"os"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/naming"
	"woodway/internal/queue"
	"woodway/internal/taxonomy"
)

// planNames runs the single-writer naming pass for the whole batch before
// workers start. Names resolve in ordinal order against a snapshot of the
// output directory plus every name already planned, which keeps collision
// suffixes deterministic for a given directory state and batch order. Items
// that cannot be planned fail individually; only systemic errors abort the
// run.
func (m *Manager) planNames(ctx context.Context, batch *queue.Batch, items []*queue.Item) error {
	opts := naming.OptionsFromConfig(m.cfg)
	opts.NumberingEnabled = batch.NumberingEnabled

	existing, err := listExistingNames(m.cfg.NamingDir())
	if err != nil {
		return fmt.Errorf("snapshot output directory: %w", err)
	}
	resolver := naming.NewResolver(opts, existing)
	logger := m.logger.With(logging.String(logging.FieldBatchID, batch.ID))

	// Names planned on an earlier run stay reserved so a resumed batch
	// keeps its filenames stable.
	for _, item := range items {
		plan, err := naming.ResultFromJSON(item.NamingJSON)
		if err != nil || plan.IsZero() {
			continue
		}
		resolver.Reserve(plan.Final)
		if item.MediaKind == queue.KindVideo {
			resolver.Reserve(plan.PosterName())
		}
	}

	planned := 0
	for _, item := range items {
		if queue.IsTerminalStatus(item.Status) {
			continue
		}
		if plan, err := naming.ResultFromJSON(item.NamingJSON); err == nil && !plan.IsZero() {
			continue
		}
		sel, err := taxonomy.SelectionFromJSON(item.AttributesJSON)
		if err != nil {
			m.handleStageFailure(ctx, "plan", item, err, logger)
			continue
		}
		result, err := resolver.Resolve(sel, item.Ordinal, extensionFor(m.cfg, item.MediaKind))
		if err != nil {
			m.handleStageFailure(ctx, "plan", item, err, logger)
			continue
		}
		if item.MediaKind == queue.KindVideo {
			resolver.Reserve(result.PosterName())
		}
		payload, err := result.ToJSON()
		if err != nil {
			m.handleStageFailure(ctx, "plan", item, err, logger)
			continue
		}
		item.NamingJSON = payload
		if err := m.store.Update(ctx, item); err != nil {
			return fmt.Errorf("persist name plan for item %d: %w", item.ID, err)
		}
		planned++
	}
	if planned > 0 {
		logger.Info("planned filenames", logging.Int("count", planned))
	}
	return nil
}

func extensionFor(cfg *config.Config, kind queue.MediaKind) string {
	if kind == queue.KindVideo {
		return cfg.Conversion.VideoFormat
	}
	return cfg.Conversion.ImageFormat
}

// listExistingNames snapshots the filenames already present in the output
// directory. A missing directory is an empty namespace, not an error.
func listExistingNames(dir string) ([]string, error) {
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
