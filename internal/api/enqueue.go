package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/metadata"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/taxonomy"
)

// EnqueueRequest describes a batch to create. Store is optional; when nil
// the queue database is opened for the duration of the call.
type EnqueueRequest struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *queue.Store
	Inputs    []string
	Selection taxonomy.Selection
	Numbering *bool
	Variant   string
}

// EnqueueResult reports the created batch and its items in ordinal order.
type EnqueueResult struct {
	Batch  *queue.Batch
	Items  []*queue.Item
	Images int
	Videos int
}

// Enqueue validates the attribute selection, expands file and directory
// inputs into supported media files, and creates a batch with one item
// per file. Directory inputs contribute their supported entries in
// lexicographic order; unsupported files inside a directory are skipped,
// while an explicitly named unsupported file is a validation error.
func Enqueue(ctx context.Context, req EnqueueRequest) (EnqueueResult, error) {
	cfg := req.Config
	if cfg == nil {
		return EnqueueResult{}, fmt.Errorf("configuration is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	tree, err := taxonomy.Load(cfg.Paths.TaxonomyPath)
	if err != nil {
		return EnqueueResult{}, fmt.Errorf("load taxonomy: %w", err)
	}
	if err := tree.ValidateSelection(req.Selection); err != nil {
		return EnqueueResult{}, fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	variant, err := metadata.ParseVariant(firstNonEmpty(req.Variant, cfg.Metadata.Variant))
	if err != nil {
		return EnqueueResult{}, fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	numbering := cfg.Naming.NumberingEnabled
	if req.Numbering != nil {
		numbering = *req.Numbering
	}

	paths, kinds, err := expandInputs(req.Inputs)
	if err != nil {
		return EnqueueResult{}, err
	}
	if len(paths) == 0 {
		return EnqueueResult{}, fmt.Errorf("%w: no supported media files in the given inputs", services.ErrValidation)
	}

	selJSON, err := req.Selection.ToJSON()
	if err != nil {
		return EnqueueResult{}, fmt.Errorf("encode selection: %w", err)
	}

	store := req.Store
	if store == nil {
		opened, err := queue.Open(cfg)
		if err != nil {
			return EnqueueResult{}, fmt.Errorf("open queue store: %w", err)
		}
		defer opened.Close()
		store = opened
	}

	batch, err := store.NewBatch(ctx, string(variant), numbering)
	if err != nil {
		return EnqueueResult{}, fmt.Errorf("create batch: %w", err)
	}

	result := EnqueueResult{Batch: batch, Items: make([]*queue.Item, 0, len(paths))}
	for i, path := range paths {
		item, err := store.AddItem(ctx, batch.ID, path, kinds[i], selJSON)
		if err != nil {
			return EnqueueResult{}, fmt.Errorf("add item %s: %w", filepath.Base(path), err)
		}
		result.Items = append(result.Items, item)
		switch kinds[i] {
		case queue.KindVideo:
			result.Videos++
		default:
			result.Images++
		}
	}

	logger.Info("batch enqueued",
		logging.String(logging.FieldBatchID, batch.ID),
		logging.String(logging.FieldEventType, "batch_enqueued"),
		logging.Int("items", len(result.Items)),
		logging.Int("images", result.Images),
		logging.Int("videos", result.Videos),
		logging.String("variant", batch.Variant),
	)
	return result, nil
}

// expandInputs resolves the argument list into absolute media paths with
// their kinds, deduplicating repeated paths while preserving order.
func expandInputs(inputs []string) ([]string, []queue.MediaKind, error) {
	var (
		paths []string
		kinds []queue.MediaKind
		seen  = make(map[string]struct{})
	)
	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		kind := queue.KindForPath(path)
		if kind == "" {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
		kinds = append(kinds, kind)
	}

	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve input %s: %w", input, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil, fmt.Errorf("%w: input %s does not exist", services.ErrValidation, input)
			}
			return nil, nil, fmt.Errorf("stat input %s: %w", input, err)
		}
		if info.IsDir() {
			entries, err := os.ReadDir(abs)
			if err != nil {
				return nil, nil, fmt.Errorf("read directory %s: %w", input, err)
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				add(filepath.Join(abs, entry.Name()))
			}
			continue
		}
		if queue.KindForPath(abs) == "" {
			return nil, nil, fmt.Errorf("%w: unsupported media type %s", services.ErrValidation, filepath.Ext(abs))
		}
		add(abs)
	}
	return paths, kinds, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
