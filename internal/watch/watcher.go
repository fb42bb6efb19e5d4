// Package watch turns the intake directory into a continuous pipeline
// feed. An fsnotify watcher records write activity per file; a sweep
// ticker promotes files that have been quiet for a settle window and
// whose size stopped changing, then hands each stable set to a batch
// processor. One batch runs at a time; files that stabilize during a
// run are picked up by the next sweep.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"woodway/internal/logging"
	"woodway/internal/queue"
)

const (
	defaultSettle = 2 * time.Second
	defaultPoll   = time.Second
)

// Batcher processes one set of stable intake files as a single batch.
type Batcher interface {
	ProcessBatch(ctx context.Context, paths []string) error
}

// BatcherFunc adapts a function to the Batcher interface.
type BatcherFunc func(ctx context.Context, paths []string) error

// ProcessBatch calls f.
func (f BatcherFunc) ProcessBatch(ctx context.Context, paths []string) error {
	return f(ctx, paths)
}

// Options tunes watcher timing. Zero values fall back to defaults.
type Options struct {
	// Settle is how long a file must stay quiet before it is batched.
	Settle time.Duration
	// Poll is the sweep cadence for stability checks.
	Poll time.Duration
}

type pendingFile struct {
	lastEvent time.Time
	size      int64
}

// Watcher drives the intake directory watch loop.
type Watcher struct {
	dir     string
	batcher Batcher
	logger  *slog.Logger
	settle  time.Duration
	poll    time.Duration

	mu         sync.Mutex
	pending    map[string]*pendingFile
	processing bool

	wg sync.WaitGroup
}

// New prepares a watcher over dir. The caller owns the directory's
// existence; Run fails if it cannot be registered.
func New(dir string, batcher Batcher, logger *slog.Logger, opts Options) (*Watcher, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("watch: intake directory not configured")
	}
	if batcher == nil {
		return nil, errors.New("watch: batcher is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	settle := opts.Settle
	if settle <= 0 {
		settle = defaultSettle
	}
	poll := opts.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	return &Watcher{
		dir:     dir,
		batcher: batcher,
		logger:  logging.NewComponentLogger(logger, "watch"),
		settle:  settle,
		poll:    poll,
		pending: make(map[string]*pendingFile),
	}, nil
}

// Run watches the intake directory until ctx is cancelled. Media files
// already present at startup are treated as fresh arrivals so a
// pre-loaded directory drains without manual events.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}

	w.scanExisting()

	w.logger.Info("watching intake directory",
		logging.String("path", w.dir),
		logging.Duration("settle", w.settle),
		logging.String(logging.FieldEventType, "watch_started"),
	)

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				w.wg.Wait()
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				w.wg.Wait()
				return nil
			}
			w.logger.Warn("watch error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "watch_error"),
			)
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// scanExisting seeds the pending set with media files already in the
// intake directory. Non-recursive, same as input expansion.
func (w *Watcher) scanExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.note(filepath.Join(w.dir, entry.Name()))
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.mu.Lock()
		delete(w.pending, ev.Name)
		w.mu.Unlock()
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if info, err := os.Stat(ev.Name); err != nil || info.IsDir() {
		return
	}
	w.note(ev.Name)
}

// note records write activity for a supported media file. Every call
// restarts the settle clock.
func (w *Watcher) note(path string) {
	if queue.KindForPath(path) == "" {
		return
	}
	size := int64(-1)
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.pending[path]
	if !ok {
		w.pending[path] = &pendingFile{lastEvent: time.Now(), size: size}
		return
	}
	entry.lastEvent = time.Now()
	entry.size = size
}

// sweep claims every stable pending file and dispatches them as one
// batch. Skipped while a previous batch is still running so arrivals
// queue up for the next pass.
func (w *Watcher) sweep(ctx context.Context) {
	w.mu.Lock()
	if w.processing || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	var stable []string
	for path, entry := range w.pending {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.pending, path)
			continue
		}
		if info.Size() != entry.size {
			entry.size = info.Size()
			entry.lastEvent = now
			continue
		}
		if now.Sub(entry.lastEvent) < w.settle {
			continue
		}
		stable = append(stable, path)
	}
	if len(stable) == 0 {
		w.mu.Unlock()
		return
	}
	for _, path := range stable {
		delete(w.pending, path)
	}
	w.processing = true
	w.mu.Unlock()

	sort.Strings(stable)

	w.wg.Add(1)
	go func(paths []string) {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.processing = false
			w.mu.Unlock()
		}()

		w.logger.Info("dispatching stable files",
			logging.Int("count", len(paths)),
			logging.String(logging.FieldEventType, "watch_batch_dispatched"),
		)
		if err := w.batcher.ProcessBatch(ctx, paths); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("batch processing failed",
				logging.Error(err),
				logging.Int("count", len(paths)),
				logging.String(logging.FieldEventType, "watch_batch_failed"),
				logging.String(logging.FieldErrorHint, "files stay in the intake directory; fix the cause and they will be retried on the next drop"),
			)
			return
		}
		w.logger.Info("batch processing finished",
			logging.Int("count", len(paths)),
			logging.String(logging.FieldEventType, "watch_batch_completed"),
		)
	}(stable)
}
