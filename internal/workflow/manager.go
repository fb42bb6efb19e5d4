package workflow

import (
	"log/slog"
	"sync"
	"time"

	"woodway/internal/config"
	"woodway/internal/logging"
	"woodway/internal/notifications"
	"woodway/internal/queue"
)

// defaultPollInterval paces idle workers between claim sweeps.
const defaultPollInterval = 250 * time.Millisecond

// Manager drives one batch at a time through the configured stages using a
// bounded worker pool. Stage handlers are shared across workers, so they must
// carry no per-item state; item context travels with the context instead.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	notifier notifications.Service
	sink     ProgressSink

	heartbeat    *HeartbeatMonitor
	pollInterval time.Duration
	grace        time.Duration

	stages []pipelineStage

	mu       sync.Mutex
	running  bool
	lastErr  error
	lastItem *queue.Item
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithNotifier overrides the notification service, used in tests.
func WithNotifier(n notifications.Service) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithProgressSink registers a sink that receives item lifecycle updates.
func WithProgressSink(s ProgressSink) Option {
	return func(m *Manager) {
		if s != nil {
			m.sink = s
		}
	}
}

// WithPollInterval overrides the idle claim poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		notifier:     notifications.NewService(cfg),
		sink:         NopSink{},
		pollInterval: defaultPollInterval,
		grace:        time.Duration(cfg.Workers.ShutdownGraceSeconds) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workers.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workers.HeartbeatTimeout)*time.Second,
		),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BatchResult summarizes one Run over a batch.
type BatchResult struct {
	BatchID   string
	Total     int
	Completed int
	Failed    int
	Skipped   int
	Degraded  int
	Cancelled bool
	Duration  time.Duration
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}

func (m *Manager) setLastItem(item *queue.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item == nil {
		m.lastItem = nil
		return
	}
	snapshot := *item
	m.lastItem = &snapshot
}

// LastError returns the most recent item or persistence error observed
// during processing.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}
