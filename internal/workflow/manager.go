package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"verso/internal/config"
	"verso/internal/logging"
	"verso/internal/notifications"
	"verso/internal/queue"
	"verso/internal/stage"
	"verso/internal/vectorindex"
)

// Compensator removes partially written index data for a document. It is
// invoked whenever an indexing attempt is abandoned after it may have
// written chunks.
type Compensator interface {
	DeleteByDocument(ctx context.Context, documentID string) error
}

// StageSet bundles the pipeline handlers the manager orchestrates, in
// execution order.
type StageSet struct {
	Extractor stage.Handler
	Indexer   stage.Handler
}

// Manager coordinates the worker pool that drains the ingestion queue.
type Manager struct {
	cfg         *config.Config
	store       *queue.Store
	logger      *slog.Logger
	notifier    notifications.Service
	compensator Compensator

	stages    StageSet
	heartbeat *HeartbeatMonitor

	poolSize          int
	idleWait          time.Duration
	busyWait          time.Duration
	extractionTimeout time.Duration
	indexingTimeout   time.Duration

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// NewManager constructs a workflow manager with the configured vector index
// client as the compensator.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	client := vectorindex.NewClient(vectorindex.Config{
		BaseURL:        cfg.VectorIndex.BaseURL,
		APIKey:         cfg.VectorIndex.APIKey,
		TimeoutSeconds: cfg.VectorIndex.TimeoutSeconds,
	})
	return NewManagerWithOptions(cfg, store, logger, notifications.NewService(cfg), client)
}

// NewManagerWithOptions allows injecting the notifier and compensator (used
// in tests).
func NewManagerWithOptions(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service, compensator Compensator) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	staleAfter := time.Duration(cfg.Workers.StaleAfterSeconds) * time.Second
	return &Manager{
		cfg:         cfg,
		store:       store,
		logger:      logger,
		notifier:    notifier,
		compensator: compensator,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workers.HeartbeatIntervalSeconds)*time.Second,
			staleAfter,
		),
		poolSize:          cfg.Workers.Count,
		idleWait:          secondsToDuration(cfg.Workers.IdleWaitSeconds),
		busyWait:          secondsToDuration(cfg.Workers.BusyWaitSeconds),
		extractionTimeout: time.Duration(cfg.Pipeline.ExtractionTimeoutSeconds) * time.Second,
		indexingTimeout:   time.Duration(cfg.Pipeline.IndexingTimeoutSeconds) * time.Second,
	}
}

// ConfigureStages registers the pipeline handlers. Must be called before
// Start.
func (m *Manager) ConfigureStages(set StageSet) {
	m.mu.Lock()
	m.stages = set
	m.mu.Unlock()
}

// PoolSize returns the worker count, which is also the shard width.
func (m *Manager) PoolSize() int {
	return m.poolSize
}

// Compensator exposes the vector-index delete client so the daemon can
// reuse it for explicit document removal.
func (m *Manager) Compensator() Compensator {
	return m.compensator
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
