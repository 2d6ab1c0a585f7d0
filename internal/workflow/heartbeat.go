package workflow

import (
	"context"
	"log/slog"
	"time"

	"verso/internal/logging"
	"verso/internal/queue"
)

// HeartbeatMonitor refreshes the heartbeat column for items while a worker
// processes them, and knows the cutoff after which an untouched processing
// item is considered abandoned.
type HeartbeatMonitor struct {
	store      *queue.Store
	logger     *slog.Logger
	interval   time.Duration
	staleAfter time.Duration
}

func NewHeartbeatMonitor(store *queue.Store, logger *slog.Logger, interval, staleAfter time.Duration) *HeartbeatMonitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &HeartbeatMonitor{
		store:      store,
		logger:     logger,
		interval:   interval,
		staleAfter: staleAfter,
	}
}

// StartItem begins refreshing heartbeats for itemID until the returned stop
// function is called. Failures to write a heartbeat are logged and retried
// on the next tick; the item is not abandoned while its worker is alive.
func (h *HeartbeatMonitor) StartItem(ctx context.Context, itemID int64) (stop func()) {
	beatCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-beatCtx.Done():
				return
			case <-ticker.C:
				if err := h.store.UpdateHeartbeat(beatCtx, itemID); err != nil && beatCtx.Err() == nil {
					h.logger.Warn("heartbeat update failed",
						logging.Int64(logging.FieldItemID, itemID),
						logging.Error(err),
						logging.String(logging.FieldEventType, "heartbeat_failed"),
					)
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// Interval returns the heartbeat refresh period, which also paces the
// stale-item scan.
func (h *HeartbeatMonitor) Interval() time.Duration {
	return h.interval
}

// StaleCutoff returns the time before which a processing heartbeat counts
// as abandoned, or the zero time when reclamation is disabled.
func (h *HeartbeatMonitor) StaleCutoff(now time.Time) time.Time {
	if h.staleAfter <= 0 {
		return time.Time{}
	}
	return now.Add(-h.staleAfter)
}

// reclaimStale fails processing items whose heartbeat expired, then runs the
// compensating index delete for each since an indexing attempt may have
// written chunks before the worker died.
func (m *Manager) reclaimStale(ctx context.Context, logger *slog.Logger) {
	cutoff := m.heartbeat.StaleCutoff(time.Now())
	if cutoff.IsZero() {
		return
	}
	reclaimed, err := m.store.ReclaimStaleProcessing(ctx, cutoff)
	if err != nil {
		logger.Error("stale item reclamation failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "reclaim_failed"),
		)
		return
	}
	for _, item := range reclaimed {
		logger.Warn("reclaimed abandoned item",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String(logging.FieldDocumentID, item.DocumentID),
			logging.String(logging.FieldEventType, "item_reclaimed"),
		)
		m.compensateIndex(ctx, logger, item)
		m.cleanupStaging(logger, item)
	}
}
