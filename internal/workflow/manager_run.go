package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"verso/internal/logging"
	"verso/internal/queue"
	"verso/internal/sharding"
)

type workerState struct {
	ordinal int
	logger  *slog.Logger
	// nextReclaim throttles the stale scan; only the ordinal-0 worker
	// touches it.
	nextReclaim time.Time
}

// Start fails leftover processing items from a previous run, then launches
// one scheduling loop per worker ordinal.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if m.stages.Extractor == nil || m.stages.Indexer == nil {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(m.poolSize)
	m.mu.Unlock()

	reset, err := m.store.ResetStuckProcessing(runCtx, "interrupted by daemon restart")
	if err != nil {
		m.logger.Warn("startup crash recovery failed; stuck items may remain",
			logging.Error(err),
			logging.String(logging.FieldEventType, "startup_recovery_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	} else if reset > 0 {
		m.logger.Info("failed leftover processing items from previous run",
			logging.Int64("count", reset),
			logging.String(logging.FieldEventType, "startup_recovery"),
		)
	}

	for ordinal := 0; ordinal < m.poolSize; ordinal++ {
		worker := &workerState{
			ordinal: ordinal,
			logger: m.logger.With(
				logging.String(logging.FieldComponent, "worker"),
				logging.Int(logging.FieldWorker, ordinal),
			),
		}
		go m.runWorker(runCtx, worker)
	}
	return nil
}

// Stop terminates the worker loops and waits for them to drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runWorker(ctx context.Context, worker *workerState) {
	defer m.wg.Done()
	logger := worker.logger

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// One worker doubles as the stale-item reclaimer so reclamation
		// needs no extra goroutine or coordination. The scan runs at most
		// once per heartbeat interval, not on every claim turn.
		if worker.ordinal == 0 && !time.Now().Before(worker.nextReclaim) {
			m.reclaimStale(ctx, logger)
			worker.nextReclaim = time.Now().Add(m.heartbeat.Interval())
		}

		shard := sharding.Assign(worker.ordinal, m.poolSize, time.Now())
		item, err := m.store.ClaimNext(ctx, shard, m.poolSize, worker.ordinal)
		if err != nil {
			m.handleClaimError(ctx, logger, err)
			continue
		}
		if item == nil {
			m.waitForWork(ctx, m.idleWait)
			continue
		}

		if err := m.safeProcessItem(ctx, worker, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
		// Drain the backlog quickly; idle only when a claim comes up empty.
		m.waitForWork(ctx, m.busyWait)
	}
}

// safeProcessItem guards the claim-to-record window. Stage panics are
// already absorbed inside the deadline runner; this catches anything that
// escapes around it so a claimed item never stays processing forever.
func (m *Manager) safeProcessItem(ctx context.Context, worker *workerState, item *queue.Item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			worker.logger.Error("worker panic while processing item",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldEventType, "worker_panic"),
			)
			demoteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if _, derr := m.store.DemoteToFailed(demoteCtx, item.ID, "worker panic"); derr != nil {
				worker.logger.Error("failed to demote item after panic",
					logging.Int64(logging.FieldItemID, item.ID),
					logging.Error(derr),
				)
			}
		}
	}()
	return m.processItem(ctx, worker, item)
}

// handleClaimError covers transient store failures: log, sleep, re-enter
// the loop. The loop itself never exits on a store error.
func (m *Manager) handleClaimError(ctx context.Context, logger *slog.Logger, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	m.setLastError(err)
	logger.Error("failed to claim next work item",
		logging.Error(err),
		logging.String(logging.FieldEventType, "claim_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
	m.waitForWork(ctx, m.idleWait)
}

func (m *Manager) waitForWork(ctx context.Context, wait time.Duration) {
	if wait <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}
