package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"verso/internal/logging"
	"verso/internal/queue"
	"verso/internal/services"
	"verso/internal/stage"
	"verso/internal/staging"
)

// processItem drives one claimed item through both pipeline stages and
// records exactly one terminal outcome for it, whatever happens in between.
func (m *Manager) processItem(ctx context.Context, worker *workerState, item *queue.Item) error {
	requestID := uuid.NewString()
	ctx = services.WithItemID(ctx, item.ID)
	ctx = services.WithDocumentID(ctx, item.DocumentID)
	ctx = services.WithWorker(ctx, worker.ordinal)
	ctx = services.WithRequestID(ctx, requestID)

	logger := worker.logger.With(
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldDocumentID, item.DocumentID),
		logging.String(logging.FieldRequestID, requestID),
	)
	m.setLastItem(item)

	stopBeat := m.heartbeat.StartItem(ctx, item.ID)
	defer stopBeat()

	started := time.Now()
	logger.Info("processing document",
		logging.String("name", item.Name),
		logging.String(logging.FieldKnowledgeBase, item.KnowledgeBaseID),
		logging.String(logging.FieldEventType, "item_started"),
	)

	if err := m.runStage(ctx, logger, m.stages.Extractor, "extraction", m.extractionTimeout, item); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		m.failItem(ctx, logger, item, "extraction", err)
		return nil
	}

	// Persist extraction results before indexing so a crash between stages
	// leaves the content length and progress visible.
	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		m.failItem(ctx, logger, item,
			"extraction", services.Wrap(services.ErrTransient, "extraction", "persist results", "", err))
		return nil
	}

	if err := m.runStage(ctx, logger, m.stages.Indexer, "indexing", m.indexingTimeout, item); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		m.failItem(ctx, logger, item, "indexing", err)
		return nil
	}

	outcome := queue.Outcome{
		Status:        queue.StatusCompleted,
		ContentLength: item.ContentLength,
		ChunkCount:    item.ChunkCount,
		Message:       fmt.Sprintf("indexed %d chunks", item.ChunkCount),
	}
	if err := m.store.RecordOutcome(ctx, item.ID, outcome); err != nil {
		// The chunks are indexed; only the bookkeeping failed. Startup
		// recovery or reclamation will settle the row.
		m.setLastError(err)
		logger.Error("failed to record completion",
			logging.Error(err),
			logging.String(logging.FieldEventType, "outcome_record_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
		return nil
	}

	m.cleanupStaging(logger, item)
	if err := m.notifier.NotifyDocumentCompleted(ctx, item.Name, item.KnowledgeBaseID, item.ChunkCount); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}
	logger.Info("document indexed",
		logging.Int64("chunk_count", item.ChunkCount),
		logging.Int64("content_length", item.ContentLength),
		logging.Duration(logging.FieldDuration, time.Since(started)),
		logging.String(logging.FieldEventType, "item_completed"),
	)
	return nil
}

// runStage runs Prepare without a deadline and Execute under the stage
// deadline. Execute runs in its own goroutine so a handler that ignores
// cancellation still cannot hold the worker past the deadline.
func (m *Manager) runStage(ctx context.Context, logger *slog.Logger, handler stage.Handler, name string, timeout time.Duration, item *queue.Item) error {
	stageCtx := services.WithStage(ctx, name)
	stageStart := time.Now()
	logger.Info("stage started",
		logging.String(logging.FieldStage, name),
		logging.String(logging.FieldEventType, "stage_started"),
	)

	if err := handler.Prepare(stageCtx, item); err != nil {
		return err
	}
	err := m.executeWithDeadline(stageCtx, name, timeout, item, handler.Execute)
	if err != nil {
		return err
	}

	logger.Info("stage finished",
		logging.String(logging.FieldStage, name),
		logging.Duration(logging.FieldDuration, time.Since(stageStart)),
		logging.String(logging.FieldEventType, "stage_finished"),
	)
	return nil
}

func (m *Manager) executeWithDeadline(ctx context.Context, name string, timeout time.Duration, item *queue.Item, fn func(context.Context, *queue.Item) error) error {
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- services.Wrap(services.ErrTransient, name, "execute",
					fmt.Sprintf("panic: %v", r), nil)
			}
		}()
		done <- fn(execCtx, item)
	}()

	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		// A handler that honored cancellation reports the deadline as its
		// own error; normalize it so callers see a single timeout shape.
		if execCtx.Err() == context.DeadlineExceeded && !errors.Is(err, services.ErrTimeout) && ctx.Err() == nil {
			return services.Wrap(services.ErrTimeout, name, "execute",
				fmt.Sprintf("exceeded %s deadline", timeout), err)
		}
		return err
	case <-execCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrTimeout, name, "execute",
			fmt.Sprintf("exceeded %s deadline", timeout), nil)
	}
}

func (m *Manager) cleanupStaging(logger *slog.Logger, item *queue.Item) {
	if err := staging.Cleanup(m.cfg.Paths.StagingDir, item.ID); err != nil {
		logger.Warn("staging cleanup failed",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err),
		)
	}
}
