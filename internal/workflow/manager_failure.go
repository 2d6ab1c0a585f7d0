package workflow

import (
	"context"
	"log/slog"
	"time"

	"verso/internal/logging"
	"verso/internal/queue"
	"verso/internal/services"
)

const (
	compensateAttempts = 3
	compensateBackoff  = 2 * time.Second
)

// failItem records the terminal failed outcome for an item and, when the
// indexing stage may have written chunks, removes them again so the index
// never serves a half-indexed document.
func (m *Manager) failItem(ctx context.Context, logger *slog.Logger, item *queue.Item, stageName string, stageErr error) {
	m.setLastError(stageErr)
	logger.Error("stage failed",
		logging.String(logging.FieldStage, stageName),
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_failed"),
	)

	// Extraction never touches the index, and a validation rejection means
	// no insert was attempted. Everything else from indexing may have
	// landed chunks before dying.
	if stageName == "indexing" && !services.IsSemanticFailure(stageErr) {
		m.compensateIndex(ctx, logger, item)
	}

	message := services.SanitizedMessage(stageErr)
	outcome := queue.Outcome{
		Status:        services.FailureStatus(stageErr),
		ContentLength: item.ContentLength,
		Message:       message,
	}
	if err := m.store.RecordOutcome(ctx, item.ID, outcome); err != nil {
		m.setLastError(err)
		logger.Error("failed to record failure outcome",
			logging.Error(err),
			logging.String(logging.FieldEventType, "outcome_record_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	}

	m.cleanupStaging(logger, item)
	if err := m.notifier.NotifyDocumentFailed(ctx, item.Name, item.KnowledgeBaseID, message); err != nil {
		logger.Warn("failure notification failed", logging.Error(err))
	}
}

// compensateIndex deletes whatever chunks a partial indexing attempt left
// behind. It runs detached from the worker context so shutdown does not
// strand orphaned chunks, and a delete that still fails after retries is
// logged loudly rather than swallowed: the orphans are visible to an
// operator instead of silently polluting search results.
func (m *Manager) compensateIndex(ctx context.Context, logger *slog.Logger, item *queue.Item) {
	if m.compensator == nil || item.DocumentID == "" {
		return
	}
	deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= compensateAttempts; attempt++ {
		lastErr = m.compensator.DeleteByDocument(deleteCtx, item.DocumentID)
		if lastErr == nil {
			logger.Info("removed partial index data",
				logging.String(logging.FieldDocumentID, item.DocumentID),
				logging.String(logging.FieldEventType, "index_compensated"),
			)
			return
		}
		if attempt < compensateAttempts {
			select {
			case <-deleteCtx.Done():
				attempt = compensateAttempts
			case <-time.After(compensateBackoff * time.Duration(attempt)):
			}
		}
	}

	logger.Error("compensating index delete failed; partial chunks may remain",
		logging.String(logging.FieldDocumentID, item.DocumentID),
		logging.Error(lastErr),
		logging.String(logging.FieldEventType, "index_compensation_failed"),
		logging.String(logging.FieldErrorHint, "delete the document from the vector index manually"),
		logging.String(logging.FieldImpact, "search may return stale chunks for this document"),
	)
}
