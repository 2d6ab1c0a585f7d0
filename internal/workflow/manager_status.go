package workflow

import (
	"context"

	"verso/internal/queue"
	"verso/internal/stage"
)

// StatusSummary is a point-in-time snapshot of the workflow for operator
// surfaces (CLI, HTTP API).
type StatusSummary struct {
	Running   bool
	Workers   int
	LastError string
	LastItem  *queue.Item
	Queue     queue.HealthSummary
	Stages    []stage.Health
}

// Running reports whether the worker pool is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Status assembles the current summary. Queue counts come from the store, so
// a database error degrades the summary rather than failing it.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		Running:  m.running,
		Workers:  m.poolSize,
		LastItem: m.lastItem,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	extractor, indexer := m.stages.Extractor, m.stages.Indexer
	m.mu.RUnlock()

	if health, err := m.store.Health(ctx); err == nil {
		summary.Queue = health
	}
	if extractor != nil {
		summary.Stages = append(summary.Stages, extractor.HealthCheck(ctx))
	}
	if indexer != nil {
		summary.Stages = append(summary.Stages, indexer.HealthCheck(ctx))
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *queue.Item) {
	m.mu.Lock()
	m.lastItem = item
	m.mu.Unlock()
}
