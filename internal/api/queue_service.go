package api

import (
	"context"

	"verso/internal/queue"
)

// QueueReader abstracts the queue persistence reads the API surfaces need.
type QueueReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
	GetByID(ctx context.Context, id int64) (*queue.Item, error)
	ListByDocumentIDs(ctx context.Context, documentIDs []string) ([]*queue.Item, error)
	Health(ctx context.Context) (queue.HealthSummary, error)
}

// QueueService exposes read-only queue operations returning API DTOs.
type QueueService struct {
	store QueueReader
}

// NewQueueService constructs a QueueService around the provided reader.
func NewQueueService(store QueueReader) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store}
}

// List returns queue items filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromQueueItems(items), nil
}

// Describe fetches a single queue item by row id.
func (s *QueueService) Describe(ctx context.Context, id int64) (*QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	dto := FromQueueItem(item)
	return &dto, nil
}

// DescribeDocuments fetches the queue entries for the given document ids.
// Unknown ids are simply absent from the result.
func (s *QueueService) DescribeDocuments(ctx context.Context, documentIDs []string) ([]QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.ListByDocumentIDs(ctx, documentIDs)
	if err != nil {
		return nil, err
	}
	return FromQueueItems(items), nil
}

// Stats returns queue counts keyed by status string.
func (s *QueueService) Stats(ctx context.Context) (map[string]int64, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	health, err := s.store.Health(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int64{
		string(queue.StatusPending):    health.Pending,
		string(queue.StatusProcessing): health.Processing,
		string(queue.StatusCompleted):  health.Completed,
		string(queue.StatusFailed):     health.Failed,
	}, nil
}
