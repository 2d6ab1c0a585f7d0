package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const listBatchSize = 100

// DocumentIntake describes a document being added to the queue.
type DocumentIntake struct {
	DocumentID      string
	KnowledgeBaseID string
	Name            string
	SourcePath      string
	SourceURL       string
	FileSize        int64
	ChunkSize       int
}

// DefaultChunkSize applies when intake does not request a split size.
const DefaultChunkSize = 800

// NewDocument inserts a pending work item for an uploaded document.
func (s *Store) NewDocument(ctx context.Context, intake DocumentIntake) (*Item, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(intake.DocumentID) == "" {
		return nil, errors.New("document id is required")
	}
	if strings.TrimSpace(intake.KnowledgeBaseID) == "" {
		return nil, errors.New("knowledge base id is required")
	}
	if strings.TrimSpace(intake.Name) == "" {
		return nil, errors.New("document name is required")
	}
	chunkSize := intake.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	now := formatTime(time.Now())
	res, err := s.execWithRetry(ctx,
		`INSERT INTO work_items (document_id, kb_id, name, source_path, source_url, file_size, chunk_size, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		intake.DocumentID,
		intake.KnowledgeBaseID,
		intake.Name,
		nullableString(intake.SourcePath),
		nullableString(intake.SourceURL),
		intake.FileSize,
		chunkSize,
		string(StatusPending),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert work item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a single item, returning nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM work_items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get work item %d: %w", id, err)
	}
	return item, nil
}

// GetByDocumentID fetches the item keyed by its business identifier.
func (s *Store) GetByDocumentID(ctx context.Context, documentID string) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM work_items WHERE document_id = ?", documentID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get work item %q: %w", documentID, err)
	}
	return item, nil
}

// Update persists every mutable column of the item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is required")
	}
	ctx = ensureContext(ctx)
	item.UpdatedAt = time.Now()
	_, err := s.execWithRetry(ctx,
		`UPDATE work_items SET
			kb_id = ?, name = ?, source_path = ?, source_url = ?,
			file_size = ?, chunk_size = ?, content_length = ?, chunk_count = ?,
			status = ?, message = ?, deleted = ?, worker_ordinal = ?,
			updated_at = ?, claimed_at = ?, heartbeat_at = ?
		 WHERE id = ?`,
		item.KnowledgeBaseID,
		item.Name,
		nullableString(item.SourcePath),
		nullableString(item.SourceURL),
		item.FileSize,
		item.ChunkSize,
		item.ContentLength,
		item.ChunkCount,
		string(item.Status),
		nullableString(item.Message),
		boolToInt(item.Deleted),
		nullableInt(item.WorkerOrdinal),
		formatTime(item.UpdatedAt),
		nullableTime(item.ClaimedAt),
		nullableTime(item.HeartbeatAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update work item %d: %w", item.ID, err)
	}
	return nil
}

// UpdateMessage writes progress text without touching the status. Progress
// is best effort; callers ignore failures.
func (s *Store) UpdateMessage(ctx context.Context, id int64, message string) error {
	return s.execWithoutResultRetry(ensureContext(ctx),
		"UPDATE work_items SET message = ?, updated_at = ? WHERE id = ?",
		message, formatTime(time.Now()), id)
}

// List returns items filtered by the given statuses (all items when none
// are given), oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + itemColumns + " FROM work_items"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN (" + makePlaceholders(len(statuses)) + ")"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListByDocumentIDs fetches items by business identifier in bounded batches
// so queries stay within statement size limits.
func (s *Store) ListByDocumentIDs(ctx context.Context, documentIDs []string) ([]*Item, error) {
	ctx = ensureContext(ctx)
	var items []*Item
	for start := 0; start < len(documentIDs); start += listBatchSize {
		end := start + listBatchSize
		if end > len(documentIDs) {
			end = len(documentIDs)
		}
		batch := documentIDs[start:end]
		query := "SELECT " + itemColumns + " FROM work_items WHERE document_id IN (" +
			makePlaceholders(len(batch)) + ") ORDER BY id ASC"
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("list work items by document id: %w", err)
		}
		for rows.Next() {
			item, err := scanItem(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan work item: %w", err)
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return items, nil
}

// MarkDeleted soft-deletes by business identifier. Deleted items are
// invisible to the claim query but stay in the table.
func (s *Store) MarkDeleted(ctx context.Context, documentID string) error {
	return s.execWithoutResultRetry(ensureContext(ctx),
		"UPDATE work_items SET deleted = 1, updated_at = ? WHERE document_id = ?",
		formatTime(time.Now()), documentID)
}

// Remove deletes a row outright. Administrative use only.
func (s *Store) Remove(ctx context.Context, id int64) error {
	return s.execWithoutResultRetry(ensureContext(ctx),
		"DELETE FROM work_items WHERE id = ?", id)
}

// ClearCompleted removes completed items and returns the count.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	return s.clearByStatus(ctx, StatusCompleted)
}

// ClearFailed removes failed items and returns the count.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	return s.clearByStatus(ctx, StatusFailed)
}

// ClearAll empties the queue table.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ensureContext(ctx), "DELETE FROM work_items")
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) clearByStatus(ctx context.Context, status Status) (int64, error) {
	res, err := s.execWithRetry(ensureContext(ctx),
		"DELETE FROM work_items WHERE status = ?", string(status))
	if err != nil {
		return 0, fmt.Errorf("clear %s items: %w", status, err)
	}
	return res.RowsAffected()
}
