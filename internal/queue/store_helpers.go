package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, document_id, kb_id, name, source_path, source_url, file_size, chunk_size, content_length, chunk_count, status, message, deleted, worker_ordinal, created_at, updated_at, claimed_at, heartbeat_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id            int64
		documentID    string
		kbID          string
		name          string
		sourcePath    sql.NullString
		sourceURL     sql.NullString
		fileSize      sql.NullInt64
		chunkSize     sql.NullInt64
		contentLength sql.NullInt64
		chunkCount    sql.NullInt64
		statusStr     string
		message       sql.NullString
		deleted       sql.NullInt64
		workerOrdinal sql.NullInt64
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
		claimedRaw    sql.NullString
		heartbeatRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&documentID,
		&kbID,
		&name,
		&sourcePath,
		&sourceURL,
		&fileSize,
		&chunkSize,
		&contentLength,
		&chunkCount,
		&statusStr,
		&message,
		&deleted,
		&workerOrdinal,
		&createdRaw,
		&updatedRaw,
		&claimedRaw,
		&heartbeatRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		DocumentID:      documentID,
		KnowledgeBaseID: kbID,
		Name:            name,
		SourcePath:      sourcePath.String,
		SourceURL:       sourceURL.String,
		FileSize:        fileSize.Int64,
		ChunkSize:       int(chunkSize.Int64),
		ContentLength:   contentLength.Int64,
		ChunkCount:      chunkCount.Int64,
		Status:          Status(statusStr),
		Message:         message.String,
		Deleted:         deleted.Int64 != 0,
	}
	if workerOrdinal.Valid {
		ordinal := int(workerOrdinal.Int64)
		item.WorkerOrdinal = &ordinal
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if claimedRaw.Valid {
		if claimed, err := parseTimeString(claimedRaw.String); err == nil {
			item.ClaimedAt = &claimed
		}
	}
	if heartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(heartbeatRaw.String); err == nil {
			item.HeartbeatAt = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
