package queue

import (
	"strings"
	"time"
)

// Status identifies where a work item sits in its lifecycle.
type Status string

const (
	// StatusPending marks an item waiting to be claimed by a worker.
	StatusPending Status = "pending"
	// StatusProcessing marks an item claimed by exactly one worker.
	StatusProcessing Status = "processing"
	// StatusCompleted marks an item whose chunks were indexed.
	StatusCompleted Status = "completed"
	// StatusFailed marks a terminal failure. Failed items are retried only
	// through an explicit operator resubmission.
	StatusFailed Status = "failed"
)

// TerminalStatuses lists the statuses an item can end in.
func TerminalStatuses() []Status {
	return []Status{StatusCompleted, StatusFailed}
}

// Valid reports whether the status is one of the known lifecycle values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// ParseStatus normalizes a user-supplied status string.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", false
	}
	return status, true
}

// Item is one unit of ingestion work: a single uploaded document tracked
// from intake to terminal status.
type Item struct {
	// ID is assigned by SQLite on insert, increases monotonically, and is
	// never reused. It doubles as the shard partitioning key.
	ID int64
	// DocumentID is the stable business identifier, distinct from ID, used
	// to key vector-index writes and the compensating delete.
	DocumentID      string
	KnowledgeBaseID string
	Name            string
	SourcePath      string
	SourceURL       string
	FileSize        int64
	// ChunkSize is the requested split size in runes; read-only after
	// intake.
	ChunkSize     int
	ContentLength int64
	ChunkCount    int64
	Status        Status
	// Message carries progress text while processing and the terminal
	// diagnostic afterwards.
	Message string
	Deleted bool
	// WorkerOrdinal records which worker claimed the item; nil when no
	// claim is active. Informational only, not a lease token.
	WorkerOrdinal *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ClaimedAt     *time.Time
	HeartbeatAt   *time.Time
}

// IsTerminal reports whether the item reached a final status.
func (i *Item) IsTerminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusFailed
}

// IsProcessing reports whether a worker currently holds the item.
func (i *Item) IsProcessing() bool {
	return i.Status == StatusProcessing
}

// HealthSummary aggregates per-status counts for operator surfaces.
type HealthSummary struct {
	Total      int64
	Pending    int64
	Processing int64
	Completed  int64
	Failed     int64
}

// DatabaseHealth reports connectivity and layout of the backing database.
type DatabaseHealth struct {
	Path        string
	Reachable   bool
	JournalMode string
	Version     int
	Error       string
}
