package ipc

import "verso/internal/api"

// StartRequest triggers daemon workflow startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon workflow.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// QueueItem mirrors the HTTP API queue DTO for internal IPC callers.
type QueueItem = api.QueueItem

// StageHealth describes readiness of a pipeline stage.
type StageHealth = api.StageHealth

// StatusResponse represents combined daemon/workflow status information.
type StatusResponse struct {
	Running     bool             `json:"running"`
	PID         int              `json:"pid"`
	Workers     int              `json:"workers"`
	QueueStats  map[string]int64 `json:"queue_stats"`
	LastError   string           `json:"last_error"`
	LastItem    *QueueItem       `json:"last_item"`
	LockPath    string           `json:"lock_path"`
	QueueDBPath string           `json:"queue_db_path"`
	StageHealth []StageHealth    `json:"stage_health"`
}

// AddDocumentRequest enqueues a local file for ingestion.
type AddDocumentRequest struct {
	Path            string `json:"path"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
	ChunkSize       int    `json:"chunk_size"`
}

// AddDocumentResponse returns the created queue entry.
type AddDocumentResponse struct {
	Item QueueItem `json:"item"`
}

// RemoveDocumentRequest removes a document and its indexed chunks.
type RemoveDocumentRequest struct {
	DocumentID string `json:"document_id"`
}

// RemoveDocumentResponse reports removal.
type RemoveDocumentResponse struct {
	Removed bool `json:"removed"`
}

// DocumentStatusRequest fetches queue entries by document id.
type DocumentStatusRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

// DocumentStatusResponse contains the matching queue entries.
type DocumentStatusResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueListRequest filters queue listing by status.
type QueueListRequest struct {
	Statuses []string `json:"statuses"`
}

// QueueListResponse contains queue entries.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueDescribeRequest fetches a single queue item by id.
type QueueDescribeRequest struct {
	ID int64 `json:"id"`
}

// QueueDescribeResponse contains a single queue entry.
type QueueDescribeResponse struct {
	Item QueueItem `json:"item"`
}

// QueueClearRequest removes all items.
type QueueClearRequest struct{}

// QueueClearResponse reports number of removed entries.
type QueueClearResponse struct {
	Removed int64 `json:"removed"`
}

// QueueClearFailedRequest removes failed items.
type QueueClearFailedRequest struct{}

// QueueClearFailedResponse reports number of removed entries.
type QueueClearFailedResponse struct {
	Removed int64 `json:"removed"`
}

// QueueClearCompletedRequest removes completed items.
type QueueClearCompletedRequest struct{}

// QueueClearCompletedResponse reports number of removed entries.
type QueueClearCompletedResponse struct {
	Removed int64 `json:"removed"`
}

// QueueResetRequest fails items stuck in processing.
type QueueResetRequest struct{}

// QueueResetResponse reports number of items reset.
type QueueResetResponse struct {
	Updated int64 `json:"updated"`
}

// QueueRetryRequest resubmits failed items. Empty list means all failed
// items.
type QueueRetryRequest struct {
	IDs []int64 `json:"ids"`
}

// QueueRetryResponse reports number of resubmitted items.
type QueueRetryResponse struct {
	Updated int64 `json:"updated"`
}

// QueueHealthRequest fetches aggregate queue counts.
type QueueHealthRequest struct{}

// QueueHealthResponse reports queue counts by status.
type QueueHealthResponse struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}

// DatabaseHealthRequest fetches database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath      string `json:"db_path"`
	Reachable   bool   `json:"reachable"`
	JournalMode string `json:"journal_mode"`
	Version     int    `json:"version"`
	Error       string `json:"error"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
