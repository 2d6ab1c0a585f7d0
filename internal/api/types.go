package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue entry in a transport-friendly format.
type QueueItem struct {
	ID              int64         `json:"id"`
	DocumentID      string        `json:"documentId"`
	KnowledgeBaseID string        `json:"knowledgeBaseId,omitempty"`
	Name            string        `json:"name"`
	SourcePath      string        `json:"sourcePath,omitempty"`
	SourceURL       string        `json:"sourceUrl,omitempty"`
	FileSize        int64         `json:"fileSize,omitempty"`
	ChunkSize       int           `json:"chunkSize,omitempty"`
	ContentLength   int64         `json:"contentLength,omitempty"`
	ChunkCount      int64         `json:"chunkCount,omitempty"`
	Status          string        `json:"status"`
	Progress        QueueProgress `json:"progress"`
	Message         string        `json:"message,omitempty"`
	WorkerOrdinal   *int          `json:"workerOrdinal,omitempty"`
	CreatedAt       string        `json:"createdAt,omitempty"`
	UpdatedAt       string        `json:"updatedAt,omitempty"`
	ClaimedAt       string        `json:"claimedAt,omitempty"`
}

// QueueProgress captures stage progress for an in-flight queue entry.
type QueueProgress struct {
	Stage   string `json:"stage,omitempty"`
	Percent int    `json:"percent"`
}

// StageHealth mirrors readiness reporting for pipeline stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// WorkflowStatus summarizes scheduler state.
type WorkflowStatus struct {
	Running     bool             `json:"running"`
	Workers     int              `json:"workers"`
	QueueStats  map[string]int64 `json:"queueStats"`
	LastError   string           `json:"lastError,omitempty"`
	LastItem    *QueueItem       `json:"lastItem,omitempty"`
	StageHealth []StageHealth    `json:"stageHealth"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	QueueDBPath  string         `json:"queueDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// QueueListResponse wraps a collection of queue items for API responses.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single queue item.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}

// AddDocumentRequest enqueues a document for ingestion.
type AddDocumentRequest struct {
	Path            string `json:"path"`
	KnowledgeBaseID string `json:"knowledgeBaseId,omitempty"`
	ChunkSize       int    `json:"chunkSize,omitempty"`
}

// DocumentStatusRequest looks up queue entries by document identifier.
type DocumentStatusRequest struct {
	DocumentIDs []string `json:"documentIds"`
}
