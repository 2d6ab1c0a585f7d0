package api

import (
	"strconv"
	"strings"
	"time"

	"verso/internal/queue"
	"verso/internal/workflow"
)

// FromQueueItem converts a queue record into its transport representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}
	dto := QueueItem{
		ID:              item.ID,
		DocumentID:      item.DocumentID,
		KnowledgeBaseID: item.KnowledgeBaseID,
		Name:            item.Name,
		SourcePath:      item.SourcePath,
		SourceURL:       item.SourceURL,
		FileSize:        item.FileSize,
		ChunkSize:       item.ChunkSize,
		ContentLength:   item.ContentLength,
		ChunkCount:      item.ChunkCount,
		Status:          string(item.Status),
		Message:         item.Message,
		WorkerOrdinal:   item.WorkerOrdinal,
		CreatedAt:       formatTimestamp(item.CreatedAt),
		UpdatedAt:       formatTimestamp(item.UpdatedAt),
	}
	if item.ClaimedAt != nil {
		dto.ClaimedAt = formatTimestamp(*item.ClaimedAt)
	}
	if item.Status == queue.StatusProcessing {
		dto.Progress = parseProgress(item.Message)
	}
	return dto
}

// FromQueueItems converts a slice of queue records, skipping nils.
func FromQueueItems(items []*queue.Item) []QueueItem {
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromStatusSummary converts a workflow snapshot for transport.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:   summary.Running,
		Workers:   summary.Workers,
		LastError: summary.LastError,
		QueueStats: map[string]int64{
			string(queue.StatusPending):    summary.Queue.Pending,
			string(queue.StatusProcessing): summary.Queue.Processing,
			string(queue.StatusCompleted):  summary.Queue.Completed,
			string(queue.StatusFailed):     summary.Queue.Failed,
		},
	}
	if summary.LastItem != nil {
		item := FromQueueItem(summary.LastItem)
		status.LastItem = &item
	}
	for _, health := range summary.Stages {
		status.StageHealth = append(status.StageHealth, StageHealth{
			Name:   health.Name,
			Ready:  health.Ready,
			Detail: health.Detail,
		})
	}
	return status
}

// parseProgress decodes the "stage:N%" progress text written while a stage
// runs. Anything else yields an empty progress block.
func parseProgress(message string) QueueProgress {
	stage, rest, ok := strings.Cut(message, ":")
	if !ok {
		return QueueProgress{}
	}
	rest = strings.TrimSuffix(strings.TrimSpace(rest), "%")
	percent, err := strconv.Atoi(rest)
	if err != nil || percent < 0 || percent > 100 {
		return QueueProgress{}
	}
	return QueueProgress{Stage: strings.TrimSpace(stage), Percent: percent}
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(dateTimeFormat)
}
