package api_test

import (
	"testing"
	"time"

	"verso/internal/api"
	"verso/internal/queue"
	"verso/internal/stage"
	"verso/internal/workflow"
)

func TestFromQueueItemProcessingProgress(t *testing.T) {
	ordinal := 1
	claimed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	item := &queue.Item{
		ID:              7,
		DocumentID:      "doc-7",
		KnowledgeBaseID: "kb-docs",
		Name:            "guide.md",
		Status:          queue.StatusProcessing,
		Message:         "indexing:75%",
		WorkerOrdinal:   &ordinal,
		CreatedAt:       claimed.Add(-time.Minute),
		UpdatedAt:       claimed,
		ClaimedAt:       &claimed,
	}

	dto := api.FromQueueItem(item)
	if dto.ID != 7 || dto.Status != "processing" {
		t.Fatalf("dto = %+v", dto)
	}
	if dto.Progress.Stage != "indexing" || dto.Progress.Percent != 75 {
		t.Fatalf("progress = %+v", dto.Progress)
	}
	if dto.WorkerOrdinal == nil || *dto.WorkerOrdinal != 1 {
		t.Fatalf("worker ordinal = %v", dto.WorkerOrdinal)
	}
	if dto.ClaimedAt != "2026-03-14T09:30:00.000Z" {
		t.Fatalf("claimed at = %q", dto.ClaimedAt)
	}
}

func TestFromQueueItemTerminalHasNoProgress(t *testing.T) {
	item := &queue.Item{
		ID:      3,
		Status:  queue.StatusCompleted,
		Message: "indexed 12 chunks",
	}

	dto := api.FromQueueItem(item)
	if dto.Progress.Stage != "" || dto.Progress.Percent != 0 {
		t.Fatalf("progress = %+v", dto.Progress)
	}
	if dto.Message != "indexed 12 chunks" {
		t.Fatalf("message = %q", dto.Message)
	}
	if dto.CreatedAt != "" {
		t.Fatalf("zero timestamp should format empty, got %q", dto.CreatedAt)
	}
}

func TestFromQueueItemIgnoresMalformedProgress(t *testing.T) {
	cases := []string{"", "indexing", "indexing:abc%", "indexing:150%", "indexing:-5%"}
	for _, message := range cases {
		item := &queue.Item{Status: queue.StatusProcessing, Message: message}
		dto := api.FromQueueItem(item)
		if dto.Progress.Stage != "" || dto.Progress.Percent != 0 {
			t.Fatalf("message %q produced progress %+v", message, dto.Progress)
		}
	}
}

func TestFromQueueItemsSkipsNil(t *testing.T) {
	items := []*queue.Item{
		{ID: 1, Status: queue.StatusPending},
		nil,
		{ID: 2, Status: queue.StatusFailed},
	}
	dtos := api.FromQueueItems(items)
	if len(dtos) != 2 || dtos[0].ID != 1 || dtos[1].ID != 2 {
		t.Fatalf("dtos = %+v", dtos)
	}
}

func TestFromStatusSummary(t *testing.T) {
	last := &queue.Item{ID: 9, Status: queue.StatusCompleted}
	summary := workflow.StatusSummary{
		Running:   true,
		Workers:   4,
		LastError: "boom",
		LastItem:  last,
		Queue: queue.HealthSummary{
			Pending:    2,
			Processing: 1,
			Completed:  5,
			Failed:     1,
		},
		Stages: []stage.Health{
			stage.Healthy("extraction"),
			stage.Unhealthy("indexing", "vector index unreachable"),
		},
	}

	status := api.FromStatusSummary(summary)
	if !status.Running || status.Workers != 4 || status.LastError != "boom" {
		t.Fatalf("status = %+v", status)
	}
	if status.QueueStats["pending"] != 2 || status.QueueStats["completed"] != 5 {
		t.Fatalf("queue stats = %v", status.QueueStats)
	}
	if status.LastItem == nil || status.LastItem.ID != 9 {
		t.Fatalf("last item = %+v", status.LastItem)
	}
	if len(status.StageHealth) != 2 {
		t.Fatalf("stage health = %+v", status.StageHealth)
	}
	if status.StageHealth[1].Ready || status.StageHealth[1].Detail != "vector index unreachable" {
		t.Fatalf("indexing health = %+v", status.StageHealth[1])
	}
}
