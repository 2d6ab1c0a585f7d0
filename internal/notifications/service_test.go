package notifications_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"verso/internal/config"
	"verso/internal/notifications"
)

type capturedEvent struct {
	Event    string `json:"event"`
	Document string `json:"document"`
	KBID     string `json:"kb_id"`
	Chunks   int64  `json:"chunks"`
	Reason   string `json:"reason"`
}

func newWebhookServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32, chan capturedEvent) {
	t.Helper()
	var calls atomic.Int32
	events := make(chan capturedEvent, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		var evt capturedEvent
		if err := json.Unmarshal(body, &evt); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		events <- evt
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &calls, events
}

func newWebhookConfig(url string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.WebhookURL = url
	return &cfg
}

func TestNotifyDocumentCompletedPostsEvent(t *testing.T) {
	server, _, events := newWebhookServer(t, http.StatusOK)
	svc := notifications.NewService(newWebhookConfig(server.URL))

	if err := svc.NotifyDocumentCompleted(context.Background(), " guide.md ", "kb-docs", 12); err != nil {
		t.Fatalf("NotifyDocumentCompleted: %v", err)
	}

	evt := <-events
	if evt.Event != "document.completed" || evt.Document != "guide.md" {
		t.Fatalf("event = %+v", evt)
	}
	if evt.KBID != "kb-docs" || evt.Chunks != 12 {
		t.Fatalf("event = %+v", evt)
	}
}

func TestNotifyDocumentFailedPostsReason(t *testing.T) {
	server, _, events := newWebhookServer(t, http.StatusOK)
	svc := notifications.NewService(newWebhookConfig(server.URL))

	if err := svc.NotifyDocumentFailed(context.Background(), "bad.md", "kb-docs", "validation error: content is empty"); err != nil {
		t.Fatalf("NotifyDocumentFailed: %v", err)
	}

	evt := <-events
	if evt.Event != "document.failed" || evt.Reason != "validation error: content is empty" {
		t.Fatalf("event = %+v", evt)
	}
}

func TestNotifyRespectsOutcomeToggles(t *testing.T) {
	server, calls, _ := newWebhookServer(t, http.StatusOK)
	cfg := newWebhookConfig(server.URL)
	cfg.Notifications.Completed = false
	cfg.Notifications.Failed = false
	svc := notifications.NewService(cfg)

	if err := svc.NotifyDocumentCompleted(context.Background(), "a.md", "kb", 1); err != nil {
		t.Fatalf("NotifyDocumentCompleted: %v", err)
	}
	if err := svc.NotifyDocumentFailed(context.Background(), "a.md", "kb", "boom"); err != nil {
		t.Fatalf("NotifyDocumentFailed: %v", err)
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("webhook calls = %d, want 0", got)
	}
}

func TestNotifySurfacesWebhookRejection(t *testing.T) {
	server, _, _ := newWebhookServer(t, http.StatusBadGateway)
	svc := notifications.NewService(newWebhookConfig(server.URL))

	err := svc.NotifyDocumentCompleted(context.Background(), "a.md", "kb", 1)
	if err == nil || !strings.Contains(err.Error(), "webhook returned 502") {
		t.Fatalf("err = %v", err)
	}
}

func TestTestNotificationSendsTestEvent(t *testing.T) {
	server, _, events := newWebhookServer(t, http.StatusOK)
	svc := notifications.NewService(newWebhookConfig(server.URL))

	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if evt := <-events; evt.Event != "test" {
		t.Fatalf("event = %+v", evt)
	}
}

func TestMissingWebhookURLIsNoop(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyDocumentCompleted(context.Background(), "a.md", "kb", 1); err != nil {
		t.Fatalf("noop NotifyDocumentCompleted: %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop TestNotification: %v", err)
	}
}
