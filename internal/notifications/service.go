package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"verso/internal/config"
)

const userAgent = "Verso/0.1.0"

// Service defines the notification surface exposed to the workflow.
type Service interface {
	NotifyDocumentCompleted(ctx context.Context, name, kbID string, chunks int64) error
	NotifyDocumentFailed(ctx context.Context, name, kbID, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a webhook-backed notification service. When no webhook
// URL is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	url := strings.TrimSpace(cfg.Notifications.WebhookURL)
	if url == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookService{
		endpoint:        url,
		client:          &http.Client{Timeout: timeout},
		sendCompletions: cfg.Notifications.Completed,
		sendFailures:    cfg.Notifications.Failed,
	}
}

type event struct {
	Event    string `json:"event"`
	Document string `json:"document"`
	KBID     string `json:"kb_id,omitempty"`
	Chunks   int64  `json:"chunks,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type webhookService struct {
	endpoint        string
	client          *http.Client
	sendCompletions bool
	sendFailures    bool
}

func (w *webhookService) NotifyDocumentCompleted(ctx context.Context, name, kbID string, chunks int64) error {
	if !w.sendCompletions {
		return nil
	}
	return w.send(ctx, event{
		Event:    "document.completed",
		Document: strings.TrimSpace(name),
		KBID:     strings.TrimSpace(kbID),
		Chunks:   chunks,
	})
}

func (w *webhookService) NotifyDocumentFailed(ctx context.Context, name, kbID, reason string) error {
	if !w.sendFailures {
		return nil
	}
	return w.send(ctx, event{
		Event:    "document.failed",
		Document: strings.TrimSpace(name),
		KBID:     strings.TrimSpace(kbID),
		Reason:   strings.TrimSpace(reason),
	})
}

func (w *webhookService) TestNotification(ctx context.Context) error {
	return w.send(ctx, event{Event: "test"})
}

func (w *webhookService) send(ctx context.Context, data event) error {
	if w == nil || w.client == nil {
		return nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyDocumentCompleted(context.Context, string, string, int64) error { return nil }
func (noopService) NotifyDocumentFailed(context.Context, string, string, string) error   { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
