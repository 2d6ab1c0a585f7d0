package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"verso/internal/logging"
	"verso/internal/queue"
	"verso/internal/services"
	"verso/internal/stage"
	"verso/internal/testsupport"
	"verso/internal/workflow"
)

type stubStage struct {
	name      string
	prepareFn func(context.Context, *queue.Item) error
	executeFn func(context.Context, *queue.Item) error
}

func (s *stubStage) Prepare(ctx context.Context, item *queue.Item) error {
	if s.prepareFn == nil {
		return nil
	}
	return s.prepareFn(ctx, item)
}

func (s *stubStage) Execute(ctx context.Context, item *queue.Item) error {
	if s.executeFn == nil {
		return nil
	}
	return s.executeFn(ctx, item)
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(s.name)
}

type recordingCompensator struct {
	mu   sync.Mutex
	docs []string
}

func (c *recordingCompensator) DeleteByDocument(_ context.Context, documentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, documentID)
	return nil
}

func (c *recordingCompensator) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.docs...)
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
}

func (n *recordingNotifier) NotifyDocumentCompleted(_ context.Context, name, _ string, chunks int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, fmt.Sprintf("%s:%d", name, chunks))
	return nil
}

func (n *recordingNotifier) NotifyDocumentFailed(_ context.Context, name, _ string, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, fmt.Sprintf("%s:%s", name, reason))
	return nil
}

func (n *recordingNotifier) TestNotification(context.Context) error { return nil }

func (n *recordingNotifier) completedCalls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.completed...)
}

func (n *recordingNotifier) failedCalls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.failed...)
}

type managerHarness struct {
	mgr         *workflow.Manager
	store       *queue.Store
	notifier    *recordingNotifier
	compensator *recordingCompensator
}

func newManagerHarness(t *testing.T, extractor, indexer stage.Handler, opts ...testsupport.ConfigOption) *managerHarness {
	t.Helper()

	opts = append([]testsupport.ConfigOption{testsupport.WithWorkers(1)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)

	notifier := &recordingNotifier{}
	compensator := &recordingCompensator{}
	mgr := workflow.NewManagerWithOptions(cfg, store, logging.NewNop(), notifier, compensator)
	if extractor == nil {
		extractor = &stubStage{name: "extraction"}
	}
	if indexer == nil {
		indexer = &stubStage{name: "indexing"}
	}
	mgr.ConfigureStages(workflow.StageSet{Extractor: extractor, Indexer: indexer})
	return &managerHarness{mgr: mgr, store: store, notifier: notifier, compensator: compensator}
}

func (h *managerHarness) start(t *testing.T) {
	t.Helper()
	if err := h.mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(h.mgr.Stop)
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Item {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		item, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if item != nil && item.Status == want {
			return item
		}
		time.Sleep(10 * time.Millisecond)
	}
	item, _ := store.GetByID(context.Background(), id)
	t.Fatalf("item %d never reached %s, last seen %+v", id, want, item)
	return nil
}

func TestManagerStartRequiresStages(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(1))
	store := testsupport.MustOpenStore(t, cfg)

	mgr := workflow.NewManagerWithOptions(cfg, store, logging.NewNop(), &recordingNotifier{}, &recordingCompensator{})
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected error when stages are not configured")
	}
}

func TestManagerStartRejectsDoubleStart(t *testing.T) {
	h := newManagerHarness(t, nil, nil)
	h.start(t)

	if err := h.mgr.Start(context.Background()); err == nil {
		t.Fatal("expected error on second Start")
	}
	if !h.mgr.Running() {
		t.Fatal("manager should still be running after rejected second Start")
	}
}

func TestManagerProcessesItemToCompletion(t *testing.T) {
	extractor := &stubStage{name: "extraction", executeFn: func(_ context.Context, item *queue.Item) error {
		item.ContentLength = 420
		return nil
	}}
	indexer := &stubStage{name: "indexing", executeFn: func(_ context.Context, item *queue.Item) error {
		item.ChunkCount = 3
		return nil
	}}
	h := newManagerHarness(t, extractor, indexer)

	item := testsupport.NewDocument(t, h.store, "guide.md", "doc-guide")
	h.start(t)

	done := waitForStatus(t, h.store, item.ID, queue.StatusCompleted)
	if done.Message != "indexed 3 chunks" {
		t.Fatalf("message = %q", done.Message)
	}
	if done.ChunkCount != 3 || done.ContentLength != 420 {
		t.Fatalf("chunk count = %d, content length = %d", done.ChunkCount, done.ContentLength)
	}
	if done.WorkerOrdinal != nil {
		t.Fatalf("worker ordinal should be cleared, got %d", *done.WorkerOrdinal)
	}

	calls := h.notifier.completedCalls()
	if len(calls) != 1 || calls[0] != "guide.md:3" {
		t.Fatalf("completion notifications = %v", calls)
	}
	if got := h.compensator.calls(); len(got) != 0 {
		t.Fatalf("compensator should not run on success, got %v", got)
	}
}

func TestManagerRecoversInterruptedItemsOnStart(t *testing.T) {
	h := newManagerHarness(t, nil, nil)

	item := testsupport.NewDocument(t, h.store, "stuck.md", "doc-stuck")
	claimed, err := h.store.ClaimNext(context.Background(), 0, 1, 0)
	if err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	if claimed == nil || claimed.ID != item.ID {
		t.Fatalf("claim did not return the seeded item: %+v", claimed)
	}

	h.start(t)

	recovered := waitForStatus(t, h.store, item.ID, queue.StatusFailed)
	if recovered.Message != "interrupted by daemon restart" {
		t.Fatalf("message = %q", recovered.Message)
	}
}

func TestManagerExtractionFailureSkipsCompensation(t *testing.T) {
	extractor := &stubStage{name: "extraction", executeFn: func(context.Context, *queue.Item) error {
		return services.Wrap(services.ErrTransient, "extraction", "read", "", errors.New("disk gone"))
	}}
	h := newManagerHarness(t, extractor, nil)

	item := testsupport.NewDocument(t, h.store, "broken.md", "doc-broken")
	h.start(t)

	failed := waitForStatus(t, h.store, item.ID, queue.StatusFailed)
	if failed.Message != "internal processing error" {
		t.Fatalf("message = %q", failed.Message)
	}
	if got := h.compensator.calls(); len(got) != 0 {
		t.Fatalf("extraction failures must not trigger index deletes, got %v", got)
	}
	if calls := h.notifier.failedCalls(); len(calls) != 1 {
		t.Fatalf("failure notifications = %v", calls)
	}
}

func TestManagerIndexingFailureCompensates(t *testing.T) {
	indexer := &stubStage{name: "indexing", executeFn: func(context.Context, *queue.Item) error {
		return services.Wrap(services.ErrExternalService, "indexing", "insert", "", errors.New("status 502"))
	}}
	h := newManagerHarness(t, nil, indexer)

	item := testsupport.NewDocument(t, h.store, "half.md", "doc-half")
	h.start(t)

	waitForStatus(t, h.store, item.ID, queue.StatusFailed)

	got := h.compensator.calls()
	if len(got) != 1 || got[0] != "doc-half" {
		t.Fatalf("compensator calls = %v", got)
	}
}

func TestManagerValidationFailureSkipsCompensation(t *testing.T) {
	indexer := &stubStage{name: "indexing", executeFn: func(context.Context, *queue.Item) error {
		return services.Wrap(services.ErrValidation, "indexing", "artifact", "document mismatch", nil)
	}}
	h := newManagerHarness(t, nil, indexer)

	item := testsupport.NewDocument(t, h.store, "mismatch.md", "doc-mismatch")
	h.start(t)

	failed := waitForStatus(t, h.store, item.ID, queue.StatusFailed)
	if !strings.Contains(failed.Message, "document mismatch") {
		t.Fatalf("message = %q", failed.Message)
	}
	if got := h.compensator.calls(); len(got) != 0 {
		t.Fatalf("validation failures wrote no chunks; compensator calls = %v", got)
	}
}

func TestManagerStageDeadlineFailsItem(t *testing.T) {
	indexer := &stubStage{name: "indexing", executeFn: func(ctx context.Context, _ *queue.Item) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	h := newManagerHarness(t, nil, indexer, testsupport.WithStageTimeouts(30, 1))

	item := testsupport.NewDocument(t, h.store, "slow.md", "doc-slow")
	h.start(t)

	failed := waitForStatus(t, h.store, item.ID, queue.StatusFailed)
	if !strings.HasPrefix(failed.Message, "processing timeout") {
		t.Fatalf("message = %q", failed.Message)
	}
	// The deadline fired mid-insert, so the partial chunks must be deleted.
	got := h.compensator.calls()
	if len(got) != 1 || got[0] != "doc-slow" {
		t.Fatalf("compensator calls = %v", got)
	}
}

func TestManagerDemotesItemAfterEscapedPanic(t *testing.T) {
	extractor := &stubStage{name: "extraction", prepareFn: func(context.Context, *queue.Item) error {
		panic("prepare blew up")
	}}
	h := newManagerHarness(t, extractor, nil)

	item := testsupport.NewDocument(t, h.store, "panicky.md", "doc-panic")
	h.start(t)

	failed := waitForStatus(t, h.store, item.ID, queue.StatusFailed)
	if failed.Message != "worker panic" {
		t.Fatalf("message = %q", failed.Message)
	}
}

func TestManagerDrainsQueueInOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	extractor := &stubStage{name: "extraction", executeFn: func(_ context.Context, item *queue.Item) error {
		mu.Lock()
		order = append(order, item.Name)
		mu.Unlock()
		return nil
	}}
	h := newManagerHarness(t, extractor, nil)

	first := testsupport.NewDocument(t, h.store, "first.md", "doc-1")
	second := testsupport.NewDocument(t, h.store, "second.md", "doc-2")
	third := testsupport.NewDocument(t, h.store, "third.md", "doc-3")

	h.start(t)
	waitForStatus(t, h.store, first.ID, queue.StatusCompleted)
	waitForStatus(t, h.store, second.ID, queue.StatusCompleted)
	waitForStatus(t, h.store, third.ID, queue.StatusCompleted)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"first.md", "second.md", "third.md"}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("processing order = %v, want %v", order, want)
		}
	}
}

func TestManagerStatusSummary(t *testing.T) {
	h := newManagerHarness(t, nil, nil)
	item := testsupport.NewDocument(t, h.store, "done.md", "doc-done")
	h.start(t)
	waitForStatus(t, h.store, item.ID, queue.StatusCompleted)

	summary := h.mgr.Status(context.Background())
	if !summary.Running {
		t.Fatal("summary should report running")
	}
	if summary.Workers != 1 {
		t.Fatalf("workers = %d", summary.Workers)
	}
	if summary.Queue.Completed != 1 {
		t.Fatalf("completed count = %d", summary.Queue.Completed)
	}
	if len(summary.Stages) != 2 {
		t.Fatalf("stage healths = %d", len(summary.Stages))
	}
	for _, health := range summary.Stages {
		if !health.Ready {
			t.Fatalf("stage %s not ready: %s", health.Name, health.Detail)
		}
	}

	h.mgr.Stop()
	if h.mgr.Running() {
		t.Fatal("manager still running after Stop")
	}
}
