package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"verso/internal/daemon"
	"verso/internal/ipc"
	"verso/internal/logging"
	"verso/internal/notifications"
	"verso/internal/queue"
	"verso/internal/stage"
	"verso/internal/testsupport"
	"verso/internal/workflow"
)

type noopStage struct{}

func (noopStage) Prepare(context.Context, *queue.Item) error { return nil }
func (noopStage) Execute(context.Context, *queue.Item) error { return nil }
func (noopStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

type noopCompensator struct{}

func (noopCompensator) DeleteByDocument(context.Context, string) error { return nil }

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logPath := filepath.Join(cfg.Paths.LogDir, "ipc-test.log")
	logger := logging.NewNop()
	mgr := workflow.NewManagerWithOptions(cfg, store, logger, notifications.NewService(cfg), noopCompensator{})
	mgr.ConfigureStages(workflow.StageSet{Extractor: noopStage{}, Indexer: noopStage{}})
	d, err := daemon.New(cfg, store, logger, mgr, logPath, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.LogDir, "verso.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.Workers != cfg.Workers.Count {
		t.Fatalf("expected %d workers, got %d", cfg.Workers.Count, status.Workers)
	}

	docA := testsupport.NewDocument(t, store, "a.txt", "doc-a")
	docB := testsupport.NewDocument(t, store, "b.txt", "doc-b")
	if err := store.RecordOutcome(ctx, docB.ID, queue.Outcome{Status: queue.StatusFailed, Message: "boom"}); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}

	list, err := client.QueueList(nil)
	if err != nil {
		t.Fatalf("QueueList RPC failed: %v", err)
	}
	if len(list.Items) < 2 {
		t.Fatalf("expected at least 2 items, got %d", len(list.Items))
	}

	failed, err := client.QueueList([]string{"failed"})
	if err != nil {
		t.Fatalf("QueueList failed filter: %v", err)
	}
	if len(failed.Items) != 1 || failed.Items[0].ID != docB.ID {
		t.Fatalf("unexpected failed items: %#v", failed.Items)
	}

	describe, err := client.QueueDescribe(docA.ID)
	if err != nil {
		t.Fatalf("QueueDescribe RPC failed: %v", err)
	}
	if describe.Item.DocumentID != "doc-a" {
		t.Fatalf("unexpected document id %q", describe.Item.DocumentID)
	}

	docStatus, err := client.DocumentStatus([]string{"doc-a", "doc-missing"})
	if err != nil {
		t.Fatalf("DocumentStatus RPC failed: %v", err)
	}
	if len(docStatus.Items) != 1 || docStatus.Items[0].DocumentID != "doc-a" {
		t.Fatalf("unexpected document status items: %#v", docStatus.Items)
	}

	retry, err := client.QueueRetry(nil)
	if err != nil {
		t.Fatalf("QueueRetry RPC failed: %v", err)
	}
	if retry.Updated != 1 {
		t.Fatalf("expected 1 resubmitted item, got %d", retry.Updated)
	}

	health, err := client.QueueHealth()
	if err != nil {
		t.Fatalf("QueueHealth RPC failed: %v", err)
	}
	if health.Total < 2 {
		t.Fatalf("expected at least 2 items in health summary, got %d", health.Total)
	}

	dbHealth, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth RPC failed: %v", err)
	}
	if !dbHealth.Reachable {
		t.Fatalf("expected reachable database, got %#v", dbHealth)
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected Stopped=true")
	}
}
