package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"verso/internal/queue"
	"verso/internal/testsupport"
)

func TestQueueStatusEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"queue", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueListShowsItems(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.NewDocument(t, env.store, "guide.md", "")
	testsupport.NewDocument(t, env.store, "notes.txt", "")

	out, _, err := runCLI(t, []string{"queue", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "guide.md")
	requireContains(t, out, "notes.txt")
	requireContains(t, out, "Pending")
}

func TestQueueListStatusFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.NewDocument(t, env.store, "pending.md", "")
	seedFailedItem(t, env.store, "broken.md")

	out, _, err := runCLI(t, []string{"queue", "list", "--status", "failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list --status failed: %v", err)
	}
	requireContains(t, out, "broken.md")
	if strings.Contains(out, "pending.md") {
		t.Fatalf("expected pending item to be filtered out, got %q", out)
	}

	if _, _, err := runCLI(t, []string{"queue", "list", "--status", "bogus"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected error for unknown status filter")
	}
}

func TestQueueDescribe(t *testing.T) {
	env := setupCLITestEnv(t)
	item := testsupport.NewDocument(t, env.store, "guide.md", "doc-guide")

	out, _, err := runCLI(t, []string{"queue", "describe", fmt.Sprintf("%d", item.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue describe: %v", err)
	}
	requireContains(t, out, "doc-guide")
	requireContains(t, out, "guide.md")

	if _, _, err := runCLI(t, []string{"queue", "describe", "9999"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected error for missing item")
	}
}

func TestQueueRetryAndClearFailed(t *testing.T) {
	env := setupCLITestEnv(t)
	seedFailedItem(t, env.store, "broken.md")

	out, _, err := runCLI(t, []string{"queue", "retry"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retrying 1 items")

	items, err := env.store.List(context.Background(), queue.StatusPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 pending item after retry, got %d", len(items))
	}

	seedFailedItem(t, env.store, "other.md")
	out, _, err = runCLI(t, []string{"queue", "clear", "--failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear --failed: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed items")
}

func TestQueueClearRejectsConflictingFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"queue", "clear", "--completed", "--failed"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected error for conflicting clear flags")
	}
}

func TestQueueHealth(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.NewDocument(t, env.store, "guide.md", "")

	out, _, err := runCLI(t, []string{"queue", "health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	requireContains(t, out, "Total:      1")
	requireContains(t, out, "Reachable:  yes")
}
