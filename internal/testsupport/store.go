package testsupport

import (
	"context"
	"fmt"
	"testing"

	"verso/internal/config"
	"verso/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewDocument enqueues a pending document for tests using the provided
// store. The document id is derived from the name when not supplied.
func NewDocument(t testing.TB, store *queue.Store, name, documentID string) *queue.Item {
	t.Helper()

	if documentID == "" {
		documentID = fmt.Sprintf("doc-%s", name)
	}
	item, err := store.NewDocument(context.Background(), queue.DocumentIntake{
		DocumentID:      documentID,
		KnowledgeBaseID: "kb-test",
		Name:            name,
	})
	if err != nil {
		t.Fatalf("store.NewDocument: %v", err)
	}
	return item
}
