package vectorindex_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"verso/internal/vectorindex"
)

func newTestClient(baseURL string) *vectorindex.Client {
	return vectorindex.NewClient(
		vectorindex.Config{BaseURL: baseURL, APIKey: "secret"},
		vectorindex.WithSleeper(func(time.Duration) {}),
	)
}

func TestInsertChunks(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chunks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"inserted": 2})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	inserted, err := client.InsertChunks(context.Background(), "doc-1", "kb-main", 800, []vectorindex.Chunk{
		{Ordinal: 0, Text: "first"},
		{Ordinal: 1, Text: "second"},
	})
	if err != nil {
		t.Fatalf("InsertChunks failed: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted, got %d", inserted)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody["document_id"] != "doc-1" || gotBody["kb_id"] != "kb-main" {
		t.Fatalf("unexpected request body: %#v", gotBody)
	}
}

func TestInsertChunksEmptyBatchSkipsRequest(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	inserted, err := client.InsertChunks(context.Background(), "doc-1", "kb", 800, nil)
	if err != nil {
		t.Fatalf("expected no error for empty batch, got %v", err)
	}
	if inserted != 0 {
		t.Fatalf("expected 0 inserted, got %d", inserted)
	}
}

func TestInsertChunksRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"inserted": 1})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	inserted, err := client.InsertChunks(context.Background(), "doc-1", "kb", 800,
		[]vectorindex.Chunk{{Ordinal: 0, Text: "only"}})
	if err != nil {
		t.Fatalf("InsertChunks failed: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 inserted, got %d", inserted)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestInsertChunksDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.InsertChunks(context.Background(), "doc-1", "kb", 800,
		[]vectorindex.Chunk{{Ordinal: 0, Text: "only"}})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly 1 attempt for a permanent failure, got %d", calls.Load())
	}
}

func TestInsertChunksSurfacesServiceRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"inserted": 0, "error": "dimension mismatch"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.InsertChunks(context.Background(), "doc-1", "kb", 800,
		[]vectorindex.Chunk{{Ordinal: 0, Text: "only"}})
	if err == nil {
		t.Fatal("expected error for rejected chunks")
	}
}

func TestDeleteByDocumentRetriesAllFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chunks/delete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.DeleteByDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("DeleteByDocument failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected retry on client error for delete, got %d attempts", calls.Load())
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
}

func TestHealthReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Health(context.Background()); err == nil {
		t.Fatal("expected error for unhealthy service")
	}
}
