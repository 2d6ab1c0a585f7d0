package indexing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"verso/internal/indexing"
	"verso/internal/logging"
	"verso/internal/queue"
	"verso/internal/services"
	"verso/internal/staging"
	"verso/internal/testsupport"
	"verso/internal/vectorindex"
)

type fakeIndexService struct {
	batches   [][]vectorindex.Chunk
	failAfter int
	healthErr error
}

func (f *fakeIndexService) InsertChunks(_ context.Context, documentID, kbID string, chunkSize int, chunks []vectorindex.Chunk) (int, error) {
	if f.failAfter > 0 && len(f.batches) >= f.failAfter {
		return 0, errors.New("index unavailable")
	}
	f.batches = append(f.batches, chunks)
	return len(chunks), nil
}

func (f *fakeIndexService) Health(context.Context) error {
	return f.healthErr
}

func stageChunks(t *testing.T, stagingDir string, item *queue.Item, count int) {
	t.Helper()
	set := staging.ChunkSet{DocumentID: item.DocumentID, ContentLength: int64(count * 10)}
	for i := 0; i < count; i++ {
		set.Chunks = append(set.Chunks, staging.Chunk{Ordinal: i, Text: fmt.Sprintf("chunk %d", i)})
	}
	if err := staging.WriteChunks(stagingDir, item.ID, set); err != nil {
		t.Fatalf("WriteChunks failed: %v", err)
	}
}

func TestIndexerInsertsInBatches(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Pipeline.InsertBatchSize = 4
	store := testsupport.MustOpenStore(t, cfg)
	service := &fakeIndexService{}
	indexer := indexing.NewIndexerWithService(cfg, store, logging.NewNop(), service)

	item := testsupport.NewDocument(t, store, "guide.md", "doc-guide")
	stageChunks(t, cfg.Paths.StagingDir, item, 10)

	if err := indexer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(service.batches) != 3 {
		t.Fatalf("expected 3 batches for 10 chunks at size 4, got %d", len(service.batches))
	}
	if len(service.batches[0]) != 4 || len(service.batches[2]) != 2 {
		t.Fatalf("unexpected batch sizes: %d, %d, %d",
			len(service.batches[0]), len(service.batches[1]), len(service.batches[2]))
	}
	if item.ChunkCount != 10 {
		t.Fatalf("expected chunk count 10, got %d", item.ChunkCount)
	}
}

func TestIndexerRecordsProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Pipeline.InsertBatchSize = 5
	store := testsupport.MustOpenStore(t, cfg)
	service := &fakeIndexService{}
	indexer := indexing.NewIndexerWithService(cfg, store, logging.NewNop(), service)

	item := testsupport.NewDocument(t, store, "guide.md", "doc-guide")
	stageChunks(t, cfg.Paths.StagingDir, item, 10)

	if err := indexer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	fetched, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Message != "indexing:100%" {
		t.Fatalf("expected final progress message, got %q", fetched.Message)
	}
}

func TestIndexerFailsOnServiceError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Pipeline.InsertBatchSize = 4
	store := testsupport.MustOpenStore(t, cfg)
	service := &fakeIndexService{failAfter: 1}
	indexer := indexing.NewIndexerWithService(cfg, store, logging.NewNop(), service)

	item := testsupport.NewDocument(t, store, "guide.md", "doc-guide")
	stageChunks(t, cfg.Paths.StagingDir, item, 10)

	err := indexer.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestIndexerRejectsMismatchedArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	service := &fakeIndexService{}
	indexer := indexing.NewIndexerWithService(cfg, store, logging.NewNop(), service)

	item := testsupport.NewDocument(t, store, "guide.md", "doc-guide")
	other := *item
	other.DocumentID = "doc-other"
	stageChunks(t, cfg.Paths.StagingDir, &other, 3)

	err := indexer.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIndexerMissingArtifactIsTransient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	service := &fakeIndexService{}
	indexer := indexing.NewIndexerWithService(cfg, store, logging.NewNop(), service)

	item := testsupport.NewDocument(t, store, "guide.md", "doc-guide")

	err := indexer.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestIndexerHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	healthy := indexing.NewIndexerWithService(cfg, store, logging.NewNop(), &fakeIndexService{})
	if health := healthy.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy stage, got %#v", health)
	}

	unhealthy := indexing.NewIndexerWithService(cfg, store, logging.NewNop(),
		&fakeIndexService{healthErr: errors.New("no route")})
	if health := unhealthy.HealthCheck(context.Background()); health.Ready {
		t.Fatalf("expected unhealthy stage, got %#v", health)
	}
}
