package indexing

import (
	"context"
	"fmt"

	"log/slog"

	"verso/internal/config"
	"verso/internal/logging"
	"verso/internal/queue"
	"verso/internal/services"
	"verso/internal/stage"
	"verso/internal/staging"
	"verso/internal/vectorindex"
)

// Service is the slice of the vector index client the indexer needs.
type Service interface {
	InsertChunks(ctx context.Context, documentID, kbID string, chunkSize int, chunks []vectorindex.Chunk) (int, error)
	Health(ctx context.Context) error
}

// Indexer is the second pipeline stage: it uploads the staged chunk set to
// the vector index in bounded batches.
type Indexer struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	client Service
}

// NewIndexer constructs the indexing stage handler with the configured
// vector index client.
func NewIndexer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Indexer {
	client := vectorindex.NewClient(vectorindex.Config{
		BaseURL:        cfg.VectorIndex.BaseURL,
		APIKey:         cfg.VectorIndex.APIKey,
		TimeoutSeconds: cfg.VectorIndex.TimeoutSeconds,
	})
	return NewIndexerWithService(cfg, store, logger, client)
}

// NewIndexerWithService allows injecting the vector index client (used in
// tests).
func NewIndexerWithService(cfg *config.Config, store *queue.Store, logger *slog.Logger, client Service) *Indexer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "indexing"))
	}
	return &Indexer{store: store, cfg: cfg, logger: stageLogger, client: client}
}

func (ix *Indexer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, ix.logger)
	item.Message = stage.ProgressMessage("indexing", 0)
	logger.Info("starting indexing", logging.String(logging.FieldKnowledgeBase, item.KnowledgeBaseID))
	return nil
}

func (ix *Indexer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, ix.logger)

	set, err := staging.ReadChunks(ix.cfg.Paths.StagingDir, item.ID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "indexing", "load staged chunks", "", err)
	}
	if set.DocumentID != item.DocumentID {
		return services.Wrap(services.ErrValidation, "indexing", "load staged chunks",
			fmt.Sprintf("staged artifact belongs to document %s", set.DocumentID), nil)
	}

	batchSize := ix.cfg.Pipeline.InsertBatchSize
	total := len(set.Chunks)
	inserted := 0
	for start := 0; start < total; start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + batchSize
		if end > total {
			end = total
		}
		batch := make([]vectorindex.Chunk, 0, end-start)
		for _, chunk := range set.Chunks[start:end] {
			batch = append(batch, vectorindex.Chunk{Ordinal: chunk.Ordinal, Text: chunk.Text})
		}
		count, err := ix.client.InsertChunks(ctx, item.DocumentID, item.KnowledgeBaseID, item.ChunkSize, batch)
		if err != nil {
			return services.Wrap(services.ErrExternalService, "indexing", "insert chunks", "", err)
		}
		inserted += count

		percent := end * 100 / total
		item.Message = stage.ProgressMessage("indexing", percent)
		if ix.store != nil {
			// Progress is best effort; a failed write never fails the stage.
			_ = ix.store.UpdateMessage(ctx, item.ID, item.Message)
		}
	}

	item.ChunkCount = int64(inserted)
	logger.Info("indexing complete", logging.Int("chunks", inserted))
	return nil
}

func (ix *Indexer) HealthCheck(ctx context.Context) stage.Health {
	if err := ix.client.Health(ctx); err != nil {
		return stage.Unhealthy("indexing", err.Error())
	}
	return stage.Healthy("indexing")
}
