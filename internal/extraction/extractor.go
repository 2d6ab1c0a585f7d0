package extraction

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"errors"
	"log/slog"

	"verso/internal/config"
	"verso/internal/logging"
	"verso/internal/queue"
	"verso/internal/services"
	"verso/internal/stage"
	"verso/internal/staging"
	"verso/internal/textutil"
)

// Extractor is the first pipeline stage: it reads the source document,
// normalizes the text, enforces the content limits, and writes the chunk
// set artifact the indexing stage consumes.
type Extractor struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewExtractor constructs the extraction stage handler.
func NewExtractor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Extractor {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "extraction"))
	}
	return &Extractor{store: store, cfg: cfg, logger: stageLogger}
}

func (e *Extractor) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)
	if strings.TrimSpace(item.SourcePath) == "" {
		return services.Wrap(services.ErrValidation, "extraction", "validate inputs",
			"work item has no source path", nil)
	}
	item.Message = stage.ProgressMessage("extracting", 0)
	logger.Info("starting extraction",
		logging.String("source", item.SourcePath),
		logging.Int("chunk_size", item.ChunkSize),
	)
	return nil
}

func (e *Extractor) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)

	raw, err := os.ReadFile(item.SourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "extraction", "read document",
				fmt.Sprintf("source file %s is missing", filepath.Base(item.SourcePath)), err)
		}
		return services.Wrap(services.ErrTransient, "extraction", "read document", "", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	text, err := extractText(filepath.Ext(item.SourcePath), raw)
	if err != nil {
		return services.Wrap(services.ErrValidation, "extraction", "decode document", "", err)
	}

	normalized := textutil.Normalize(text)
	length := textutil.RuneLength(normalized)
	if length == 0 {
		return services.Wrap(services.ErrValidation, "extraction", "validate content",
			"document contains no extractable text", nil)
	}
	if max := e.cfg.Pipeline.MaxChars; max > 0 && length > max {
		return services.Wrap(services.ErrValidation, "extraction", "validate content",
			fmt.Sprintf("content length %d exceeds the %d character limit", length, max), nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	chunkSize := item.ChunkSize
	if chunkSize <= 0 {
		chunkSize = e.cfg.Pipeline.DefaultChunkSize
	}
	chunks := Split(normalized, chunkSize, e.cfg.Pipeline.ChunkOverlap)

	set := staging.ChunkSet{
		DocumentID:    item.DocumentID,
		ContentLength: int64(length),
		Chunks:        chunks,
	}
	if err := staging.WriteChunks(e.cfg.Paths.StagingDir, item.ID, set); err != nil {
		return services.Wrap(services.ErrTransient, "extraction", "stage chunks", "", err)
	}

	item.ContentLength = int64(length)
	item.Message = stage.ProgressMessage("extracting", 100)
	logger.Info("extraction complete",
		logging.Int("content_length", length),
		logging.Int("chunks", len(chunks)),
	)
	return nil
}

func (e *Extractor) HealthCheck(ctx context.Context) stage.Health {
	if _, err := os.Stat(e.cfg.Paths.StagingDir); err != nil {
		return stage.Unhealthy("extraction", fmt.Sprintf("staging dir: %v", err))
	}
	return stage.Healthy("extraction")
}
