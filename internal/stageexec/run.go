// Package stageexec runs a single pipeline stage against an ephemeral work
// item, outside the queue. The CLI uses it to exercise extraction on a local
// file without enqueueing anything, which keeps stage debugging separate
// from the scheduler's claim semantics.
package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"verso/internal/logging"
	"verso/internal/queue"
	"verso/internal/stage"
)

// Options controls a one-shot stage execution.
type Options struct {
	Logger    *slog.Logger
	Handler   stage.Handler
	StageName string
	// SourcePath is the local file fed to the stage.
	SourcePath string
	// ChunkSize overrides the split size; zero uses the queue default.
	ChunkSize int
	// Timeout bounds Execute; zero means no deadline.
	Timeout time.Duration
}

// Result reports what the stage produced.
type Result struct {
	Item     *queue.Item
	Duration time.Duration
}

// Run builds an ephemeral item for the source file and drives the handler
// through Prepare and Execute. Nothing is persisted; the returned item
// carries whatever the stage wrote (content length, chunk count, message).
func (o Options) validate() error {
	if o.Handler == nil {
		return fmt.Errorf("stage handler unavailable: %s", o.StageName)
	}
	if strings.TrimSpace(o.SourcePath) == "" {
		return fmt.Errorf("source path is required")
	}
	return nil
}

func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	absPath, err := filepath.Abs(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = queue.DefaultChunkSize
	}
	item := &queue.Item{
		DocumentID:      "debug-" + filepath.Base(absPath),
		KnowledgeBaseID: "debug",
		Name:            info.Name(),
		SourcePath:      absPath,
		FileSize:        info.Size(),
		ChunkSize:       chunkSize,
		Status:          queue.StatusProcessing,
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	started := time.Now()
	logger.Info("one-shot stage started",
		logging.String(logging.FieldStage, opts.StageName),
		logging.String("source_file", absPath),
		logging.String(logging.FieldEventType, "stage_started"),
	)

	if err := opts.Handler.Prepare(ctx, item); err != nil {
		return nil, err
	}
	if err := opts.Handler.Execute(ctx, item); err != nil {
		logger.Error("one-shot stage failed",
			logging.String(logging.FieldStage, opts.StageName),
			logging.Error(err),
			logging.String(logging.FieldEventType, "stage_failed"),
		)
		return nil, err
	}

	elapsed := time.Since(started)
	logger.Info("one-shot stage finished",
		logging.String(logging.FieldStage, opts.StageName),
		logging.Duration(logging.FieldDuration, elapsed),
		logging.String(logging.FieldEventType, "stage_finished"),
	)
	return &Result{Item: item, Duration: elapsed}, nil
}
