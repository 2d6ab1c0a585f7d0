package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"verso/internal/fileutil"
	"verso/internal/logging"
	"verso/internal/queue"
	"verso/internal/textutil"
)

// AddDocumentOptions carries the optional intake parameters.
type AddDocumentOptions struct {
	KnowledgeBaseID string
	ChunkSize       int
}

// AddDocument validates an uploaded file, copies it into the data directory
// under a fresh document id, and enqueues it as pending. The copy is
// verified before the row is inserted so the queue never references a torn
// file.
func (d *Daemon) AddDocument(ctx context.Context, sourcePath string, opts AddDocumentOptions) (*queue.Item, error) {
	trimmed := strings.TrimSpace(sourcePath)
	if trimmed == "" {
		return nil, errors.New("source path is required")
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source path %q is a directory", absPath)
	}
	ext := strings.ToLower(filepath.Ext(info.Name()))
	if !d.cfg.AcceptsExtension(ext) {
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}
	if max := d.cfg.Intake.MaxFileSizeMiB; max > 0 && info.Size() > int64(max)<<20 {
		return nil, fmt.Errorf("file exceeds %d MiB intake limit", max)
	}

	kbID := strings.TrimSpace(opts.KnowledgeBaseID)
	if kbID == "" {
		kbID = d.cfg.Intake.DefaultKnowledgeBase
	}
	name := textutil.SanitizeFileName(info.Name())
	if name == "" {
		name = "document" + ext
	}

	documentID := uuid.NewString()
	storedPath := filepath.Join(d.cfg.Paths.DataDir, "documents",
		textutil.SanitizeToken(kbID), documentID+ext)
	if err := fileutil.CopyFileVerified(absPath, storedPath); err != nil {
		return nil, fmt.Errorf("copy document into data directory: %w", err)
	}

	item, err := d.store.NewDocument(ctx, queue.DocumentIntake{
		DocumentID:      documentID,
		KnowledgeBaseID: kbID,
		Name:            name,
		SourcePath:      storedPath,
		FileSize:        info.Size(),
		ChunkSize:       opts.ChunkSize,
	})
	if err != nil {
		_ = os.Remove(storedPath)
		return nil, fmt.Errorf("enqueue document: %w", err)
	}

	d.logger.Info("document queued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldDocumentID, documentID),
		logging.String(logging.FieldKnowledgeBase, kbID),
		logging.String("name", name),
		logging.Int64("file_size", info.Size()),
		logging.String(logging.FieldEventType, "document_queued"),
	)
	return item, nil
}

// RemoveDocument soft-deletes a document's queue entry and issues the
// vector-index delete so its chunks stop appearing in search results.
func (d *Daemon) RemoveDocument(ctx context.Context, documentID string) error {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return errors.New("document id is required")
	}
	item, err := d.store.GetByDocumentID(ctx, documentID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("document %s not found", documentID)
	}
	if item.IsProcessing() {
		return fmt.Errorf("document %s is processing; retry after it settles", documentID)
	}
	if err := d.store.MarkDeleted(ctx, documentID); err != nil {
		return err
	}
	if comp := d.workflow.Compensator(); comp != nil {
		// Completed documents have live chunks; failed ones may have
		// leftovers from a partial insert. Either way the delete is
		// idempotent.
		if err := comp.DeleteByDocument(ctx, documentID); err != nil {
			d.logger.Warn("index delete for removed document failed",
				logging.String(logging.FieldDocumentID, documentID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the document from the vector index manually"),
			)
		}
	}
	if item.SourcePath != "" {
		_ = os.Remove(item.SourcePath)
	}
	d.logger.Info("document removed",
		logging.String(logging.FieldDocumentID, documentID),
		logging.String(logging.FieldEventType, "document_removed"),
	)
	return nil
}
