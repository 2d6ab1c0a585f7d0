// Package staging manages the per-item artifacts handed from the
// extraction stage to the indexing stage. Each work item gets one
// directory under the staging root keyed by its id; the chunk set is a
// single JSON file so a restart between stages leaves nothing ambiguous.
package staging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Chunk is one split of a normalized document.
type Chunk struct {
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

// ChunkSet is the extraction stage's output artifact.
type ChunkSet struct {
	DocumentID    string  `json:"document_id"`
	ContentLength int64   `json:"content_length"`
	Chunks        []Chunk `json:"chunks"`
}

// ItemDir returns the staging directory for a work item.
func ItemDir(stagingRoot string, itemID int64) string {
	return filepath.Join(stagingRoot, fmt.Sprintf("item-%d", itemID))
}

func chunksPath(stagingRoot string, itemID int64) string {
	return filepath.Join(ItemDir(stagingRoot, itemID), "chunks.json")
}

// WriteChunks persists the chunk set atomically (write then rename) so the
// indexing stage never reads a torn artifact.
func WriteChunks(stagingRoot string, itemID int64, set ChunkSet) error {
	dir := ItemDir(stagingRoot, itemID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode chunk set: %w", err)
	}
	tmp := chunksPath(stagingRoot, itemID) + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write chunk set: %w", err)
	}
	if err := os.Rename(tmp, chunksPath(stagingRoot, itemID)); err != nil {
		return fmt.Errorf("finalize chunk set: %w", err)
	}
	return nil
}

// ReadChunks loads the chunk set written by the extraction stage.
func ReadChunks(stagingRoot string, itemID int64) (ChunkSet, error) {
	payload, err := os.ReadFile(chunksPath(stagingRoot, itemID))
	if err != nil {
		return ChunkSet{}, fmt.Errorf("read chunk set: %w", err)
	}
	var set ChunkSet
	if err := json.Unmarshal(payload, &set); err != nil {
		return ChunkSet{}, fmt.Errorf("decode chunk set: %w", err)
	}
	return set, nil
}

// Cleanup removes a work item's staging directory. Called after the item
// reaches a terminal status; errors are returned for logging but nothing
// depends on the removal succeeding.
func Cleanup(stagingRoot string, itemID int64) error {
	return os.RemoveAll(ItemDir(stagingRoot, itemID))
}
