package extraction

import (
	"strings"

	"verso/internal/staging"
)

// Split divides normalized text into chunks of at most chunkSize runes.
// Consecutive chunks share overlap runes of context. Splits prefer the last
// paragraph or sentence boundary inside the window so chunks do not cut
// words mid-thought unless a single unbroken run forces it.
func Split(text string, chunkSize, overlap int) []staging.Chunk {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	var chunks []staging.Chunk
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = start + boundary(runes[start:end])
		}
		segment := strings.TrimSpace(string(runes[start:end]))
		if segment != "" {
			chunks = append(chunks, staging.Chunk{Ordinal: len(chunks), Text: segment})
		}
		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// boundary returns the cut position within the window: after the last
// newline if any, else after the last sentence terminator, else after the
// last space, else the full window.
func boundary(window []rune) int {
	lastNewline, lastSentence, lastSpace := -1, -1, -1
	for i, r := range window {
		switch r {
		case '\n':
			lastNewline = i
		case '.', '!', '?', '。', '！', '？':
			lastSentence = i
		case ' ':
			lastSpace = i
		}
	}
	// Avoid tiny fragments from a boundary near the window start.
	minimum := len(window) / 4
	switch {
	case lastNewline > minimum:
		return lastNewline + 1
	case lastSentence > minimum:
		return lastSentence + 1
	case lastSpace > minimum:
		return lastSpace + 1
	default:
		return len(window)
	}
}
