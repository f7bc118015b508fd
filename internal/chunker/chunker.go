// Package chunker splits document text into overlapping fixed-size windows.
// Chunks are the unit of indexing and retrieval.
package chunker

import "fmt"

const (
	// DefaultChunkSize is the window size in runes used for indexing.
	DefaultChunkSize = 500
	// DefaultOverlap is the number of runes shared between adjacent chunks.
	DefaultOverlap = 100
)

// Chunk splits text into windows of chunkSize runes, each window overlapping
// the previous one by overlap runes. The final chunk may be shorter than
// chunkSize. Empty input yields no chunks. Rune-based slicing keeps
// multi-byte text (e.g. Japanese) intact at chunk boundaries.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap %d must be in [0, %d)", overlap, chunkSize)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end - overlap
	}
	return chunks, nil
}

// Split chunks text with the default window and overlap.
func Split(text string) ([]string, error) {
	return Chunk(text, DefaultChunkSize, DefaultOverlap)
}
