// Package splitter segments document text into overlapping chunks sized for
// embedding and context windows.
package splitter

import (
	"errors"
	"fmt"

	"coursetutor/internal/index"
)

// Default window parameters, tuned for text-embedding-3-small input sizes.
const (
	DefaultChunkSize = 800
	DefaultOverlap   = 120
)

// ErrBadChunkParams reports invalid segmentation parameters. It is a
// configuration error and is never retried.
var ErrBadChunkParams = errors.New("invalid chunk parameters")

// Split segments text into chunks of at most maxSize runes, each overlapping
// its predecessor by overlap runes. Requires 0 <= overlap < maxSize. Empty
// text yields no chunks.
//
// Segmentation is deterministic: the same text and parameters always produce
// the same chunks in the same order, which the index cache relies on.
// Dropping the first overlap runes of every chunk after the first and
// concatenating the rest reproduces the input exactly.
func Split(text string, maxSize, overlap int) ([]index.Chunk, error) {
	if maxSize <= 0 || overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("%w: maxSize=%d overlap=%d", ErrBadChunkParams, maxSize, overlap)
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := maxSize - overlap

	var chunks []index.Chunk
	for start := 0; start < len(runes); start += step {
		end := min(start+maxSize, len(runes))
		chunks = append(chunks, index.Chunk{
			Ord:  len(chunks),
			Text: string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
