// Package index provides per-document embedding indexes for nearest-neighbor
// retrieval, plus the process-wide cache that builds them lazily.
package index

import (
	"context"
	"errors"
)

// VectorDimension is the embedding size for text-embedding-3-small.
const VectorDimension = 1536

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrEmbeddingCount    = errors.New("embedding count does not match chunk count")
)

// Chunk is a bounded substring of a document's text used as a retrieval unit.
// Ord is the chunk's position in the original segmentation order.
type Chunk struct {
	Ord  int
	Text string
}

// ScoredChunk pairs a chunk with its similarity score for a query.
type ScoredChunk struct {
	Chunk
	Score float64
}

// Index supports nearest-neighbor search over one document's embedded chunks.
// Implementations are safe for concurrent reads once built.
type Index interface {
	// Search returns up to k chunks ranked by descending similarity to the
	// query vector. An empty index yields an empty result, not an error.
	Search(ctx context.Context, vector []float32, k int) ([]ScoredChunk, error)

	// Len reports the number of indexed chunks.
	Len() int
}
