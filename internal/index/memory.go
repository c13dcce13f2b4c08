package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"coursetutor/internal/embedding"
)

// MemoryIndex is a brute-force in-memory index. Vectors are L2-normalized at
// build time so cosine similarity reduces to a dot product at query time.
// The chunk sets are small (one course document each), so linear scan is fine.
type MemoryIndex struct {
	chunks  []Chunk
	vectors [][]float32
}

// Build embeds all chunks and constructs a MemoryIndex. The build is atomic
// from the caller's perspective: any embedding failure returns an error and
// no partial index.
func Build(ctx context.Context, chunks []Chunk, embed embedding.Func) (*MemoryIndex, error) {
	if len(chunks) == 0 {
		return &MemoryIndex{}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %d embeddings for %d chunks", ErrEmbeddingCount, len(vectors), len(chunks))
	}

	dim := len(vectors[0])
	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(v), dim)
		}
		normalized[i] = normalize(v)
	}

	idx := &MemoryIndex{
		chunks:  make([]Chunk, len(chunks)),
		vectors: normalized,
	}
	copy(idx.chunks, chunks)
	return idx, nil
}

// Search scores every chunk against the query vector and returns the top k by
// descending cosine similarity. Ties resolve in favor of the earlier chunk.
func (m *MemoryIndex) Search(ctx context.Context, vector []float32, k int) ([]ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.chunks) == 0 || k <= 0 {
		return []ScoredChunk{}, nil
	}

	query := normalize(vector)
	scored := make([]ScoredChunk, len(m.chunks))
	for i, v := range m.vectors {
		scored[i] = ScoredChunk{Chunk: m.chunks[i], Score: dot(query, v)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Ord < scored[j].Ord
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Len reports the number of indexed chunks.
func (m *MemoryIndex) Len() int { return len(m.chunks) }

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
