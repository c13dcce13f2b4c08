// Package retrieval finds the chunks most similar to a query in a document's
// index.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"coursetutor/internal/embedding"
	"coursetutor/internal/index"
)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 4

// ErrBadTopK reports a non-positive k. Configuration error.
var ErrBadTopK = errors.New("top-k must be at least 1")

// Retriever embeds queries and searches indexes. It must use the same
// embedding capability the indexes were built with; mixing embedding models
// between build and query time silently breaks ranking.
type Retriever struct {
	embed embedding.Func
}

// NewRetriever creates a Retriever around the given embedding capability.
func NewRetriever(embed embedding.Func) *Retriever {
	return &Retriever{embed: embed}
}

// Retrieve returns the top k chunks for the query, ranked by descending
// similarity. An empty index yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, idx index.Index, query string, k int) ([]index.ScoredChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadTopK, k)
	}
	if idx.Len() == 0 {
		return []index.ScoredChunk{}, nil
	}

	vectors, err := r.embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(vectors))
	}

	return idx.Search(ctx, vectors[0], k)
}
