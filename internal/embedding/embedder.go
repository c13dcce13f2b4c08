// Package embedding turns text into fixed-dimensionality vectors via the
// OpenAI embeddings API.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"

	"coursetutor/internal/llm"
)

const (
	// Model is the embedding model used for both index build and queries.
	// Mixing models between the two breaks retrieval, so it is not a knob.
	Model = "text-embedding-3-small"

	// Dimension is the vector size produced by Model.
	Dimension = 1536

	// DefaultBatchSize balances requests-per-minute vs tokens-per-minute
	// limits. OpenAI accepts up to 2048 inputs per request.
	DefaultBatchSize = 500
)

// Func is the embedding capability consumed by index building and retrieval.
// Tests substitute stub geometry here instead of calling the live API.
type Func func(ctx context.Context, texts []string) ([][]float32, error)

// Embedder generates embeddings in batches with exponential backoff on rate
// limit responses.
type Embedder struct {
	client    *openai.Client
	batchSize int
}

// NewEmbedder creates an Embedder. batchSize <= 0 selects DefaultBatchSize.
func NewEmbedder(client *openai.Client, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{client: client, batchSize: batchSize}
}

// Embed generates one vector per input text, preserving input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var all [][]float32

	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		batch, err := e.embedBatchWithRetry(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, batch...)
	}

	return all, nil
}

// embedBatchWithRetry embeds a single batch, retrying HTTP 429 with
// exponential backoff. Auth and other client errors fail immediately.
func (e *Embedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32

	operation := func() error {
		resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: Model,
		})
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(llm.ClassifyError(err))
		}

		embeddings = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			embeddings[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		// 429s that survive the retry budget surface as a quota condition.
		return nil, llm.ClassifyError(err)
	}
	return embeddings, nil
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 narrows the API's float64 vectors for in-memory storage.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
