package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
)

// CollectionName is the single Qdrant collection holding all unit chunks.
const CollectionName = "units"

var ErrQdrantUnreachable = errors.New("qdrant server unreachable")

// QdrantStore wraps the Qdrant client for the optional persistent index
// backend. The in-memory index is the default; Qdrant is the documented
// extension for catalogs too large to re-embed per process.
type QdrantStore struct {
	client *qdrant.Client
	host   string
	port   int
}

// NewQdrantStore creates a Qdrant client and verifies connectivity with
// exponential backoff before returning.
func NewQdrantStore(host string, port int) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	store := &QdrantStore{client: client, host: host, port: port}

	if err := store.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return store, nil
}

func (s *QdrantStore) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (s *QdrantStore) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the units collection if it does not exist.
// Idempotent.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range collections {
		if name == CollectionName {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			"content": {
				Size:     VectorDimension,
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	// Without a keyword index, per-unit filtering degrades badly.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: CollectionName,
		FieldName:      "unit",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("create unit index: %w", err)
	}

	return nil
}

// Count returns the number of chunks stored for a unit.
func (s *QdrantStore) Count(ctx context.Context, unit string) (int, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: CollectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("unit", unit)},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("count unit chunks: %w", err)
	}
	return int(count), nil
}

// DeleteUnit removes all chunks stored for a unit. Used before re-indexing.
func (s *QdrantStore) DeleteUnit(ctx context.Context, unit string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: CollectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("unit", unit)},
		}),
	})
	if err != nil {
		return fmt.Errorf("delete unit chunks: %w", err)
	}
	return nil
}

// UpsertChunks stores a unit's chunks and their embeddings, batched in groups
// of 100 with backoff retry.
func (s *QdrantStore) UpsertChunks(ctx context.Context, unit string, chunks []Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d embeddings for %d chunks", ErrEmbeddingCount, len(vectors), len(chunks))
	}
	for i, v := range vectors {
		if len(v) != VectorDimension {
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(v), VectorDimension)
		}
	}

	batchSize := 100
	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))

		points := make([]*qdrant.PointStruct, 0, end-i)
		for j := i; j < end; j++ {
			points = append(points, &qdrant.PointStruct{
				Id: qdrant.NewIDNum(pointID(unit, chunks[j].Ord)),
				Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
					"content": qdrant.NewVector(vectors[j]...),
				}),
				Payload: qdrant.NewValueMap(map[string]any{
					"unit": unit,
					"ord":  chunks[j].Ord,
					"text": chunks[j].Text,
				}),
			})
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

func (s *QdrantStore) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: CollectionName,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// Unit returns an Index view over one unit's stored chunks.
func (s *QdrantStore) Unit(unit string, size int) Index {
	return &qdrantIndex{store: s, unit: unit, size: size}
}

// Close closes the underlying client connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// qdrantIndex adapts a per-unit filtered Qdrant query to the Index interface.
type qdrantIndex struct {
	store *QdrantStore
	unit  string
	size  int
}

func (q *qdrantIndex) Len() int { return q.size }

func (q *qdrantIndex) Search(ctx context.Context, vector []float32, k int) ([]ScoredChunk, error) {
	if q.size == 0 || k <= 0 {
		return []ScoredChunk{}, nil
	}
	if len(vector) != VectorDimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), VectorDimension)
	}

	vectorName := "content"
	results, err := q.store.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Using:          &vectorName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("unit", q.unit)},
		},
		Limit:       qdrant.PtrOf(uint64(k)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	scored := make([]ScoredChunk, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		scored = append(scored, ScoredChunk{
			Chunk: Chunk{
				Ord:  int(payload["ord"].GetIntegerValue()),
				Text: payload["text"].GetStringValue(),
			},
			Score: float64(result.Score),
		})
	}
	return scored, nil
}

// pointID derives a stable numeric point ID from the unit key and chunk
// order, so re-indexing a unit overwrites its previous points.
func pointID(unit string, ord int) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, b := range []byte(unit) {
		h ^= uint64(b)
		h *= prime64
	}
	return h ^ uint64(ord)
}
