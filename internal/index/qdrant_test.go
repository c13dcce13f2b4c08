//go:build integration
// +build integration

package index

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore connects to a local Qdrant and ensures the collection exists.
// Skips the test if Qdrant is not running.
func setupTestStore(t *testing.T) *QdrantStore {
	store, err := NewQdrantStore("localhost", 6334)
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}

	err = store.EnsureCollection(context.Background())
	require.NoError(t, err, "Failed to ensure collection")

	return store
}

func testVector(fill float32) []float32 {
	v := make([]float32, VectorDimension)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestQdrant_UpsertAndSearch(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	unit := "test-unit-" + uuid.New().String()

	chunks := []Chunk{
		{Ord: 0, Text: "Bonds pay periodic coupon interest."},
		{Ord: 1, Text: "Stocks represent ownership in a company."},
	}
	vectors := [][]float32{testVector(0.1), testVector(0.9)}

	err := store.UpsertChunks(ctx, unit, chunks, vectors)
	require.NoError(t, err, "Failed to upsert chunks")

	count, err := store.Count(ctx, unit)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	idx := store.Unit(unit, count)
	results, err := idx.Search(ctx, testVector(0.1), 2)
	require.NoError(t, err, "Failed to search chunks")
	require.Len(t, results, 2)

	assert.Equal(t, 0, results[0].Ord)
	assert.Equal(t, "Bonds pay periodic coupon interest.", results[0].Text)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	require.NoError(t, store.DeleteUnit(ctx, unit))
}

func TestQdrant_UnitFilterIsolation(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	unitA := "test-unit-a-" + uuid.New().String()
	unitB := "test-unit-b-" + uuid.New().String()

	require.NoError(t, store.UpsertChunks(ctx, unitA,
		[]Chunk{{Ord: 0, Text: "unit A content"}}, [][]float32{testVector(0.5)}))
	require.NoError(t, store.UpsertChunks(ctx, unitB,
		[]Chunk{{Ord: 0, Text: "unit B content"}}, [][]float32{testVector(0.5)}))

	idx := store.Unit(unitA, 1)
	results, err := idx.Search(ctx, testVector(0.5), 10)
	require.NoError(t, err)
	require.Len(t, results, 1, "search must not cross unit boundaries")
	assert.Equal(t, "unit A content", results[0].Text)

	require.NoError(t, store.DeleteUnit(ctx, unitA))
	require.NoError(t, store.DeleteUnit(ctx, unitB))
}

func TestQdrant_ReindexOverwrites(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	unit := "test-unit-" + uuid.New().String()

	require.NoError(t, store.UpsertChunks(ctx, unit,
		[]Chunk{{Ord: 0, Text: "old text"}}, [][]float32{testVector(0.2)}))
	// Same unit and ord derive the same point ID, so this overwrites.
	require.NoError(t, store.UpsertChunks(ctx, unit,
		[]Chunk{{Ord: 0, Text: "new text"}}, [][]float32{testVector(0.2)}))

	count, err := store.Count(ctx, unit)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := store.Unit(unit, count).Search(ctx, testVector(0.2), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new text", results[0].Text)

	require.NoError(t, store.DeleteUnit(ctx, unit))
}

func TestQdrant_DimensionValidation(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	unit := "test-unit-" + uuid.New().String()

	err := store.UpsertChunks(ctx, unit,
		[]Chunk{{Ord: 0, Text: "wrong dims"}}, [][]float32{make([]float32, 512)})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = store.Unit(unit, 1).Search(ctx, make([]float32, 512), 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestQdrant_CountMismatch(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	err := store.UpsertChunks(context.Background(), "test-unit",
		[]Chunk{{Ord: 0, Text: "a"}, {Ord: 1, Text: "b"}},
		[][]float32{testVector(0.1)})
	assert.ErrorIs(t, err, ErrEmbeddingCount)
}
