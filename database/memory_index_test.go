package database

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/sheetchat-be/types"
)

func chunk(text string, index int) types.Chunk {
	return types.Chunk{Text: text, Index: index}
}

func buildIndex(t *testing.T, chunks []types.Chunk, vectors [][]float32) Index {
	t.Helper()
	idx, err := NewMemoryIndexBuilder().Build(context.Background(), "s1-sales.xlsx", chunks, vectors)
	require.NoError(t, err)
	return idx
}

func TestBuild_CountMismatch(t *testing.T) {
	_, err := NewMemoryIndexBuilder().Build(context.Background(), "k",
		[]types.Chunk{chunk("a", 0)},
		[][]float32{{1, 0}, {0, 1}},
	)
	assert.Error(t, err)
}

func TestBuild_Empty(t *testing.T) {
	_, err := NewMemoryIndexBuilder().Build(context.Background(), "k", nil, nil)
	assert.Error(t, err)
}

func TestBuild_InconsistentDimensions(t *testing.T) {
	_, err := NewMemoryIndexBuilder().Build(context.Background(), "k",
		[]types.Chunk{chunk("a", 0), chunk("b", 1)},
		[][]float32{{1, 0}, {1}},
	)
	assert.Error(t, err)
}

func TestRetrieve_OrdersBySimilarity(t *testing.T) {
	idx := buildIndex(t,
		[]types.Chunk{chunk("x axis", 0), chunk("diagonal", 1), chunk("y axis", 2)},
		[][]float32{{1, 0}, {1, 1}, {0, 1}},
	)

	results, err := idx.Retrieve(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "x axis", results[0].Chunk.Text)
	assert.Equal(t, "diagonal", results[1].Chunk.Text)
	assert.Equal(t, "y axis", results[2].Chunk.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[1].Score, results[2].Score)
}

func TestRetrieve_CapsAtK(t *testing.T) {
	idx := buildIndex(t,
		[]types.Chunk{chunk("a", 0), chunk("b", 1), chunk("c", 2)},
		[][]float32{{1, 0}, {1, 1}, {0, 1}},
	)

	results, err := idx.Retrieve(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrieve_FewerThanK(t *testing.T) {
	idx := buildIndex(t,
		[]types.Chunk{chunk("only", 0)},
		[][]float32{{1, 0}},
	)

	results, err := idx.Retrieve(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRetrieve_TiesKeepChunkOrder(t *testing.T) {
	// Parallel vectors have identical cosine similarity regardless of
	// magnitude, so all three tie.
	idx := buildIndex(t,
		[]types.Chunk{chunk("first", 0), chunk("second", 1), chunk("third", 2)},
		[][]float32{{1, 0}, {2, 0}, {3, 0}},
	)

	results, err := idx.Retrieve(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.Text)
	assert.Equal(t, "second", results[1].Chunk.Text)
	assert.Equal(t, "third", results[2].Chunk.Text)
}

func TestRetrieve_ExcludesZeroVectors(t *testing.T) {
	idx := buildIndex(t,
		[]types.Chunk{chunk("real", 0), chunk("degenerate", 1)},
		[][]float32{{1, 0}, {0, 0}},
	)

	results, err := idx.Retrieve(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "real", results[0].Chunk.Text)
	for _, r := range results {
		assert.False(t, math.IsNaN(r.Score))
		assert.False(t, math.IsInf(r.Score, 0))
	}
}

func TestRetrieve_DimensionMismatch(t *testing.T) {
	idx := buildIndex(t,
		[]types.Chunk{chunk("a", 0)},
		[][]float32{{1, 0}},
	)

	_, err := idx.Retrieve(context.Background(), []float32{1, 0, 0}, 1)
	assert.Error(t, err)
}

func TestRetrieve_NonPositiveK(t *testing.T) {
	idx := buildIndex(t,
		[]types.Chunk{chunk("a", 0)},
		[][]float32{{1, 0}},
	)

	results, err := idx.Retrieve(context.Background(), []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuild_SnapshotsInputs(t *testing.T) {
	chunks := []types.Chunk{chunk("a", 0), chunk("b", 1)}
	vectors := [][]float32{{1, 0}, {0, 1}}
	idx := buildIndex(t, chunks, vectors)

	// Mutating the caller's slices must not change retrieval.
	vectors[0][0] = 0
	vectors[0][1] = 1
	chunks[0].Text = "mutated"

	results, err := idx.Retrieve(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.Text)
}
