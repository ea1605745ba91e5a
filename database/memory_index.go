package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/tieubaoca/sheetchat-be/types"
)

// MemoryIndex is the default vector index: brute-force cosine similarity
// over an immutable in-memory snapshot of one document's chunk vectors.
// Similarity is cosine similarity computed in float64; that metric decides
// which chunks count as relevant.
type MemoryIndex struct {
	dimension int
	chunks    []types.Chunk
	vectors   [][]float32
}

type MemoryIndexBuilder struct{}

func NewMemoryIndexBuilder() *MemoryIndexBuilder {
	return &MemoryIndexBuilder{}
}

func (b *MemoryIndexBuilder) Build(ctx context.Context, key string, chunks []types.Chunk, vectors [][]float32) (Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil, errors.New("cannot build an index with no chunks")
	}

	dimension := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, index dimension is %d", i, len(v), dimension)
		}
	}

	// Snapshot the inputs so later mutation by the caller cannot reach the
	// index.
	idx := &MemoryIndex{
		dimension: dimension,
		chunks:    make([]types.Chunk, len(chunks)),
		vectors:   make([][]float32, len(vectors)),
	}
	copy(idx.chunks, chunks)
	for i, v := range vectors {
		idx.vectors[i] = make([]float32, len(v))
		copy(idx.vectors[i], v)
	}
	return idx, nil
}

func (b *MemoryIndexBuilder) Drop(ctx context.Context, key string) error {
	return nil
}

func (idx *MemoryIndex) Retrieve(ctx context.Context, queryVector []float32, k int) ([]types.ScoredChunk, error) {
	if len(queryVector) != idx.dimension {
		return nil, fmt.Errorf("query vector dimension %d does not match index dimension %d", len(queryVector), idx.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	results := make([]types.ScoredChunk, 0, len(idx.chunks))
	for i, vector := range idx.vectors {
		score := cosineSimilarity(queryVector, vector)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		results = append(results, types.ScoredChunk{
			Chunk: idx.chunks[i],
			Score: score,
		})
	}

	// Highest similarity first; the stable sort keeps original chunk order
	// for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return math.NaN()
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
