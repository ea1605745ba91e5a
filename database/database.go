package database

import (
	"context"

	"github.com/tieubaoca/sheetchat-be/types"
)

// Index supports nearest-neighbour retrieval over one document's chunk
// vectors. An Index is built exactly once per document and is immutable
// afterwards; Retrieve is read-only and side-effect free.
type Index interface {
	// Retrieve returns at most k chunks ordered by descending similarity,
	// ties broken by original chunk order. Chunks with a non-finite score
	// are never returned.
	Retrieve(ctx context.Context, queryVector []float32, k int) ([]types.ScoredChunk, error)
}

// IndexBuilder constructs an Index from a document's chunks and their
// embedding vectors; chunks[i] pairs with vectors[i]. Building is
// synchronous and blocking.
type IndexBuilder interface {
	Build(ctx context.Context, key string, chunks []types.Chunk, vectors [][]float32) (Index, error)

	// Drop removes any backing storage held for a document key. A no-op for
	// stores without external state.
	Drop(ctx context.Context, key string) error
}
