package database

import (
	"context"

	"github.com/chatpdf/chatpdf-be/types"
)

// VectorStore is the similarity-search capability the ingest pipeline
// depends on: store chunks with metadata, query by similarity with a
// metadata filter. Implementations are expected to be safe for use from
// concurrent requests.
type VectorStore interface {
	// AddChunks inserts all chunks in one bulk call. Implementations that
	// cannot guarantee atomicity across the batch must document it.
	AddChunks(ctx context.Context, chunks []types.DocumentChunk) error

	// Query runs a similarity search for the query text, restricted to
	// chunks matching the filter, returning at most limit passages ranked
	// by the store's similarity metric.
	Query(ctx context.Context, query string, filter types.ChunkFilter, limit int) ([]types.Passage, error)

	// HasDocument reports whether at least one indexed chunk matches the
	// filter.
	HasDocument(ctx context.Context, filter types.ChunkFilter) (bool, error)
}

// Reinitializer is implemented by stores that can drop and recreate their
// index from scratch.
type Reinitializer interface {
	ReInit() error
}
