package driven

import "context"

// VectorStore persists document chunks with their embeddings and answers
// nearest-neighbour queries. Stores are keyed by (persistPath, collection);
// all calls against the same key observe one consistent shared store.
//
// Build is idempotent: chunk identifiers are content hashes, so rebuilding
// from identical text is a no-op in effect. Rebuilding from different text
// upserts by identifier but does NOT delete chunks absent from the new
// text. Callers needing a clean rebuild must Reset the collection first;
// this staleness is deliberate, not silently patched.
type VectorStore interface {
	// Build chunks text and upserts all chunks into the named collection.
	// Returns the number of chunks indexed.
	Build(ctx context.Context, text, collection, persistPath string) (int, error)

	// Query returns up to k matches ranked by similarity, closest first.
	// A missing or empty collection yields an empty result, not an error.
	Query(ctx context.Context, query string, k int, collection, persistPath string) ([]VectorMatch, error)

	// Count returns the number of chunks in the collection.
	// A missing collection counts as zero.
	Count(ctx context.Context, collection, persistPath string) (int, error)

	// Reset removes the collection and its persisted chunks entirely.
	Reset(ctx context.Context, collection, persistPath string) error

	// Close releases resources.
	Close() error
}

// VectorMatch is a similarity search result.
type VectorMatch struct {
	// ChunkID is the content-hash identifier of the matched chunk.
	ChunkID string

	// Content is the chunk text.
	Content string

	// Source tags the chunk origin (e.g. "pdf").
	Source string

	// Position is the chunk's ordinal position in the source document.
	Position int

	// Similarity is the similarity score (higher is closer).
	Similarity float64
}
