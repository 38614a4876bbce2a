package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Document represents a source document after text extraction.
// Content carries the full extracted text including [p.N] page markers.
type Document struct {
	// ID is the unique identifier for the document, normally its slug.
	ID string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full extracted text before chunking.
	Content string
}

// Chunk represents a retrievable unit within a document.
// Documents are split into fixed-size chunks for indexing.
type Chunk struct {
	// ID is the content hash of the chunk text. Identical text always
	// yields the identical ID, which makes re-indexing idempotent.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Source tags where the chunk came from (e.g. "pdf").
	Source string
}

// ChunkID computes the content-addressed identifier for chunk text.
// The hash depends only on the text, not on position or source.
func ChunkID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
