package driven

import "context"

// Extractor converts a source document into plain text.
//
// Implementations must tag page boundaries with [p.N] markers so later
// stages can cite pages; the markers are preserved verbatim through
// chunking and retrieval.
type Extractor interface {
	// ExtractText reads the document at path and returns its text.
	// An unreadable or corrupt document is a fatal error.
	ExtractText(ctx context.Context, path string) (string, error)
}
