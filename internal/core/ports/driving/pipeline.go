package driving

import (
	"context"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

// PipelineService runs the full generation pipeline over one source document.
type PipelineService interface {
	// Run executes extract, index, the five generation stages and
	// final assembly. Returns the completed run record; fatal stage
	// failures are reported through the error and the run status.
	Run(ctx context.Context, opts domain.RunOptions) (domain.PipelineRun, error)
}

// IndexService builds and inspects the retrieval index without
// running the pipeline.
type IndexService interface {
	// Index extracts the document at path and builds the collection.
	// Returns the number of chunks indexed.
	Index(ctx context.Context, path, collection string, reset bool) (int, error)

	// Count returns the number of chunks in the collection.
	Count(ctx context.Context, collection string) (int, error)
}

// RetrievalService answers ad-hoc similarity queries against an
// indexed collection.
type RetrievalService interface {
	// Search returns up to k snippets for the query, closest first.
	// A missing or empty collection with no cached source text yields
	// an empty result, not an error.
	Search(ctx context.Context, query string, k int, collection string) (domain.RetrievalResult, error)
}
