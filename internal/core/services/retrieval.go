package services

import (
	"context"
	"os"
	"strings"

	"github.com/litpress/litpress-cli/internal/core/domain"
	"github.com/litpress/litpress-cli/internal/core/ports/driven"
	"github.com/litpress/litpress-cli/internal/core/ports/driving"
	"github.com/litpress/litpress-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService answers similarity queries for the agent stages.
//
// It degrades rather than fails: an empty or missing collection is
// lazily rebuilt from the cached text dump of the current document,
// and when no cache exists either, queries return an empty snippet
// list. Storage errors on the query path are logged and swallowed the
// same way, so a stage never aborts because retrieval was unavailable.
type RetrievalService struct {
	vector      driven.VectorStore
	persistPath string
	cachePath   string
}

// NewRetrievalService creates a new retrieval service. cachePath is
// the well-known location of the extracted text dump used for lazy
// index builds.
func NewRetrievalService(vector driven.VectorStore, persistPath, cachePath string) *RetrievalService {
	return &RetrievalService{
		vector:      vector,
		persistPath: persistPath,
		cachePath:   cachePath,
	}
}

// Search returns up to k snippets for the query, closest first.
func (s *RetrievalService) Search(ctx context.Context, query string, k int, collection string) (domain.RetrievalResult, error) {
	empty := domain.RetrievalResult{Snippets: []domain.Snippet{}}

	query = strings.TrimSpace(query)
	if query == "" {
		return empty, nil
	}
	if k <= 0 {
		k = 4
	}

	if err := s.ensureBuilt(ctx, collection); err != nil {
		logger.Warn("Lazy index build failed: %v", err)
		return empty, nil
	}

	matches, err := s.vector.Query(ctx, query, k, collection, s.persistPath)
	if err != nil {
		logger.Warn("Retrieval query failed: %v", err)
		return empty, nil
	}

	result := domain.RetrievalResult{Snippets: make([]domain.Snippet, 0, len(matches))}
	for _, match := range matches {
		result.Snippets = append(result.Snippets, domain.Snippet{
			Text:     match.Content,
			Source:   match.Source,
			Position: match.Position,
			Score:    match.Similarity,
		})
	}
	return result, nil
}

// ensureBuilt lazily builds the collection from the cached text dump
// when it is empty or absent. A missing cache is not an error; the
// subsequent query simply finds nothing.
func (s *RetrievalService) ensureBuilt(ctx context.Context, collection string) error {
	count, err := s.vector.Count(ctx, collection, s.persistPath)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	text, err := os.ReadFile(s.cachePath)
	if err != nil {
		logger.Debug("No cached text dump at %s", s.cachePath)
		return nil
	}

	logger.Info("Collection %q empty, rebuilding from cached text", collection)
	_, err = s.vector.Build(ctx, string(text), collection, s.persistPath)
	return err
}
