package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/litpress/litpress-cli/internal/core/ports/driven"
	"github.com/litpress/litpress-cli/internal/core/ports/driving"
	"github.com/litpress/litpress-cli/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService extracts a source document and builds the retrieval
// index. It also maintains the plain-text cache of the extracted
// document that the retrieval service lazy-builds from.
type IndexService struct {
	extractor   driven.Extractor
	vector      driven.VectorStore
	persistPath string
	cachePath   string
}

// NewIndexService creates a new index service. persistPath is the
// vector store location; cachePath is the well-known location of the
// extracted text dump.
func NewIndexService(extractor driven.Extractor, vector driven.VectorStore, persistPath, cachePath string) *IndexService {
	return &IndexService{
		extractor:   extractor,
		vector:      vector,
		persistPath: persistPath,
		cachePath:   cachePath,
	}
}

// Index extracts the document at path and builds the collection from
// its text. With reset set, the collection is removed first so no
// stale chunks from a previously indexed document survive.
// Returns the number of chunks indexed.
func (s *IndexService) Index(ctx context.Context, path, collection string, reset bool) (int, error) {
	text, err := s.ExtractAndCache(ctx, path)
	if err != nil {
		return 0, err
	}
	return s.BuildFromText(ctx, text, collection, reset)
}

// ExtractAndCache extracts the document text and writes it to the
// text cache. A cache write failure is logged, not fatal: the index
// still gets built, only lazy rebuilds lose their source.
func (s *IndexService) ExtractAndCache(ctx context.Context, path string) (string, error) {
	logger.Section("Extraction")
	logger.Debug("Source: %s", path)

	text, err := s.extractor.ExtractText(ctx, path)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", path, err)
	}
	logger.Debug("Extracted %d characters", len(text))

	if err := os.MkdirAll(filepath.Dir(s.cachePath), 0700); err != nil {
		logger.Warn("Cannot create cache directory: %v", err)
	} else if err := os.WriteFile(s.cachePath, []byte(text), 0600); err != nil {
		logger.Warn("Cannot write text cache: %v", err)
	}

	return text, nil
}

// BuildFromText builds the collection from already-extracted text.
func (s *IndexService) BuildFromText(ctx context.Context, text, collection string, reset bool) (int, error) {
	logger.Section("Indexing")

	if reset {
		logger.Info("Resetting collection %q", collection)
		if err := s.vector.Reset(ctx, collection, s.persistPath); err != nil {
			return 0, fmt.Errorf("resetting collection %q: %w", collection, err)
		}
	}

	count, err := s.vector.Build(ctx, text, collection, s.persistPath)
	if err != nil {
		return 0, fmt.Errorf("building collection %q: %w", collection, err)
	}
	logger.Info("Indexed %d chunks into %q", count, collection)

	return count, nil
}

// Count returns the number of chunks in the collection.
func (s *IndexService) Count(ctx context.Context, collection string) (int, error) {
	return s.vector.Count(ctx, collection, s.persistPath)
}
