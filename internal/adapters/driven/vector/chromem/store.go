// Package chromem provides a VectorStore adapter backed by chromem-go,
// an embedded file-persisted vector database.
package chromem

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/litpress/litpress-cli/internal/core/domain"
	"github.com/litpress/litpress-cli/internal/core/ports/driven"
	"github.com/litpress/litpress-cli/internal/logger"
	"github.com/litpress/litpress-cli/internal/postprocessors/chunker"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Config holds configuration for the chromem vector store.
type Config struct {
	// EmbeddingFunc computes embeddings for chunk and query text (required).
	// Use EmbeddingFuncFromService to bridge a driven.EmbeddingService.
	EmbeddingFunc chromemgo.EmbeddingFunc

	// ChunkSize is the maximum chunk length in characters
	// (default: chunker.DefaultChunkSize).
	ChunkSize int

	// Source is the source tag attached to indexed chunks (default: "pdf").
	Source string
}

// Store persists chunks and embeddings in chromem-go collections.
//
// One DB handle is opened per persist path and cached for reuse within
// the process. Handles are keyed by cleaned path so state never leaks
// across distinct persist paths.
type Store struct {
	mu        sync.Mutex
	dbs       map[string]*chromemgo.DB
	embedFunc chromemgo.EmbeddingFunc
	chunker   *chunker.Processor
}

// NewStore creates a new chromem-backed vector store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.EmbeddingFunc == nil {
		return nil, fmt.Errorf("chromem: embedding function is required")
	}

	opts := []chunker.Option{}
	if cfg.ChunkSize > 0 {
		opts = append(opts, chunker.WithChunkSize(cfg.ChunkSize))
	}
	if cfg.Source != "" {
		opts = append(opts, chunker.WithSource(cfg.Source))
	}

	return &Store{
		dbs:       make(map[string]*chromemgo.DB),
		embedFunc: cfg.EmbeddingFunc,
		chunker:   chunker.New(opts...),
	}, nil
}

// EmbeddingFuncFromService adapts a driven.EmbeddingService into the
// chromem embedding function signature.
func EmbeddingFuncFromService(svc driven.EmbeddingService) chromemgo.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return svc.Embed(ctx, text)
	}
}

// Build chunks text and upserts all chunks into the named collection.
// Chunk IDs are content hashes, so rebuilding from identical text is a
// no-op in effect. Chunks from a previous build that are absent from
// the new text are NOT removed; callers wanting a clean rebuild must
// call Reset first.
func (s *Store) Build(ctx context.Context, text, collection, persistPath string) (int, error) {
	col, err := s.getOrCreateCollection(collection, persistPath)
	if err != nil {
		return 0, err
	}

	chunks, err := s.chunker.Process(ctx, &domain.Document{ID: collection, Content: text})
	if err != nil {
		return 0, fmt.Errorf("chunking text: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]chromemgo.Document, len(chunks))
	for i, ch := range chunks {
		docs[i] = chromemgo.Document{
			ID:      ch.ID,
			Content: ch.Content,
			Metadata: map[string]string{
				"source":   ch.Source,
				"position": strconv.Itoa(ch.Position),
			},
		}
	}

	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return 0, fmt.Errorf("upserting %d chunks into %q: %w", len(docs), collection, err)
	}

	logger.Debug("Indexed %d chunks into collection %q", len(docs), collection)
	return len(docs), nil
}

// Query returns up to k matches ranked by similarity, closest first.
// A missing or empty collection yields an empty result, not an error.
func (s *Store) Query(ctx context.Context, query string, k int, collection, persistPath string) ([]driven.VectorMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	db, err := s.openDB(persistPath)
	if err != nil {
		return nil, err
	}

	col := db.GetCollection(collection, s.embedFunc)
	if col == nil {
		logger.Debug("Collection %q does not exist, returning no matches", collection)
		return nil, nil
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := col.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %q: %w", collection, err)
	}

	matches := make([]driven.VectorMatch, len(results))
	for i, r := range results {
		position, _ := strconv.Atoi(r.Metadata["position"])
		matches[i] = driven.VectorMatch{
			ChunkID:    r.ID,
			Content:    r.Content,
			Source:     r.Metadata["source"],
			Position:   position,
			Similarity: float64(r.Similarity),
		}
	}
	return matches, nil
}

// Count returns the number of chunks in the collection.
func (s *Store) Count(_ context.Context, collection, persistPath string) (int, error) {
	db, err := s.openDB(persistPath)
	if err != nil {
		return 0, err
	}

	col := db.GetCollection(collection, s.embedFunc)
	if col == nil {
		return 0, nil
	}
	return col.Count(), nil
}

// Reset removes the collection and its persisted chunks entirely.
func (s *Store) Reset(_ context.Context, collection, persistPath string) error {
	db, err := s.openDB(persistPath)
	if err != nil {
		return err
	}

	if err := db.DeleteCollection(collection); err != nil {
		return fmt.Errorf("deleting collection %q: %w", collection, err)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// chromem persists on write; nothing to flush here.
	s.dbs = make(map[string]*chromemgo.DB)
	return nil
}

// openDB returns the cached DB handle for a persist path, opening it
// on first use.
func (s *Store) openDB(persistPath string) (*chromemgo.DB, error) {
	key := filepath.Clean(persistPath)

	s.mu.Lock()
	defer s.mu.Unlock()

	if db, ok := s.dbs[key]; ok {
		return db, nil
	}

	db, err := chromemgo.NewPersistentDB(key, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector store at %s: %v: %w", key, err, domain.ErrVectorStoreUnavailable)
	}
	s.dbs[key] = db
	return db, nil
}

func (s *Store) getOrCreateCollection(collection, persistPath string) (*chromemgo.Collection, error) {
	db, err := s.openDB(persistPath)
	if err != nil {
		return nil, err
	}

	col, err := db.GetOrCreateCollection(collection, nil, s.embedFunc)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", collection, err)
	}
	return col, nil
}
