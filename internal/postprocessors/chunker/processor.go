// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1200

// Processor splits document content into fixed-size chunks with no
// overlap. Chunks carry no semantic boundary awareness (a chunk may
// split mid-sentence); the simple slicing keeps chunk identifiers
// reproducible across rebuilds.
type Processor struct {
	chunkSize int
	source    string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithSource sets the source tag attached to every chunk.
func WithSource(source string) Option {
	return func(p *Processor) {
		if source != "" {
			p.source = source
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		source:    "pdf",
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into consecutive chunks of at
// most chunkSize characters; the final chunk may be shorter. Every
// chunk's ID is the content hash of its text. Empty content produces
// no chunks, which is not an error.
func (p *Processor) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	content := doc.Content
	contentLen := len(content)

	chunks := make([]domain.Chunk, 0, contentLen/p.chunkSize+1)

	position := 0
	for start := 0; start < contentLen; start += p.chunkSize {
		end := start + p.chunkSize
		if end > contentLen {
			end = contentLen
		}

		chunkContent := content[start:end]

		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(chunkContent),
			DocumentID: doc.ID,
			Content:    chunkContent,
			Position:   position,
			Source:     p.source,
		})
		position++
	}

	return chunks, nil
}
