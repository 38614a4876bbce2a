// Package pdf provides an Extractor adapter for PDF documents.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/litpress/litpress-cli/internal/core/domain"
	"github.com/litpress/litpress-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor extracts plain text from PDF files, tagging each page with
// a [p.N] marker so later stages can cite pages.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractText reads the PDF at path and returns its page-tagged text.
// An unreadable or corrupt file is a fatal error for the pipeline.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", domain.ErrExtractionFailed, path, err)
	}
	defer f.Close()

	var pages []string
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: extract page %d: %v", domain.ErrExtractionFailed, i, err)
		}

		pages = append(pages, fmt.Sprintf("[p.%d]\n%s", i, text))
	}

	return strings.Join(pages, "\n\n"), nil
}
