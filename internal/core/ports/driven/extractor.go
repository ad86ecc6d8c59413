package driven

import (
	"context"
	"io"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

// PageExtractor turns an uploaded document byte stream into per-page
// plain text. Text extraction is an external collaborator; the core
// only ever sees the {page, text} sequence it produces.
type PageExtractor interface {
	// Extract reads the document and returns its pages in order.
	// Pages with no extractable text are omitted.
	Extract(ctx context.Context, filename string, r io.Reader) ([]domain.Page, error)

	// Supports reports whether this extractor handles the filename's
	// type.
	Supports(filename string) bool
}
