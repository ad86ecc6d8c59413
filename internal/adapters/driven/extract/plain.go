package extract

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure Plain implements the interface.
var _ driven.PageExtractor = (*Plain)(nil)

// Plain extracts text and markdown files. Form feeds act as page
// separators; without them the whole file is a single page.
type Plain struct{}

// NewPlain creates a plain-text page extractor.
func NewPlain() *Plain {
	return &Plain{}
}

// Supports reports whether the filename has a plain-text extension.
func (e *Plain) Supports(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown":
		return true
	}
	return false
}

// Extract splits the file on form feeds into pages, dropping empty
// ones. Page numbers count form-feed sections, not surviving pages, so
// a page keeps its position when earlier sections are blank.
func (e *Plain) Extract(ctx context.Context, filename string, r io.Reader) ([]domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	var pages []domain.Page
	for n, section := range strings.Split(string(data), "\f") {
		text := strings.TrimSpace(section)
		if text == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: n + 1, Text: text})
	}
	return pages, nil
}
