package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure PDF implements the interface.
var _ driven.PageExtractor = (*PDF)(nil)

// pdfMagic is the required file header; parsing anything else as PDF
// is a waste of time and a misleading error.
const pdfMagic = "%PDF-"

// PDF extracts per-page text from PDF documents.
type PDF struct{}

// NewPDF creates a PDF page extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Supports reports whether the filename has a .pdf extension.
func (e *PDF) Supports(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// Extract reads the whole stream and returns one entry per page with
// extractable text. Pages that fail text extraction are skipped; a
// document where every page fails extracts to zero pages, which the
// caller treats as an empty document.
func (e *PDF) Extract(ctx context.Context, filename string, r io.Reader) (pages []domain.Page, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if !bytes.HasPrefix(data, []byte(pdfMagic)) {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedFile)
	}

	// The pdf library panics on some malformed files instead of
	// returning an error.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("parsing %s: %v", filename, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	for n := 1; n <= reader.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: n, Text: text})
	}
	return pages, nil
}
