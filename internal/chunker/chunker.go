// Package chunker splits extracted page text into overlapping
// fixed-size chunks with stable identifiers.
package chunker

import (
	"strings"
	"time"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// breakWindow is how far back from the chunk end a sentence break is
// still preferred over a hard cut.
const breakWindow = 200

// Chunker splits page text into overlapping fixed-size chunks.
// Chunks never span page boundaries.
type Chunker struct {
	chunkSize int
	overlap   int
	now       func() time.Time
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithClock overrides the ingestion timestamp source. Useful for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Chunker) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Split cuts the document's pages into chunks. Chunk IDs are derived
// from the document ID, page number and character offset, so the same
// content always produces the same IDs.
func (c *Chunker) Split(doc *domain.Document, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	ingestedAt := c.now().UTC()

	for _, page := range pages {
		text := CleanText(page.Text)
		if text == "" {
			continue
		}
		chunks = append(chunks, c.splitPage(doc, page.Number, text, ingestedAt)...)
	}

	return chunks
}

// splitPage cuts one page of cleaned text into overlapping chunks,
// preferring to break at a sentence end near the chunk boundary.
func (c *Chunker) splitPage(doc *domain.Document, pageNum int, text string, ingestedAt time.Time) []domain.Chunk {
	var chunks []domain.Chunk

	start := 0
	for start < len(text) {
		end := start + c.chunkSize
		if end > len(text) {
			end = len(text)
		}

		content := text[start:end]

		if end < len(text) {
			lastPeriod := strings.LastIndex(content, ". ")
			lastNewline := strings.LastIndexByte(content, '\n')

			breakPoint := lastPeriod
			if lastNewline > breakPoint {
				breakPoint = lastNewline
			}
			if breakPoint > 0 && breakPoint > c.chunkSize-breakWindow {
				content = content[:breakPoint+1]
				end = start + len(content)
			}
		}

		trimmed := strings.TrimSpace(content)
		if trimmed != "" {
			chunks = append(chunks, domain.Chunk{
				ID:         domain.NewChunkID(doc.ID, pageNum, start),
				DocumentID: doc.ID,
				Source:     doc.Identity.Name,
				Page:       pageNum,
				Content:    trimmed,
				Offset:     start,
				IngestedAt: ingestedAt,
			})
		}

		if end >= len(text) {
			break
		}

		// Always advance, even when a sentence break shortened the
		// chunk below the overlap.
		if next := end - c.overlap; next > start {
			start = next
		} else {
			start = end
		}
	}

	return chunks
}

// CleanText collapses runs of whitespace and strips NUL bytes left by
// text extraction.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.Join(strings.Fields(text), " ")
}
