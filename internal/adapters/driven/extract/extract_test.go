package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

func TestPlainSupports(t *testing.T) {
	e := NewPlain()

	assert.True(t, e.Supports("report.txt"))
	assert.True(t, e.Supports("README.md"))
	assert.True(t, e.Supports("NOTES.MARKDOWN"))
	assert.False(t, e.Supports("report.pdf"))
	assert.False(t, e.Supports("report"))
	assert.False(t, e.Supports("archive.txt.gz"))
}

func TestPlainExtractSinglePage(t *testing.T) {
	e := NewPlain()

	pages, err := e.Extract(context.Background(), "report.txt", strings.NewReader("The expense ratio is 0.45%.\n"))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "The expense ratio is 0.45%.", pages[0].Text)
}

func TestPlainExtractFormFeedPages(t *testing.T) {
	e := NewPlain()

	pages, err := e.Extract(context.Background(), "report.txt", strings.NewReader("first page\f\n  \fthird page"))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	// The blank middle section keeps its slot: page numbers follow the
	// sections, not the surviving pages.
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "first page", pages[0].Text)
	assert.Equal(t, 3, pages[1].Number)
	assert.Equal(t, "third page", pages[1].Text)
}

func TestPlainExtractEmpty(t *testing.T) {
	e := NewPlain()

	pages, err := e.Extract(context.Background(), "blank.txt", strings.NewReader("  \n \f  "))
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPlainExtractCancelled(t *testing.T) {
	e := NewPlain()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, "report.txt", strings.NewReader("content"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPDFSupports(t *testing.T) {
	e := NewPDF()

	assert.True(t, e.Supports("report.pdf"))
	assert.True(t, e.Supports("REPORT.PDF"))
	assert.False(t, e.Supports("report.txt"))
	assert.False(t, e.Supports("report"))
}

func TestPDFExtractRejectsNonPDF(t *testing.T) {
	e := NewPDF()

	_, err := e.Extract(context.Background(), "fake.pdf", strings.NewReader("this is not a pdf"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFile)
}

func TestPDFExtractMalformed(t *testing.T) {
	e := NewPDF()

	// Valid magic, garbage body. Must error, never panic.
	_, err := e.Extract(context.Background(), "broken.pdf", strings.NewReader("%PDF-1.7\ngarbage"))
	assert.Error(t, err)
}
