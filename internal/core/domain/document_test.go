package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name unchanged",
			input:    "prospectus.pdf",
			expected: "prospectus.pdf",
		},
		{
			name:     "uppercase lowered",
			input:    "Annual-Report-2024.PDF",
			expected: "annual-report-2024.pdf",
		},
		{
			name:     "path stripped to base name",
			input:    "/tmp/uploads/Fund Factsheet.pdf",
			expected: "fund factsheet.pdf",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  notes.txt  ",
			expected: "notes.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormaliseFilename(tt.input))
		})
	}
}

func TestNewDocumentIdentity(t *testing.T) {
	content := []byte("The redemption fee is 2.5% of NAV.")

	a := NewDocumentIdentity("Prospectus.pdf", content)
	b := NewDocumentIdentity("/other/path/PROSPECTUS.PDF", content)

	// Same content and normalised name resolve to the same identity.
	assert.Equal(t, a, b)
	assert.Equal(t, a.ID(), b.ID())

	// Different content produces a different fingerprint.
	c := NewDocumentIdentity("Prospectus.pdf", []byte("Amended terms."))
	assert.Equal(t, a.Name, c.Name)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestDocumentIdentityID(t *testing.T) {
	id := NewDocumentIdentity("report.pdf", []byte("text")).ID()

	require.Contains(t, id, "@")
	assert.Contains(t, id, "report.pdf")
	// Short fingerprint prefix, not the full 64 hex chars.
	assert.Len(t, id, len("report.pdf")+1+12)
}

func TestNewChunkID(t *testing.T) {
	first := NewChunkID("report.pdf@abc123def456", 1, 0)
	again := NewChunkID("report.pdf@abc123def456", 1, 0)
	other := NewChunkID("report.pdf@abc123def456", 1, 600)

	assert.Equal(t, first, again, "chunk IDs must be stable")
	assert.NotEqual(t, first, other, "different offsets must differ")
	assert.Len(t, first, 24)
}

func TestBatchIngestResult(t *testing.T) {
	batch := BatchIngestResult{
		Results: []IngestResult{
			{Source: "a.pdf", ChunksAdded: 4, Status: IngestAdded},
			{Source: "b.pdf", ChunksAdded: 0, Status: IngestDuplicateSkipped},
			{Source: "c.pdf", Err: ErrEmptyDocument},
			{Source: "d.pdf", ChunksAdded: 2, Status: IngestReplaced},
		},
	}

	assert.Equal(t, 2, batch.FilesProcessed())
	assert.Equal(t, 6, batch.TotalChunksAdded())

	failed := batch.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "c.pdf", failed[0].Source)
}
