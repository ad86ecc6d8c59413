package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DocumentIdentity is the dedup key for ingested documents.
// It is derived from the normalised filename plus a fingerprint of the
// extracted text, so the same file uploaded twice resolves to the same
// identity regardless of path or filename casing.
type DocumentIdentity struct {
	// Name is the normalised source filename (lowercased base name).
	Name string

	// Fingerprint is the hex SHA-256 of the extracted text content.
	Fingerprint string
}

// NewDocumentIdentity derives an identity from a filename and the
// extracted text content.
func NewDocumentIdentity(filename string, content []byte) DocumentIdentity {
	sum := sha256.Sum256(content)
	return DocumentIdentity{
		Name:        NormaliseFilename(filename),
		Fingerprint: hex.EncodeToString(sum[:]),
	}
}

// NormaliseFilename reduces a filename to its dedup form:
// base name, trimmed, lowercased.
func NormaliseFilename(filename string) string {
	return strings.ToLower(strings.TrimSpace(filepath.Base(filename)))
}

// ID returns the stable document identifier: the normalised name plus a
// short fingerprint prefix. Stable across re-ingestion of identical content.
func (d DocumentIdentity) ID() string {
	fp := d.Fingerprint
	if len(fp) > 12 {
		fp = fp[:12]
	}
	return d.Name + "@" + fp
}

// Document represents an ingested document.
// It is the canonical representation after page extraction.
type Document struct {
	// ID is the unique identifier, derived from the identity.
	ID string

	// Identity is the dedup key this document was ingested under.
	Identity DocumentIdentity

	// Source is the original filename as supplied by the caller.
	Source string

	// PageCount is the number of extracted pages.
	PageCount int

	// ChunkCount is the number of chunks produced at ingestion.
	ChunkCount int

	// IngestedAt is when the document was indexed.
	IngestedAt time.Time
}

// Page is a single page of extracted plain text.
// Page extraction is an external collaborator; the core only ever sees
// this shape.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted plain text for the page.
	Text string
}

// Chunk represents a searchable unit within a document.
// Chunks are immutable once created.
type Chunk struct {
	// ID is the stable chunk identifier, derived from the document
	// identity, page number and character offset.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Source is the normalised source filename, carried for display.
	Source string

	// Page is the 1-based page the chunk was cut from.
	Page int

	// Content is the text content of this chunk.
	Content string

	// Offset is the character offset of the chunk within its page.
	Offset int

	// Embedding is the vector representation for dense retrieval.
	Embedding []float32

	// IngestedAt is when the chunk was created.
	IngestedAt time.Time
}

// NewChunkID derives the stable chunk identifier from its coordinates.
// The same document content always produces the same chunk IDs.
func NewChunkID(documentID string, page, offset int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", documentID, page, offset)))
	return hex.EncodeToString(sum[:12])
}

// IngestStatus reports the outcome of a single document ingestion.
type IngestStatus string

// Ingestion outcomes.
const (
	// IngestAdded indicates the document was chunked and indexed.
	IngestAdded IngestStatus = "added"

	// IngestDuplicateSkipped indicates the identity was already present
	// and no replace was requested.
	IngestDuplicateSkipped IngestStatus = "duplicate_skipped"

	// IngestReplaced indicates an existing document with the same
	// identity was atomically replaced.
	IngestReplaced IngestStatus = "replaced"
)

// IngestResult reports what happened to one ingested document.
type IngestResult struct {
	// Source is the original filename.
	Source string

	// DocumentID is the identity-derived ID, empty when ingestion failed.
	DocumentID string

	// ChunksAdded is the number of chunks created.
	ChunksAdded int

	// Status is the ingestion outcome.
	Status IngestStatus

	// Err holds the per-document failure, if any. A failed document
	// never aborts the rest of a batch.
	Err error
}

// BatchIngestResult aggregates per-document outcomes for a batch upload.
type BatchIngestResult struct {
	// Results holds one entry per submitted file, in submission order.
	Results []IngestResult
}

// FilesProcessed returns the number of documents ingested without error.
func (b BatchIngestResult) FilesProcessed() int {
	n := 0
	for _, r := range b.Results {
		if r.Err == nil && r.Status != IngestDuplicateSkipped {
			n++
		}
	}
	return n
}

// TotalChunksAdded returns the total chunks created across the batch.
func (b BatchIngestResult) TotalChunksAdded() int {
	n := 0
	for _, r := range b.Results {
		n += r.ChunksAdded
	}
	return n
}

// Failed returns the results that carry a per-document error.
func (b BatchIngestResult) Failed() []IngestResult {
	var failed []IngestResult
	for _, r := range b.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
