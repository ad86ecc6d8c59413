package driven

import (
	"context"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

// ChunkStore persists documents and their chunks.
// Chunks are append-only: records are never mutated, only added with a
// document or removed when that document is replaced.
//
// The store itself is NOT safe for unguarded concurrent mutation; the
// index coordinator serialises writes and takes a read lock for queries
// so that all three structures move in lockstep.
type ChunkStore interface {
	// SaveDocument stores a document and its chunks as one unit.
	SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// FindByName retrieves the document ingested under the given
	// normalised filename, or domain.ErrNotFound.
	FindByName(ctx context.Context, name string) (*domain.Document, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document, in page/offset order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListAll returns every stored chunk. Used for index rebuild and
	// consistency verification.
	ListAll(ctx context.Context) ([]domain.Chunk, error)

	// ListDocuments returns all stored documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks, returning the
	// IDs of the removed chunks so the indexes can be updated in the
	// same logical unit.
	DeleteDocument(ctx context.Context, id string) ([]string, error)

	// ChunkIDs returns the set of all stored chunk IDs.
	ChunkIDs(ctx context.Context) (map[string]struct{}, error)

	// Close releases resources.
	Close() error
}
