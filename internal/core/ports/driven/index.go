package driven

import (
	"context"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

// Index is the coordinated view over the chunk store, the lexical
// index and the dense index. Mutations update all three structures as
// one logical unit; reads observe a consistent snapshot. Implemented
// by the index coordinator.
type Index interface {
	// Load rebuilds the in-memory indexes from the chunk store.
	Load(ctx context.Context) error

	// Apply stores a document and indexes its chunks.
	Apply(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// Replace atomically removes the old document and applies the new
	// one; no reader observes an intermediate state.
	Replace(ctx context.Context, oldDocID string, doc *domain.Document, chunks []domain.Chunk) error

	// Remove deletes a document and its chunks everywhere.
	Remove(ctx context.Context, docID string) error

	// ScoreLexical scores the query text against the lexical index.
	ScoreLexical(ctx context.Context, query string) ([]LexicalHit, error)

	// ScoreDense scores the query embedding against the dense index.
	ScoreDense(ctx context.Context, embedding []float32) ([]DenseHit, error)

	// Snapshot runs fn against one consistent read view. No write
	// commits between the reads fn performs, so lexically and densely
	// scored chunk sets always describe the same index state.
	Snapshot(ctx context.Context, fn func(view IndexView) error) error

	// GetChunk hydrates a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// FindByName looks up the document stored under a normalised
	// filename, or domain.ErrNotFound.
	FindByName(ctx context.Context, name string) (*domain.Document, error)

	// ListDocuments returns all indexed documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Counts returns the number of indexed documents and chunks.
	Counts(ctx context.Context) (documents, chunks int, err error)

	// Healthy reports whether the index accepts writes.
	Healthy() bool
}

// IndexView is the read surface handed to Snapshot callbacks. Every
// call observes the same index state; chunks scored by either index
// are guaranteed to hydrate.
type IndexView interface {
	// ScoreLexical scores the query text against the lexical index.
	ScoreLexical(ctx context.Context, query string) ([]LexicalHit, error)

	// ScoreDense scores the query embedding against the dense index.
	ScoreDense(ctx context.Context, embedding []float32) ([]DenseHit, error)

	// GetChunk hydrates a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)
}
