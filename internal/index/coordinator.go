// Package index coordinates the chunk store, the lexical index and the
// dense index so they move in lockstep. Every document mutation touches
// all three structures; letting them drift would silently return chunks
// that cannot be hydrated, or score chunks that no longer exist.
package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure Coordinator implements the interface.
var _ driven.Index = (*Coordinator)(nil)

// Coordinator serialises mutations across the three index structures.
// Writes take the write lock for the full store+index transaction and
// verify cross-structure consistency before releasing it. Reads take
// the read lock for scoring only, so concurrent queries never observe
// a half-applied document.
//
// A failed consistency check poisons the coordinator: all further
// writes fail with domain.ErrIndexInconsistent until restart, while
// reads keep serving the last known-good state.
type Coordinator struct {
	mu       sync.RWMutex
	store    driven.ChunkStore
	lexical  driven.LexicalIndex
	dense    driven.DenseIndex
	poisoned bool
}

// NewCoordinator creates a coordinator over the given structures.
func NewCoordinator(store driven.ChunkStore, lexical driven.LexicalIndex, dense driven.DenseIndex) *Coordinator {
	return &Coordinator{
		store:   store,
		lexical: lexical,
		dense:   dense,
	}
}

// Load rebuilds both indexes from the chunk store. Called at startup
// when the store is persistent and the indexes start empty.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	chunks, err := c.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	if err := c.lexical.Add(ctx, chunks); err != nil {
		return fmt.Errorf("rebuilding lexical index: %w", err)
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if err := c.dense.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			return fmt.Errorf("rebuilding dense index: %w", err)
		}
	}

	return c.verifyLocked(ctx)
}

// Apply stores a document and indexes its chunks as one logical unit.
func (c *Coordinator) Apply(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		return domain.ErrIndexInconsistent
	}

	if err := c.applyLocked(ctx, doc, chunks); err != nil {
		return err
	}
	return c.verifyLocked(ctx)
}

// Replace atomically removes an existing document and applies a new one
// under a single write lock, so no reader ever sees neither or both.
func (c *Coordinator) Replace(ctx context.Context, oldDocID string, doc *domain.Document, chunks []domain.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		return domain.ErrIndexInconsistent
	}

	if err := c.removeLocked(ctx, oldDocID); err != nil {
		return err
	}
	if err := c.applyLocked(ctx, doc, chunks); err != nil {
		return err
	}
	return c.verifyLocked(ctx)
}

// Remove deletes a document and its chunks from all three structures.
func (c *Coordinator) Remove(ctx context.Context, docID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		return domain.ErrIndexInconsistent
	}

	if err := c.removeLocked(ctx, docID); err != nil {
		return err
	}
	return c.verifyLocked(ctx)
}

func (c *Coordinator) applyLocked(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if err := c.store.SaveDocument(ctx, doc, chunks); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	if err := c.lexical.Add(ctx, chunks); err != nil {
		return fmt.Errorf("indexing chunks lexically: %w", err)
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if err := c.dense.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			return fmt.Errorf("indexing chunk embedding: %w", err)
		}
	}
	return nil
}

func (c *Coordinator) removeLocked(ctx context.Context, docID string) error {
	removed, err := c.store.DeleteDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if err := c.lexical.Remove(ctx, removed); err != nil {
		return fmt.Errorf("removing chunks from lexical index: %w", err)
	}
	if err := c.dense.Remove(ctx, removed); err != nil {
		return fmt.Errorf("removing chunks from dense index: %w", err)
	}
	return nil
}

// verifyLocked checks that the lexical index holds exactly the stored
// chunk IDs and the dense index holds a subset of them. Chunks without
// embeddings are legitimately absent from the dense index.
func (c *Coordinator) verifyLocked(ctx context.Context) error {
	stored, err := c.store.ChunkIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing stored chunk ids: %w", err)
	}
	lexical, err := c.lexical.ChunkIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing lexical chunk ids: %w", err)
	}
	dense, err := c.dense.ChunkIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing dense chunk ids: %w", err)
	}

	if len(lexical) != len(stored) {
		c.poisoned = true
		return fmt.Errorf("%w: store holds %d chunks, lexical index holds %d",
			domain.ErrIndexInconsistent, len(stored), len(lexical))
	}
	for id := range lexical {
		if _, ok := stored[id]; !ok {
			c.poisoned = true
			return fmt.Errorf("%w: lexical index holds unknown chunk %s", domain.ErrIndexInconsistent, id)
		}
	}
	for id := range dense {
		if _, ok := stored[id]; !ok {
			c.poisoned = true
			return fmt.Errorf("%w: dense index holds unknown chunk %s", domain.ErrIndexInconsistent, id)
		}
	}
	return nil
}

// Snapshot runs fn under one read-lock acquisition. A replace that
// commits between two separate scoring calls would let a query see a
// half-replaced document; inside fn every read observes the same
// state.
func (c *Coordinator) Snapshot(ctx context.Context, fn func(view driven.IndexView) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fn(snapshotView{c})
}

// snapshotView reads the underlying structures directly; the caller
// holds the coordinator's read lock for the view's whole lifetime.
type snapshotView struct {
	c *Coordinator
}

func (v snapshotView) ScoreLexical(ctx context.Context, query string) ([]driven.LexicalHit, error) {
	return v.c.lexical.Score(ctx, query)
}

func (v snapshotView) ScoreDense(ctx context.Context, embedding []float32) ([]driven.DenseHit, error) {
	return v.c.dense.Score(ctx, embedding)
}

func (v snapshotView) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	return v.c.store.GetChunk(ctx, id)
}

// ScoreLexical scores the query against the lexical index under the
// read lock.
func (c *Coordinator) ScoreLexical(ctx context.Context, query string) ([]driven.LexicalHit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lexical.Score(ctx, query)
}

// ScoreDense scores the query embedding against the dense index under
// the read lock.
func (c *Coordinator) ScoreDense(ctx context.Context, embedding []float32) ([]driven.DenseHit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dense.Score(ctx, embedding)
}

// GetChunk hydrates a chunk by ID under the read lock.
func (c *Coordinator) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.GetChunk(ctx, id)
}

// FindByName looks up the document stored under a normalised filename.
func (c *Coordinator) FindByName(ctx context.Context, name string) (*domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.FindByName(ctx, name)
}

// GetDocument retrieves a document by ID.
func (c *Coordinator) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.GetDocument(ctx, id)
}

// ListDocuments returns all indexed documents.
func (c *Coordinator) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.ListDocuments(ctx)
}

// Counts returns the number of indexed documents and chunks.
func (c *Coordinator) Counts(ctx context.Context) (documents, chunks int, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs, err := c.store.ListDocuments(ctx)
	if err != nil {
		return 0, 0, err
	}
	ids, err := c.store.ChunkIDs(ctx)
	if err != nil {
		return 0, 0, err
	}
	return len(docs), len(ids), nil
}

// Healthy reports whether the coordinator accepts writes.
func (c *Coordinator) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.poisoned
}
