// Package memory provides in-memory storage adapters, used as the
// default backend and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	byName    map[string]string
	chunks    map[string][]domain.Chunk
	chunkIdx  map[string]string
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		documents: make(map[string]domain.Document),
		byName:    make(map[string]string),
		chunks:    make(map[string][]domain.Chunk),
		chunkIdx:  make(map[string]string),
	}
}

// SaveDocument stores a document and its chunks as one unit.
func (s *ChunkStore) SaveDocument(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[doc.ID] = *doc
	s.byName[doc.Identity.Name] = doc.ID

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.Slice(stored, func(i, j int) bool {
		if stored[i].Page != stored[j].Page {
			return stored[i].Page < stored[j].Page
		}
		return stored[i].Offset < stored[j].Offset
	})
	s.chunks[doc.ID] = stored
	for _, c := range stored {
		s.chunkIdx[c.ID] = doc.ID
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *ChunkStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// FindByName retrieves the document stored under a normalised filename.
func (s *ChunkStore) FindByName(_ context.Context, name string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[id]
	return &doc, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *ChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docID, ok := s.chunkIdx[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, chunk := range s.chunks[docID] {
		if chunk.ID == id {
			return &chunk, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves all chunks for a document, in page/offset order.
func (s *ChunkStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

// ListAll returns every stored chunk.
func (s *ChunkStore) ListAll(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.Chunk
	for _, chunks := range s.chunks {
		all = append(all, chunks...)
	}
	return all, nil
}

// ListDocuments returns all stored documents.
func (s *ChunkStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// DeleteDocument removes a document and its chunks, returning the
// removed chunk IDs.
func (s *ChunkStore) DeleteDocument(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	removed := make([]string, 0, len(s.chunks[id]))
	for _, c := range s.chunks[id] {
		removed = append(removed, c.ID)
		delete(s.chunkIdx, c.ID)
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	if s.byName[doc.Identity.Name] == id {
		delete(s.byName, doc.Identity.Name)
	}
	return removed, nil
}

// ChunkIDs returns the set of all stored chunk IDs.
func (s *ChunkStore) ChunkIDs(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[string]struct{}, len(s.chunkIdx))
	for id := range s.chunkIdx {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Close is a no-op for the in-memory store.
func (s *ChunkStore) Close() error {
	return nil
}
