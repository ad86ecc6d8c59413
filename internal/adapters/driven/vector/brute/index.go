// Package brute provides an exhaustive in-memory cosine similarity
// index over chunk embeddings. Corpora here are small financial
// documents, so a linear scan beats maintaining an ANN structure.
package brute

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.DenseIndex = (*Index)(nil)

// Index stores chunk vectors and scores queries by cosine similarity.
// All methods are safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	vectors map[string][]float32
	dims    int
}

// New creates an empty index.
func New() *Index {
	return &Index{
		vectors: make(map[string][]float32),
	}
}

// Add inserts a vector for the given chunk ID.
// All vectors must share one dimensionality.
func (idx *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("dense index: empty embedding for chunk %s", chunkID)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dims == 0 {
		idx.dims = len(embedding)
	} else if len(embedding) != idx.dims {
		return fmt.Errorf("dense index: dimension mismatch for chunk %s: got %d, want %d",
			chunkID, len(embedding), idx.dims)
	}

	stored := make([]float32, len(embedding))
	copy(stored, embedding)
	idx.vectors[chunkID] = stored
	return nil
}

// Remove drops vectors from the index.
func (idx *Index) Remove(_ context.Context, chunkIDs []string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, id := range chunkIDs {
		delete(idx.vectors, id)
	}
	if len(idx.vectors) == 0 {
		idx.dims = 0
	}
	return nil
}

// Score ranks every stored vector by cosine similarity to the query,
// descending, ties broken by chunk ID for determinism.
func (idx *Index) Score(_ context.Context, query []float32) ([]driven.DenseHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.vectors) == 0 {
		return nil, nil
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("dense index: query dimension %d, index dimension %d", len(query), idx.dims)
	}

	hits := make([]driven.DenseHit, 0, len(idx.vectors))
	for id, vec := range idx.vectors {
		hits = append(hits, driven.DenseHit{
			ChunkID:    id,
			Similarity: CosineSimilarity(query, vec),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	return hits, nil
}

// ChunkIDs returns the set of indexed chunk IDs.
func (idx *Index) ChunkIDs(_ context.Context) (map[string]struct{}, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ids := make(map[string]struct{}, len(idx.vectors))
	for id := range idx.vectors {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Dimensions returns the vector size, 0 when the index is empty.
func (idx *Index) Dimensions() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dims
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for mismatched lengths or zero-norm inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
