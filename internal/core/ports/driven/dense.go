package driven

import "context"

// DenseIndex provides semantic similarity scoring over chunk embeddings.
// The index only stores vectors and computes cosine similarity; it owns
// no embedding logic. Add/Remove mirror the LexicalIndex contract and
// are kept in lockstep with it by the index coordinator.
type DenseIndex interface {
	// Add inserts a vector for the given chunk ID.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Remove drops vectors from the index.
	Remove(ctx context.Context, chunkIDs []string) error

	// Score ranks every stored vector by cosine similarity to the
	// query embedding, descending.
	Score(ctx context.Context, query []float32) ([]DenseHit, error)

	// ChunkIDs returns the set of indexed chunk IDs, for consistency
	// verification against the chunk store.
	ChunkIDs(ctx context.Context) (map[string]struct{}, error)
}

// DenseHit is one scored chunk from the dense index.
type DenseHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the raw cosine similarity, unnormalised.
	Similarity float64
}
