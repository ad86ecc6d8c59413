package driven

import (
	"context"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

// LexicalIndex provides exact-term relevance scoring over chunk text.
// Backed by an in-memory BM25 inverted index.
type LexicalIndex interface {
	// Add indexes chunks. Tokenisation must match Score's exactly.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Remove drops chunks from the postings.
	Remove(ctx context.Context, chunkIDs []string) error

	// Score ranks all chunks matching at least one query term,
	// descending by BM25 score.
	Score(ctx context.Context, query string) ([]LexicalHit, error)

	// ChunkIDs returns the set of indexed chunk IDs, for consistency
	// verification against the chunk store.
	ChunkIDs(ctx context.Context) (map[string]struct{}, error)
}

// LexicalHit is one scored chunk from the lexical index.
type LexicalHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the raw BM25 score, unnormalised.
	Score float64
}
