// Package bm25 provides an in-memory inverted index scoring chunks
// with the Okapi BM25 ranking function.
package bm25

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.LexicalIndex = (*Index)(nil)

// Default BM25 parameters.
const (
	// DefaultK1 is the term-frequency saturation parameter.
	DefaultK1 = 1.5

	// DefaultB is the length-normalisation parameter.
	DefaultB = 0.75
)

// posting records one chunk's occurrence count for a term.
type posting struct {
	chunkID string
	freq    int
}

// Index is a BM25 inverted index over chunk text.
// All methods are safe for concurrent use, though the index
// coordinator additionally serialises writes with the other index
// structures.
type Index struct {
	mu sync.RWMutex

	k1 float64
	b  float64

	// postings maps term -> chunks containing it.
	postings map[string][]posting

	// docLengths maps chunkID -> token count.
	docLengths map[string]int

	totalLength int
}

// Option configures the index.
type Option func(*Index)

// WithK1 sets the term-frequency saturation parameter.
func WithK1(k1 float64) Option {
	return func(idx *Index) {
		if k1 > 0 {
			idx.k1 = k1
		}
	}
}

// WithB sets the length-normalisation parameter.
func WithB(b float64) Option {
	return func(idx *Index) {
		if b >= 0 && b <= 1 {
			idx.b = b
		}
	}
}

// New creates an empty index with the given options.
func New(opts ...Option) *Index {
	idx := &Index{
		k1:         DefaultK1,
		b:          DefaultB,
		postings:   make(map[string][]posting),
		docLengths: make(map[string]int),
	}

	for _, opt := range opts {
		opt(idx)
	}

	return idx
}

// Add indexes the chunks' text.
func (idx *Index) Add(_ context.Context, chunks []domain.Chunk) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, chunk := range chunks {
		if _, exists := idx.docLengths[chunk.ID]; exists {
			continue
		}

		tokens := Tokenise(chunk.Content)
		idx.docLengths[chunk.ID] = len(tokens)
		idx.totalLength += len(tokens)

		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		for term, freq := range freqs {
			idx.postings[term] = append(idx.postings[term], posting{chunkID: chunk.ID, freq: freq})
		}
	}

	return nil
}

// Remove drops the chunks from the postings.
func (idx *Index) Remove(_ context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	removing := make(map[string]bool, len(chunkIDs))
	for _, id := range chunkIDs {
		if length, ok := idx.docLengths[id]; ok {
			removing[id] = true
			idx.totalLength -= length
			delete(idx.docLengths, id)
		}
	}
	if len(removing) == 0 {
		return nil
	}

	for term, list := range idx.postings {
		kept := list[:0]
		for _, p := range list {
			if !removing[p.chunkID] {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(idx.postings, term)
		} else {
			idx.postings[term] = kept
		}
	}

	return nil
}

// Score ranks every chunk matching at least one query term using the
// Okapi BM25 formula with idf = ln((N - df + 0.5)/(df + 0.5) + 1).
func (idx *Index) Score(_ context.Context, query string) ([]driven.LexicalHit, error) {
	terms := Tokenise(query)
	if len(terms) == 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.docLengths)
	if n == 0 {
		return nil, nil
	}
	avgLength := float64(idx.totalLength) / float64(n)

	scores := make(map[string]float64)
	for _, term := range terms {
		list, ok := idx.postings[term]
		if !ok {
			continue
		}

		df := float64(len(list))
		idf := math.Log((float64(n)-df+0.5)/(df+0.5) + 1)

		for _, p := range list {
			tf := float64(p.freq)
			docLen := float64(idx.docLengths[p.chunkID])
			norm := idx.k1 * (1 - idx.b + idx.b*docLen/avgLength)
			scores[p.chunkID] += idf * tf * (idx.k1 + 1) / (tf + norm)
		}
	}

	hits := make([]driven.LexicalHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, driven.LexicalHit{ChunkID: id, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	return hits, nil
}

// ChunkIDs returns the set of indexed chunk IDs.
func (idx *Index) ChunkIDs(_ context.Context) (map[string]struct{}, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ids := make(map[string]struct{}, len(idx.docLengths))
	for id := range idx.docLengths {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docLengths)
}

// Tokenise lowercases the text and splits it on any non-letter,
// non-digit rune. Indexing and querying must use the same rule, so it
// is exported for the retriever's alignment checks as well.
func Tokenise(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
