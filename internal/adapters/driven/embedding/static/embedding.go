// Package static provides a deterministic offline embedding service.
// Vectors are hashed bag-of-words projections: texts sharing terms get
// similar vectors, identical texts get identical vectors. Useful for
// demos and tests where no embedding backend is available.
package static

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the default vector size.
const DefaultDimensions = 256

// ModelName reported by the static service.
const Model = "static-hash"

// EmbeddingService generates deterministic offline embeddings.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a static embedding service.
// dimensions <= 0 uses the default.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed generates a deterministic embedding for the given text.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)
	for _, term := range terms(text) {
		h := fnv.New32a()
		h.Write([]byte(term))
		sum := h.Sum32()
		// The high bit picks the sign so unrelated terms cancel
		// rather than accumulate.
		slot := int(sum>>1) % s.dimensions
		if sum&1 == 0 {
			vec[slot]++
		} else {
			vec[slot]--
		}
	}
	normalise(vec)
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return Model
}

// Ping always succeeds; there is no backend.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalise(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
