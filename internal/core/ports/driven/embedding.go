package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// It is used identically for chunk text at ingest and question text at
// query time.
//
// Note: This is separate from DenseIndex which stores and searches
// vectors. EmbeddingService generates vectors; DenseIndex stores them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Static (deterministic offline vectors for demos and tests)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup before committing to dense retrieval.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
