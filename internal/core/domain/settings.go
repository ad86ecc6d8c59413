package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderHuggingFace is the HuggingFace Inference API router.
	AIProviderHuggingFace AIProvider = "huggingface"

	// AIProviderStatic is the canned offline provider used for demos
	// and tests without API dependencies.
	AIProviderStatic AIProvider = "static"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderHuggingFace, AIProviderStatic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderHuggingFace
}

// IsLocal returns true if this provider runs without network access.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderStatic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderHuggingFace:
		return "HuggingFace Inference API (cloud)"
	case AIProviderStatic:
		return "Static (offline, canned responses)"
	default:
		return unknownDescription
	}
}

// ChunkingSettings controls how documents are split at ingestion.
type ChunkingSettings struct {
	// Size is the chunk size in characters.
	Size int

	// Overlap is the number of characters shared between consecutive
	// chunks on the same page.
	Overlap int
}

// RetrievalSettings controls the hybrid retriever.
type RetrievalSettings struct {
	// TopK is the default number of candidates returned per query.
	TopK int

	// LexicalWeight is the weight for the normalised BM25 component.
	LexicalWeight float64

	// DenseWeight is the weight for the normalised cosine component.
	DenseWeight float64

	// MinScore is the relevance floor; candidates below it are dropped
	// before truncation. Zero disables the floor.
	MinScore float64

	// K1 is the BM25 term-frequency saturation parameter.
	K1 float64

	// B is the BM25 length-normalisation parameter.
	B float64
}

// ValidationSettings controls the answer validator thresholds.
type ValidationSettings struct {
	// MinRetrievalScore is the minimum top-candidate combined score for
	// the retrieval quality check to pass.
	MinRetrievalScore float64

	// MinAlignment is the minimum fraction of content-bearing answer
	// tokens that must appear in the candidate text.
	MinAlignment float64
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings holds generation provider configuration.
type GenerationSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider

	// Model is the generation model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/HuggingFace).
	APIKey string

	// MaxTokens caps the answer length.
	MaxTokens int

	// Temperature controls sampling randomness. Low values keep small
	// models extractive.
	Temperature float64

	// RequestsPerMinute rate-limits outbound calls. Zero disables the
	// limiter.
	RequestsPerMinute int
}

// IsConfigured returns true if the generation provider is set up.
func (g GenerationSettings) IsConfigured() bool {
	if !g.Provider.IsValid() {
		return false
	}
	if g.Provider.RequiresAPIKey() && g.APIKey == "" {
		return false
	}
	return true
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string

	// DocumentsDir is loaded at startup and watched for new files.
	// Empty disables both behaviours.
	DocumentsDir string

	// RequestTimeout bounds a single query end to end, in seconds.
	// Expiry during generation surfaces as a generation timeout.
	RequestTimeout int
}

// StorageSettings selects the chunk store backend.
type StorageSettings struct {
	// Backend is "memory" or "sqlite".
	Backend string

	// DataDir is the SQLite data directory; defaults under the user
	// home when empty.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Chunking holds document splitting settings.
	Chunking ChunkingSettings

	// Retrieval holds hybrid retriever settings.
	Retrieval RetrievalSettings

	// Validation holds answer validator thresholds.
	Validation ValidationSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Generation holds generation provider settings.
	Generation GenerationSettings

	// Server holds HTTP API settings.
	Server ServerSettings

	// Storage holds chunk store settings.
	Storage StorageSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Providers default to the offline static implementations so the
// pipeline works out of the box; real providers are configured via the
// config file or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			Size:    800,
			Overlap: 200,
		},
		Retrieval: RetrievalSettings{
			TopK:          5,
			LexicalWeight: 0.5,
			DenseWeight:   0.5,
			MinScore:      0,
			K1:            1.5,
			B:             0.75,
		},
		Validation: ValidationSettings{
			MinRetrievalScore: 0.3,
			MinAlignment:      0.5,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderStatic,
		},
		Generation: GenerationSettings{
			Provider:    AIProviderStatic,
			MaxTokens:   500,
			Temperature: 0.1,
		},
		Server: ServerSettings{
			Addr:           ":8000",
			RequestTimeout: 60,
		},
		Storage: StorageSettings{
			Backend: "memory",
		},
	}
}

// Validate checks the settings for internal consistency.
func (s AppSettings) Validate() error {
	if s.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.Size {
		return fmt.Errorf("%w: chunk overlap must be in [0, size)", ErrInvalidInput)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", ErrInvalidInput)
	}
	if s.Retrieval.LexicalWeight < 0 || s.Retrieval.DenseWeight < 0 {
		return fmt.Errorf("%w: retrieval weights must be non-negative", ErrInvalidInput)
	}
	if s.Retrieval.LexicalWeight+s.Retrieval.DenseWeight == 0 {
		return fmt.Errorf("%w: at least one retrieval weight must be positive", ErrInvalidInput)
	}
	if s.Validation.MinAlignment < 0 || s.Validation.MinAlignment > 1 {
		return fmt.Errorf("%w: alignment threshold must be in [0, 1]", ErrInvalidInput)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if !s.Generation.Provider.IsValid() {
		return fmt.Errorf("%w: unknown generation provider %q", ErrInvalidInput, s.Generation.Provider)
	}
	switch s.Storage.Backend {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidInput, s.Storage.Backend)
	}
	return nil
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultGenerationModels returns default models for each generation provider.
func DefaultGenerationModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:      "llama3.2",
		AIProviderOpenAI:      "gpt-4o-mini",
		AIProviderHuggingFace: "mistralai/Mistral-7B-Instruct-v0.3",
	}
}
