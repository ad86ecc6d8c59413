package domain

// Query is a single stateless question against the index.
type Query struct {
	// Question is the natural-language question text.
	Question string

	// TopK overrides the configured retrieval depth when > 0.
	TopK int

	// Validate disables the answer validator when explicitly false.
	// Defaults to true at the API boundary.
	Validate bool
}

// RetrievalCandidate is a chunk scored by the hybrid retriever.
// Candidates are created per-query and never persisted; scores always
// reflect the index state at query time.
type RetrievalCandidate struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// LexicalScore is the min-max normalised BM25 score, 0 when the
	// chunk was absent from the lexical result set.
	LexicalScore float64

	// DenseScore is the min-max normalised cosine similarity, 0 when
	// the chunk was absent from the dense result set.
	DenseScore float64

	// CombinedScore is the weighted sum of the two component scores.
	CombinedScore float64
}

// QueryResponse is the full answer envelope returned to callers.
// Field shapes match the HTTP surface so the UI layer can render
// confidence, warnings and cited sources without reinterpretation.
type QueryResponse struct {
	// Question echoes the query.
	Question string

	// Answer is the generated answer text, or a fixed notice when no
	// relevant context was found or the answer was rejected.
	Answer string

	// Validation is the validator verdict; nil when validation was
	// disabled or skipped (no-context short circuit).
	Validation *ValidationResult

	// Sources are the retrieved candidates the answer was grounded on.
	Sources []RetrievalCandidate

	// Metadata is an open key-value bag. Known keys are the Meta*
	// constants below.
	Metadata map[string]any
}

// Documented metadata keys for QueryResponse.Metadata.
const (
	// MetaRetrievalCount is the number of retrieved candidates (int).
	MetaRetrievalCount = "retrieval_count"

	// MetaModel is the generation model name (string).
	MetaModel = "model"

	// MetaTopScore is the top candidate's combined score (float64).
	MetaTopScore = "top_score"

	// MetaDurationMS is the end-to-end query duration (int64, ms).
	MetaDurationMS = "duration_ms"

	// MetaRequestID is the per-request correlation ID (string).
	MetaRequestID = "request_id"

	// MetaTokensUsed is the generation token count when the provider
	// reports one (int).
	MetaTokensUsed = "tokens_used"
)

// NoInformationAnswer is the fixed response body when retrieval returns
// zero candidates. Generation is never invoked in that case.
const NoInformationAnswer = "I could not find relevant information in the indexed documents."

// InsufficientEvidenceAnswer prefixes a rejected answer so callers can
// render the withheld state explicitly.
const InsufficientEvidenceAnswer = "Insufficient evidence in the indexed documents to answer reliably."

// Stats summarises the current pipeline state.
type Stats struct {
	// DocumentsLoaded is true once at least one document is indexed.
	DocumentsLoaded bool

	// TotalDocuments is the number of indexed documents.
	TotalDocuments int

	// TotalChunks is the number of indexed chunks.
	TotalChunks int

	// UniqueSources is the number of distinct source filenames.
	UniqueSources int

	// EmbeddingDimensions is the dense vector size, 0 when unknown.
	EmbeddingDimensions int

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string

	// GenerationModel is the generation model name.
	GenerationModel string

	// ChunkSize is the configured chunk size in characters.
	ChunkSize int

	// TopK is the configured retrieval depth.
	TopK int
}

// Health reports component readiness for the health endpoint.
type Health struct {
	// Status is "healthy" when the pipeline is ready, else "initializing".
	Status string

	// PipelineReady is true once all components are wired.
	PipelineReady bool

	// DocumentsLoaded is true once at least one document is indexed.
	DocumentsLoaded bool

	// LLMAvailable reports the generation collaborator's reachability.
	LLMAvailable bool
}
