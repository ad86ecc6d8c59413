package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Ingestion errors.

	// ErrDuplicateDocument indicates a document with the same identity
	// is already indexed and no replace was requested.
	ErrDuplicateDocument = errors.New("document already indexed")

	// ErrEmptyDocument indicates extraction produced no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrUnsupportedFile indicates a file type no extractor handles.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrIndexInconsistent is fatal: the chunk store and the two index
	// structures disagree on the chunk-id set. Further writes are
	// refused; the process must be restarted after investigation.
	ErrIndexInconsistent = errors.New("index chunk sets diverged")

	// Collaborator errors.

	// ErrGenerationFailure indicates the generation collaborator
	// returned an error or non-success status. The answer is omitted,
	// never silently treated as empty.
	ErrGenerationFailure = errors.New("generation failed")

	// ErrGenerationTimeout indicates the request timeout expired during
	// the generation call. Surfaced distinctly from validation failures.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Dense retrieval is disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation service is not
	// configured or unreachable.
	ErrLLMUnavailable = errors.New("generation service unavailable")
)
