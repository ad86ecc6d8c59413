package driving

import (
	"context"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

// QueryService answers natural-language questions over the index.
type QueryService interface {
	// Answer runs the full retrieve -> generate -> validate sequence.
	// With zero retrieved candidates it short-circuits to the fixed
	// no-information response without invoking generation.
	Answer(ctx context.Context, query domain.Query) (*domain.QueryResponse, error)

	// AnswerBatch answers each question in order; intended for
	// evaluation runs.
	AnswerBatch(ctx context.Context, questions []string) ([]*domain.QueryResponse, error)

	// Stats summarises the current pipeline state.
	Stats(ctx context.Context) (domain.Stats, error)

	// Health reports component readiness.
	Health(ctx context.Context) domain.Health
}
