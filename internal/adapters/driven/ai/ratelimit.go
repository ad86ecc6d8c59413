package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure the wrapper implements the interface.
var _ driven.GenerationService = (*rateLimitedGeneration)(nil)

// rateLimitedGeneration throttles Complete calls. Free-tier inference
// APIs enforce per-minute quotas; exceeding them turns into opaque 429
// failures mid-batch.
type rateLimitedGeneration struct {
	inner   driven.GenerationService
	limiter *rate.Limiter
}

// RateLimitGeneration wraps a generation service with a per-minute
// request limit. Waiting respects the call's context deadline.
func RateLimitGeneration(inner driven.GenerationService, requestsPerMinute int) driven.GenerationService {
	return &rateLimitedGeneration{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

func (s *rateLimitedGeneration) Complete(ctx context.Context, prompt string, opts driven.GenerateOptions) (driven.Completion, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return driven.Completion{}, err
	}
	return s.inner.Complete(ctx, prompt, opts)
}

func (s *rateLimitedGeneration) ModelName() string {
	return s.inner.ModelName()
}

// Ping is not limited; health checks must not queue behind quota.
func (s *rateLimitedGeneration) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func (s *rateLimitedGeneration) Close() error {
	return s.inner.Close()
}
