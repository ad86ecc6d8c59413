// Package ai provides factory functions for creating AI service
// adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/parchment-labs/fundqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/parchment-labs/fundqa/internal/adapters/driven/embedding/openai"
	staticembed "github.com/parchment-labs/fundqa/internal/adapters/driven/embedding/static"
	hfllm "github.com/parchment-labs/fundqa/internal/adapters/driven/llm/huggingface"
	ollamallm "github.com/parchment-labs/fundqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/parchment-labs/fundqa/internal/adapters/driven/llm/openai"
	staticllm "github.com/parchment-labs/fundqa/internal/adapters/driven/llm/static"
	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity
// validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service the settings
// select. Returns nil when the provider is not configured; the
// pipeline then runs lexical-only.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	model := settings.Model
	if model == "" {
		model = domain.DefaultEmbeddingModels()[settings.Provider]
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   model,
		})

	case domain.AIProviderStatic:
		return staticembed.NewEmbeddingService(0), nil

	case domain.AIProviderHuggingFace:
		return nil, fmt.Errorf("huggingface embeddings are not supported, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateGenerationService creates the generation service the settings
// select. A configured RequestsPerMinute wraps the service in a rate
// limiter.
func CreateGenerationService(settings domain.GenerationSettings) (driven.GenerationService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("generation provider is not configured")
	}

	model := settings.Model
	if model == "" {
		model = domain.DefaultGenerationModels()[settings.Provider]
	}

	var (
		svc driven.GenerationService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewGenerationService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   model,
		})

	case domain.AIProviderOpenAI:
		svc, err = openaillm.NewGenerationService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   model,
		})

	case domain.AIProviderHuggingFace:
		svc, err = hfllm.NewGenerationService(hfllm.Config{
			APIToken: settings.APIKey,
			BaseURL:  settings.BaseURL,
			Model:    model,
		})

	case domain.AIProviderStatic:
		svc = staticllm.NewGenerationService()

	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if settings.RequestsPerMinute > 0 {
		svc = RateLimitGeneration(svc, settings.RequestsPerMinute)
	}
	return svc, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity. Unreachable services return an error instead
// of a half-working adapter.
func CreateAndValidateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateGenerationService creates a generation service and
// validates connectivity.
func CreateAndValidateGenerationService(settings domain.GenerationSettings) (driven.GenerationService, error) {
	svc, err := CreateGenerationService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}
