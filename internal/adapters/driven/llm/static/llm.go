// Package static provides an offline generation service that answers
// by echoing retrieved context. It exists so the full pipeline runs
// without any model backend, in demos and tests.
package static

import (
	"context"
	"fmt"
	"strings"

	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// Model reported by the static service.
const Model = "static-echo"

// snippetWords caps how much context the echoed answer repeats.
const snippetWords = 100

// GenerationService produces deterministic context-echo completions.
type GenerationService struct{}

// NewGenerationService creates a static generation service.
func NewGenerationService() *GenerationService {
	return &GenerationService{}
}

// Complete produces a deterministic completion: the leading words of
// the prompt's first context section. Prompts without a context
// section get the fixed no-information phrase.
func (s *GenerationService) Complete(_ context.Context, prompt string, _ driven.GenerateOptions) (driven.Completion, error) {
	snippet := firstSource(prompt)
	var text string
	if snippet == "" {
		text = "I cannot find this information in the provided documents."
	} else {
		text = fmt.Sprintf("Based on the fund documents, %s", snippet)
	}
	return driven.Completion{
		Text:       text,
		Model:      Model,
		TokensUsed: len(strings.Fields(text)),
	}, nil
}

// firstSource extracts the first "[Source 1]" section of the prompt,
// truncated to snippetWords words.
func firstSource(prompt string) string {
	_, after, found := strings.Cut(prompt, "[Source 1]")
	if !found {
		return ""
	}
	if idx := strings.Index(after, "[Source "); idx >= 0 {
		after = after[:idx]
	}
	if idx := strings.Index(after, "QUESTION:"); idx >= 0 {
		after = after[:idx]
	}
	words := strings.Fields(after)
	if len(words) > snippetWords {
		words = words[:snippetWords]
	}
	return strings.Join(words, " ")
}

// ModelName returns the name of the generation model being used.
func (s *GenerationService) ModelName() string {
	return Model
}

// Ping always succeeds; there is no backend.
func (s *GenerationService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *GenerationService) Close() error {
	return nil
}
