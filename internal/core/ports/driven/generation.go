package driven

import "context"

// GenerationService is the external text-completion collaborator.
// It is stateless: every call carries the full prompt, never prior
// conversation state. Failures must surface as errors, never as an
// empty answer.
//
// Implementations may include:
//   - HuggingFace Inference API (Mistral-7B, Phi-3 and other small models)
//   - OpenAI (gpt-4o-mini)
//   - Ollama (local models)
//   - Static (canned responses for demos and tests)
type GenerationService interface {
	// Complete produces a text completion for the prompt. The context
	// deadline bounds the call; expiry is reported by the caller as a
	// generation timeout.
	Complete(ctx context.Context, prompt string, opts GenerateOptions) (Completion, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// Completion is the provider-neutral generation result.
type Completion struct {
	// Text is the generated answer text.
	Text string

	// Model is the model that produced the text.
	Model string

	// TokensUsed is the total token count when the provider reports
	// one, else 0.
	TokensUsed int
}
