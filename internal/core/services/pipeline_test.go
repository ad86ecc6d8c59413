package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
	"github.com/parchment-labs/fundqa/internal/index"
)

// mockGenerator counts calls so tests can assert the short-circuit
// paths never reach generation.
type mockGenerator struct {
	text     string
	err      error
	pingErr  error
	calls    int
	lastOpts driven.GenerateOptions
	prompt   string
}

func (m *mockGenerator) Complete(_ context.Context, prompt string, opts driven.GenerateOptions) (driven.Completion, error) {
	m.calls++
	m.prompt = prompt
	m.lastOpts = opts
	if m.err != nil {
		return driven.Completion{}, m.err
	}
	return driven.Completion{Text: m.text, Model: "mock-gen", TokensUsed: 42}, nil
}

func (m *mockGenerator) ModelName() string          { return "mock-gen" }
func (m *mockGenerator) Ping(context.Context) error { return m.pingErr }
func (m *mockGenerator) Close() error               { return nil }

func newPipeline(t *testing.T, coord *index.Coordinator, embedder *mockEmbedder, gen driven.GenerationService) *Pipeline {
	t.Helper()
	settings := domain.DefaultAppSettings()
	retriever := NewRetriever(coord, embedder, settings.Retrieval)
	validator := NewValidator(settings.Validation)
	var emb driven.EmbeddingService
	if embedder != nil {
		emb = embedder
	}
	return NewPipeline(retriever, validator, gen, emb, coord, settings)
}

func TestAnswerHappyPath(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, map[string]string{
		"fees.pdf": "The redemption fee is 2.5% of redemption proceeds for early withdrawals.",
	})
	gen := &mockGenerator{text: "According to Source 1, the redemption fee is 2.5% of redemption proceeds."}
	p := newPipeline(t, coord, embedder, gen)

	resp, err := p.Answer(context.Background(), domain.Query{Question: "what is the redemption fee", Validate: true})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, gen.text, resp.Answer)
	assert.NotEmpty(t, resp.Sources)
	require.NotNil(t, resp.Validation)
	assert.Equal(t, domain.ConfidenceHigh, resp.Validation.Confidence)

	assert.Equal(t, len(resp.Sources), resp.Metadata[domain.MetaRetrievalCount])
	assert.NotEmpty(t, resp.Metadata[domain.MetaRequestID])
	assert.Equal(t, "mock-gen", resp.Metadata[domain.MetaModel])
	assert.Equal(t, 42, resp.Metadata[domain.MetaTokensUsed])
	assert.Contains(t, resp.Metadata, domain.MetaTopScore)
	assert.Contains(t, resp.Metadata, domain.MetaDurationMS)
}

func TestAnswerEmptyIndexSkipsGeneration(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, nil)
	gen := &mockGenerator{text: "should never be used"}
	p := newPipeline(t, coord, embedder, gen)

	resp, err := p.Answer(context.Background(), domain.Query{Question: "what is the redemption fee", Validate: true})
	require.NoError(t, err)

	assert.Zero(t, gen.calls)
	assert.Equal(t, domain.NoInformationAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Nil(t, resp.Validation)
	assert.Equal(t, 0, resp.Metadata[domain.MetaRetrievalCount])
}

func TestAnswerEmptyQuestion(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, nil)
	p := newPipeline(t, coord, embedder, &mockGenerator{})

	_, err := p.Answer(context.Background(), domain.Query{Question: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswerGenerationFailure(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, map[string]string{
		"fees.pdf": "The redemption fee is 2.5% of proceeds.",
	})
	gen := &mockGenerator{err: errors.New("backend 500")}
	p := newPipeline(t, coord, embedder, gen)

	_, err := p.Answer(context.Background(), domain.Query{Question: "redemption fee"})
	assert.ErrorIs(t, err, domain.ErrGenerationFailure)
}

func TestAnswerGenerationTimeout(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, map[string]string{
		"fees.pdf": "The redemption fee is 2.5% of proceeds.",
	})
	gen := &mockGenerator{err: context.DeadlineExceeded}
	p := newPipeline(t, coord, embedder, gen)

	_, err := p.Answer(context.Background(), domain.Query{Question: "redemption fee"})
	assert.ErrorIs(t, err, domain.ErrGenerationTimeout)
}

func TestAnswerEmptyCompletionIsFailure(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, map[string]string{
		"fees.pdf": "The redemption fee is 2.5% of proceeds.",
	})
	gen := &mockGenerator{text: "   "}
	p := newPipeline(t, coord, embedder, gen)

	_, err := p.Answer(context.Background(), domain.Query{Question: "redemption fee"})
	assert.ErrorIs(t, err, domain.ErrGenerationFailure)
}

func TestAnswerRejectedReplacesAnswer(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, map[string]string{
		"fees.pdf": "The redemption fee is 2.5% of redemption proceeds.",
	})
	// Numbers absent from sources plus poor alignment push the
	// validator off the high path; a fabricated figure fails the
	// numerical check.
	gen := &mockGenerator{text: "The management fee is 9% and performance allocation is 20%."}
	p := newPipeline(t, coord, embedder, gen)

	resp, err := p.Answer(context.Background(), domain.Query{Question: "what is the redemption fee", Validate: true})
	require.NoError(t, err)
	require.NotNil(t, resp.Validation)
	assert.NotEqual(t, domain.ConfidenceHigh, resp.Validation.Confidence)
	if resp.Validation.Confidence == domain.ConfidenceRejected {
		assert.Equal(t, domain.InsufficientEvidenceAnswer, resp.Answer)
	}
}

func TestAnswerValidationDisabled(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, map[string]string{
		"fees.pdf": "The redemption fee is 2.5% of proceeds.",
	})
	gen := &mockGenerator{text: "The fee is 99%."}
	p := newPipeline(t, coord, embedder, gen)

	resp, err := p.Answer(context.Background(), domain.Query{Question: "redemption fee", Validate: false})
	require.NoError(t, err)
	assert.Nil(t, resp.Validation)
	assert.Equal(t, gen.text, resp.Answer)
}

func TestAnswerPromptStructure(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, map[string]string{
		"fees.pdf": "The redemption fee is 2.5% of proceeds.",
	})
	gen := &mockGenerator{text: "According to Source 1, the fee is 2.5%."}
	p := newPipeline(t, coord, embedder, gen)

	_, err := p.Answer(context.Background(), domain.Query{Question: "what is the redemption fee"})
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "financial document analysis assistant")
	assert.Contains(t, gen.prompt, "[Source 1]")
	assert.Contains(t, gen.prompt, "QUESTION: what is the redemption fee")
	assert.Contains(t, gen.prompt, "ANSWER:")
	assert.True(t, len(gen.prompt) > 0 && gen.prompt[len(gen.prompt)-1] == ':')
}

func TestAnswerBatchAbortsOnError(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, map[string]string{
		"fees.pdf": "The redemption fee is 2.5% of redemption proceeds.",
	})
	gen := &mockGenerator{text: "According to Source 1, the redemption fee is 2.5% of redemption proceeds."}
	p := newPipeline(t, coord, embedder, gen)

	responses, err := p.AnswerBatch(context.Background(), []string{"redemption fee", "", "never reached"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, responses, 1)
	assert.Equal(t, 1, gen.calls)
}

func TestStats(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, map[string]string{
		"fees.pdf":     "The redemption fee is 2.5% of proceeds.",
		"holdings.pdf": "The fund holds corporate bonds.",
	})
	p := newPipeline(t, coord, embedder, &mockGenerator{})

	stats, err := p.Stats(context.Background())
	require.NoError(t, err)

	assert.True(t, stats.DocumentsLoaded)
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Equal(t, 2, stats.TotalChunks)
	assert.Equal(t, 2, stats.UniqueSources)
	assert.Equal(t, 32, stats.EmbeddingDimensions)
	assert.Equal(t, "mock-embed", stats.EmbeddingModel)
	assert.Equal(t, "mock-gen", stats.GenerationModel)
	assert.Equal(t, domain.DefaultAppSettings().Retrieval.TopK, stats.TopK)
}

func TestHealth(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, map[string]string{
		"fees.pdf": "The redemption fee is 2.5% of proceeds.",
	})
	p := newPipeline(t, coord, embedder, &mockGenerator{})

	health := p.Health(context.Background())
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.PipelineReady)
	assert.True(t, health.DocumentsLoaded)
	assert.True(t, health.LLMAvailable)
}

func TestHealthUnreachableLLM(t *testing.T) {
	embedder := &mockEmbedder{}
	coord := seedIndex(t, embedder, nil)
	p := newPipeline(t, coord, embedder, &mockGenerator{pingErr: errors.New("connection refused")})

	health := p.Health(context.Background())
	assert.Equal(t, "healthy", health.Status)
	assert.False(t, health.DocumentsLoaded)
	assert.False(t, health.LLMAvailable)
}
