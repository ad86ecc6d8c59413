package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
	"github.com/parchment-labs/fundqa/internal/core/ports/driving"
	"github.com/parchment-labs/fundqa/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.QueryService = (*Pipeline)(nil)

// Pipeline orchestrates the full question-answering sequence:
// retrieve, generate, validate, assemble. It holds no conversation
// state; every call is independent.
type Pipeline struct {
	retriever *Retriever
	validator *Validator
	generator driven.GenerationService
	embedder  driven.EmbeddingService
	index     driven.Index
	settings  domain.AppSettings
	clock     func() time.Time
}

// PipelineOption configures the pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineClock overrides the timestamp source. Useful for tests.
func WithPipelineClock(clock func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.clock = clock }
}

// NewPipeline creates a query pipeline.
func NewPipeline(
	retriever *Retriever,
	validator *Validator,
	generator driven.GenerationService,
	embedder driven.EmbeddingService,
	index driven.Index,
	settings domain.AppSettings,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		retriever: retriever,
		validator: validator,
		generator: generator,
		embedder:  embedder,
		index:     index,
		settings:  settings,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Answer runs the full retrieve, generate, validate sequence. With
// zero retrieved candidates it short-circuits to the fixed
// no-information response without invoking generation.
func (p *Pipeline) Answer(ctx context.Context, query domain.Query) (*domain.QueryResponse, error) {
	question := strings.TrimSpace(query.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	start := p.clock()
	requestID := uuid.New().String()
	logger.Debug("Query %s: %q", requestID, question)

	candidates, err := p.retriever.Retrieve(ctx, question, query.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}
	logger.Debug("Query %s: %d candidates", requestID, len(candidates))

	response := &domain.QueryResponse{
		Question: question,
		Sources:  candidates,
		Metadata: map[string]any{
			domain.MetaRetrievalCount: len(candidates),
			domain.MetaRequestID:      requestID,
		},
	}

	if len(candidates) == 0 {
		response.Answer = domain.NoInformationAnswer
		response.Metadata[domain.MetaDurationMS] = p.clock().Sub(start).Milliseconds()
		return response, nil
	}
	response.Metadata[domain.MetaTopScore] = candidates[0].CombinedScore

	completion, err := p.generate(ctx, question, candidates)
	if err != nil {
		return nil, err
	}
	response.Answer = completion.Text
	response.Metadata[domain.MetaModel] = completion.Model
	if completion.TokensUsed > 0 {
		response.Metadata[domain.MetaTokensUsed] = completion.TokensUsed
	}

	if query.Validate {
		validation := p.validator.Validate(question, completion.Text, candidates)
		response.Validation = &validation
		logger.Debug("Query %s: confidence %s", requestID, validation.Confidence)

		if validation.Confidence == domain.ConfidenceRejected {
			response.Answer = domain.InsufficientEvidenceAnswer
		}
	}

	response.Metadata[domain.MetaDurationMS] = p.clock().Sub(start).Milliseconds()
	return response, nil
}

// generate builds the bounded prompt and calls the generation
// collaborator, mapping deadline expiry to ErrGenerationTimeout and
// every other failure to ErrGenerationFailure.
func (p *Pipeline) generate(ctx context.Context, question string, candidates []domain.RetrievalCandidate) (driven.Completion, error) {
	prompt := BuildPrompt(question, candidates)

	completion, err := p.generator.Complete(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   p.settings.Generation.MaxTokens,
		Temperature: p.settings.Generation.Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return driven.Completion{}, fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
		}
		if errors.Is(err, domain.ErrGenerationTimeout) {
			return driven.Completion{}, err
		}
		return driven.Completion{}, fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}
	if strings.TrimSpace(completion.Text) == "" {
		return driven.Completion{}, fmt.Errorf("%w: empty completion", domain.ErrGenerationFailure)
	}
	return completion, nil
}

// BuildPrompt assembles the stateless generation prompt: system
// framing, numbered source chunks, the question, and extraction
// instructions. Small models need this much structure to stay
// grounded.
func BuildPrompt(question string, candidates []domain.RetrievalCandidate) string {
	var b strings.Builder
	b.WriteString("You are a financial document analysis assistant. ")
	b.WriteString("Answer the question based ONLY on the provided context.\n\n")
	b.WriteString("CONTEXT:\n")
	for n, c := range candidates {
		fmt.Fprintf(&b, "[Source %d]\n%s\n\n", n+1, c.Chunk.Content)
	}
	fmt.Fprintf(&b, "QUESTION: %s\n\n", question)
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("- Answer concisely and accurately\n")
	b.WriteString("- Only use information from the context above\n")
	b.WriteString("- If the context doesn't contain the answer, say \"I cannot find this information in the provided documents\"\n")
	b.WriteString("- Cite source numbers when making claims (e.g., \"According to Source 1...\")\n")
	b.WriteString("- For numerical data, quote exactly as written\n\n")
	b.WriteString("ANSWER:")
	return b.String()
}

// AnswerBatch answers each question in order. A question that fails
// aborts the batch; evaluation runs want the error, not a hole.
func (p *Pipeline) AnswerBatch(ctx context.Context, questions []string) ([]*domain.QueryResponse, error) {
	responses := make([]*domain.QueryResponse, 0, len(questions))
	for _, q := range questions {
		resp, err := p.Answer(ctx, domain.Query{Question: q, Validate: true})
		if err != nil {
			return responses, fmt.Errorf("question %q: %w", q, err)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// Stats summarises the current pipeline state.
func (p *Pipeline) Stats(ctx context.Context) (domain.Stats, error) {
	docs, chunks, err := p.index.Counts(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("counting index: %w", err)
	}

	documents, err := p.index.ListDocuments(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("listing documents: %w", err)
	}
	sources := make(map[string]struct{}, len(documents))
	for _, d := range documents {
		sources[d.Identity.Name] = struct{}{}
	}

	stats := domain.Stats{
		DocumentsLoaded: docs > 0,
		TotalDocuments:  docs,
		TotalChunks:     chunks,
		UniqueSources:   len(sources),
		ChunkSize:       p.settings.Chunking.Size,
		TopK:            p.settings.Retrieval.TopK,
	}
	if p.embedder != nil {
		stats.EmbeddingDimensions = p.embedder.Dimensions()
		stats.EmbeddingModel = p.embedder.ModelName()
	}
	if p.generator != nil {
		stats.GenerationModel = p.generator.ModelName()
	}
	return stats, nil
}

// Health reports component readiness.
func (p *Pipeline) Health(ctx context.Context) domain.Health {
	health := domain.Health{
		PipelineReady: p.index != nil && p.generator != nil && p.index.Healthy(),
	}

	if docs, _, err := p.index.Counts(ctx); err == nil {
		health.DocumentsLoaded = docs > 0
	}

	if p.generator != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		health.LLMAvailable = p.generator.Ping(pingCtx) == nil
		cancel()
	}

	if health.PipelineReady {
		health.Status = "healthy"
	} else {
		health.Status = "initializing"
	}
	return health
}
