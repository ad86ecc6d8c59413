package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driving"
)

// mockQueryService returns canned responses for command tests.
type mockQueryService struct {
	response *domain.QueryResponse
	stats    domain.Stats
	err      error
}

func (m *mockQueryService) Answer(_ context.Context, query domain.Query) (*domain.QueryResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	response := *m.response
	response.Question = query.Question
	return &response, nil
}

func (m *mockQueryService) AnswerBatch(ctx context.Context, questions []string) ([]*domain.QueryResponse, error) {
	responses := make([]*domain.QueryResponse, 0, len(questions))
	for _, q := range questions {
		r, err := m.Answer(ctx, domain.Query{Question: q, Validate: true})
		if err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, nil
}

func (m *mockQueryService) Stats(_ context.Context) (domain.Stats, error) {
	return m.stats, m.err
}

func (m *mockQueryService) Health(_ context.Context) domain.Health {
	return domain.Health{Status: "healthy", PipelineReady: true}
}

var _ driving.QueryService = (*mockQueryService)(nil)

// mockIngestService records ingest calls for command tests.
type mockIngestService struct {
	batch domain.BatchIngestResult
	err   error

	paths []string
	opts  []driving.IngestOptions
}

func (m *mockIngestService) IngestFile(_ context.Context, file driving.IngestFile, _ driving.IngestOptions) (domain.IngestResult, error) {
	return domain.IngestResult{Source: file.Name}, m.err
}

func (m *mockIngestService) IngestBatch(_ context.Context, _ []driving.IngestFile, _ driving.IngestOptions) (domain.BatchIngestResult, error) {
	return m.batch, m.err
}

func (m *mockIngestService) IngestPath(_ context.Context, path string, opts driving.IngestOptions) (domain.BatchIngestResult, error) {
	m.paths = append(m.paths, path)
	m.opts = append(m.opts, opts)
	return m.batch, m.err
}

var _ driving.IngestService = (*mockIngestService)(nil)

// withServices installs mocks for the duration of a test.
func withServices(t *testing.T, query driving.QueryService, ingest driving.IngestService) {
	t.Helper()
	oldQuery, oldIngest := queryService, ingestService
	queryService, ingestService = query, ingest
	t.Cleanup(func() {
		queryService, ingestService = oldQuery, oldIngest
	})
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}
