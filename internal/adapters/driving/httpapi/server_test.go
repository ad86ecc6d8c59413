package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/fundqa/internal/adapters/driven/search/bm25"
	staticembed "github.com/parchment-labs/fundqa/internal/adapters/driven/embedding/static"
	staticllm "github.com/parchment-labs/fundqa/internal/adapters/driven/llm/static"
	"github.com/parchment-labs/fundqa/internal/adapters/driven/storage/memory"
	"github.com/parchment-labs/fundqa/internal/adapters/driven/vector/brute"
	"github.com/parchment-labs/fundqa/internal/chunker"
	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
	"github.com/parchment-labs/fundqa/internal/core/services"
	"github.com/parchment-labs/fundqa/internal/index"
)

// plainExtractor keeps these tests free of binary fixtures.
type plainExtractor struct{}

func (plainExtractor) Supports(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".txt")
}

func (plainExtractor) Extract(_ context.Context, _ string, r io.Reader) ([]domain.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	return []domain.Page{{Number: 1, Text: text}}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	settings := domain.DefaultAppSettings()
	embedder := staticembed.NewEmbeddingService(64)
	generator := staticllm.NewGenerationService()
	coord := index.NewCoordinator(memory.NewChunkStore(), bm25.New(), brute.New())

	retriever := services.NewRetriever(coord, embedder, settings.Retrieval)
	validator := services.NewValidator(settings.Validation)
	pipeline := services.NewPipeline(retriever, validator, generator, embedder, coord, settings)
	ingest := services.NewIngest(
		coord,
		[]driven.PageExtractor{plainExtractor{}},
		embedder,
		chunker.New(chunker.WithChunkSize(settings.Chunking.Size), chunker.WithOverlap(settings.Chunking.Overlap)),
	)

	return NewServer(Config{Query: pipeline, Ingest: ingest})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func uploadFiles(t *testing.T, s *Server, path string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.PipelineReady)
	assert.False(t, resp.DocumentsLoaded)
	assert.True(t, resp.LLMAvailable)
}

func TestUploadThenStats(t *testing.T) {
	s := newTestServer(t)

	w := uploadFiles(t, s, "/upload", map[string]string{
		"fees.txt": "The redemption fee is 2.5% of redemption proceeds for early withdrawals.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var up uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &up))
	assert.Equal(t, 1, up.FilesProcessed)
	assert.Positive(t, up.TotalChunksAdded)
	require.Len(t, up.Results, 1)
	assert.Equal(t, "added", up.Results[0].Status)
	assert.NotEmpty(t, up.Results[0].DocumentID)
	assert.Equal(t, "Documents uploaded and indexed successfully", up.Message)

	w = doJSON(t, s, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.True(t, stats.DocumentsLoaded)
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Equal(t, 1, stats.UniqueSources)
	assert.Equal(t, 64, stats.EmbeddingDimensions)
}

func TestUploadDuplicateSkippedAndReplace(t *testing.T) {
	s := newTestServer(t)
	content := map[string]string{"fees.txt": "The redemption fee is 2.5%."}

	w := uploadFiles(t, s, "/upload", content)
	require.Equal(t, http.StatusOK, w.Code)

	w = uploadFiles(t, s, "/upload", content)
	require.Equal(t, http.StatusOK, w.Code)
	var up uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &up))
	require.Len(t, up.Results, 1)
	assert.Equal(t, "duplicate_skipped", up.Results[0].Status)
	assert.Zero(t, up.FilesProcessed)

	w = uploadFiles(t, s, "/upload?replace=1", content)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &up))
	require.Len(t, up.Results, 1)
	assert.Equal(t, "replaced", up.Results[0].Status)
}

func TestUploadRejectsEmptyForm(t *testing.T) {
	s := newTestServer(t)

	w := uploadFiles(t, s, "/upload", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := uploadFiles(t, s, "/upload", map[string]string{
		"fees.txt": "The redemption fee is 2.5% of redemption proceeds.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/query", map[string]any{
		"question": "what is the redemption fee",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp queryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "what is the redemption fee", resp.Question)
	assert.NotEmpty(t, resp.Answer)
	assert.NotEmpty(t, resp.Sources)
	require.NotNil(t, resp.Validation)
	assert.Len(t, resp.Validation.Checks, 4)
	assert.Contains(t, resp.Metadata, "request_id")
}

func TestQueryNoDocuments(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/query", map[string]any{"question": "anything"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp queryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.NoInformationAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Nil(t, resp.Validation)
}

func TestQueryMissingQuestion(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/query", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryValidationDisabled(t *testing.T) {
	s := newTestServer(t)

	w := uploadFiles(t, s, "/upload", map[string]string{
		"fees.txt": "The redemption fee is 2.5%.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/query", map[string]any{
		"question": "what is the redemption fee",
		"validate": false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp queryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Validation)
}

func TestQueryBatch(t *testing.T) {
	s := newTestServer(t)

	w := uploadFiles(t, s, "/upload", map[string]string{
		"fees.txt": "The redemption fee is 2.5% of redemption proceeds.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/query/batch", map[string]any{
		"questions": []string{"redemption fee", "withdrawal terms"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Responses []queryResponse `json:"responses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Responses, 2)
}

func TestRequestIDPropagates(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))

	// Absent header gets a generated ID.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUploadMessageSummarisesBatch(t *testing.T) {
	added := domain.IngestResult{Source: "a.txt", ChunksAdded: 3, Status: domain.IngestAdded}
	skipped := domain.IngestResult{Source: "a.txt", Status: domain.IngestDuplicateSkipped}
	failed := domain.IngestResult{Source: "b.txt", Err: errors.New("unreadable")}

	tests := []struct {
		name    string
		results []domain.IngestResult
		want    string
	}{
		{name: "all added", results: []domain.IngestResult{added}, want: "Documents uploaded and indexed successfully"},
		{name: "all skipped", results: []domain.IngestResult{skipped}, want: "No new documents indexed"},
		{name: "partial failure", results: []domain.IngestResult{added, failed}, want: "1 of 2 documents failed to index"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := domain.BatchIngestResult{Results: tt.results}
			assert.Equal(t, tt.want, uploadMessage(batch))
		})
	}
}
