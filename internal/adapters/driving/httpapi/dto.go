package httpapi

import (
	"fmt"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

// queryRequest is the POST /query body.
type queryRequest struct {
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"top_k"`
	Validate *bool  `json:"validate"`
}

// queryResponse is the POST /query reply.
type queryResponse struct {
	Question   string         `json:"question"`
	Answer     string         `json:"answer"`
	Validation *validationDTO `json:"validation,omitempty"`
	Sources    []sourceDTO    `json:"sources"`
	Metadata   map[string]any `json:"metadata"`
}

// validationDTO mirrors domain.ValidationResult.
type validationDTO struct {
	Confidence string       `json:"confidence"`
	Checks     []checkDTO   `json:"checks"`
	Warnings   []warningDTO `json:"warnings,omitempty"`
}

// checkDTO is one validator check outcome.
type checkDTO struct {
	Type   string `json:"type"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// warningDTO is one check-tagged warning.
type warningDTO struct {
	Check   string `json:"check"`
	Message string `json:"message"`
}

// sourceDTO is one cited retrieval candidate.
type sourceDTO struct {
	ChunkID       string  `json:"chunk_id"`
	Source        string  `json:"source"`
	Page          int     `json:"page"`
	Content       string  `json:"content"`
	LexicalScore  float64 `json:"lexical_score"`
	DenseScore    float64 `json:"dense_score"`
	CombinedScore float64 `json:"combined_score"`
}

// uploadResponse is the POST /upload reply.
type uploadResponse struct {
	FilesProcessed   int         `json:"files_processed"`
	TotalChunksAdded int         `json:"total_chunks_added"`
	Message          string      `json:"message"`
	Results          []resultDTO `json:"results"`
}

// resultDTO is one per-document ingestion outcome.
type resultDTO struct {
	Source      string `json:"source"`
	DocumentID  string `json:"document_id,omitempty"`
	ChunksAdded int    `json:"chunks_added"`
	Status      string `json:"status,omitempty"`
	Error       string `json:"error,omitempty"`
}

// statsResponse is the GET /stats reply.
type statsResponse struct {
	DocumentsLoaded     bool   `json:"documents_loaded"`
	TotalDocuments      int    `json:"total_documents"`
	TotalChunks         int    `json:"total_chunks"`
	UniqueSources       int    `json:"unique_sources"`
	EmbeddingDimensions int    `json:"embedding_dimensions,omitempty"`
	EmbeddingModel      string `json:"embedding_model,omitempty"`
	GenerationModel     string `json:"generation_model,omitempty"`
	ChunkSize           int    `json:"chunk_size"`
	TopK                int    `json:"top_k"`
}

// healthResponse is the GET /health reply.
type healthResponse struct {
	Status          string `json:"status"`
	PipelineReady   bool   `json:"pipeline_ready"`
	DocumentsLoaded bool   `json:"documents_loaded"`
	LLMAvailable    bool   `json:"llm_available"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func toQueryResponse(resp *domain.QueryResponse) queryResponse {
	out := queryResponse{
		Question: resp.Question,
		Answer:   resp.Answer,
		Sources:  make([]sourceDTO, 0, len(resp.Sources)),
		Metadata: resp.Metadata,
	}
	for _, s := range resp.Sources {
		out.Sources = append(out.Sources, sourceDTO{
			ChunkID:       s.Chunk.ID,
			Source:        s.Chunk.Source,
			Page:          s.Chunk.Page,
			Content:       s.Chunk.Content,
			LexicalScore:  s.LexicalScore,
			DenseScore:    s.DenseScore,
			CombinedScore: s.CombinedScore,
		})
	}
	if resp.Validation != nil {
		v := &validationDTO{
			Confidence: string(resp.Validation.Confidence),
			Checks:     make([]checkDTO, 0, len(resp.Validation.Checks)),
		}
		for _, c := range resp.Validation.Checks {
			v.Checks = append(v.Checks, checkDTO{
				Type:   string(c.Type),
				Passed: c.Passed,
				Detail: c.Detail,
			})
		}
		for _, w := range resp.Validation.Warnings {
			v.Warnings = append(v.Warnings, warningDTO{
				Check:   string(w.Check),
				Message: w.Message,
			})
		}
		out.Validation = v
	}
	return out
}

func toUploadResponse(batch domain.BatchIngestResult) uploadResponse {
	out := uploadResponse{
		FilesProcessed:   batch.FilesProcessed(),
		TotalChunksAdded: batch.TotalChunksAdded(),
		Results:          make([]resultDTO, 0, len(batch.Results)),
	}
	for _, r := range batch.Results {
		dto := resultDTO{
			Source:      r.Source,
			DocumentID:  r.DocumentID,
			ChunksAdded: r.ChunksAdded,
			Status:      string(r.Status),
		}
		if r.Err != nil {
			dto.Error = r.Err.Error()
		}
		out.Results = append(out.Results, dto)
	}
	out.Message = uploadMessage(batch)
	return out
}

// uploadMessage summarises the batch outcome in one sentence.
func uploadMessage(batch domain.BatchIngestResult) string {
	failed := len(batch.Failed())
	switch {
	case failed == 0 && batch.FilesProcessed() > 0:
		return "Documents uploaded and indexed successfully"
	case failed == 0:
		return "No new documents indexed"
	default:
		return fmt.Sprintf("%d of %d documents failed to index", failed, len(batch.Results))
	}
}

func toStatsResponse(stats domain.Stats) statsResponse {
	return statsResponse(stats)
}

func toHealthResponse(health domain.Health) healthResponse {
	return healthResponse(health)
}
