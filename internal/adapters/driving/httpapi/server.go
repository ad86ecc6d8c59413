package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driving"
	"github.com/parchment-labs/fundqa/internal/logger"
)

// requestIDHeader carries the per-request correlation ID.
const requestIDHeader = "X-Request-ID"

// maxUploadBytes caps a single multipart upload.
const maxUploadBytes = 64 << 20

// Server exposes the pipeline over HTTP.
type Server struct {
	engine  *gin.Engine
	query   driving.QueryService
	ingest  driving.IngestService
	timeout time.Duration
}

// Config holds server configuration.
type Config struct {
	// Query answers questions. Required.
	Query driving.QueryService

	// Ingest processes uploads. Required.
	Ingest driving.IngestService

	// RequestTimeout bounds a single query end to end. Zero means no
	// bound.
	RequestTimeout time.Duration
}

// NewServer creates the HTTP server and its routes.
func NewServer(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:  gin.New(),
		query:   cfg.Query,
		ingest:  cfg.Ingest,
		timeout: cfg.RequestTimeout,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", requestIDHeader},
	}))

	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/stats", s.handleStats)
	s.engine.POST("/query", s.handleQuery)
	s.engine.POST("/query/batch", s.handleQueryBatch)
	s.engine.POST("/upload", s.handleUpload)

	return s
}

// Handler returns the underlying HTTP handler, for tests and custom
// server setups.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until the listener fails.
func (s *Server) Run(addr string) error {
	logger.Info("HTTP API listening on %s", addr)
	return s.engine.Run(addr)
}

// requestID assigns each request a correlation ID, honouring one the
// client already sent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	health := s.query.Health(c.Request.Context())
	c.JSON(http.StatusOK, toHealthResponse(health))
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.query.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(stats))
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	// Validation defaults on at the API boundary.
	validate := true
	if req.Validate != nil {
		validate = *req.Validate
	}

	ctx := c.Request.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.query.Answer(ctx, domain.Query{
		Question: req.Question,
		TopK:     req.TopK,
		Validate: validate,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toQueryResponse(resp))
}

func (s *Server) handleQueryBatch(c *gin.Context) {
	var req struct {
		Questions []string `json:"questions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "questions is required"})
		return
	}

	responses, err := s.query.AnswerBatch(c.Request.Context(), req.Questions)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]queryResponse, 0, len(responses))
	for _, resp := range responses {
		out = append(out, toQueryResponse(resp))
	}
	c.JSON(http.StatusOK, gin.H{"responses": out})
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "multipart form required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no files provided"})
		return
	}

	replace := c.Query("replace") == "1" || c.Query("replace") == "true"

	ingestFiles := make([]driving.IngestFile, 0, len(files))
	var closers []interface{ Close() error }
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "unreadable file: " + fh.Filename})
			return
		}
		closers = append(closers, f)
		ingestFiles = append(ingestFiles, driving.IngestFile{Name: fh.Filename, Reader: f})
	}

	batch, err := s.ingest.IngestBatch(c.Request.Context(), ingestFiles, driving.IngestOptions{Replace: replace})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUploadResponse(batch))
}

// fail maps domain errors to HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrGenerationTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrGenerationFailure),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrIndexInconsistent):
		status = http.StatusServiceUnavailable
	}

	logger.Error("Request failed: %v", err)
	c.JSON(status, errorResponse{Error: err.Error()})
}
