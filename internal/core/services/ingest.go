package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parchment-labs/fundqa/internal/chunker"
	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
	"github.com/parchment-labs/fundqa/internal/core/ports/driving"
	"github.com/parchment-labs/fundqa/internal/logger"
)

// Ensure Ingest implements the interface.
var _ driving.IngestService = (*Ingest)(nil)

// Ingest turns uploaded files into indexed, deduplicated chunks.
// Each document of a batch is processed independently; one failure
// never aborts the rest.
type Ingest struct {
	index      driven.Index
	extractors []driven.PageExtractor
	embedder   driven.EmbeddingService
	chunker    *chunker.Chunker
	clock      func() time.Time
}

// IngestOption configures the ingest service.
type IngestOption func(*Ingest)

// WithIngestClock overrides the timestamp source. Useful for tests.
func WithIngestClock(clock func() time.Time) IngestOption {
	return func(i *Ingest) { i.clock = clock }
}

// NewIngest creates an ingest service. Extractors are tried in order;
// the first whose Supports matches handles the file. The embedder may
// be nil, producing chunks without embeddings.
func NewIngest(
	index driven.Index,
	extractors []driven.PageExtractor,
	embedder driven.EmbeddingService,
	ck *chunker.Chunker,
	opts ...IngestOption,
) *Ingest {
	i := &Ingest{
		index:      index,
		extractors: extractors,
		embedder:   embedder,
		chunker:    ck,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IngestFile ingests a single document. A document already indexed
// under the same normalised filename is skipped unless opts.Replace is
// set, in which case it is atomically replaced.
func (i *Ingest) IngestFile(ctx context.Context, file driving.IngestFile, opts driving.IngestOptions) (domain.IngestResult, error) {
	result := domain.IngestResult{Source: file.Name}

	extractor := i.extractorFor(file.Name)
	if extractor == nil {
		result.Err = fmt.Errorf("%w: %s", domain.ErrUnsupportedFile, file.Name)
		return result, result.Err
	}

	pages, err := extractor.Extract(ctx, file.Name, file.Reader)
	if err != nil {
		result.Err = fmt.Errorf("extracting %s: %w", file.Name, err)
		return result, result.Err
	}

	var text strings.Builder
	for _, page := range pages {
		text.WriteString(page.Text)
		text.WriteString("\n")
	}
	if strings.TrimSpace(text.String()) == "" {
		result.Err = fmt.Errorf("%w: %s", domain.ErrEmptyDocument, file.Name)
		return result, result.Err
	}

	identity := domain.NewDocumentIdentity(file.Name, []byte(text.String()))

	existing, err := i.index.FindByName(ctx, identity.Name)
	switch {
	case err == nil:
		if !opts.Replace {
			logger.Debug("Skipping duplicate document %s (indexed as %s)", file.Name, existing.ID)
			result.DocumentID = existing.ID
			result.Status = domain.IngestDuplicateSkipped
			return result, nil
		}
	case errors.Is(err, domain.ErrNotFound):
		existing = nil
	default:
		result.Err = fmt.Errorf("dedup lookup for %s: %w", file.Name, err)
		return result, result.Err
	}

	doc := &domain.Document{
		ID:         identity.ID(),
		Identity:   identity,
		Source:     file.Name,
		PageCount:  len(pages),
		IngestedAt: i.clock(),
	}

	chunks := i.chunker.Split(doc, pages)
	if len(chunks) == 0 {
		result.Err = fmt.Errorf("%w: %s", domain.ErrEmptyDocument, file.Name)
		return result, result.Err
	}
	doc.ChunkCount = len(chunks)

	if err := i.embedChunks(ctx, chunks); err != nil {
		result.Err = fmt.Errorf("embedding chunks of %s: %w", file.Name, err)
		return result, result.Err
	}

	if existing != nil {
		if err := i.index.Replace(ctx, existing.ID, doc, chunks); err != nil {
			result.Err = fmt.Errorf("replacing %s: %w", file.Name, err)
			return result, result.Err
		}
		result.Status = domain.IngestReplaced
	} else {
		if err := i.index.Apply(ctx, doc, chunks); err != nil {
			result.Err = fmt.Errorf("indexing %s: %w", file.Name, err)
			return result, result.Err
		}
		result.Status = domain.IngestAdded
	}

	logger.Info("Ingested %s: %d pages, %d chunks (%s)",
		file.Name, len(pages), len(chunks), result.Status)

	result.DocumentID = doc.ID
	result.ChunksAdded = len(chunks)
	return result, nil
}

// IngestBatch ingests each file independently and reports per-document
// outcomes. The returned error is always nil; failures are in the
// results.
func (i *Ingest) IngestBatch(ctx context.Context, files []driving.IngestFile, opts driving.IngestOptions) (domain.BatchIngestResult, error) {
	var batch domain.BatchIngestResult
	for _, file := range files {
		result, err := i.IngestFile(ctx, file, opts)
		if err != nil {
			logger.Warn("Ingest failed for %s: %v", file.Name, err)
		}
		batch.Results = append(batch.Results, result)
	}
	return batch, nil
}

// IngestPath ingests a file, or every supported file in a directory
// (non-recursive).
func (i *Ingest) IngestPath(ctx context.Context, path string, opts driving.IngestOptions) (domain.BatchIngestResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.BatchIngestResult{}, fmt.Errorf("stat %s: %w", path, err)
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return domain.BatchIngestResult{}, fmt.Errorf("reading directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if i.extractorFor(name) == nil {
				continue
			}
			paths = append(paths, filepath.Join(path, name))
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	var batch domain.BatchIngestResult
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			batch.Results = append(batch.Results, domain.IngestResult{
				Source: filepath.Base(p),
				Err:    fmt.Errorf("opening %s: %w", p, err),
			})
			continue
		}
		result, err := i.IngestFile(ctx, driving.IngestFile{Name: filepath.Base(p), Reader: f}, opts)
		f.Close()
		if err != nil {
			logger.Warn("Ingest failed for %s: %v", p, err)
		}
		batch.Results = append(batch.Results, result)
	}
	return batch, nil
}

// Supports reports whether any registered extractor accepts the filename.
func (i *Ingest) Supports(name string) bool {
	return i.extractorFor(name) != nil
}

func (i *Ingest) extractorFor(name string) driven.PageExtractor {
	for _, e := range i.extractors {
		if e.Supports(name) {
			return e
		}
	}
	return nil
}

// embedChunks fills chunk embeddings in one batch call.
func (i *Ingest) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	if i.embedder == nil {
		return nil
	}

	texts := make([]string, len(chunks))
	for n, c := range chunks {
		texts[n] = c.Content
	}

	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(chunks))
	}
	for n := range chunks {
		// An empty vector would silently drop the chunk from dense
		// retrieval; with an embedder configured that is a provider
		// fault, not a degradation.
		if len(vectors[n]) == 0 {
			return fmt.Errorf("embedding service returned an empty vector for chunk %d", n)
		}
		chunks[n].Embedding = vectors[n]
	}
	return nil
}
