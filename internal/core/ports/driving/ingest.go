package driving

import (
	"context"
	"io"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

// IngestFile is one named document byte stream submitted for ingestion.
type IngestFile struct {
	// Name is the original filename; its extension selects the extractor.
	Name string

	// Reader yields the raw document bytes.
	Reader io.Reader
}

// IngestOptions configures an ingestion call.
type IngestOptions struct {
	// Replace atomically replaces an already-indexed document with the
	// same identity instead of skipping it.
	Replace bool
}

// IngestService turns uploaded files into indexed, deduplicated chunks.
type IngestService interface {
	// IngestFile ingests a single document. Duplicate identities are
	// skipped unless opts.Replace is set.
	IngestFile(ctx context.Context, file IngestFile, opts IngestOptions) (domain.IngestResult, error)

	// IngestBatch ingests each file independently; one failure never
	// aborts the rest. Per-document outcomes are reported.
	IngestBatch(ctx context.Context, files []IngestFile, opts IngestOptions) (domain.BatchIngestResult, error)

	// IngestPath ingests a file, or every supported file in a
	// directory (non-recursive).
	IngestPath(ctx context.Context, path string, opts IngestOptions) (domain.BatchIngestResult, error)
}
