// Package cli implements the fundqa command line interface. Commands
// hold no business logic; they wire adapters to the core services and
// format results.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/parchment-labs/fundqa/internal/adapters/driven/ai"
	configfile "github.com/parchment-labs/fundqa/internal/adapters/driven/config/file"
	"github.com/parchment-labs/fundqa/internal/adapters/driven/extract"
	"github.com/parchment-labs/fundqa/internal/adapters/driven/search/bm25"
	"github.com/parchment-labs/fundqa/internal/adapters/driven/storage/memory"
	"github.com/parchment-labs/fundqa/internal/adapters/driven/storage/sqlite"
	"github.com/parchment-labs/fundqa/internal/adapters/driven/vector/brute"
	"github.com/parchment-labs/fundqa/internal/chunker"
	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
	"github.com/parchment-labs/fundqa/internal/core/ports/driving"
	"github.com/parchment-labs/fundqa/internal/core/services"
	"github.com/parchment-labs/fundqa/internal/index"
	"github.com/parchment-labs/fundqa/internal/logger"
)

var version = "dev"

var (
	configDir string
	verbose   bool
)

// Services are wired lazily by the first command that needs them.
// Tests inject mocks here and wire() leaves them alone.
var (
	appSettings   domain.AppSettings
	queryService  driving.QueryService
	ingestService driving.IngestService
	supportedFile func(filename string) bool
	closers       []io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "fundqa",
	Short: "Question answering over fund documents",
	Long: `fundqa indexes fund documents (prospectuses, factsheets, annual
reports) and answers natural-language questions about them, grounding
every answer in the indexed text and validating it before returning.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.fundqa)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// wire builds the full service stack from configuration. It is a
// no-op when services are already present.
func wire(ctx context.Context) error {
	if queryService != nil && ingestService != nil {
		return nil
	}
	if err := logger.Init(verbose); err != nil {
		return fmt.Errorf("initialising logger: %w", err)
	}

	store, err := configfile.NewSettingsStore(configDir)
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}
	appSettings, err = store.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	chunkStore, err := newChunkStore(appSettings.Storage)
	if err != nil {
		return err
	}
	coord := index.NewCoordinator(chunkStore, bm25.New(), brute.New())
	if err := coord.Load(ctx); err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(appSettings.Embedding)
	if err != nil {
		return err
	}
	if embedder != nil {
		closers = append(closers, embedder)
	}
	generator, err := ai.CreateAndValidateGenerationService(appSettings.Generation)
	if err != nil {
		return err
	}
	closers = append(closers, generator)

	ck := chunker.New(
		chunker.WithChunkSize(appSettings.Chunking.Size),
		chunker.WithOverlap(appSettings.Chunking.Overlap),
	)
	extractors := []driven.PageExtractor{extract.NewPDF(), extract.NewPlain()}

	ingest := services.NewIngest(coord, extractors, embedder, ck)
	retriever := services.NewRetriever(coord, embedder, appSettings.Retrieval)
	validator := services.NewValidator(appSettings.Validation)

	queryService = services.NewPipeline(retriever, validator, generator, embedder, coord, appSettings)
	ingestService = ingest
	supportedFile = ingest.Supports
	return nil
}

// newChunkStore selects the storage backend from settings.
func newChunkStore(settings domain.StorageSettings) (driven.ChunkStore, error) {
	switch settings.Backend {
	case "", "memory":
		return memory.NewChunkStore(), nil
	case "sqlite":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		closers = append(closers, store)
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}

// closeServices releases everything wire opened, in reverse order.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warn("Close failed: %v", err)
		}
	}
	closers = nil
}
