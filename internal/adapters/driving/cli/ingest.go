package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driving"
)

var ingestReplace bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Index documents from files or directories",
	Long: `Extracts, chunks, embeds and indexes the given documents. A
directory argument ingests every supported file in it (non-recursive).
Documents already indexed under the same filename are skipped unless
--replace is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestReplace, "replace", false, "replace documents already indexed under the same name")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := wire(ctx); err != nil {
		return err
	}
	defer closeServices()

	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	opts := driving.IngestOptions{Replace: ingestReplace}
	var batch domain.BatchIngestResult
	for _, path := range args {
		result, err := ingestService.IngestPath(ctx, path, opts)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		batch.Results = append(batch.Results, result.Results...)
	}

	for _, result := range batch.Results {
		switch {
		case result.Err != nil:
			cmd.Printf("  %-40s failed: %v\n", result.Source, result.Err)
		case result.Status == domain.IngestDuplicateSkipped:
			cmd.Printf("  %-40s skipped (already indexed)\n", result.Source)
		default:
			cmd.Printf("  %-40s %s, %d chunks\n", result.Source, result.Status, result.ChunksAdded)
		}
	}
	cmd.Printf("\n%d documents ingested, %d chunks added", batch.FilesProcessed(), batch.TotalChunksAdded())
	if failed := batch.Failed(); len(failed) > 0 {
		cmd.Printf(", %d failed", len(failed))
	}
	cmd.Println()

	return nil
}
