package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := wire(ctx); err != nil {
		return err
	}
	defer closeServices()

	if queryService == nil {
		return errors.New("query service not configured")
	}

	stats, err := queryService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Index")
	cmd.Printf("  Documents: %d\n", stats.TotalDocuments)
	cmd.Printf("  Chunks: %d\n", stats.TotalChunks)
	cmd.Printf("  Sources: %d\n", stats.UniqueSources)
	cmd.Println()
	cmd.Println("Configuration")
	cmd.Printf("  Embedding model: %s (%d dimensions)\n", stats.EmbeddingModel, stats.EmbeddingDimensions)
	cmd.Printf("  Generation model: %s\n", stats.GenerationModel)
	cmd.Printf("  Chunk size: %d\n", stats.ChunkSize)
	cmd.Printf("  Top K: %d\n", stats.TopK)
	return nil
}
