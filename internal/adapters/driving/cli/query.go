package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

var (
	queryTopK       int
	queryNoValidate bool
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about the indexed documents",
	Long: `Answers a natural-language question using hybrid retrieval over the
indexed documents. The answer is validated against its sources and
returned with a confidence level.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (0 uses the configured default)")
	queryCmd.Flags().BoolVar(&queryNoValidate, "no-validate", false, "skip answer validation")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := wire(ctx); err != nil {
		return err
	}
	defer closeServices()

	if queryService == nil {
		return errors.New("query service not configured")
	}

	response, err := queryService.Answer(ctx, domain.Query{
		Question: args[0],
		TopK:     queryTopK,
		Validate: !queryNoValidate,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, response)
	}
	outputQueryText(cmd, response)
	return nil
}

func outputQueryJSON(cmd *cobra.Command, response *domain.QueryResponse) error {
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, response *domain.QueryResponse) {
	cmd.Println(response.Answer)
	cmd.Println()

	if response.Validation != nil {
		cmd.Printf("Confidence: %s\n", response.Validation.Confidence)
		for _, check := range response.Validation.Checks {
			mark := "pass"
			if !check.Passed {
				mark = "FAIL"
			}
			cmd.Printf("  [%s] %s", mark, check.Type)
			if check.Detail != "" {
				cmd.Printf(": %s", check.Detail)
			}
			cmd.Println()
		}
		cmd.Println()
	}

	if len(response.Sources) > 0 {
		cmd.Println("Sources:")
		for i, source := range response.Sources {
			cmd.Printf("  [%d] %s p.%d (%.3f)\n",
				i+1, source.Chunk.Source, source.Chunk.Page, source.CombinedScore)
		}
	}

	if model, ok := response.Metadata[domain.MetaModel].(string); ok && model != "" {
		cmd.Printf("\nModel: %s\n", model)
	}
}
