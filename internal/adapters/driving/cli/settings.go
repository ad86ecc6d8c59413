package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/parchment-labs/fundqa/internal/adapters/driven/config/file"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the effective configuration",
	Long: `Prints the effective settings after the config file and environment
variables are applied. API keys are masked and never written to the
config file; set them through the environment.`,
	RunE: runSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, _ []string) error {
	store, err := configfile.NewSettingsStore(configDir)
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}
	appSettings, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Printf("Config file: %s\n", store.Path())
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d\n", appSettings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", appSettings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", appSettings.Retrieval.TopK)
	cmd.Printf("  Lexical weight: %.2f\n", appSettings.Retrieval.LexicalWeight)
	cmd.Printf("  Dense weight: %.2f\n", appSettings.Retrieval.DenseWeight)
	cmd.Printf("  Min score: %.2f\n", appSettings.Retrieval.MinScore)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", appSettings.Embedding.Provider)
	cmd.Printf("  Model: %s\n", appSettings.Embedding.Model)
	if appSettings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API key: %s\n", maskAPIKey(appSettings.Embedding.APIKey))
	}
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Provider: %s\n", appSettings.Generation.Provider)
	cmd.Printf("  Model: %s\n", appSettings.Generation.Model)
	if appSettings.Generation.Provider.RequiresAPIKey() {
		cmd.Printf("  API key: %s\n", maskAPIKey(appSettings.Generation.APIKey))
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Addr: %s\n", appSettings.Server.Addr)
	cmd.Printf("  Documents dir: %s\n", appSettings.Server.DocumentsDir)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", appSettings.Storage.Backend)
	if appSettings.Storage.Backend == "sqlite" {
		cmd.Printf("  Data dir: %s\n", appSettings.Storage.DataDir)
	}

	return nil
}

// maskAPIKey hides the middle of a key, keeping just enough to tell
// keys apart.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
