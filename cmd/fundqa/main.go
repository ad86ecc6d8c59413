package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/parchment-labs/fundqa/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// A missing .env is fine; keys can come from the environment.
	_ = godotenv.Load()

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
