package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parchment-labs/fundqa/internal/adapters/driving/httpapi"
	"github.com/parchment-labs/fundqa/internal/adapters/driving/watcher"
	"github.com/parchment-labs/fundqa/internal/core/ports/driving"
	"github.com/parchment-labs/fundqa/internal/logger"
)

var (
	serveAddr string
	serveDocs string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API. When a documents directory is configured it is
ingested before the server accepts traffic and then watched, so files
dropped into it are indexed automatically.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides the configured one)")
	serveCmd.Flags().StringVar(&serveDocs, "documents-dir", "", "directory to load and watch (overrides the configured one)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := wire(ctx); err != nil {
		return err
	}
	defer closeServices()

	addr := appSettings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	docsDir := appSettings.Server.DocumentsDir
	if serveDocs != "" {
		docsDir = serveDocs
	}

	if docsDir != "" {
		if _, err := ingestService.IngestPath(ctx, docsDir, driving.IngestOptions{}); err != nil {
			return err
		}
		w := watcher.New(ingestService, docsDir, supportedFile)
		go func() {
			// The rescan inside Run skips everything just loaded.
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Watcher stopped: %v", err)
			}
		}()
	}

	api := httpapi.NewServer(httpapi.Config{
		Query:          queryService,
		Ingest:         ingestService,
		RequestTimeout: time.Duration(appSettings.Server.RequestTimeout) * time.Second,
	})
	server := &http.Server{
		Addr:    addr,
		Handler: api.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
