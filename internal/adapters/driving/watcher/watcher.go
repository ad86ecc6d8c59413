// Package watcher keeps the index in sync with a documents directory.
// Existing files are ingested at startup; files created or modified
// afterwards are picked up through filesystem notifications.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/parchment-labs/fundqa/internal/core/ports/driving"
	"github.com/parchment-labs/fundqa/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is
// ingested. Editors and downloads produce bursts of write events.
const DefaultDebounce = 500 * time.Millisecond

// Watcher ingests documents from a watched directory.
type Watcher struct {
	ingest    driving.IngestService
	dir       string
	supported func(filename string) bool
	debounce  time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// Option configures the watcher.
type Option func(*Watcher)

// WithDebounce overrides the quiet period before ingestion.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher over dir. supported filters filenames; nil
// accepts everything.
func New(ingest driving.IngestService, dir string, supported func(string) bool, opts ...Option) *Watcher {
	if supported == nil {
		supported = func(string) bool { return true }
	}
	w := &Watcher{
		ingest:    ingest,
		dir:       dir,
		supported: supported,
		debounce:  DefaultDebounce,
		pending:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run ingests the directory's existing files, then watches for new and
// modified files until the context is cancelled. Modified files
// replace their indexed version.
func (w *Watcher) Run(ctx context.Context) error {
	batch, err := w.ingest.IngestPath(ctx, w.dir, driving.IngestOptions{})
	if err != nil {
		return fmt.Errorf("initial load of %s: %w", w.dir, err)
	}
	logger.Info("Loaded %d documents (%d chunks) from %s",
		batch.FilesProcessed(), batch.TotalChunksAdded(), w.dir)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()
	defer w.drainPending()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for new documents", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// handleEvent schedules ingestion for relevant create and write
// events. Every event restarts the file's quiet-period timer.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}

	name := filepath.Base(event.Name)
	if isHidden(name) || !w.supported(name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.ingestFile(ctx, path)
	})
}

// ingestFile ingests one settled file, replacing any indexed version.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	batch, err := w.ingest.IngestPath(ctx, path, driving.IngestOptions{Replace: true})
	if err != nil {
		logger.Warn("Watcher ingest of %s failed: %v", path, err)
		return
	}
	for _, result := range batch.Results {
		if result.Err != nil {
			logger.Warn("Watcher ingest of %s failed: %v", result.Source, result.Err)
			continue
		}
		logger.Info("Watcher ingested %s: %d chunks (%s)",
			result.Source, result.ChunksAdded, result.Status)
	}
}

// drainPending stops outstanding timers on shutdown.
func (w *Watcher) drainPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// isHidden reports whether the base name is a dotfile.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
