// Package watch reruns generation when the ERD source file changes.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when a non-positive debounce is configured.
const DefaultDebounce = 500 * time.Millisecond

// Func is called after each settled change.
type Func func(ctx context.Context) error

// Watcher watches a single file. Editors often replace files instead of
// writing them in place, so the parent directory is watched and events are
// filtered by name.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending bool
	hash    string
}

// New creates a watcher for path.
func New(path string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		logger:   logger,
	}
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Run blocks until ctx is done. fn runs once per settled change whose
// content differs from the last run; its errors are logged and do not stop
// the watcher.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// Content present at start counts as already processed.
	if data, err := os.ReadFile(w.path); err == nil {
		w.hash = contentHash(data)
	}

	w.logger.Info("Watching ERD", "path", w.path, "debounce", w.debounce)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx, fn)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	w.mu.Lock()
	w.pending = true
	w.mu.Unlock()
	w.logger.Debug("ERD change detected", "path", w.path, "op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context, fn Func) {
	w.mu.Lock()
	if !w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	data, err := os.ReadFile(w.path)
	if err != nil {
		// Removed or mid-replace; the next Create event retries.
		w.logger.Debug("ERD not readable", "path", w.path, "error", err)
		return
	}
	hash := contentHash(data)
	if hash == w.hash {
		return
	}
	w.hash = hash

	if err := fn(ctx); err != nil {
		w.logger.Error("Regeneration failed", "path", w.path, "error", err)
	}
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
