// Package watcher debounces filesystem change events under a corpus root
// and triggers an incremental re-ingest, per spec.md §1's scoping: the
// filesystem watcher carries no ingestion logic of its own, it only
// decides when to call internal/ingest again.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/ragmcp/internal/ingest"
)

// DefaultDebounce is the quiet period after the last observed change
// before a re-ingest fires, absorbing the burst of events a single save
// (write + chmod, or a temp-file rename-into-place) typically produces.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches Root (and every subdirectory) for changes and calls
// Ingester.Run after Debounce has elapsed with no further activity.
type Watcher struct {
	Root     string
	Ingester *ingest.Ingester
	Debounce time.Duration
	Logger   *slog.Logger

	fsw *fsnotify.Watcher
}

// New builds a Watcher and starts watching Root and its subdirectories.
// Callers must call Run to begin processing events and Close when done.
func New(root string, ig *ingest.Ingester, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}
	w := &Watcher{Root: root, Ingester: ig, Debounce: debounce, Logger: slog.Default(), fsw: fsw}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree registers every directory under root with the underlying
// fsnotify watcher, which only watches one level at a time.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Run blocks, debouncing filesystem events into re-ingest calls, until
// ctx is cancelled or the underlying watcher's channels close. Watcher
// errors are logged and do not stop Run.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var timerC <-chan time.Time

	resetTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(w.Debounce)
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
			resetTimer()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error("watcher error", "error", err)

		case <-timerC:
			timerC = nil
			w.runIngest(ctx)
		}
	}
}

// handleEvent keeps the watch tree in sync with directory creation, so a
// newly created subdirectory starts receiving events without a restart.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == 0 {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(event.Name); err != nil {
		w.Logger.Error("watching new directory", "path", event.Name, "error", err)
	}
}

func (w *Watcher) runIngest(ctx context.Context) {
	report, err := w.Ingester.Run(ctx, ingest.Options{})
	if err != nil {
		w.Logger.Error("re-ingest failed", "error", err)
		return
	}
	w.Logger.Info("re-ingest complete",
		"created", report.Created, "updated", report.Updated,
		"removed", report.Removed, "errors", report.Errors)
}

// Close releases the underlying OS watch handles.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
