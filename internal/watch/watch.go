// Package watch drives the Indexer's reconciliation pass off filesystem
// events between session-bound runs, adapted from teacher
// internal/watcher/hybrid.go's fsnotify-plus-debounce shape: recursively
// register every directory under a project root, coalesce bursts of
// events behind a debounce timer, and trigger one reconciliation per
// settled burst instead of per raw event.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Aman-CERP/amanmcp-memory/internal/indexer"
)

// DefaultDebounce coalesces bursts of saves (formatters, editors writing
// temp files then renaming) into a single reconciliation.
const DefaultDebounce = 300 * time.Millisecond

// ignoredDirs are VCS, dependency and build directory names the watcher
// never registers a watch on. The set overlaps internal/indexer's IgnoreDirs
// but is not the same set.
var ignoredDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "dist": true,
	"build": true, ".amanmcp-memory": true, "__pycache__": true,
}

// Watcher nudges a Reconciler whenever the watched tree changes.
type Watcher struct {
	reconciler *indexer.Reconciler
	debounce   time.Duration
	logger     *slog.Logger
}

// New builds a Watcher over rec. A nil logger falls back to slog.Default().
func New(rec *indexer.Reconciler, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{reconciler: rec, debounce: debounce, logger: logger}
}

// Run watches projectPath for changes until ctx is canceled, triggering one
// reconciliation per debounced burst. It returns when the watcher can no
// longer be serviced (fsnotify init failure) or ctx is done.
func (w *Watcher) Run(ctx context.Context, project, projectPath string, budget time.Duration) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := addRecursive(fsw, projectPath); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !ignoredDirs[filepath.Base(ev.Name)] {
					_ = fsw.Add(ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Debug("watch error", slog.String("error", err.Error()))

		case <-timerC:
			timerC = nil
			result, err := w.reconciler.Reconcile(ctx, project, projectPath, budget)
			if err != nil {
				w.logger.Debug("watch reconcile failed", slog.String("error", err.Error()))
				continue
			}
			w.logger.Debug("watch reconcile", slog.Int("files_indexed", result.FilesIndexed),
				slog.Int("files_removed", result.FilesRemoved))
		}
	}
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != "." && ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
