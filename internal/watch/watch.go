// Package watch triggers periodic and change-driven reindexing. It knows
// nothing about ingestion internals beyond the callback it is handed, and
// the engine is fully correct without it: this package adds no new write
// path, just a trigger for an existing one.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ignoredDirs mirrors internal/crawl's ignore set: no point watching
// directories the crawler will never descend into.
var ignoredDirs = map[string]struct{}{
	"target": {}, "node_modules": {}, ".git": {}, ".venv": {},
	".mypy_cache": {}, ".pytest_cache": {}, ".ruff_cache": {},
	"dist": {}, ".next": {}, ".vite": {},
}

// ReindexFunc is called whenever a debounced batch of filesystem events
// fires, or when the fallback interval ticks.
type ReindexFunc func(ctx context.Context) error

// Watcher triggers reindex on file changes under root, debounced, with a
// periodic fallback tick every interval. interval == 0 disables the
// fallback tick but the fsnotify-driven debounce still runs; a Watcher
// constructed over a root that can't be watched degrades to interval-only.
type Watcher struct {
	root     string
	interval time.Duration
	debounce time.Duration
	reindex  ReindexFunc
	log      *slog.Logger

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
}

// New returns a Watcher over root that calls reindex after a debounced
// burst of changes, and again every interval if interval > 0.
func New(root string, interval time.Duration, reindex ReindexFunc, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		root:     root,
		interval: interval,
		debounce: 2 * time.Second,
		reindex:  reindex,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching in the background. It returns immediately; callers
// stop the watcher with Stop or by canceling ctx.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warn("fsnotify unavailable, falling back to interval-only reindex", "error", err)
		go w.runIntervalOnly(ctx)
		return nil
	}
	w.fsw = fsw

	if err := w.addTree(w.root); err != nil {
		w.log.Warn("failed to watch project tree", "error", err)
	}

	go w.loop(ctx)
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // tolerate unreadable subtrees, keep walking
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if _, skip := ignoredDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer func() { _ = w.fsw.Close() }()

	var debounceTimer *time.Timer
	var debounceC <-chan time.Time
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()
	var tickerC <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tickerC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-tickerC:
			w.fire(ctx, "interval")
		case <-debounceC:
			debounceC = nil
			w.fire(ctx, "fsnotify")
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if debounceTimer == nil {
				debounceTimer = time.NewTimer(w.debounce)
			} else {
				debounceTimer.Reset(w.debounce)
			}
			debounceC = debounceTimer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) runIntervalOnly(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.fire(ctx, "interval")
		}
	}
}

func (w *Watcher) fire(ctx context.Context, trigger string) {
	if err := w.reindex(ctx); err != nil {
		w.log.Warn("reindex trigger failed", "trigger", trigger, "error", err)
	}
}

// Stop halts the watcher's background goroutine.
func (w *Watcher) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
}
