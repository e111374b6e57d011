package format

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/andyballingall/srcfmt/internal/fsh"
)

const debounceDuration = 100 * time.Millisecond

// Watcher monitors the formatter's folders and reports batches of changed files.
type Watcher struct {
	folders  []string
	patterns []string
	logger   *slog.Logger
	Ready    chan struct{}

	newWatcher func() (*fsnotify.Watcher, error)
}

// NewWatcher creates a Watcher over the folders and patterns of f.
func NewWatcher(f *Formatter, logger *slog.Logger) *Watcher {
	return &Watcher{
		folders:    f.Folders(),
		patterns:   f.Patterns(),
		logger:     logger.With("component", "watcher"),
		Ready:      make(chan struct{}),
		newWatcher: fsnotify.NewWatcher,
	}
}

// Watch blocks until ctx is cancelled, calling callback with the sorted set of
// files changed since the previous call. Bursts of events are debounced.
func (w *Watcher) Watch(ctx context.Context, callback func([]string)) error {
	watcher, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := 0
	for _, folder := range w.folders {
		if _, sErr := os.Stat(folder); sErr != nil {
			w.logger.Warn("Folder not found, not watching", "folder", folder)
			continue
		}
		if aErr := w.addRecursive(watcher, folder); aErr != nil {
			return aErr
		}
		watched++
	}

	w.logger.Info("Watching for changes", "folders", watched)
	if w.Ready != nil {
		close(w.Ready)
	}

	var (
		mu      sync.Mutex
		timer   *time.Timer
		pending = map[string]bool{}
	)
	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = map[string]bool{}
		mu.Unlock()
		if len(paths) == 0 {
			return
		}
		slices.Sort(paths)
		callback(paths)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-watcher.Errors:
			w.logger.Error("Watcher error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := w.handleEvent(watcher, event)
			if path == "" {
				continue
			}
			mu.Lock()
			pending[path] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDuration, flush)
			mu.Unlock()
		}
	}
}

// handleEvent returns the path of a relevant file change, or "". New
// directories are added to the watch set.
func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) string {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return ""
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if err := w.addRecursive(watcher, event.Name); err != nil {
				w.logger.Error("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return ""
		}
	}

	if !fsh.MatchesAny(event.Name, w.patterns) {
		return ""
	}
	return event.Name
}

// addRecursive adds the given path and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
