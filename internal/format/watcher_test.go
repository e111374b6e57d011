package format

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/srcfmt/internal/config"
)

func startWatcher(t *testing.T, w *Watcher) (chan []string, context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(paths []string) { batches <- paths })
	}()

	select {
	case <-w.Ready:
	case err := <-done:
		cancel()
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("watcher did not become ready")
	}
	return batches, cancel, done
}

func TestWatcher(t *testing.T) {
	t.Parallel()

	t.Run("reports matching file changes in batches", func(t *testing.T) {
		t.Parallel()
		root := writeProject(t, map[string]string{
			"src/a.cpp":   cleanCpp,
			".ci/tool.py": cleanPy,
		})
		w := NewWatcher(newTestFormatter(t, root, config.Default()), testLogger())
		batches, cancel, done := startWatcher(t, w)
		defer cancel()

		a := filepath.Join(root, "src", "a.cpp")
		py := filepath.Join(root, ".ci", "tool.py")
		require.NoError(t, os.WriteFile(a, []byte(dirtyCpp), 0o600))
		require.NoError(t, os.WriteFile(py, []byte(dirtyPy), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(root, "src", "notes.txt"), []byte("x"), 0o600))

		seen := map[string]bool{}
		deadline := time.After(5 * time.Second)
		for !(seen[a] && seen[py]) {
			select {
			case batch := <-batches:
				for _, p := range batch {
					seen[p] = true
				}
			case <-deadline:
				t.Fatalf("timed out waiting for changes, saw %v", seen)
			}
		}
		assert.False(t, seen[filepath.Join(root, "src", "notes.txt")])

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	t.Run("watches directories created after start", func(t *testing.T) {
		t.Parallel()
		root := writeProject(t, map[string]string{"src/a.cpp": cleanCpp})
		w := NewWatcher(newTestFormatter(t, root, config.Default()), testLogger())
		batches, cancel, _ := startWatcher(t, w)
		defer cancel()

		sub := filepath.Join(root, "src", "cifar100")
		require.NoError(t, os.Mkdir(sub, 0o755))
		target := filepath.Join(sub, "label.cpp")

		deadline := time.After(5 * time.Second)
		for {
			// the new directory is added asynchronously; keep writing until seen
			require.NoError(t, os.WriteFile(target, []byte(cleanCpp), 0o600))
			select {
			case batch := <-batches:
				for _, p := range batch {
					if p == target {
						return
					}
				}
			case <-time.After(200 * time.Millisecond):
			case <-deadline:
				t.Fatal("timed out waiting for change in new directory")
			}
		}
	})

	t.Run("watcher creation failure", func(t *testing.T) {
		t.Parallel()
		w := NewWatcher(newTestFormatter(t, t.TempDir(), config.Default()), testLogger())
		w.newWatcher = func() (*fsnotify.Watcher, error) { return nil, errors.New("too many open files") }

		err := w.Watch(context.Background(), func([]string) {})
		assert.EqualError(t, err, "too many open files")
	})

	t.Run("missing folders are not fatal", func(t *testing.T) {
		t.Parallel()
		w := NewWatcher(newTestFormatter(t, t.TempDir(), config.Default()), testLogger())
		_, cancel, done := startWatcher(t, w)
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}
