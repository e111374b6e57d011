package fsh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAnchor = ".clang-format"

// mockPathResolver is a test implementation of PathResolver.
type mockPathResolver struct {
	canonicalPathFn func(path string) (string, error)
}

func (m *mockPathResolver) CanonicalPath(path string) (string, error) {
	if m.canonicalPathFn != nil {
		return m.canonicalPathFn(path)
	}
	return path, nil
}

func (m *mockPathResolver) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func TestFindRoot(t *testing.T) {
	t.Parallel()

	for depth := 0; depth <= 4; depth++ {
		depth := depth
		t.Run(fmt.Sprintf("anchor found at depth %d", depth), func(t *testing.T) {
			t.Parallel()
			root, err := filepath.EvalSymlinks(t.TempDir())
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(root, testAnchor), []byte("BasedOnStyle: LLVM\n"), 0o600))

			start := root
			for i := 0; i < depth; i++ {
				start = filepath.Join(start, fmt.Sprintf("d%d", i))
			}
			require.NoError(t, os.MkdirAll(start, 0o755))

			got, err := FindRoot(start, testAnchor)
			require.NoError(t, err)
			assert.Equal(t, root, got)
		})
	}

	t.Run("nearest anchor wins", func(t *testing.T) {
		t.Parallel()
		outer, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)
		inner := filepath.Join(outer, "nested", "project")
		require.NoError(t, os.MkdirAll(filepath.Join(inner, "src"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(outer, testAnchor), nil, 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(inner, testAnchor), nil, 0o600))

		got, err := FindRoot(filepath.Join(inner, "src"), testAnchor)
		require.NoError(t, err)
		assert.Equal(t, inner, got)
	})

	t.Run("anchor that is a directory is ignored", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		anchor := ".srcfmt-dir-anchor-never-a-file"
		require.NoError(t, os.Mkdir(filepath.Join(root, anchor), 0o755))

		_, err := FindRoot(root, anchor)
		var notFound *AnchorNotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("fails when no ancestor holds the anchor", func(t *testing.T) {
		t.Parallel()
		start := filepath.Join(t.TempDir(), "a", "b")
		require.NoError(t, os.MkdirAll(start, 0o755))

		_, err := FindRoot(start, ".srcfmt-anchor-that-does-not-exist")
		var notFound *AnchorNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, start, notFound.Start)
		assert.Contains(t, err.Error(), ".srcfmt-anchor-that-does-not-exist")
	})

	t.Run("fails when start is a file", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, nil, 0o600))

		_, err := FindRoot(file, testAnchor)
		var notDir *StartNotDirectoryError
		require.ErrorAs(t, err, &notDir)
	})

	t.Run("fails when start does not exist", func(t *testing.T) {
		t.Parallel()
		_, err := FindRoot(filepath.Join(t.TempDir(), "missing"), testAnchor)
		require.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("propagates resolver errors", func(t *testing.T) {
		t.Parallel()
		pr := &mockPathResolver{
			canonicalPathFn: func(_ string) (string, error) {
				return "", os.ErrPermission
			},
		}

		_, err := findRoot(pr, "anywhere", testAnchor)
		assert.True(t, errors.Is(err, os.ErrPermission))
	})
}
