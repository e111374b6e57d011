package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/srcfmt/internal/format"
	"github.com/andyballingall/srcfmt/internal/repo"
)

type MockManager struct {
	mock.Mock
	root string
}

func (m *MockManager) Root() string {
	return m.root
}

func (m *MockManager) Format(ctx context.Context, mode format.Mode, opts RunOptions) error {
	args := m.Called(ctx, mode, opts)
	return args.Error(0)
}

func (m *MockManager) Watch(ctx context.Context, mode format.Mode, opts RunOptions,
	readyChan chan<- struct{},
) error {
	args := m.Called(ctx, mode, opts, readyChan)
	return args.Error(0)
}

// MockGitter is a test mock for the repo.Gitter interface.
type MockGitter struct {
	ChangedFilesFunc func(ctx context.Context, root string, since repo.Revision) ([]string, error)
}

func (m *MockGitter) ChangedFiles(ctx context.Context, root string, since repo.Revision) ([]string, error) {
	if m.ChangedFilesFunc != nil {
		return m.ChangedFilesFunc(ctx, root, since)
	}
	return nil, nil
}

// Both fake formatters strip trailing whitespace when rewriting and flag any
// file with trailing whitespace when checking. Clean files are never rewritten.
const fakeClangFormat = `#!/bin/sh
mode=""
for a in "$@"; do
	case "$a" in
		-i) mode=inplace ;;
		-output-replacements-xml) mode=xml ;;
	esac
done
for a in "$@"; do
	case "$a" in -*) continue ;; esac
	if [ "$mode" = inplace ]; then
		if grep -q '[[:space:]]$' "$a"; then
			sed 's/[[:space:]]*$//' "$a" > "$a.tmp" && mv "$a.tmp" "$a"
		fi
	else
		echo "<replacements xml:space='preserve'>"
		if grep -q '[[:space:]]$' "$a"; then
			echo "<replacement offset='0' length='1'> </replacement>"
		fi
		echo "</replacements>"
	fi
done
`

const fakeYapf = `#!/bin/sh
mode=""
for a in "$@"; do
	case "$a" in
		--in-place) mode=inplace ;;
		--diff) mode=diff ;;
	esac
done
status=0
for a in "$@"; do
	case "$a" in -*) continue ;; esac
	if [ "$mode" = inplace ]; then
		if grep -q '[[:space:]]$' "$a"; then
			sed 's/[[:space:]]*$//' "$a" > "$a.tmp" && mv "$a.tmp" "$a"
		fi
	elif grep -q '[[:space:]]$' "$a"; then
		printf '%s\t(original)\n' "--- $a"
		printf '%s\t(reformatted)\n' "+++ $a"
		status=1
	fi
done
exit $status
`

const (
	cleanCpp = "int main() {\n  return 0;\n}\n"
	dirtyCpp = "int main() {   \n  return 0;\n}\n"
	cleanPy  = "def f():\n    return 1\n"
	dirtyPy  = "def f():  \n    return 1\n"
)

// writeProject lays out a project whose .srcfmt.yml points at fake formatters.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}

	tools := t.TempDir()
	clang := filepath.Join(tools, "clang-format")
	yapf := filepath.Join(tools, "yapf")
	//nolint:gosec // fake tools need executable permission
	require.NoError(t, os.WriteFile(clang, []byte(fakeClangFormat), 0o755))
	//nolint:gosec // fake tools need executable permission
	require.NoError(t, os.WriteFile(yapf, []byte(fakeYapf), 0o755))

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	all := map[string]string{
		".clang-format": "BasedOnStyle: Google\n",
		".style.cfg":    "[style]\nbased_on_style = pep8\n",
		".srcfmt.yml":   fmt.Sprintf("clang-format: {binary: %q}\nyapf: {binary: %q}\n", clang, yapf),
	}
	for rel, content := range files {
		all[rel] = content
	}
	for rel, content := range all {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return root
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}
