package format

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/srcfmt/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRunner is a testify mock for the Runner interface.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, dir, name string, args ...string) (*Output, error) {
	a := m.Called(ctx, dir, name, args)
	out, _ := a.Get(0).(*Output)
	return out, a.Error(1)
}

func (m *MockRunner) LookPath(name string) (string, error) {
	a := m.Called(name)
	return a.String(0), a.Error(1)
}

// fakeClangFormat strips trailing whitespace with -i, and reports one
// replacement per file containing trailing whitespace with -output-replacements-xml.
const fakeClangFormat = `#!/bin/sh
echo "clang-format $*" >> "%[1]s"
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
		sed 's/[[:space:]]*$//' "$a" > "$a.tmp" && mv "$a.tmp" "$a"
	elif [ "$mode" = xml ]; then
		echo "<?xml version='1.0'?>"
		echo "<replacements xml:space='preserve' incomplete_format='false'>"
		if grep -q '[[:space:]]$' "$a"; then
			echo "<replacement offset='0' length='1'> </replacement>"
		fi
		echo "</replacements>"
	fi
done
`

// fakeYapf mirrors fakeClangFormat using yapf's --in-place and --diff conventions.
const fakeYapf = `#!/bin/sh
echo "yapf $*" >> "%[1]s"
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
		sed 's/[[:space:]]*$//' "$a" > "$a.tmp" && mv "$a.tmp" "$a"
	elif grep -q '[[:space:]]$' "$a"; then
		printf '%%s\t(original)\n' "--- $a"
		printf '%%s\t(reformatted)\n' "+++ $a"
		status=1
	fi
done
exit $status
`

type fakeTools struct {
	clang string
	yapf  string
	log   string
}

func (f *fakeTools) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.log)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func writeFakeTools(t *testing.T) *fakeTools {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	dir := t.TempDir()
	ft := &fakeTools{
		clang: filepath.Join(dir, "clang-format"),
		yapf:  filepath.Join(dir, "yapf"),
		log:   filepath.Join(dir, "calls.log"),
	}
	//nolint:gosec // fake tools need executable permission
	require.NoError(t, os.WriteFile(ft.clang, []byte(fmt.Sprintf(fakeClangFormat, ft.log)), 0o755))
	//nolint:gosec // fake tools need executable permission
	require.NoError(t, os.WriteFile(ft.yapf, []byte(fmt.Sprintf(fakeYapf, ft.log)), 0o755))
	return ft
}

func (f *fakeTools) config() *config.Config {
	cfg := config.Default()
	cfg.ClangFormat.Binary = f.clang
	cfg.Yapf.Binary = f.yapf
	cfg.Yapf.Install = nil
	return cfg
}

const (
	cleanCpp = "int main() {\n  return 0;\n}\n"
	dirtyCpp = "int main() {   \n  return 0;\n}\n"
	cleanPy  = "def f():\n    return 1\n"
	dirtyPy  = "def f():  \n    return 1\n"
)

// writeProject lays out a project root with the default folders.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{".clang-format", ".style.cfg"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o600))
	}
	for rel, content := range files {
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
