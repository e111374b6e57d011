// Package main provides integration tests for the srcfmt CLI.
package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/andyballingall/srcfmt/internal/app"
)

// Stand-ins for clang-format and yapf, put first on PATH for every script.
// They treat trailing whitespace as the only formatting rule.
var fakeTools = map[string]string{
	"clang-format": `#!/bin/sh
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
`,
	"yapf": `#!/bin/sh
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
`,
}

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"srcfmt": func() int {
			if err := app.Run(context.Background(), os.Args, os.Stdout, os.Stderr, nil); err != nil {
				return 1
			}
			return 0
		},
	}))
}

func TestScripts(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("scripts use shell-script fakes for clang-format and yapf")
	}
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			// Tools live outside $WORK so they are never inside a project root.
			bin := filepath.Join(filepath.Dir(env.WorkDir), filepath.Base(env.WorkDir)+"-bin")
			if err := os.MkdirAll(bin, 0o755); err != nil {
				return err
			}
			for name, script := range fakeTools {
				//nolint:gosec // fake tools need executable permission
				if err := os.WriteFile(filepath.Join(bin, name), []byte(script), 0o755); err != nil {
					return err
				}
			}
			env.Setenv("PATH", bin+string(os.PathListSeparator)+env.Getenv("PATH"))
			env.Setenv("SRCFMT_LOG_FILE", filepath.Join(bin, "srcfmt.log"))
			env.Defer(func() { _ = os.RemoveAll(bin) })
			return nil
		},
	})
}
