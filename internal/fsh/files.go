package fsh

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/gobwas/glob"
)

// skipDirs lists directory names never descended into while collecting files.
var skipDirs = map[string]bool{
	".git":         true,
	"build":        true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
}

// CompilePattern compiles a file-type glob such as "*.cpp".
func CompilePattern(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, &InvalidPatternError{Pattern: pattern, Err: err}
	}
	return g, nil
}

// CollectFiles returns the files below dir whose base name matches pattern,
// sorted lexically. A missing dir yields an error satisfying os.IsNotExist.
func CollectFiles(dir, pattern string) ([]string, error) {
	g, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}

	if _, err = os.Stat(dir); err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, wErr error) error {
		if wErr != nil {
			return wErr
		}
		if d.IsDir() {
			if path != dir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && g.Match(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

// MatchesAny reports whether the base name of path matches one of patterns.
// Invalid patterns never match.
func MatchesAny(path string, patterns []string) bool {
	name := filepath.Base(path)
	for _, p := range patterns {
		g, err := CompilePattern(p)
		if err != nil {
			continue
		}
		if g.Match(name) {
			return true
		}
	}
	return false
}
