package fsh

import (
	"os"
	"path/filepath"
)

// FindRoot walks upward from start until it finds a directory containing a
// regular file named anchor, and returns that directory. The search begins at
// start itself, so an anchor beside start yields start.
func FindRoot(start, anchor string) (string, error) {
	return findRoot(defaultResolver, start, anchor)
}

func findRoot(pr PathResolver, start, anchor string) (string, error) {
	dir, err := pr.CanonicalPath(start)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", &StartNotDirectoryError{Path: dir}
	}

	for {
		candidate := filepath.Join(dir, anchor)
		if fi, sErr := os.Stat(candidate); sErr == nil && !fi.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &AnchorNotFoundError{Anchor: anchor, Start: start}
		}
		dir = parent
	}
}
