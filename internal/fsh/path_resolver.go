// Package fsh holds the filesystem helpers used by srcfmt: locating the project
// root, resolving paths and enumerating the files a formatter should see.
package fsh

import (
	"path/filepath"
)

// PathResolver provides path resolution operations.
type PathResolver interface {
	// CanonicalPath returns the canonical, absolute path by resolving symlinks.
	CanonicalPath(path string) (string, error)
	// Abs returns the absolute path.
	Abs(path string) (string, error)
}

// StandardPathResolver is the default implementation using standard library functions.
type StandardPathResolver struct{}

// NewPathResolver creates a new StandardPathResolver.
func NewPathResolver() *StandardPathResolver {
	return &StandardPathResolver{}
}

// CanonicalPath returns the canonical, absolute path by resolving symlinks.
func (r *StandardPathResolver) CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// Abs returns the absolute path.
func (r *StandardPathResolver) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// defaultResolver is used by the package-level helpers.
var defaultResolver PathResolver = NewPathResolver()

// CanonicalPath returns the canonical, absolute path by resolving symlinks.
// This is a convenience function that uses the default StandardPathResolver.
func CanonicalPath(path string) (string, error) {
	return defaultResolver.CanonicalPath(path)
}

// Abs returns the absolute path.
// This is a convenience function that uses the default StandardPathResolver.
func Abs(path string) (string, error) {
	return defaultResolver.Abs(path)
}
