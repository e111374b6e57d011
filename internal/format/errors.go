package format

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andyballingall/srcfmt/internal/config"
)

// MissingToolError reports a formatter that is not on PATH and cannot be installed.
type MissingToolError struct {
	Tool   config.ToolName
	Binary string
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("%s not found: install %q and make sure it is on PATH", e.Tool, e.Binary)
}

// InstallFailedError reports a failed automatic installation.
type InstallFailedError struct {
	Tool    config.ToolName
	Command []string
	Output  string
	Err     error
}

func (e *InstallFailedError) Error() string {
	msg := fmt.Sprintf("failed to install %s with '%s'", e.Tool, strings.Join(e.Command, " "))
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Output != "" {
		msg += fmt.Sprintf(" (output: %s)", e.Output)
	}
	return msg
}

func (e *InstallFailedError) Unwrap() error {
	return e.Err
}

// ToolError reports a formatter invocation that failed for reasons other than
// formatting violations.
type ToolError struct {
	Tool     config.ToolName
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	}
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ViolationError reports files that do not match the configured style.
// When Cause is set the check itself could not complete and no file list is known.
type ViolationError struct {
	Target Target
	Root   string
	Files  []string
	Cause  error
}

func (e *ViolationError) Error() string {
	where := fmt.Sprintf("%s check failed for %s/%s", e.Target.Tool, e.Target.Folder, e.Target.Pattern)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", where, e.Cause)
	}
	rel := make([]string, 0, len(e.Files))
	for _, f := range e.Files {
		rel = append(rel, relativeTo(e.Root, f))
	}
	return fmt.Sprintf("%s: %d file(s) need formatting: %s", where, len(e.Files), strings.Join(rel, ", "))
}

func (e *ViolationError) Unwrap() error {
	return e.Cause
}

func relativeTo(root, path string) string {
	if root == "" {
		return path
	}
	if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
		return filepath.ToSlash(r)
	}
	return path
}
