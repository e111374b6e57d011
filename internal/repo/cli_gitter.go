package repo

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// CLIGitter is the concrete implementation of Gitter using the git CLI.
type CLIGitter struct {
	binary string
}

// NewCLIGitter creates a new CLIGitter instance.
func NewCLIGitter() *CLIGitter {
	return &CLIGitter{binary: "git"}
}

// gitRoot finds the top-level directory of the git repository containing dir.
func (g *CLIGitter) gitRoot(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, g.binary, "-C", dir, "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to find git root: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ChangedFiles lists files changed since the given revision, including
// uncommitted changes in the working tree.
func (g *CLIGitter) ChangedFiles(ctx context.Context, root string, since Revision) ([]string, error) {
	top, err := g.gitRoot(ctx, root)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // arguments are internal and the revision is passed after its own flag
	cmd := exec.CommandContext(ctx, g.binary, "-C", top,
		"diff", "--name-only", "--diff-filter=ACMR", since.String(), "--")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// git reports paths relative to the repository top level.
		files = append(files, filepath.Join(top, filepath.FromSlash(line)))
	}
	return files, nil
}
