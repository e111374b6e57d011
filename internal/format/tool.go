package format

import (
	"context"
	"log/slog"

	"github.com/andyballingall/srcfmt/internal/config"
)

// Tool is an external formatter.
type Tool interface {
	// Name identifies the tool.
	Name() config.ToolName
	// Config returns the settings the tool was built from.
	Config() *config.ToolConfig
	// Prepare makes sure the tool can be invoked in the given mode.
	Prepare(ctx context.Context, mode Mode) error
	// Format rewrites files in place.
	Format(ctx context.Context, root string, files []string) error
	// Check returns the subset of files that do not conform to the style.
	Check(ctx context.Context, root string, files []string) ([]string, error)
}

// strictChecker is implemented by tools whose check step treats any
// invocation failure as a formatting violation.
type strictChecker interface {
	strictCheck() bool
}

// NewTool builds the Tool for a configuration entry.
func NewTool(tc *config.ToolConfig, runner Runner, logger *slog.Logger) (Tool, error) {
	installer := NewInstaller(runner, logger)
	switch tc.Name {
	case config.ClangFormat:
		return newClangFormat(tc, runner, installer, logger), nil
	case config.Yapf:
		return newYapf(tc, runner, installer, logger), nil
	default:
		return nil, &config.UnknownToolError{Name: tc.Name}
	}
}

// maxArgBytes bounds the file arguments handed to one formatter process so
// large trees stay below the operating system's command line limit.
const maxArgBytes = 32 * 1024

// batches splits files, in order, into groups whose combined argument length
// is at most budget bytes. A single file longer than budget forms its own group.
func batches(files []string, budget int) [][]string {
	var groups [][]string
	var cur []string
	size := 0
	for _, f := range files {
		n := len(f) + 1
		if len(cur) > 0 && size+n > budget {
			groups = append(groups, cur)
			cur, size = nil, 0
		}
		cur = append(cur, f)
		size += n
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}
