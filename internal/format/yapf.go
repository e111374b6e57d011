package format

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/andyballingall/srcfmt/internal/config"
)

// yapfDiffExit is the status yapf uses when --diff produced a non-empty diff.
const yapfDiffExit = 1

// yapf drives the yapf Python formatter with an explicit style file.
type yapf struct {
	cfg       *config.ToolConfig
	runner    Runner
	installer *Installer
	logger    *slog.Logger
	binary    string
}

func newYapf(tc *config.ToolConfig, r Runner, inst *Installer, logger *slog.Logger) *yapf {
	return &yapf{
		cfg:       tc,
		runner:    r,
		installer: inst,
		logger:    logger.With("component", string(config.Yapf)),
		binary:    tc.Binary,
	}
}

func (y *yapf) Name() config.ToolName      { return config.Yapf }
func (y *yapf) Config() *config.ToolConfig { return y.cfg }

// Prepare resolves, and if needed installs, yapf in both modes.
func (y *yapf) Prepare(ctx context.Context, _ Mode) error {
	p, err := y.installer.Ensure(ctx, y.cfg)
	if err != nil {
		return err
	}
	y.binary = p
	return nil
}

func (y *yapf) args(root, action string, files []string) []string {
	args := []string{"--style=" + y.cfg.StylePath(root), "--recursive", action}
	return append(args, files...)
}

func (y *yapf) Format(ctx context.Context, root string, files []string) error {
	for _, batch := range batches(files, maxArgBytes) {
		out, err := y.runner.Run(ctx, root, y.binary, y.args(root, "--in-place", batch)...)
		if err != nil {
			return &ToolError{Tool: y.Name(), Err: err}
		}
		if out.ExitCode != 0 {
			return &ToolError{Tool: y.Name(), ExitCode: out.ExitCode, Stderr: strings.TrimSpace(string(out.Stderr))}
		}
	}
	return nil
}

func (y *yapf) Check(ctx context.Context, root string, files []string) ([]string, error) {
	var offending []string
	for _, batch := range batches(files, maxArgBytes) {
		found, err := y.checkBatch(ctx, root, batch)
		offending = append(offending, found...)
		if err != nil {
			return offending, err
		}
	}
	return offending, nil
}

func (y *yapf) checkBatch(ctx context.Context, root string, files []string) ([]string, error) {
	out, err := y.runner.Run(ctx, root, y.binary, y.args(root, "--diff", files)...)
	if err != nil {
		return nil, &ToolError{Tool: y.Name(), Err: err}
	}

	switch out.ExitCode {
	case 0:
		return nil, nil
	case yapfDiffExit:
		if len(bytes.TrimSpace(out.Stdout)) == 0 {
			// exit 1 without a diff is an error, not a violation
			return nil, &ToolError{Tool: y.Name(), ExitCode: out.ExitCode, Stderr: strings.TrimSpace(string(out.Stderr))}
		}
		offending := diffFiles(root, out.Stdout)
		if len(offending) == 0 {
			offending = files
		}
		return offending, nil
	default:
		return nil, &ToolError{Tool: y.Name(), ExitCode: out.ExitCode, Stderr: strings.TrimSpace(string(out.Stderr))}
	}
}

// diffFiles extracts the original-file names from the "--- name (original)"
// headers of a unified diff. Relative names are resolved against root.
func diffFiles(root string, diff []byte) []string {
	var files []string
	seen := map[string]bool{}
	sc := bufio.NewScanner(bytes.NewReader(diff))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "--- ") {
			continue
		}
		name := strings.TrimPrefix(line, "--- ")
		if i := strings.IndexByte(name, '\t'); i >= 0 {
			name = name[:i]
		}
		name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "(original)"))
		if name == "" {
			continue
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(root, filepath.FromSlash(name))
		}
		if !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}
	return files
}
