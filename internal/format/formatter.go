package format

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andyballingall/srcfmt/internal/config"
	"github.com/andyballingall/srcfmt/internal/fsh"
)

// Options tune a formatting pass.
type Options struct {
	// ContinueOnError visits every target before failing.
	ContinueOnError bool
	// Include, if set, restricts the pass to files it accepts.
	Include func(path string) bool
}

// Formatter applies a fixed, ordered set of tools to the project at root.
// Targets are processed one at a time.
type Formatter struct {
	root   string
	tools  []Tool
	byName map[config.ToolName]Tool
	logger *slog.Logger
}

// NewFormatter builds a Formatter for the enabled tools in cfg.
func NewFormatter(root string, cfg *config.Config, only []config.ToolName, runner Runner,
	logger *slog.Logger,
) (*Formatter, error) {
	var tools []Tool
	for _, tc := range cfg.Tools(only) {
		t, err := NewTool(tc, runner, logger)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return NewFormatterWithTools(root, tools, logger), nil
}

// NewFormatterWithTools builds a Formatter over an explicit tool list.
func NewFormatterWithTools(root string, tools []Tool, logger *slog.Logger) *Formatter {
	byName := make(map[config.ToolName]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	return &Formatter{
		root:   root,
		tools:  tools,
		byName: byName,
		logger: logger.With("component", "formatter"),
	}
}

// Root returns the project root the Formatter works in.
func (f *Formatter) Root() string {
	return f.root
}

// Targets returns every (tool, folder, pattern) combination in processing order.
func (f *Formatter) Targets() []Target {
	var targets []Target
	for _, t := range f.tools {
		tc := t.Config()
		for _, folder := range tc.Folders {
			for _, pattern := range tc.Patterns {
				targets = append(targets, Target{Tool: t.Name(), Folder: folder, Pattern: pattern})
			}
		}
	}
	return targets
}

// Patterns returns every file pattern used by any tool.
func (f *Formatter) Patterns() []string {
	var out []string
	for _, t := range f.tools {
		out = append(out, t.Config().Patterns...)
	}
	return out
}

// Folders returns the absolute path of every folder a tool is applied to.
func (f *Formatter) Folders() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range f.tools {
		for _, folder := range t.Config().Folders {
			p := filepath.Join(f.root, folder)
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// Apply runs one pass in the given mode. It stops at the first failing target
// unless opts.ContinueOnError is set, in which case all failures are joined.
// The returned report is never nil.
func (f *Formatter) Apply(ctx context.Context, mode Mode, opts Options) (*Report, error) {
	report := NewReport(mode, f.root)
	defer report.finish()

	prepared := map[config.ToolName]bool{}
	var errs []error

	for _, target := range f.Targets() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		t := f.byName[target.Tool]
		files, skip, err := f.collect(target, opts)
		if err != nil {
			return report, err
		}
		if skip != "" {
			report.add(Outcome{Target: target, Status: StatusSkipped, Reason: skip})
			continue
		}

		if !prepared[target.Tool] {
			if pErr := t.Prepare(ctx, mode); pErr != nil {
				report.add(Outcome{Target: target, Status: StatusFailed, Files: files, Err: pErr})
				return report, pErr
			}
			prepared[target.Tool] = true
		}

		outcome := f.process(ctx, t, mode, target, files)
		report.add(outcome)
		if outcome.Err == nil {
			continue
		}
		if !opts.ContinueOnError || errors.Is(outcome.Err, context.Canceled) {
			return report, outcome.Err
		}
		errs = append(errs, outcome.Err)
	}

	return report, errors.Join(errs...)
}

// collect enumerates the files for a target. A non-empty skip reason means
// there is nothing for the tool to do.
func (f *Formatter) collect(target Target, opts Options) (files []string, skip string, err error) {
	dir := filepath.Join(f.root, target.Folder)
	files, err = fsh.CollectFiles(dir, target.Pattern)
	if errors.Is(err, os.ErrNotExist) {
		f.logger.Warn("Folder not found, skipping", "folder", target.Folder, "tool", target.Tool)
		return nil, "folder not found", nil
	}
	if err != nil {
		return nil, "", err
	}

	if opts.Include != nil {
		kept := files[:0]
		for _, p := range files {
			if opts.Include(p) {
				kept = append(kept, p)
			}
		}
		files = kept
	}

	if len(files) == 0 {
		f.logger.Debug("No matching files", "folder", target.Folder, "pattern", target.Pattern)
		return nil, "no matching files", nil
	}
	return files, "", nil
}

func (f *Formatter) process(ctx context.Context, t Tool, mode Mode, target Target, files []string) Outcome {
	outcome := Outcome{Target: target, Status: StatusPassed, Files: files}
	f.logger.Debug("Processing target", "tool", target.Tool, "folder", target.Folder,
		"pattern", target.Pattern, "mode", mode, "files", len(files))

	switch mode {
	case ModeRun:
		if err := t.Format(ctx, f.root, files); err != nil {
			outcome.Status = StatusFailed
			outcome.Err = err
		}
	case ModeCheck:
		offending, err := t.Check(ctx, f.root, files)
		switch {
		case err != nil:
			outcome.Status = StatusFailed
			outcome.Offending = offending
			outcome.Err = err
			if sc, ok := t.(strictChecker); ok && sc.strictCheck() && !errors.Is(err, context.Canceled) {
				outcome.Err = &ViolationError{Target: target, Root: f.root, Files: offending, Cause: err}
			}
		case len(offending) > 0:
			outcome.Status = StatusFailed
			outcome.Offending = offending
			outcome.Err = &ViolationError{Target: target, Root: f.root, Files: offending}
		}
	}
	return outcome
}
