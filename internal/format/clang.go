package format

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"github.com/andyballingall/srcfmt/internal/config"
)

// clangFormat drives clang-format. The style is always read from the
// .clang-format file nearest each source file ("-style=file").
type clangFormat struct {
	cfg       *config.ToolConfig
	runner    Runner
	installer *Installer
	logger    *slog.Logger
	binary    string
}

func newClangFormat(tc *config.ToolConfig, r Runner, inst *Installer, logger *slog.Logger) *clangFormat {
	return &clangFormat{
		cfg:       tc,
		runner:    r,
		installer: inst,
		logger:    logger.With("component", string(config.ClangFormat)),
		binary:    tc.Binary,
	}
}

func (c *clangFormat) Name() config.ToolName      { return config.ClangFormat }
func (c *clangFormat) Config() *config.ToolConfig { return c.cfg }

// strictCheck is true: during a check every invocation failure, including a
// missing binary, counts as a violation.
func (c *clangFormat) strictCheck() bool { return true }

// Prepare resolves the binary for run mode. Check mode invokes the configured
// name directly and lets failures surface as violations.
func (c *clangFormat) Prepare(ctx context.Context, mode Mode) error {
	if mode == ModeCheck {
		return nil
	}
	p, err := c.installer.Ensure(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.binary = p
	return nil
}

func (c *clangFormat) Format(ctx context.Context, root string, files []string) error {
	for _, batch := range batches(files, maxArgBytes) {
		if err := c.formatBatch(ctx, root, batch); err != nil {
			return err
		}
	}
	return nil
}

func (c *clangFormat) formatBatch(ctx context.Context, root string, files []string) error {
	args := append([]string{"-style=file", "-i"}, files...)
	out, err := c.runner.Run(ctx, root, c.binary, args...)
	if err != nil {
		return &ToolError{Tool: c.Name(), Err: err}
	}
	if stderr := strings.TrimSpace(string(out.Stderr)); stderr != "" {
		c.logger.Warn("clang-format reported problems", "stderr", stderr)
	}
	if out.ExitCode != 0 {
		return &ToolError{Tool: c.Name(), ExitCode: out.ExitCode, Stderr: strings.TrimSpace(string(out.Stderr))}
	}
	return nil
}

// Check runs clang-format once per file so each rewrite count maps to a file.
func (c *clangFormat) Check(ctx context.Context, root string, files []string) ([]string, error) {
	var offending []string
	for _, f := range files {
		out, err := c.runner.Run(ctx, root, c.binary, "-style=file", "-output-replacements-xml", f)
		if err != nil {
			return offending, &ToolError{Tool: c.Name(), Err: err}
		}
		if out.ExitCode != 0 {
			return offending, &ToolError{
				Tool:     c.Name(),
				ExitCode: out.ExitCode,
				Stderr:   strings.TrimSpace(string(out.Stderr)),
			}
		}

		n, err := countReplacements(out.Stdout)
		if err != nil {
			return offending, &ToolError{Tool: c.Name(), Err: fmt.Errorf("reading report for %s: %w", f, err)}
		}
		c.logger.Debug("checked file", "file", f, "replacements", n)
		if n > 0 {
			offending = append(offending, f)
		}
	}
	return offending, nil
}

type replacementsReport struct {
	XMLName      xml.Name      `xml:"replacements"`
	Replacements []replacement `xml:"replacement"`
}

type replacement struct {
	Offset int    `xml:"offset,attr"`
	Length int    `xml:"length,attr"`
	Text   string `xml:",chardata"`
}

// countReplacements returns the rewrite count in an -output-replacements-xml report.
func countReplacements(data []byte) (int, error) {
	var r replacementsReport
	if err := xml.Unmarshal(data, &r); err != nil {
		return 0, err
	}
	return len(r.Replacements), nil
}
