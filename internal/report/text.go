package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/andyballingall/srcfmt/internal/format"
)

// TextReporter implements Reporter for plain text output.
type TextReporter struct {
	Verbose   bool
	UseColour bool
}

const (
	colReset     = "\033[0m"
	colRed       = "\033[31m"
	colGreen     = "\033[32m"
	colYellow    = "\033[33m"
	colGrey      = "\033[90m"
	colWhite     = "\033[37m"
	colBoldRed   = "\033[1;31m"
	colBoldGreen = "\033[1;32m"
	colBoldWhite = "\033[1;37m"
)

// cs returns a string which will render with the given colour
// if colourisation is enabled.
func (tr *TextReporter) cs(c, s string) string {
	if !tr.UseColour {
		return s
	}
	return c + s + colReset
}

func (tr *TextReporter) Write(w io.Writer, r *format.Report) error {
	divider := strings.Repeat("-", 40)

	fmt.Fprintf(w, "%s\n", divider)
	fmt.Fprint(w, tr.cs(colBoldWhite, fmt.Sprintf("SRCFMT %s REPORT\n\n", strings.ToUpper(r.Mode.String()))))
	fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Root:    "), tr.cs(colWhite, r.Root))
	fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Started: "), tr.cs(colWhite, r.StartTime.Format("15:04:05")))
	fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Duration:"), tr.cs(colWhite, r.EndTime.Sub(r.StartTime).String()))
	fmt.Fprintf(w, "%s\n", divider)

	for _, o := range r.Outcomes {
		if o.Status == format.StatusSkipped && !tr.Verbose {
			continue
		}
		tr.writeOutcome(w, r, o)
	}

	passed := r.Count(format.StatusPassed)
	failed := r.Count(format.StatusFailed)
	skipped := r.Count(format.StatusSkipped)

	fmt.Fprintf(w, "%s\n", divider)
	summaryLabel := tr.cs(colBoldWhite, "Summary: ")
	summaryStats := fmt.Sprintf("%d passed, %d failed, %d skipped", passed, failed, skipped)
	statsColor := colBoldGreen
	if failed > 0 {
		statsColor = colBoldRed
	}
	fmt.Fprintf(w, "%s%s\n", summaryLabel, tr.cs(statsColor, summaryStats))
	fmt.Fprintf(w, "%s\n", divider)

	return nil
}

func (tr *TextReporter) writeOutcome(w io.Writer, r *format.Report, o format.Outcome) {
	target := fmt.Sprintf("%s %s/%s", o.Target.Tool, o.Target.Folder, o.Target.Pattern)

	switch o.Status {
	case format.StatusSkipped:
		fmt.Fprintf(w, "%s %s %s\n", tr.cs(colYellow, "[SKIP]"), tr.cs(colGrey, target),
			tr.cs(colGrey, "("+o.Reason+")"))

	case format.StatusPassed:
		fmt.Fprintf(w, "%s %s %s\n", tr.cs(colGreen, "[PASS]"), target,
			tr.cs(colGreen, fmt.Sprintf("(%d files)", len(o.Files))))
		if tr.Verbose {
			for _, f := range o.Files {
				fmt.Fprintf(w, "  %s %s\n", tr.cs(colGreen, "✓"), tr.cs(colGrey, r.Rel(f)))
			}
		}

	case format.StatusFailed:
		suffix := fmt.Sprintf("(%d of %d files need formatting)", len(o.Offending), len(o.Files))
		if len(o.Offending) == 0 {
			suffix = "(error)"
		}
		fmt.Fprintf(w, "%s %s %s\n", tr.cs(colRed, "[FAIL]"), tr.cs(colRed, target), tr.cs(colRed, suffix))
		for _, f := range o.Offending {
			fmt.Fprintf(w, "  %s %s\n", tr.cs(colRed, "✗"), tr.cs(colGrey, r.Rel(f)))
		}
		if len(o.Offending) == 0 && o.Err != nil {
			fmt.Fprintf(w, "  %s %v\n", tr.cs(colRed, "✗"), o.Err)
		}
	}
}
