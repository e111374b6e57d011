// Package report renders formatting reports for people and machines.
package report

import (
	"io"

	"github.com/andyballingall/srcfmt/internal/format"
)

// Reporter writes a format.Report in some output format.
type Reporter interface {
	Write(w io.Writer, r *format.Report) error
}

// New returns the Reporter for the named output format ("text" or "json").
func New(output string, verbose, useColour bool) Reporter {
	if output == "json" {
		return &JSONReporter{}
	}
	return &TextReporter{Verbose: verbose, UseColour: useColour}
}
