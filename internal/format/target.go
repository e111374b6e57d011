package format

import (
	"time"

	"github.com/andyballingall/srcfmt/internal/config"
)

// Target is one (tool, folder, pattern) combination visited by a Formatter.
type Target struct {
	Tool    config.ToolName
	Folder  string
	Pattern string
}

// Status is the outcome of processing a Target.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome records what happened to a single Target.
type Outcome struct {
	Target    Target
	Status    Status
	Files     []string // files handed to the tool
	Offending []string // files reported as needing formatting (check mode)
	Reason    string   // why a target was skipped
	Err       error
}

// Report collects the outcomes of one formatting pass.
type Report struct {
	Mode      Mode
	Root      string
	StartTime time.Time
	EndTime   time.Time
	Outcomes  []Outcome
}

// NewReport creates an empty report for the given pass.
func NewReport(mode Mode, root string) *Report {
	return &Report{Mode: mode, Root: root, StartTime: time.Now()}
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

func (r *Report) finish() {
	r.EndTime = time.Now()
}

// Count returns the number of outcomes with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Failed reports whether any target failed.
func (r *Report) Failed() bool {
	return r.Count(StatusFailed) > 0
}

// Rel returns path relative to the report's root, using forward slashes.
func (r *Report) Rel(path string) string {
	return relativeTo(r.Root, path)
}
