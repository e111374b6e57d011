package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/andyballingall/srcfmt/internal/format"
)

// JSONReporter implements Reporter for JSON output.
type JSONReporter struct{}

type jsonTarget struct {
	Tool      string   `json:"tool"`
	Folder    string   `json:"folder"`
	Pattern   string   `json:"pattern"`
	Status    string   `json:"status"`
	Files     []string `json:"files"`
	Offending []string `json:"offending,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type jsonOutput struct {
	Mode      string `json:"mode"`
	Root      string `json:"root"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  string `json:"duration"`
	Stats     struct {
		Passed  int `json:"passed"`
		Failed  int `json:"failed"`
		Skipped int `json:"skipped"`
	} `json:"stats"`
	Targets []jsonTarget `json:"targets"`
}

func (jr *JSONReporter) Write(w io.Writer, r *format.Report) error {
	out := jsonOutput{
		Mode:      r.Mode.String(),
		Root:      r.Root,
		StartTime: r.StartTime.Format(time.RFC3339),
		EndTime:   r.EndTime.Format(time.RFC3339),
		Duration:  r.EndTime.Sub(r.StartTime).String(),
		Targets:   make([]jsonTarget, 0, len(r.Outcomes)),
	}
	out.Stats.Passed = r.Count(format.StatusPassed)
	out.Stats.Failed = r.Count(format.StatusFailed)
	out.Stats.Skipped = r.Count(format.StatusSkipped)

	for _, o := range r.Outcomes {
		jt := jsonTarget{
			Tool:    string(o.Target.Tool),
			Folder:  o.Target.Folder,
			Pattern: o.Target.Pattern,
			Status:  string(o.Status),
			Files:   relAll(r, o.Files),
			Reason:  o.Reason,
		}
		if len(o.Offending) > 0 {
			jt.Offending = relAll(r, o.Offending)
		}
		if o.Err != nil {
			jt.Error = o.Err.Error()
		}
		out.Targets = append(out.Targets, jt)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func relAll(r *format.Report, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, r.Rel(p))
	}
	return out
}
