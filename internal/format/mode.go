// Package format applies external code formatters to a project's source folders.
package format

import "fmt"

// Mode selects whether formatters rewrite files or only report on them.
type Mode string

const (
	// ModeRun rewrites non-conforming files in place.
	ModeRun Mode = "run"
	// ModeCheck reports non-conforming files without modifying them.
	ModeCheck Mode = "check"
)

// Modes lists the accepted actions, default first.
var Modes = []Mode{ModeRun, ModeCheck}

// ParseMode converts a command-line action into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRun, ModeCheck:
		return Mode(s), nil
	default:
		return "", &InvalidModeError{Value: s}
	}
}

func (m Mode) String() string { return string(m) }

// InvalidModeError is returned for an action other than run or check.
type InvalidModeError struct {
	Value string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid action %q: must be one of %s, %s", e.Value, ModeCheck, ModeRun)
}
