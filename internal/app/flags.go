package app

import (
	"fmt"
	"slices"
	"strings"

	"github.com/andyballingall/srcfmt/internal/config"
)

// formatValue implements pflag.Value to provide a custom type name in help text
// and validation for output formats.
type formatValue string

func (f *formatValue) String() string {
	return string(*f)
}

func (f *formatValue) Set(v string) error {
	if v != "json" && v != "text" {
		return fmt.Errorf("must be 'text' or 'json'")
	}
	*f = formatValue(v)
	return nil
}

func (f *formatValue) Type() string {
	return "<format>"
}

// pathValue implements pflag.Value to provide a custom type name in help text.
type pathValue string

func (p *pathValue) String() string {
	return string(*p)
}

func (p *pathValue) Set(v string) error {
	*p = pathValue(v)
	return nil
}

func (p *pathValue) Type() string {
	return "<path>"
}

// toolsValue collects --only flags. Each use may name one tool or a
// comma-separated list.
type toolsValue struct {
	names []config.ToolName
}

func (t *toolsValue) String() string {
	s := make([]string, len(t.names))
	for i, n := range t.names {
		s[i] = string(n)
	}
	return strings.Join(s, ",")
}

func (t *toolsValue) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		name, err := config.ParseToolName(strings.TrimSpace(part))
		if err != nil {
			return err
		}
		if !slices.Contains(t.names, name) {
			t.names = append(t.names, name)
		}
	}
	return nil
}

func (t *toolsValue) Type() string {
	return "<tool>"
}
