package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/andyballingall/srcfmt/internal/fsh"
)

// ConfigFile is the optional per-project override file, looked up at the root.
const ConfigFile = ".srcfmt.yml"

// Anchor identifies the project root. It doubles as the clang-format style file.
const Anchor = ".clang-format"

// ToolName identifies one of the supported formatters.
type ToolName string

const (
	ClangFormat ToolName = "clang-format"
	Yapf        ToolName = "yapf"
)

// ToolNames lists the supported formatters in the order they are run.
var ToolNames = []ToolName{ClangFormat, Yapf}

const DefaultConfigContent = `# srcfmt configuration
#
# Every key is optional. Anything left out keeps the built-in default shown here.

clang-format:
  binary: clang-format
  style: .clang-format # also marks the project root
  folders: [src, include, test]
  patterns: ["*.cpp", "*.c", "*.hpp", "*.h"]

yapf:
  binary: yapf
  style: .style.cfg
  folders: [.ci]
  patterns: ["*.py"]
  install: [python3, -m, pip, install, yapf] # run when yapf is not on PATH
`

// ToolConfig describes how one formatter is applied to the project.
type ToolConfig struct {
	Binary   string   `yaml:"binary"`
	Style    string   `yaml:"style"`
	Folders  []string `yaml:"folders"`
	Patterns []string `yaml:"patterns"`
	Install  []string `yaml:"install"`
	Skip     bool     `yaml:"skip"`
	Name     ToolName `yaml:"-"` // set for convenience when the config is read in.
}

type Config struct {
	ClangFormat *ToolConfig `yaml:"clang-format"`
	Yapf        *ToolConfig `yaml:"yapf"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ClangFormat: &ToolConfig{
			Name:     ClangFormat,
			Binary:   "clang-format",
			Style:    Anchor,
			Folders:  []string{"src", "include", "test"},
			Patterns: []string{"*.cpp", "*.c", "*.hpp", "*.h"},
		},
		Yapf: &ToolConfig{
			Name:     Yapf,
			Binary:   "yapf",
			Style:    ".style.cfg",
			Folders:  []string{".ci"},
			Patterns: []string{"*.py"},
			Install:  []string{"python3", "-m", "pip", "install", "yapf"},
		},
	}
}

// Load returns the configuration for the project at root. When path is empty
// the optional ConfigFile at root is used, and its absence yields Default().
// An explicit path must exist.
func Load(root, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, ConfigFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Default(), nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingConfigError{Path: path}
		}
		return nil, err
	}

	return Parse(path, data)
}

// Parse validates data against the config schema and merges it over Default().
func Parse(path string, data []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &InvalidYAMLError{Path: path, Wrapped: err}
	}

	cfg := Default()
	if doc == nil {
		return cfg, nil
	}

	if err := validateDocument(doc); err != nil {
		return nil, &InvalidConfigError{Path: path, Wrapped: err}
	}

	var overrides Config
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, &InvalidYAMLError{Path: path, Wrapped: err}
	}
	cfg.ClangFormat.merge(overrides.ClangFormat)
	cfg.Yapf.merge(overrides.Yapf)

	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{Path: path, Wrapped: err}
	}
	return cfg, nil
}

func (tc *ToolConfig) merge(o *ToolConfig) {
	if o == nil {
		return
	}
	if o.Binary != "" {
		tc.Binary = o.Binary
	}
	if o.Style != "" {
		tc.Style = o.Style
	}
	if o.Folders != nil {
		tc.Folders = o.Folders
	}
	if o.Patterns != nil {
		tc.Patterns = o.Patterns
	}
	if o.Install != nil {
		tc.Install = o.Install
	}
	tc.Skip = o.Skip
}

// Validate checks the semantic rules the schema cannot express.
func (c *Config) Validate() error {
	for _, tc := range c.all() {
		for _, f := range tc.Folders {
			if !filepath.IsLocal(f) {
				return fmt.Errorf("%s.folders: %q must be a relative path inside the project root", tc.Name, f)
			}
		}
		for _, p := range tc.Patterns {
			if _, err := fsh.CompilePattern(p); err != nil {
				return fmt.Errorf("%s.patterns: %w", tc.Name, err)
			}
		}
	}
	return nil
}

func (c *Config) all() []*ToolConfig {
	return []*ToolConfig{c.ClangFormat, c.Yapf}
}

// Tools returns the enabled tool configurations in run order. If only is not
// empty, tools not named in it are left out.
func (c *Config) Tools(only []ToolName) []*ToolConfig {
	var out []*ToolConfig
	for _, tc := range c.all() {
		if tc.Skip {
			continue
		}
		if len(only) > 0 && !slices.Contains(only, tc.Name) {
			continue
		}
		out = append(out, tc)
	}
	return out
}

// Tool returns the configuration for the named tool.
func (c *Config) Tool(name ToolName) (*ToolConfig, error) {
	for _, tc := range c.all() {
		if tc.Name == name {
			return tc, nil
		}
	}
	return nil, &UnknownToolError{Name: name}
}

// StylePath returns the absolute path of the tool's style file.
func (tc *ToolConfig) StylePath(root string) string {
	if filepath.IsAbs(tc.Style) {
		return tc.Style
	}
	return filepath.Join(root, tc.Style)
}

// RequireStyleFiles checks that every enabled tool's style file exists.
func (c *Config) RequireStyleFiles(root string, only []ToolName) error {
	for _, tc := range c.Tools(only) {
		p := tc.StylePath(root)
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return &MissingStyleFileError{Tool: tc.Name, Path: p}
		}
	}
	return nil
}

// ParseToolName converts a user supplied tool name.
func ParseToolName(s string) (ToolName, error) {
	for _, n := range ToolNames {
		if string(n) == s {
			return n, nil
		}
	}
	return "", &UnknownToolError{Name: ToolName(s)}
}

// toJSONDocument round-trips a decoded YAML document through JSON so that the
// schema validator sees JSON-native types.
func toJSONDocument(doc any) (any, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return unmarshalJSON(bytes.NewReader(b))
}
