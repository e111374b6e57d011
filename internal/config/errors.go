package config

import (
	"fmt"
)

type MissingConfigError struct {
	Path string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

type InvalidYAMLError struct {
	Path    string
	Wrapped error
}

func (e *InvalidYAMLError) Error() string {
	return fmt.Sprintf("%s is not a valid yaml document: %v", e.Path, e.Wrapped)
}

func (e *InvalidYAMLError) Unwrap() error {
	return e.Wrapped
}

type InvalidConfigError struct {
	Path    string
	Wrapped error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%s is not a valid srcfmt config: %v", e.Path, e.Wrapped)
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Wrapped
}

type MissingStyleFileError struct {
	Tool ToolName
	Path string
}

func (e *MissingStyleFileError) Error() string {
	return fmt.Sprintf("%s style file not found: %s", e.Tool, e.Path)
}

type UnknownToolError struct {
	Name ToolName
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool '%s' (supported: %s, %s)", e.Name, ClangFormat, Yapf)
}
