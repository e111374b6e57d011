package fsh

import "fmt"

type AnchorNotFoundError struct {
	Anchor string
	Start  string
}

func (e *AnchorNotFoundError) Error() string {
	return fmt.Sprintf("could not find %s in %s or any parent directory", e.Anchor, e.Start)
}

type StartNotDirectoryError struct {
	Path string
}

func (e *StartNotDirectoryError) Error() string {
	return fmt.Sprintf("root search must start from a directory: %s", e.Path)
}

type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid file pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error {
	return e.Err
}
