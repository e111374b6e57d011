package format

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// waitDelay bounds how long a cancelled command may keep its output pipes open.
const waitDelay = 5 * time.Second

// Output captures the result of an external command that ran to completion.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes external commands.
type Runner interface {
	// Run executes name with args in dir. A nonzero exit status is reported
	// through Output.ExitCode with a nil error. The error is reserved for
	// commands that could not be started or were cancelled.
	Run(ctx context.Context, dir, name string, args ...string) (*Output, error)
	// LookPath resolves name to an executable path.
	LookPath(name string) (string, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (*Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := &Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, nil
	}
	return out, err
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
