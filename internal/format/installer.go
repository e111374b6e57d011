package format

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/andyballingall/srcfmt/internal/config"
)

// Installer locates formatter binaries, installing them when configured to.
type Installer struct {
	runner  Runner
	logger  *slog.Logger
	homeDir func() (string, error)
}

// NewInstaller creates a new Installer.
func NewInstaller(runner Runner, logger *slog.Logger) *Installer {
	return &Installer{
		runner:  runner,
		logger:  logger.With("component", "installer"),
		homeDir: os.UserHomeDir,
	}
}

// Ensure returns the path of the tool's binary. If the binary is not found and
// the tool has an install command, the command is run and the lookup retried.
func (i *Installer) Ensure(ctx context.Context, tc *config.ToolConfig) (string, error) {
	if p, ok := i.find(tc.Binary); ok {
		return p, nil
	}
	if len(tc.Install) == 0 {
		return "", &MissingToolError{Tool: tc.Name, Binary: tc.Binary}
	}

	i.logger.Info("Installing "+string(tc.Name), "command", strings.Join(tc.Install, " "))
	out, err := i.runner.Run(ctx, "", tc.Install[0], tc.Install[1:]...)
	if err != nil {
		return "", &InstallFailedError{Tool: tc.Name, Command: tc.Install, Err: err}
	}
	if out.ExitCode != 0 {
		return "", &InstallFailedError{
			Tool:    tc.Name,
			Command: tc.Install,
			Output:  strings.TrimSpace(string(out.Stderr)),
		}
	}

	p, ok := i.find(tc.Binary)
	if !ok {
		return "", &InstallFailedError{
			Tool:    tc.Name,
			Command: tc.Install,
			Err:     &MissingToolError{Tool: tc.Name, Binary: tc.Binary},
		}
	}
	i.logger.Info("Installed "+string(tc.Name), "path", p)
	return p, nil
}

// find looks on PATH first, then in the per-user script directory that
// pip --user installs into.
func (i *Installer) find(binary string) (string, bool) {
	if p, err := i.runner.LookPath(binary); err == nil {
		return p, true
	}
	if filepath.IsAbs(binary) {
		return "", false
	}

	home, err := i.homeDir()
	if err != nil || home == "" {
		return "", false
	}
	name := binary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	p := filepath.Join(home, ".local", "bin", name)
	if info, sErr := os.Stat(p); sErr == nil && !info.IsDir() {
		return p, true
	}
	return "", false
}
