package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/andyballingall/srcfmt/internal/fsh"
)

// Run executes srcfmt with the given arguments. args[0] is the program name.
// Any failure is printed to stderr as "error: <message>" and returned.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, envProvider fsh.EnvProvider) error {
	logLevel := &slog.LevelVar{}
	logLevel.Set(slog.LevelInfo)

	// Local lazy instance ensures t.Parallel() safety
	lazy := &LazyManager{}
	defer func() { _ = lazy.Close() }()

	if envProvider == nil {
		envProvider = fsh.NewEnvProvider()
	}

	rootCmd := NewRootCmd(lazy, logLevel, stdout, stderr, envProvider)
	rootCmd.SetArgs(args[1:]) // Skip the program name
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	return nil
}
