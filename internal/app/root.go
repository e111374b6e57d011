package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andyballingall/srcfmt/internal/config"
	"github.com/andyballingall/srcfmt/internal/format"
	"github.com/andyballingall/srcfmt/internal/fsh"
	"github.com/andyballingall/srcfmt/internal/repo"
)

// Version is the current version of srcfmt, set at build time.
var Version = "dev"

var LongDescription = `
srcfmt runs the project's code formatters from CI or a developer shell.

It finds the project root by walking up from its own location to the nearest
.clang-format (falling back to the current directory), then applies clang-format to the C/C++ sources and yapf
to the Python tooling. With "run" (the default) files are rewritten in place.
With "check" nothing is modified and srcfmt fails if any file needs formatting.
`

const example = `  srcfmt              format everything in place
  srcfmt check        fail if any file needs formatting
  srcfmt check --since origin/main --only clang-format
  srcfmt run --watch  reformat files as they are saved`

// NewRootCmd creates the root command and wires up dependencies.
func NewRootCmd(lazy *LazyManager, ll *slog.LevelVar, stdout, stderr io.Writer,
	envProvider fsh.EnvProvider,
) *cobra.Command {
	var (
		debug           bool
		noColour        bool
		verbose         bool
		watch           bool
		continueOnError bool
		printConfig     bool
		since           string
		from            pathValue
		configPath      pathValue
		only            toolsValue
	)
	outputVal := formatValue("text")

	rootCmd := &cobra.Command{
		Use:           "srcfmt [check|run]",
		Short:         "Apply clang-format and yapf across a project",
		Long:          LongDescription,
		Example:       example,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		ValidArgs:     []string{string(format.ModeCheck), string(format.ModeRun)},
		Args:          cobra.MatchAll(cobra.MaximumNArgs(1), actionArg),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				ll.Set(slog.LevelDebug)
			}
			// Nothing to resolve for help, completion or --print-config
			if cmd.Name() == "help" || isCompletionCommand(cmd) || printConfig {
				return nil
			}
			// Skip if already initialised (e.g., in tests)
			if lazy.HasInner() {
				return nil
			}

			// 1. Resolve the project root
			root, start, err := resolveRoot(string(from), os.Executable, os.Getwd)
			if err != nil {
				return err
			}

			// 2. Load configuration and make sure every style file is present
			cfg, err := config.Load(root, string(configPath))
			if err != nil {
				return err
			}
			if err = cfg.RequireStyleFiles(root, only.names); err != nil {
				return err
			}

			// 3. Setup logging
			mode := format.ModeRun
			if len(args) > 0 {
				mode = format.Mode(args[0])
			}
			logger, closer, err := setupLogger(stderr, ll, logDir(root, mode, os.UserCacheDir), envProvider)
			if err != nil {
				logger.Warn("logging to file disabled", "error", err)
			} else {
				lazy.OnClose(closer)
			}
			logger.Debug("project root resolved", "root", root, "start", start)

			// 4. Build dependencies
			formatter, err := format.NewFormatter(root, cfg, only.names, format.NewExecRunner(), logger)
			if err != nil {
				return fmt.Errorf("formatter initialisation failed: %w", err)
			}

			// 5. Hydrate the lazy wrapper
			lazy.SetInner(NewCLIManager(logger, formatter, repo.NewCLIGitter(), stdout))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if printConfig {
				_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultConfigContent)
				return err
			}

			mode := format.ModeRun
			if len(args) > 0 {
				mode = format.Mode(args[0])
			}

			opts := RunOptions{
				Output:          string(outputVal),
				Verbose:         verbose,
				UseColour:       !noColour,
				ContinueOnError: continueOnError,
				Since:           repo.Revision(since),
			}

			if watch {
				return lazy.Watch(cmd.Context(), mode, opts, nil)
			}
			return lazy.Format(cmd.Context(), mode, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.Var(&from, "from",
		"Directory to start the project root search from (default: executable's directory, then current directory)")
	flags.Var(&configPath, "config", "Path to a srcfmt config file (default: <root>/"+config.ConfigFile+")")
	flags.Var(&only, "only", "Restrict formatting to a tool (clang-format, yapf); repeatable")
	flags.StringVar(&since, "since", "", "Only format files changed since the given git revision")
	flags.VarP(&outputVal, "output", "o", "Output format (text, json)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "List every file in the report")
	flags.BoolVarP(&continueOnError, "continue-on-error", "C", false,
		"Visit every folder and pattern before failing (default is to stop on first failure)")
	flags.BoolVarP(&watch, "watch", "w", false, "Watch the source folders and rerun on changes")
	flags.BoolVar(&printConfig, "print-config", false, "Print the default configuration file and exit")

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColour, "nocolour", false, "Disable colour in output")
	// Support alternate spellings
	rootCmd.PersistentFlags().BoolVar(&noColour, "nocolor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColour", false, "")
	_ = rootCmd.PersistentFlags().MarkHidden("nocolor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColour")

	return rootCmd
}

// resolveRoot finds the project root. An explicit from is the only start
// tried. Otherwise the search begins in the directory holding the executable
// and falls back to the working directory when no anchor is found there.
func resolveRoot(from string, executable, getwd func() (string, error)) (root, start string, err error) {
	if from != "" {
		root, err = fsh.FindRoot(from, config.Anchor)
		return root, from, err
	}

	if exe, exeErr := executable(); exeErr == nil {
		if exe, exeErr = fsh.CanonicalPath(exe); exeErr == nil {
			start = filepath.Dir(exe)
			if root, err = fsh.FindRoot(start, config.Anchor); err == nil {
				return root, start, nil
			}
		}
	}

	start, err = getwd()
	if err != nil {
		return "", "", fmt.Errorf("failed to determine working directory: %w", err)
	}
	root, err = fsh.FindRoot(start, config.Anchor)
	return root, start, err
}

// actionArg rejects anything other than a known action. It runs during
// argument validation, before the root is resolved or any tool is touched.
func actionArg(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	_, err := format.ParseMode(args[0])
	return err
}

// isCompletionCommand returns true if the command or any of its parents is the "completion" command.
func isCompletionCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}
