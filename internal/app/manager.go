package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/andyballingall/srcfmt/internal/format"
	"github.com/andyballingall/srcfmt/internal/fsh"
	"github.com/andyballingall/srcfmt/internal/repo"
	"github.com/andyballingall/srcfmt/internal/report"
)

// RunOptions carries the command-line choices that shape a formatting pass
// and its report.
type RunOptions struct {
	Output          string // "text" or "json"
	Verbose         bool
	UseColour       bool
	ContinueOnError bool
	Since           repo.Revision // empty means every file
}

// Manager defines the operations behind the srcfmt command.
type Manager interface {
	Root() string
	Format(ctx context.Context, mode format.Mode, opts RunOptions) error
	Watch(ctx context.Context, mode format.Mode, opts RunOptions, readyChan chan<- struct{}) error
}

// Ensure the interface is satisfied.
var _ Manager = (*LazyManager)(nil)

// LazyManager acts as a placeholder for a real Manager implementation, allowing
// for deferred initialization of dependencies.
type LazyManager struct {
	inner   Manager
	closers []io.Closer
}

func (l *LazyManager) SetInner(m Manager) {
	l.inner = m
}

// HasInner returns true if the inner manager has been set.
// This is used by PersistentPreRunE to skip initialization if already configured (e.g., in tests).
func (l *LazyManager) HasInner() bool {
	return l.inner != nil
}

// OnClose registers c to be closed by Close, such as the log file opened
// while the inner manager was built.
func (l *LazyManager) OnClose(c io.Closer) {
	l.closers = append(l.closers, c)
}

// Close releases everything registered with OnClose, newest first.
func (l *LazyManager) Close() error {
	var errs []error
	for i := len(l.closers) - 1; i >= 0; i-- {
		errs = append(errs, l.closers[i].Close())
	}
	l.closers = nil
	return errors.Join(errs...)
}

func (l *LazyManager) check() Manager {
	if l.inner == nil {
		panic("LazyManager accessed before initialization; check command wiring.")
	}
	return l.inner
}

func (l *LazyManager) Root() string {
	return l.check().Root()
}

func (l *LazyManager) Format(ctx context.Context, mode format.Mode, opts RunOptions) error {
	return l.check().Format(ctx, mode, opts)
}

func (l *LazyManager) Watch(ctx context.Context, mode format.Mode, opts RunOptions,
	readyChan chan<- struct{},
) error {
	return l.check().Watch(ctx, mode, opts, readyChan)
}

// Ensure the interface is satisfied.
var _ Manager = (*CLIManager)(nil)

// CLIManager is the concrete implementation of the Manager interface.
type CLIManager struct {
	logger         *slog.Logger
	formatter      *format.Formatter
	gitter         repo.Gitter
	reporterWriter io.Writer
}

func NewCLIManager(l *slog.Logger, f *format.Formatter, g repo.Gitter, w io.Writer) *CLIManager {
	return &CLIManager{
		logger:         l,
		formatter:      f,
		gitter:         g,
		reporterWriter: w,
	}
}

func (m *CLIManager) Root() string {
	return m.formatter.Root()
}

// Format runs a single pass over every target and writes its report.
func (m *CLIManager) Format(ctx context.Context, mode format.Mode, opts RunOptions) error {
	m.logger.Debug("formatting", "root", m.Root(), "mode", mode, "output", opts.Output,
		"verbose", opts.Verbose, "continueOnError", opts.ContinueOnError, "since", opts.Since)

	fo := format.Options{ContinueOnError: opts.ContinueOnError}
	if opts.Since != "" {
		include, err := m.changedSince(ctx, opts.Since)
		if err != nil {
			return err
		}
		fo.Include = include
	}

	return m.apply(ctx, mode, fo, opts)
}

// Watch runs a full pass, then reruns the same mode over every changed file
// until ctx is cancelled. Failures after the first pass are logged, not returned.
// If you want to know when the watcher is ready to start listening to changes,
// pass a non-nil readyChan to be notified.
func (m *CLIManager) Watch(ctx context.Context, mode format.Mode, opts RunOptions,
	readyChan chan<- struct{},
) error {
	if err := m.Format(ctx, mode, opts); err != nil {
		if ctx.Err() != nil {
			return m.interrupted(ctx, err)
		}
		m.logger.Error("Formatting failed", "error", err)
	}

	watcher := format.NewWatcher(m.formatter, m.logger)
	changes := make(chan []string)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Watch(gctx, func(paths []string) {
			select {
			case changes <- paths:
			case <-gctx.Done():
			}
		})
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case paths := <-changes:
				m.logger.Info("Files changed:", "count", len(paths))
				fo := format.Options{ContinueOnError: true, Include: setOf(paths)}
				if err := m.apply(gctx, mode, fo, opts); err != nil && gctx.Err() == nil {
					m.logger.Error("Formatting failed", "error", err)
				}
			}
		}
	})

	// Forward watcher Ready signal if caller wants notification
	if readyChan != nil {
		go func() {
			select {
			case <-watcher.Ready:
				readyChan <- struct{}{}
			case <-gctx.Done():
			}
		}()
	}

	return m.interrupted(ctx, g.Wait())
}

// interrupted turns a cancellation by the caller into a clean exit.
func (m *CLIManager) interrupted(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		m.logger.Info("Interrupted by user")
		return nil
	}
	return err
}

func (m *CLIManager) apply(ctx context.Context, mode format.Mode, fo format.Options, opts RunOptions) error {
	rep, err := m.formatter.Apply(ctx, mode, fo)

	reporter := report.New(opts.Output, opts.Verbose, opts.UseColour)
	if wErr := reporter.Write(m.reporterWriter, rep); wErr != nil {
		m.logger.Error("Failed to write report", "error", wErr)
	}

	return err
}

// changedSince returns a filter accepting only files git reports as changed
// since rev.
func (m *CLIManager) changedSince(ctx context.Context, rev repo.Revision) (func(string) bool, error) {
	changed, err := m.gitter.ChangedFiles(ctx, m.Root(), rev)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("changed files", "since", rev, "count", len(changed))

	// git reports paths under its own view of the top level, which may differ
	// from the canonical root by a symlink.
	canonical := make([]string, 0, len(changed))
	for _, p := range changed {
		if c, cErr := fsh.CanonicalPath(p); cErr == nil {
			p = c
		}
		canonical = append(canonical, p)
	}
	return setOf(canonical), nil
}

func setOf(paths []string) func(string) bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(p string) bool { return set[p] }
}
