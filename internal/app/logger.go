package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andyballingall/srcfmt/internal/format"
	"github.com/andyballingall/srcfmt/internal/fsh"
)

const (
	LogFile   = ".srcfmt.log"
	LogEnvVar = "SRCFMT_LOG_FILE"
)

// logDir picks the directory for LogFile. A check must not write into the
// project, so its log goes under the user cache directory when one is
// available. Everything else logs at the project root.
func logDir(root string, mode format.Mode, cacheDir func() (string, error)) string {
	if mode != format.ModeCheck {
		return root
	}
	base, err := cacheDir()
	if err != nil {
		return root
	}
	dir := filepath.Join(base, "srcfmt")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return root
	}
	return dir
}

// setupLogger configures a logger that writes structured logs to a file
// and short, human-readable lines to the console. The file is LogFile in dir
// unless LogEnvVar names another path. A returned error means file logging
// is disabled; the logger is still usable.
func setupLogger(stderr io.Writer, logLevel *slog.LevelVar, dir string,
	env fsh.EnvProvider,
) (*slog.Logger, io.Closer, error) {
	logPath := env.Get(LogEnvVar)
	if logPath == "" {
		logPath = filepath.Join(dir, LogFile)
	}

	handlers := []slog.Handler{&consoleHandler{w: stderr, level: logLevel}}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(&multiHandler{handlers: handlers}), nil, err
	}

	// The file always gets full debug detail.
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	handlers = append([]slog.Handler{fileHandler}, handlers...)

	return slog.New(&multiHandler{handlers: handlers}), f, nil
}

// multiHandler fans each record out to every handler that accepts its level.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

//nolint:gocritic // slog.Record is passed by value in the interface
func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *multiHandler) each(fn func(slog.Handler) slog.Handler) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = fn(h)
	}
	return &multiHandler{handlers: next}
}

// consoleHandler prints the message with a level prefix. Errors are always
// appended; other attributes only appear at debug level.
type consoleHandler struct {
	w     io.Writer
	level *slog.LevelVar
	attrs []slog.Attr
}

func (c *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level.Level()
}

//nolint:gocritic // slog.Record is passed by value in the interface
func (c *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	switch {
	case record.Level >= slog.LevelError:
		fmt.Fprintf(c.w, "error: %s", record.Message)
	case record.Level >= slog.LevelWarn:
		fmt.Fprintf(c.w, "warning: %s", record.Message)
	default:
		fmt.Fprint(c.w, record.Message)
	}

	for _, a := range c.attrs {
		c.formatAttr(a)
	}
	record.Attrs(func(a slog.Attr) bool {
		c.formatAttr(a)
		return true
	})

	fmt.Fprintln(c.w)
	return nil
}

func (c *consoleHandler) formatAttr(a slog.Attr) {
	switch {
	case a.Key == "error" || a.Key == "err":
		fmt.Fprintf(c.w, ": %v", a.Value)
	case a.Key == "component":
		// the file log keeps it; on the console it is noise
	case c.level.Level() <= slog.LevelDebug:
		fmt.Fprintf(c.w, " %s=%v", a.Key, a.Value)
	}
}

func (c *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{
		w:     c.w,
		level: c.level,
		attrs: append(c.attrs[:len(c.attrs):len(c.attrs)], attrs...),
	}
}

func (c *consoleHandler) WithGroup(_ string) slog.Handler {
	return c
}
