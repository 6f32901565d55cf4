// Package logging builds the CLI's slog logger: a colored console
// handler on stderr and a rotating debug file.
package logging

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	appDir  = "xervo"
	logFile = "xervo.log"
)

// Options controls Setup.
type Options struct {
	// Verbose lowers the console level from WARN to DEBUG.
	Verbose bool

	// Console receives console records. Defaults to os.Stderr.
	Console io.Writer

	// NoColor disables ANSI colors on the console.
	NoColor bool

	// FilePath is the debug log file. Empty selects DefaultPath; "-"
	// disables the file.
	FilePath string
}

// DefaultPath returns <UserConfigDir>/xervo/xervo.log.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDir, logFile), nil
}

// Setup builds the logger, installs it as the slog default and routes the
// standard log package through it. The returned function closes the log
// file.
func Setup(opts Options) (*slog.Logger, func() error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}

	h := &fanout{
		console: tint.NewHandler(console, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		}),
	}

	closeFile := func() error { return nil }
	if file := openFile(opts.FilePath); file != nil {
		h.file = tint.NewHandler(file, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
		closeFile = file.Close
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	log.SetOutput(&slogWriter{logger: logger})
	log.SetFlags(0)
	return logger, closeFile
}

// openFile returns the rotating log file, or nil when the file is
// disabled or its directory cannot be created.
func openFile(path string) *lumberjack.Logger {
	if path == "-" {
		return nil
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5,
		MaxBackups: 3,
		Compress:   true,
	}
}

// fanout sends each record to the console and file handlers that accept
// its level.
type fanout struct {
	console slog.Handler
	file    slog.Handler
}

func (h *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	if h.console.Enabled(ctx, level) {
		return true
	}
	return h.file != nil && h.file.Enabled(ctx, level)
}

func (h *fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	if h.console.Enabled(ctx, r.Level) {
		errs = append(errs, h.console.Handle(ctx, r.Clone()))
	}
	if h.file != nil && h.file.Enabled(ctx, r.Level) {
		errs = append(errs, h.file.Handle(ctx, r))
	}
	return errors.Join(errs...)
}

func (h *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &fanout{console: h.console.WithAttrs(attrs)}
	if h.file != nil {
		out.file = h.file.WithAttrs(attrs)
	}
	return out
}

func (h *fanout) WithGroup(name string) slog.Handler {
	out := &fanout{console: h.console.WithGroup(name)}
	if h.file != nil {
		out.file = h.file.WithGroup(name)
	}
	return out
}

// slogWriter adapts the standard log package to slog at INFO.
type slogWriter struct {
	logger *slog.Logger
}

func (w *slogWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.logger.Info(msg)
	return len(p), nil
}
