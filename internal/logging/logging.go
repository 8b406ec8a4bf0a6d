package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/kballard/go-shellquote"
)

var (
	// Logger is the global structured logger
	Logger *slog.Logger

	// Verbose enables debug logging
	Verbose bool
)

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// Setup configures the logger based on verbosity and output preferences.
// Without verbose only warnings and errors are logged, so piped JSON and
// markdown output stays clean.
func Setup(verbose bool, jsonOutput bool, w io.Writer) {
	Verbose = verbose

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if w == nil {
		w = os.Stderr
	}

	if jsonOutput {
		Logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		Logger = slog.New(slog.NewTextHandler(w, opts))
	}
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// With returns a logger with additional attributes
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}

// Command logs a subprocess invocation at debug level as a copy-pasteable
// shell line.
func Command(dir, name string, args ...string) {
	if !Logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	Logger.Debug("exec", "dir", dir, "cmd", QuoteCommand(name, args...))
}

// QuoteCommand renders a command and its arguments as a shell-quoted line.
func QuoteCommand(name string, args ...string) string {
	return shellquote.Join(append([]string{name}, args...)...)
}
