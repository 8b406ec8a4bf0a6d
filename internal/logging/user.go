package logging

import (
	"fmt"
	"io"
	"os"
)

// User-facing output functions with status prefixes.
// These write to stdout/stderr directly for CLI output,
// separate from the structured debug logging.

var (
	// Stdout receives UserInfo and UserSuccess lines.
	Stdout io.Writer = os.Stdout
	// Stderr receives UserWarning and UserError lines.
	Stderr io.Writer = os.Stderr
)

// SetUserOutput redirects user-facing output; nil restores the default stream.
func SetUserOutput(stdout, stderr io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	Stdout = stdout
	Stderr = stderr
}

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, "ℹ "+format+"\n", args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, "✓ "+format+"\n", args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, "⚠ "+format+"\n", args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, "✗ "+format+"\n", args...)
}
