// Package system provides abstractions for OS operations to enable testing.
package system

import (
	"context"
	"strings"
	"time"
)

// Command describes a subprocess invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory; empty means the current directory.
	Dir string

	// Stdin is fed to the process when non-empty.
	Stdin string

	// Timeout bounds the run; zero means no timeout.
	Timeout time.Duration
}

// Line renders the command as it would be typed in a shell.
func (c Command) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the process exited with status 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Combined returns stdout followed by stderr.
func (r *Result) Combined() string {
	if r == nil {
		return ""
	}
	return r.Stdout + r.Stderr
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes the command and captures its output. A non-zero exit is
	// reported through Result.ExitCode; the error is reserved for processes
	// that could not be started or were killed by the timeout.
	Run(ctx context.Context, cmd Command) (*Result, error)

	// LookPath reports where an executable lives on PATH.
	LookPath(name string) (string, error)
}

var defaultExecutor CommandExecutor = &osExecutor{}

// DefaultExecutor returns the default CommandExecutor implementation.
func DefaultExecutor() CommandExecutor {
	return defaultExecutor
}
