package errors

import (
	"errors"
	"fmt"
)

// Exit codes for forage-assist
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitInvalidInput    = 2
	ExitConfigError     = 3
	ExitIOError         = 4
	ExitToolUnavailable = 5
	ExitPartialFailure  = 6
)

// AssistError is the base error type for forage-assist
type AssistError struct {
	Code    int
	Message string
	Cause   error
}

func (e *AssistError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AssistError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *AssistError) ExitCode() int {
	return e.Code
}

// New creates a new AssistError
func New(code int, message string) *AssistError {
	return &AssistError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AssistError
func Wrap(code int, message string, cause error) *AssistError {
	return &AssistError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// InvalidInput returns an error for bad flags or malformed input documents
func InvalidInput(message string) *AssistError {
	return New(ExitInvalidInput, message)
}

// InvalidInputf is InvalidInput with formatting
func InvalidInputf(format string, args ...any) *AssistError {
	return New(ExitInvalidInput, fmt.Sprintf(format, args...))
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *AssistError {
	return Wrap(ExitConfigError, message, cause)
}

// IOError returns an error for a required file that could not be read or written
func IOError(path string, cause error) *AssistError {
	return Wrap(ExitIOError, fmt.Sprintf("cannot access %s", path), cause)
}

// ToolUnavailable returns an error when a required external CLI is missing
func ToolUnavailable(tool string, cause error) *AssistError {
	return Wrap(ExitToolUnavailable, fmt.Sprintf("%s is not available", tool), cause)
}

// PartialFailure returns an error when some items of a batch failed
func PartialFailure(failed, total int) *AssistError {
	return New(ExitPartialFailure, fmt.Sprintf("%d of %d items failed", failed, total))
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var assistErr *AssistError
	if errors.As(err, &assistErr) {
		return assistErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
