// Package logging provides logging utilities for forage-assist.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted status lines for end users
//
// # Debug Logging
//
// Debug logs are written to stderr using slog and controlled by --verbose:
//
//	logging.Debug("reading candidate", "path", path)
//	logging.Command(dir, "gh", "pr", "checks", "42")
//
// # User Output
//
//	logging.UserInfo("Type checking...")
//	logging.UserSuccess("Created %s", url)
//	logging.UserWarning("gh is not authenticated")
//	logging.UserError("Issue creation failed for %s", id)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// Commands whose primary output is a document (JSON or markdown on stdout)
// report progress with UserWarning/UserError or route UserInfo elsewhere
// via SetUserOutput.
package logging
