// Package errors provides typed errors with exit codes for forage-assist.
//
// Domain code degrades to neutral results when an external tool is missing
// or emits malformed output; only CLI input problems, unreadable required
// inputs and batch operations with failed items surface as an AssistError.
//
// # Exit Codes
//
//	ExitSuccess         = 0  // Success, including degraded analysis results
//	ExitGeneralError    = 1  // General/unknown errors
//	ExitInvalidInput    = 2  // Bad flags or malformed input documents
//	ExitConfigError     = 3  // Configuration error
//	ExitIOError         = 4  // Required input/output file inaccessible
//	ExitToolUnavailable = 5  // Required external CLI missing
//	ExitPartialFailure  = 6  // Some items of a batch failed
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
