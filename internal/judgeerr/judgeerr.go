// Package judgeerr implements the run-aborting error taxonomy of a judge
// run: config problems, compilation failures, and interrupts. Per-test
// failures are local (see internal/outcome) and are never represented as
// a judgeerr.Error; only faults that abort the whole run are.
package judgeerr

import "fmt"

// Type distinguishes categories of fatal error.
type Type string

const (
	// ConfigMissing: a required input file (config, recipe, checker source)
	// could not be found or read.
	ConfigMissing Type = "CONFIG_MISSING"

	// ConfigInvalid: parse or semantic validation failed (unknown enum,
	// malformed time/size literal, redefined constant, @include of an
	// unknown name).
	ConfigInvalid Type = "CONFIG_INVALID"

	// CompilationFailed: a build driver invocation returned non-zero.
	CompilationFailed Type = "COMPILATION_FAILED"

	// CompilationTimedOut: a trusted-step compile exceeded its time limit.
	CompilationTimedOut Type = "COMPILATION_TIMED_OUT"

	// StageExecutionFailure: an FS or spawn error inside a stage. The
	// stage itself records FAILED and the pipeline continues with the
	// next test; this type is only used when the failure could not be
	// attributed to a single test (e.g. sandbox directory could not be
	// created at all).
	StageExecutionFailure Type = "STAGE_EXECUTION_FAILURE"

	// Interrupted: a keyboard interrupt or cancellation reached the top
	// of the run after every live child was killed.
	Interrupted Type = "INTERRUPTED"
)

// Error is a structured, wrappable fatal error.
type Error struct {
	Type    Type
	Message string
	Cause   error
	// Location is an optional human-readable pointer (recipe line number,
	// JSON schema path, file path) surfaced alongside Message.
	Location string
}

func (e *Error) Error() string {
	loc := ""
	if e.Location != "" {
		loc = fmt.Sprintf(" (%s)", e.Location)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s%s: %v", e.Type, e.Message, loc, e.Cause)
	}
	return fmt.Sprintf("%s: %s%s", e.Type, e.Message, loc)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with no cause.
func New(t Type, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates an Error wrapping cause.
func Wrap(t Type, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

// At attaches a location pointer (recipe line, schema path, ...) and
// returns the receiver for chaining.
func (e *Error) At(location string) *Error {
	e.Location = location
	return e
}

// Is reports whether err (or anything it wraps) has the given Type.
func Is(err error, t Type) bool {
	var je *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			je = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return je != nil && je.Type == t
}
