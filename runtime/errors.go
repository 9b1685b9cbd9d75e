package runtime

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrCodeExecution indicates an error raised while evaluating a snippet,
	// such as a thrown exception or a failed assertion.
	ErrCodeExecution = errors.New("code execution error")

	// ErrTranspile indicates the snippet could not be transpiled.
	ErrTranspile = errors.New("transpile error")

	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrLimitExceeded indicates that an execution limit was reached,
	// such as the per-snippet timeout.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// CodeError represents an error that occurred while evaluating or compiling
// a snippet. It includes optional source location information relative to
// the evaluated text.
type CodeError struct {
	// Message describes the error, e.g. "ReferenceError: x is not defined".
	Message string

	// Stack is the engine's full diagnostic text, including stack frames.
	// Empty when the engine reports none.
	Stack string

	// Line is the 1-based line number where the error occurred.
	// Zero indicates the line is unknown.
	Line int

	// Column is the 1-based column number where the error occurred.
	// Zero indicates the column is unknown.
	Column int

	// Err is the underlying error, if any.
	Err error
}

// Error returns the error message, including line and column if available.
func (e *CodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}

// Diagnostic returns the full diagnostic text, falling back to Message.
func (e *CodeError) Diagnostic() string {
	if e.Stack != "" {
		return e.Stack
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *CodeError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target.
// CodeError matches ErrCodeExecution to allow sentinel-style error checking.
func (e *CodeError) Is(target error) bool {
	return target == ErrCodeExecution
}
