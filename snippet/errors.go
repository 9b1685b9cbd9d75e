package snippet

import (
	"errors"
	"fmt"
)

// ErrIncompleteSnippet indicates a fence that was opened but never closed.
var ErrIncompleteSnippet = errors.New("snippet parsing was incomplete")

// ParseError reports a document that could not be parsed. The document
// contributes no snippets.
type ParseError struct {
	// Path is the document path.
	Path string

	// Line is the 1-based line of the offending fence.
	Line int

	// Err is the underlying error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
