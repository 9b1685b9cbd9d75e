package doctest

import (
	"github.com/jonwraymond/doctest/runtime"
	"github.com/jonwraymond/doctest/sandbox"
	"github.com/jonwraymond/doctest/snippet"
)

// Sentinel errors re-exported for callers that only import doctest.
var (
	// ErrConfiguration is returned when the configuration is invalid.
	ErrConfiguration = runtime.ErrConfiguration

	// ErrLimitExceeded indicates a snippet ran past its timeout or the run
	// was canceled.
	ErrLimitExceeded = runtime.ErrLimitExceeded

	// ErrCodeExecution matches every evaluation failure.
	ErrCodeExecution = runtime.ErrCodeExecution

	// ErrTranspile matches transpilation failures.
	ErrTranspile = runtime.ErrTranspile

	// ErrIncompleteSnippet is returned for documents with an unclosed fence.
	ErrIncompleteSnippet = snippet.ErrIncompleteSnippet

	// ErrModuleNotFound matches a require call that could not be resolved.
	ErrModuleNotFound = sandbox.ErrModuleNotFound

	// ErrAssertion matches a failed assertion.
	ErrAssertion = sandbox.ErrAssertion
)
