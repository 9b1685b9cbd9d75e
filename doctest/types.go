package doctest

import (
	"github.com/jonwraymond/doctest/snippet"
)

// Status is the outcome of one snippet.
type Status string

// Snippet outcomes.
const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Marker returns the progress marker for s: "." for pass, "x" for fail and
// nothing for skip.
func (s Status) Marker() string {
	switch s {
	case StatusPass:
		return "."
	case StatusFail:
		return "x"
	default:
		return ""
	}
}

// Past returns the past tense of s as used in summaries, e.g. "skipped".
func (s Status) Past() string {
	switch s {
	case StatusPass:
		return "passed"
	case StatusFail:
		return "failed"
	case StatusSkip:
		return "skipped"
	default:
		return string(s)
	}
}

// Result is the outcome of running one snippet.
type Result struct {
	// Status is pass, fail or skip.
	Status Status `json:"status"`

	// Snippet is the snippet that produced the result.
	Snippet snippet.Snippet `json:"snippet"`

	// Diagnostic is the failure text, including stack frames when the
	// evaluator reports them. Empty unless Status is fail.
	Diagnostic string `json:"diagnostic,omitempty"`

	// Err is the underlying failure. Nil unless Status is fail.
	Err error `json:"-"`
}
