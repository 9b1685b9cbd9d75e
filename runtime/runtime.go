package runtime

import (
	"context"
	"time"
)

// Request describes a single evaluation.
type Request struct {
	// Code is the executable text.
	Code string

	// Filename names the text in stack traces. Optional.
	Filename string

	// Timeout bounds the evaluation. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Evaluator creates isolated execution contexts.
//
// Contract:
// - Isolation: contexts created by one call share no state with contexts
// created by another call, nor with the host beyond the supplied bindings.
// - Ownership: bindings are read-only to the evaluator; values reachable
// from them may be mutated by evaluated code.
type Evaluator interface {
	// NewContext returns a context in which every entry of bindings is
	// visible as a top-level name.
	NewContext(bindings map[string]any) (Context, error)
}

// Context is an execution context created by an Evaluator. Successive
// evaluations in one Context observe each other's top-level state.
//
// Contract:
// - Concurrency: a Context is owned by one caller and is not safe for
// concurrent use.
// - Context: Evaluate must honor cancellation and deadlines, returning an
// error wrapping ErrLimitExceeded when interrupted.
// - Errors: evaluation failures are returned as *CodeError.
type Context interface {
	// Evaluate runs req.Code inside the context.
	Evaluate(ctx context.Context, req Request) error

	// Close releases the context. Further evaluations are invalid.
	Close() error
}

// Loader identifies the source dialect handed to a Transpiler.
type Loader string

// Source dialects.
const (
	LoaderJS  Loader = "js"
	LoaderJSX Loader = "jsx"
	LoaderTS  Loader = "ts"
	LoaderTSX Loader = "tsx"
)

// LoaderFor maps a fence language tag to a Loader. Unknown tags map to
// LoaderJS.
func LoaderFor(lang string) Loader {
	switch lang {
	case "ts", "typescript":
		return LoaderTS
	case "tsx":
		return LoaderTSX
	case "jsx":
		return LoaderJSX
	default:
		return LoaderJS
	}
}

// Transpiler turns snippet source into executable text.
//
// Contract:
// - Errors: compile failures return *CodeError wrapping ErrTranspile, with
// the position of the first problem when known.
// - Positions: output should carry enough information (e.g. an inline
// source map) for the evaluator to report positions in the original source.
type Transpiler interface {
	Transpile(source string, loader Loader) (string, error)
}

// ConsoleSink receives console calls made by evaluated code. An evaluator
// that finds a binding implementing ConsoleSink exposes it as a console
// object whose logging methods forward their arguments, converted per the
// value conventions below.
type ConsoleSink interface {
	Log(args ...any)
}

// Function is a binding called with converted arguments. Where plain Go
// function bindings receive whatever the engine exports, a Function sees
// undefined as Undefined, null as nil, arrays as []any and plain objects as
// map[string]any, recursively. Its result is converted back the same way,
// with JSON values parsed into objects. A non-nil error is thrown into the
// evaluated code.
type Function func(args ...any) (any, error)

// Undefined is the Go representation of the script value undefined.
var Undefined = undefined{}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// JSON is an object value serialized by the engine.
type JSON string
