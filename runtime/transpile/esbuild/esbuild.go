// Package esbuild provides a Transpiler backed by esbuild's transform API.
// TypeScript, JSX and modern syntax are lowered to the configured target,
// ES module syntax is rewritten to CommonJS so imports resolve through
// require, and an inline source map keeps reported positions pointing at
// the original snippet.
package esbuild

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/jonwraymond/doctest/runtime"
)

// ErrUnknownTarget is returned for a target name esbuild does not know.
var ErrUnknownTarget = errors.New("unknown transpile target")

// DefaultTarget is used when Config.Target is empty.
const DefaultTarget = "es2015"

var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es6":    api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

var loaders = map[runtime.Loader]api.Loader{
	runtime.LoaderJS:  api.LoaderJS,
	runtime.LoaderJSX: api.LoaderJSX,
	runtime.LoaderTS:  api.LoaderTS,
	runtime.LoaderTSX: api.LoaderTSX,
}

// Config configures the transpiler.
type Config struct {
	// Target is the language level of the output, e.g. "es2015".
	// Default: es2015
	Target string

	// Sourcefile names the input in source maps and messages.
	// Default: snippet.js
	Sourcefile string
}

// Transpiler implements runtime.Transpiler.
type Transpiler struct {
	target     api.Target
	sourcefile string
}

var _ runtime.Transpiler = (*Transpiler)(nil)

// New creates a transpiler. It fails with ErrUnknownTarget wrapped in
// runtime.ErrConfiguration when the target is not recognized.
func New(cfg Config) (*Transpiler, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Target))
	if name == "" {
		name = DefaultTarget
	}
	target, ok := targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w %q", runtime.ErrConfiguration, ErrUnknownTarget, cfg.Target)
	}

	sourcefile := cfg.Sourcefile
	if sourcefile == "" {
		sourcefile = "snippet.js"
	}

	return &Transpiler{target: target, sourcefile: sourcefile}, nil
}

// Transpile converts source written in the given dialect. Compile errors
// are returned as *runtime.CodeError wrapping runtime.ErrTranspile and
// positioned at the first reported problem.
func (t *Transpiler) Transpile(source string, loader runtime.Loader) (string, error) {
	l, ok := loaders[loader]
	if !ok {
		l = api.LoaderJS
	}

	result := api.Transform(source, api.TransformOptions{
		Loader:     l,
		Target:     t.target,
		Format:     api.FormatCommonJS,
		Sourcemap:  api.SourceMapInline,
		Sourcefile: t.sourcefile,
	})
	if len(result.Errors) > 0 {
		return "", toCodeError(result.Errors)
	}
	return string(result.Code), nil
}

func toCodeError(msgs []api.Message) *runtime.CodeError {
	first := msgs[0]
	ce := &runtime.CodeError{
		Message: "SyntaxError: " + first.Text,
		Err:     runtime.ErrTranspile,
	}

	var b strings.Builder
	b.WriteString(ce.Message)
	if loc := first.Location; loc != nil {
		ce.Line = loc.Line
		ce.Column = loc.Column + 1
		fmt.Fprintf(&b, "\n\tat %s:%d:%d", loc.File, ce.Line, ce.Column)
		if loc.LineText != "" {
			fmt.Fprintf(&b, "\n\n%s", loc.LineText)
		}
	}
	for _, m := range msgs[1:] {
		b.WriteString("\n" + m.Text)
	}
	ce.Stack = b.String()
	return ce
}
