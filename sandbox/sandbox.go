package sandbox

import (
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/jonwraymond/doctest/runtime"
	"github.com/jonwraymond/doctest/snippet"
)

// ModuleFactory builds a module for a regex require match. It receives the
// full match followed by each capture group.
type ModuleFactory func(groups ...string) (any, error)

// Pattern maps module names matching a regular expression to a factory.
type Pattern struct {
	// Pattern is the regular expression tested against the module name.
	Pattern string

	// Factory produces the module for a match.
	Factory ModuleFactory
}

// Options configures the bindings of a sandbox.
type Options struct {
	// Globals are merged into the bindings last and may shadow anything else.
	Globals map[string]any

	// Require maps exact module names to module values.
	Require map[string]any

	// RegexRequire is consulted before Require, in declaration order.
	// The first matching pattern wins.
	RegexRequire []Pattern
}

// Validate checks that every pattern compiles and has a factory.
func (o Options) Validate() error {
	for i, p := range o.RegexRequire {
		if p.Factory == nil {
			return fmt.Errorf("regexRequire[%d] %q: missing factory", i, p.Pattern)
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("regexRequire[%d]: %w", i, err)
		}
	}
	return nil
}

type compiledPattern struct {
	re      *regexp.Regexp
	err     error
	factory ModuleFactory
}

// Sandbox is the binding environment of one snippet, or of every snippet
// in a document that shares code between examples.
type Sandbox struct {
	console  *Console
	globals  map[string]any
	require  map[string]any
	patterns []compiledPattern
	module   map[string]any
}

// New returns a fresh sandbox. Invalid patterns surface when require
// reaches them; call Options.Validate to reject them up front.
func New(opts Options) *Sandbox {
	patterns := make([]compiledPattern, 0, len(opts.RegexRequire))
	for _, p := range opts.RegexRequire {
		re, err := regexp.Compile(p.Pattern)
		patterns = append(patterns, compiledPattern{re: re, err: err, factory: p.Factory})
	}
	return &Sandbox{
		console:  NewConsole(),
		globals:  opts.Globals,
		require:  opts.Require,
		patterns: patterns,
		module:   map[string]any{"exports": map[string]any{}},
	}
}

// Console returns the sandbox console.
func (s *Sandbox) Console() *Console {
	return s.console
}

// Require resolves a module name. Regex patterns are tried first in
// declaration order, then exact names.
func (s *Sandbox) Require(name string) (any, error) {
	for _, p := range s.patterns {
		if p.err != nil {
			return nil, p.err
		}
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if p.factory == nil {
			return nil, &ModuleNotFoundError{Name: name}
		}
		return p.factory(m...)
	}
	if mod, ok := s.require[name]; ok {
		return mod, nil
	}
	return nil, &ModuleNotFoundError{Name: name}
}

// Bindings returns the top-level names visible to snippet code. The
// assertion helpers are runtime.Function values so that undefined and null
// stay distinct when compared.
func (s *Sandbox) Bindings() map[string]any {
	b := map[string]any{
		"require": s.Require,
		"console": s.console,
		"module":  s.module,
		"exports": s.module["exports"],
		snippet.DeepEqualHelper: runtime.Function(func(args ...any) (any, error) {
			return runtime.Undefined, DeepEqual(arg(args, 0), arg(args, 1))
		}),
		snippet.NextOutputHelper: runtime.Function(func(...any) (any, error) {
			return s.NextOutput()
		}),
		snippet.NextLogHelper: runtime.Function(func(...any) (any, error) {
			return s.NextLog()
		}),
		snippet.NoOutputHelper: runtime.Function(func(...any) (any, error) {
			return runtime.Undefined, s.AssertNoOutput()
		}),
	}
	maps.Copy(b, s.globals)
	return b
}

// NextOutput shifts the oldest console call and renders it the way a
// terminal would show it.
func (s *Sandbox) NextOutput() (string, error) {
	call, ok := s.console.Shift()
	if !ok {
		return "", &AssertionError{Message: "expected console output but nothing was logged"}
	}
	return FormatArgs(call), nil
}

// NextLog shifts the oldest console call and returns its arguments as the
// console received them.
func (s *Sandbox) NextLog() ([]any, error) {
	call, ok := s.console.Shift()
	if !ok {
		return nil, &AssertionError{Message: "expected a console call but nothing was logged"}
	}
	return call, nil
}

// AssertNoOutput fails when console calls are still queued, listing them.
func (s *Sandbox) AssertNoOutput() error {
	n := s.console.Len()
	if n == 0 {
		return nil
	}
	var b strings.Builder
	for {
		call, ok := s.console.Shift()
		if !ok {
			break
		}
		b.WriteString("\n  " + FormatArgs(call))
	}
	return &AssertionError{Message: fmt.Sprintf("expected no more console output but got %d more call(s):%s", n, b.String())}
}

// arg returns args[i], or Undefined when the call passed fewer arguments.
func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return runtime.Undefined
}
