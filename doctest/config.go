package doctest

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/doctest/runtime"
	"github.com/jonwraymond/doctest/runtime/backend/jsvm"
	"github.com/jonwraymond/doctest/runtime/transpile/esbuild"
	"github.com/jonwraymond/doctest/sandbox"
)

// DefaultTimeout bounds each snippet when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config holds the configuration for a Runner.
type Config struct {
	// Globals are visible to every snippet as top-level names.
	Globals map[string]any

	// Require maps module names to the values require returns.
	Require map[string]any

	// RegexRequire resolves module names by pattern, before Require.
	// The first matching pattern wins.
	RegexRequire []sandbox.Pattern

	// BeforeEach runs immediately before every snippet that is not skipped.
	BeforeEach func()

	// NoTranspile evaluates snippet code as written.
	NoTranspile bool

	// Target is the language level passed to the default transpiler.
	// Ignored when Transpiler is set.
	Target string

	// Timeout bounds the evaluation of one snippet.
	// Defaults to DefaultTimeout.
	Timeout time.Duration

	// Evaluator runs snippet code. Defaults to the goja backend.
	Evaluator runtime.Evaluator

	// Transpiler converts snippet code before evaluation. Defaults to the
	// esbuild backend unless NoTranspile is set.
	Transpiler runtime.Transpiler

	// Progress is called once per snippet that is not skipped, right after
	// it finishes.
	Progress func(Status)

	// Logger is an optional logger for observability.
	Logger Logger
}

// Validate checks the configuration.
// Returns ErrConfiguration if any field is invalid.
func (c *Config) Validate() error {
	var problems []string

	if c.Timeout < 0 {
		problems = append(problems, "Timeout must not be negative")
	}
	opts := c.sandboxOptions()
	if err := opts.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, ", "))
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() error {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Evaluator == nil {
		c.Evaluator = jsvm.New(jsvm.Config{Logger: c.Logger})
	}
	if c.Transpiler == nil && !c.NoTranspile {
		t, err := esbuild.New(esbuild.Config{Target: c.Target})
		if err != nil {
			return err
		}
		c.Transpiler = t
	}
	return nil
}

func (c *Config) sandboxOptions() sandbox.Options {
	return sandbox.Options{
		Globals:      c.Globals,
		Require:      c.Require,
		RegexRequire: c.RegexRequire,
	}
}
