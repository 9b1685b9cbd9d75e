package doctest

import (
	"time"

	"github.com/jonwraymond/doctest/runtime"
)

// Option is a functional option for configuring a Runner.
type Option func(*Config)

// WithGlobals adds top-level names visible to every snippet.
func WithGlobals(globals map[string]any) Option {
	return func(c *Config) {
		if c.Globals == nil {
			c.Globals = make(map[string]any, len(globals))
		}
		for k, v := range globals {
			c.Globals[k] = v
		}
	}
}

// WithRequire adds modules resolvable by exact name.
func WithRequire(modules map[string]any) Option {
	return func(c *Config) {
		if c.Require == nil {
			c.Require = make(map[string]any, len(modules))
		}
		for k, v := range modules {
			c.Require[k] = v
		}
	}
}

// WithBeforeEach sets the hook run before every executed snippet.
func WithBeforeEach(fn func()) Option {
	return func(c *Config) {
		c.BeforeEach = fn
	}
}

// WithTimeout sets the per-snippet timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithoutTranspile evaluates snippets as written.
func WithoutTranspile() Option {
	return func(c *Config) {
		c.NoTranspile = true
	}
}

// WithEvaluator sets a custom evaluator.
func WithEvaluator(e runtime.Evaluator) Option {
	return func(c *Config) {
		c.Evaluator = e
	}
}

// WithTranspiler sets a custom transpiler.
func WithTranspiler(t runtime.Transpiler) Option {
	return func(c *Config) {
		c.Transpiler = t
	}
}

// WithProgress sets the callback receiving one status per executed snippet.
func WithProgress(fn func(Status)) Option {
	return func(c *Config) {
		c.Progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
