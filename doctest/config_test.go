package doctest

import (
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/doctest/runtime/backend/jsvm"
	"github.com/jonwraymond/doctest/runtime/transpile/esbuild"
	"github.com/jonwraymond/doctest/sandbox"
)

func TestConfig_Validate(t *testing.T) {
	ok := func(...string) (any, error) { return nil, nil }
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"negative timeout", Config{Timeout: -time.Second}, true},
		{"bad pattern", Config{RegexRequire: []sandbox.Pattern{{Pattern: "(", Factory: ok}}}, true},
		{"pattern without factory", Config{RegexRequire: []sandbox.Pattern{{Pattern: "x"}}}, true},
		{"valid pattern", Config{RegexRequire: []sandbox.Pattern{{Pattern: "^x$", Factory: ok}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	if err := cfg.applyDefaults(); err != nil {
		t.Fatalf("applyDefaults: %v", err)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if _, ok := cfg.Evaluator.(*jsvm.Evaluator); !ok {
		t.Errorf("Evaluator = %T", cfg.Evaluator)
	}
	if _, ok := cfg.Transpiler.(*esbuild.Transpiler); !ok {
		t.Errorf("Transpiler = %T", cfg.Transpiler)
	}
}

func TestConfig_ApplyDefaultsWithoutTranspile(t *testing.T) {
	cfg := Config{NoTranspile: true, Timeout: time.Second}
	if err := cfg.applyDefaults(); err != nil {
		t.Fatalf("applyDefaults: %v", err)
	}
	if cfg.Transpiler != nil {
		t.Errorf("Transpiler = %T, want nil", cfg.Transpiler)
	}
	if cfg.Timeout != time.Second {
		t.Errorf("Timeout overwritten: %v", cfg.Timeout)
	}
}

func TestNewRunner_UnknownTarget(t *testing.T) {
	_, err := NewRunner(Config{Target: "es1999"})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestOptions(t *testing.T) {
	eval := &mockEvaluator{}
	tr := &mockTranspiler{}
	logger := &mockLogger{}
	called := false

	r, err := NewRunner(Config{Globals: map[string]any{"a": 1}},
		WithGlobals(map[string]any{"b": 2}),
		WithRequire(map[string]any{"m": "module"}),
		WithBeforeEach(func() { called = true }),
		WithTimeout(time.Minute),
		WithEvaluator(eval),
		WithTranspiler(tr),
		WithProgress(func(Status) {}),
		WithLogger(logger),
		WithoutTranspile(),
	)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	cfg := r.cfg
	if cfg.Globals["a"] != 1 || cfg.Globals["b"] != 2 {
		t.Errorf("Globals = %v", cfg.Globals)
	}
	if cfg.Require["m"] != "module" {
		t.Errorf("Require = %v", cfg.Require)
	}
	if cfg.Timeout != time.Minute || cfg.Evaluator != eval || cfg.Transpiler != tr {
		t.Errorf("options not applied: %+v", cfg)
	}
	if !cfg.NoTranspile || cfg.Progress == nil || cfg.Logger != logger {
		t.Errorf("options not applied: %+v", cfg)
	}
	cfg.BeforeEach()
	if !called {
		t.Error("BeforeEach not set")
	}
}
