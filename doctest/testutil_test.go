package doctest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonwraymond/doctest/runtime"
)

// writeDoc writes a markdown document built from lines into a temp dir.
func writeDoc(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func newTestRunner(t *testing.T, cfg Config, opts ...Option) *Runner {
	t.Helper()
	r, err := NewRunner(cfg, opts...)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func statuses(results []Result) []Status {
	out := make([]Status, len(results))
	for i, r := range results {
		out[i] = r.Status
	}
	return out
}

// mockEvaluator is a test double for runtime.Evaluator.
type mockEvaluator struct {
	newErr   error
	evalErr  error
	bindings []map[string]any
	codes    []string
}

func (m *mockEvaluator) NewContext(bindings map[string]any) (runtime.Context, error) {
	if m.newErr != nil {
		return nil, m.newErr
	}
	m.bindings = append(m.bindings, bindings)
	return &mockContext{parent: m}, nil
}

type mockContext struct {
	parent *mockEvaluator
	closed bool
}

func (c *mockContext) Evaluate(_ context.Context, req runtime.Request) error {
	c.parent.codes = append(c.parent.codes, req.Code)
	return c.parent.evalErr
}

func (c *mockContext) Close() error {
	c.closed = true
	return nil
}

// mockTranspiler is a test double for runtime.Transpiler.
type mockTranspiler struct {
	err     error
	loaders []runtime.Loader
}

func (m *mockTranspiler) Transpile(source string, loader runtime.Loader) (string, error) {
	m.loaders = append(m.loaders, loader)
	if m.err != nil {
		return "", m.err
	}
	return "/* transpiled */ " + source, nil
}

// mockLogger records log lines.
type mockLogger struct {
	lines []string
}

func (l *mockLogger) Logf(format string, args ...any) {
	l.lines = append(l.lines, format)
	_ = args
}
