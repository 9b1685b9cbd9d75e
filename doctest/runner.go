package doctest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/doctest/runtime"
	"github.com/jonwraymond/doctest/sandbox"
	"github.com/jonwraymond/doctest/snippet"
)

// Runner executes parsed snippets and collects their results.
//
// Contract:
// - Concurrency: a Runner may be shared, but each call runs its snippets
// sequentially in source order.
// - Context: cancellation interrupts the running snippet and fails every
// remaining one with ErrLimitExceeded.
// - Errors: configuration failures return ErrConfiguration; only parse
// failures are returned from Run, everything else becomes a fail Result.
// - Ownership: Config maps are shared with the sandboxes, so snippets may
// mutate values reachable from them.
type Runner struct {
	cfg Config
}

// NewRunner creates a Runner from cfg with opts applied on top.
// Returns ErrConfiguration if the configuration is invalid.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg}, nil
}

// RunTests runs every snippet in the documents at paths with cfg.
func RunTests(ctx context.Context, paths []string, cfg Config) ([]Result, error) {
	r, err := NewRunner(cfg)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, paths)
}

// Run parses and runs the documents at paths in order. A document that
// cannot be read or parsed contributes no results; its error is logged and
// joined into the returned error while the other documents still run.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)
	for _, path := range paths {
		file, err := snippet.ParseFile(path)
		if err != nil {
			r.logf("doctest: %v", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, r.RunFile(ctx, file)...)
	}
	return results, errors.Join(errs...)
}

// RunFile runs the snippets of one parsed document, yielding exactly one
// Result per snippet in source order.
func (r *Runner) RunFile(ctx context.Context, file snippet.File) []Result {
	start := time.Now()
	results := make([]Result, 0, len(file.Snippets))

	if file.ShareSandbox {
		results = r.runShared(ctx, file)
	} else {
		for _, s := range file.Snippets {
			results = append(results, r.runIsolated(ctx, s))
		}
	}

	r.logf("doctest: %s: %d snippets in %dms", file.Path, len(results), time.Since(start).Milliseconds())
	return results
}

// RunSnippet runs one snippet against env in a new execution context.
// A nil env gets a fresh sandbox.
func (r *Runner) RunSnippet(ctx context.Context, s snippet.Snippet, env *sandbox.Sandbox) Result {
	if s.Skip {
		return r.skip(s)
	}
	r.beforeEach()
	if env == nil {
		env = r.newSandbox()
	}
	return r.evaluateIn(ctx, s, env)
}

func (r *Runner) runIsolated(ctx context.Context, s snippet.Snippet) Result {
	return r.RunSnippet(ctx, s, nil)
}

// runShared evaluates every snippet of file in one sandbox and one
// execution context, so top-level state carries over.
func (r *Runner) runShared(ctx context.Context, file snippet.File) []Result {
	results := make([]Result, 0, len(file.Snippets))
	env := r.newSandbox()

	var (
		vm      runtime.Context
		initErr error
	)
	defer func() {
		if vm != nil {
			_ = vm.Close()
		}
	}()

	for _, s := range file.Snippets {
		if s.Skip {
			results = append(results, r.skip(s))
			continue
		}
		r.beforeEach()
		if vm == nil && initErr == nil {
			vm, initErr = r.cfg.Evaluator.NewContext(env.Bindings())
		}
		if initErr != nil {
			results = append(results, r.finish(r.failure(s, initErr)))
			continue
		}
		results = append(results, r.execute(ctx, s, vm))
	}
	return results
}

func (r *Runner) evaluateIn(ctx context.Context, s snippet.Snippet, env *sandbox.Sandbox) Result {
	vm, err := r.cfg.Evaluator.NewContext(env.Bindings())
	if err != nil {
		return r.finish(r.failure(s, err))
	}
	defer vm.Close()
	return r.execute(ctx, s, vm)
}

// execute transpiles and evaluates s in vm.
func (r *Runner) execute(ctx context.Context, s snippet.Snippet, vm runtime.Context) Result {
	code := s.Code
	if !r.cfg.NoTranspile && r.cfg.Transpiler != nil {
		out, err := r.cfg.Transpiler.Transpile(code, runtime.LoaderFor(s.Lang))
		if err != nil {
			return r.finish(r.failure(s, err))
		}
		code = out
	}

	err := vm.Evaluate(ctx, runtime.Request{Code: code, Timeout: r.cfg.Timeout})
	if err == nil {
		return r.finish(Result{Status: StatusPass, Snippet: s})
	}
	if errors.Is(err, ErrLimitExceeded) {
		err = r.limitError(ctx, err)
	}
	return r.finish(r.failure(s, err))
}

// limitError rewrites an interrupted evaluation into a timeout or
// cancellation failure that keeps the original error in its chain.
func (r *Runner) limitError(ctx context.Context, err error) error {
	msg := fmt.Sprintf("Error: timeout after %v", r.cfg.Timeout)
	if ctx.Err() != nil {
		msg = fmt.Sprintf("Error: run canceled: %v", ctx.Err())
	}
	return &runtime.CodeError{Message: msg, Err: err}
}

func (r *Runner) failure(s snippet.Snippet, err error) Result {
	diagnostic := err.Error()
	var ce *runtime.CodeError
	if errors.As(err, &ce) {
		diagnostic = ce.Diagnostic()
	}
	return Result{Status: StatusFail, Snippet: s, Diagnostic: diagnostic, Err: err}
}

func (r *Runner) skip(s snippet.Snippet) Result {
	r.logf("doctest: %s: skipped", s.Location())
	return Result{Status: StatusSkip, Snippet: s}
}

// finish reports progress for an executed snippet.
func (r *Runner) finish(res Result) Result {
	if res.Status == StatusFail {
		r.logf("doctest: %s: %v", res.Snippet.Location(), res.Err)
	}
	if r.cfg.Progress != nil {
		r.cfg.Progress(res.Status)
	}
	return res
}

func (r *Runner) beforeEach() {
	if r.cfg.BeforeEach != nil {
		r.cfg.BeforeEach()
	}
}

func (r *Runner) newSandbox() *sandbox.Sandbox {
	return sandbox.New(r.cfg.sandboxOptions())
}

func (r *Runner) logf(format string, args ...any) {
	if r.cfg.Logger != nil {
		r.cfg.Logger.Logf(format, args...)
	}
}
