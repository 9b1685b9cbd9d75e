// Package jsvm provides an in-process JavaScript evaluator built on goja.
// Each context is a separate goja runtime; nothing is shared between
// contexts except values reachable from the bindings they were given.
package jsvm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/jonwraymond/doctest/runtime"
)

// ErrContextClosed is returned when evaluating in a closed context.
var ErrContextClosed = errors.New("jsvm: context closed")

// Logger is the interface for logging.
//
// Contract:
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Logf(format string, args ...any)
}

// Config configures a goja evaluator.
type Config struct {
	// Filename names evaluated code in stack traces when a request has none.
	// Default: snippet.js
	Filename string

	// MaxCallStackSize bounds recursion depth inside a context.
	// Default: 10000
	MaxCallStackSize int

	// Logger is an optional logger for evaluator events.
	Logger Logger
}

// Evaluator creates goja-backed execution contexts.
type Evaluator struct {
	filename         string
	maxCallStackSize int
	logger           Logger
}

var _ runtime.Evaluator = (*Evaluator)(nil)

// New creates a new evaluator with the given configuration.
func New(cfg Config) *Evaluator {
	filename := cfg.Filename
	if filename == "" {
		filename = "snippet.js"
	}

	maxCallStackSize := cfg.MaxCallStackSize
	if maxCallStackSize <= 0 {
		maxCallStackSize = 10000
	}

	return &Evaluator{
		filename:         filename,
		maxCallStackSize: maxCallStackSize,
		logger:           cfg.Logger,
	}
}

// Kind returns the evaluator kind identifier.
func (e *Evaluator) Kind() string {
	return "goja"
}

// NewContext creates a fresh runtime with every binding set as a global.
// A binding implementing runtime.ConsoleSink is exposed as a console object.
func (e *Evaluator) NewContext(bindings map[string]any) (runtime.Context, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	vm.SetMaxCallStackSize(e.maxCallStackSize)

	stringify, err := jsonMethod(vm, "stringify")
	if err != nil {
		return nil, err
	}
	parse, err := jsonMethod(vm, "parse")
	if err != nil {
		return nil, err
	}

	c := &jsContext{vm: vm, filename: e.filename, stringify: stringify, parse: parse}
	for name, value := range bindings {
		switch v := value.(type) {
		case runtime.ConsoleSink:
			value = c.console(v)
		case runtime.Function:
			value = c.function(v)
		}
		if err := vm.Set(name, value); err != nil {
			return nil, fmt.Errorf("jsvm: bind %q: %w", name, err)
		}
	}

	if e.logger != nil {
		e.logger.Logf("jsvm: new context with %d bindings", len(bindings))
	}
	return c, nil
}

// jsonMethod captures a JSON builtin before any snippet code can replace it.
func jsonMethod(vm *goja.Runtime, name string) (goja.Callable, error) {
	obj := vm.Get("JSON")
	if obj == nil {
		return nil, errors.New("jsvm: JSON builtin missing")
	}
	fn, ok := goja.AssertFunction(obj.ToObject(vm).Get(name))
	if !ok {
		return nil, fmt.Errorf("jsvm: JSON.%s is not a function", name)
	}
	return fn, nil
}

// maxDepth bounds structural conversion of nested or cyclic values.
const maxDepth = 64

type jsContext struct {
	vm        *goja.Runtime
	filename  string
	stringify goja.Callable
	parse     goja.Callable
}

// Evaluate runs req.Code. Cancellation of ctx, or req.Timeout elapsing,
// interrupts the running script.
func (c *jsContext) Evaluate(ctx context.Context, req runtime.Request) error {
	if c.vm == nil {
		return ErrContextClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrLimitExceeded, err)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	vm := c.vm
	vm.ClearInterrupt()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	filename := req.Filename
	if filename == "" {
		filename = c.filename
	}

	// Source-mapped positions carry 0-based columns.
	mapped := strings.Contains(req.Code, "sourceMappingURL=data:")

	prg, err := goja.Compile(filename, req.Code, false)
	if err != nil {
		return toCodeError(err, mapped)
	}
	if _, err := vm.RunProgram(prg); err != nil {
		return toCodeError(err, mapped)
	}
	return nil
}

// Close releases the runtime.
func (c *jsContext) Close() error {
	c.vm = nil
	return nil
}

// console builds a console object whose logging methods forward to sink.
func (c *jsContext) console(sink runtime.ConsoleSink) *goja.Object {
	obj := c.vm.NewObject()
	log := func(call goja.FunctionCall) goja.Value {
		args := make([]any, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = c.export(arg)
		}
		sink.Log(args...)
		return goja.Undefined()
	}
	for _, method := range []string{"log", "info", "warn", "error", "debug"} {
		_ = obj.Set(method, log)
	}
	return obj
}

// function exposes fn to script code. Arguments and the result are
// converted structurally; an error is thrown as a GoError.
func (c *jsContext) function(fn runtime.Function) func(goja.FunctionCall) goja.Value {
	vm := c.vm
	return func(call goja.FunctionCall) goja.Value {
		args := make([]any, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = c.structural(arg, 0)
		}
		out, err := fn(args...)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return c.toValue(vm, out)
	}
}

// structural converts a script value into Go values that keep undefined
// apart from null, down to maxDepth.
func (c *jsContext) structural(v goja.Value, depth int) any {
	if v == nil || goja.IsUndefined(v) {
		return runtime.Undefined
	}
	if goja.IsNull(v) {
		return nil
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return v.Export()
	}
	if _, isFunc := goja.AssertFunction(v); isFunc || depth >= maxDepth {
		return v.String()
	}
	switch obj.ClassName() {
	case "Array":
		out := make([]any, obj.Get("length").ToInteger())
		for i := range out {
			out[i] = c.structural(obj.Get(strconv.Itoa(i)), depth+1)
		}
		return out
	case "Object":
		keys := obj.Keys()
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			out[k] = c.structural(obj.Get(k), depth+1)
		}
		return out
	case "Error":
		return v.String()
	}
	return v.Export()
}

// toValue is the inverse of structural. runtime.JSON is parsed so the
// script sees a plain object.
func (c *jsContext) toValue(vm *goja.Runtime, v any) goja.Value {
	switch val := v.(type) {
	case nil:
		return goja.Null()
	case runtime.JSON:
		parsed, err := c.parse(goja.Undefined(), vm.ToValue(string(val)))
		if err != nil {
			return vm.ToValue(string(val))
		}
		return parsed
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = c.toValue(vm, item)
		}
		return vm.NewArray(items...)
	case map[string]any:
		obj := vm.NewObject()
		for k, item := range val {
			_ = obj.Set(k, c.toValue(vm, item))
		}
		return obj
	}
	if v == runtime.Undefined {
		return goja.Undefined()
	}
	return vm.ToValue(v)
}

// export converts a script value for a ConsoleSink: undefined becomes
// runtime.Undefined, null becomes nil, plain objects and arrays become
// runtime.JSON, functions and errors become their string form.
func (c *jsContext) export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) {
		return runtime.Undefined
	}
	if goja.IsNull(v) {
		return nil
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return v.Export()
	}
	if _, isFunc := goja.AssertFunction(v); isFunc || obj.ClassName() == "Error" {
		return v.String()
	}
	s, err := c.stringify(goja.Undefined(), v)
	if err != nil || s == nil || goja.IsUndefined(s) {
		return v.String()
	}
	return runtime.JSON(s.String())
}

var syntaxPosition = regexp.MustCompile(`Line (\d+):(\d+)`)

// toCodeError maps goja failures onto runtime.CodeError. mapped reports
// whether frame positions come from a source map.
func toCodeError(err error, mapped bool) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &runtime.CodeError{
			Message: fmt.Sprintf("execution interrupted: %v", interrupted.Value()),
			Err:     fmt.Errorf("%w: %v", runtime.ErrLimitExceeded, interrupted.Value()),
		}
	}

	var syntax *goja.CompilerSyntaxError
	if errors.As(err, &syntax) {
		ce := &runtime.CodeError{
			Message: "SyntaxError: " + syntax.Message,
			Err:     err,
		}
		if syntax.File != nil {
			pos := syntax.File.Position(syntax.Offset)
			ce.Line, ce.Column = pos.Line, pos.Column
		} else if m := syntaxPosition.FindStringSubmatch(syntax.Message); m != nil {
			ce.Line, _ = strconv.Atoi(m[1])
			ce.Column, _ = strconv.Atoi(m[2])
		}
		return ce
	}

	var ex *goja.Exception
	if errors.As(err, &ex) {
		ce := &runtime.CodeError{Err: err}
		if goErr := ex.Unwrap(); goErr != nil {
			ce.Message = goErr.Error()
			ce.Err = goErr
		} else if val := ex.Value(); val != nil {
			ce.Message = val.String()
		} else {
			ce.Message = ex.Error()
		}
		var b strings.Builder
		b.WriteString(ce.Message)
		frames := ex.Stack()
		for i := range frames {
			frame := &frames[i]
			pos := frame.Position()
			if pos.Line == 0 {
				fmt.Fprintf(&b, "\n\tat %s (native)", frame.FuncName())
				continue
			}
			col := pos.Column
			if mapped {
				col++
			}
			if ce.Line == 0 {
				ce.Line, ce.Column = pos.Line, col
			}
			fmt.Fprintf(&b, "\n\tat %s (%s:%d:%d)", frame.FuncName(), pos.Filename, pos.Line, col)
		}
		ce.Stack = b.String()
		return ce
	}

	return &runtime.CodeError{Message: err.Error(), Err: err}
}
