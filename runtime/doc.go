// Package runtime defines the execution capabilities consumed by doctest.
//
// A documentation snippet passes through two pluggable stages before it is
// judged:
//
//   - [Transpiler]: turns snippet source (JavaScript, TypeScript, JSX) into
//     text the evaluator can run, or reports a compile error.
//   - [Evaluator]: creates isolated execution contexts bound to a set of
//     named values and evaluates text inside them.
//
// Backends live under runtime/backend and runtime/transpile. The package has
// no opinion on which engine is used; it only fixes the contracts and the
// error vocabulary shared by all of them.
//
// # Errors
//
// Execution failures are reported as [*CodeError], which carries the
// engine's diagnostic text and, when known, the 1-based line and column
// inside the evaluated text. CodeError matches [ErrCodeExecution] with
// errors.Is. Compile failures wrap [ErrTranspile]; interrupted runs wrap
// [ErrLimitExceeded].
//
// # Value conventions
//
// Engines hand script values to Go bindings using plain Go types. Two
// values have no natural Go counterpart and are represented explicitly:
// [Undefined] for the script's undefined, and [JSON] for an object value
// already serialized by the engine (preserving its key order). Bindings of
// type [Function] receive structurally converted arguments so assertions
// can tell undefined from null.
package runtime
