// Package sandbox builds the binding environment a snippet executes
// against.
//
// A [Sandbox] bundles:
//
//   - require: resolves modules through the configured regex patterns, in
//     declaration order, then through exact names.
//   - console: a shim whose logging methods queue their arguments (FIFO)
//     instead of printing them.
//   - the assertion helpers targeted by rewritten snippet code
//     (__deepStrictEqual, __nextOutput, __nextLog).
//   - module and exports objects for CommonJS-style code.
//   - caller globals, merged last.
//
// A [Factory] validates configuration once and stamps out fresh sandboxes;
// callers decide whether a sandbox lives for one snippet or a whole
// document.
package sandbox
