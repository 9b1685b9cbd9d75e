// Package doctest runs the JavaScript and TypeScript snippets embedded in
// documentation and reports one result per snippet.
//
// doctest ties together the snippet parser, the sandbox and a pluggable
// evaluator. A [Runner] walks documents in order, builds a fresh sandbox for
// every snippet (or one per document when the document asks for shared
// code), optionally transpiles the snippet and evaluates it with a timeout.
//
// # Execution
//
// For each snippet the runner:
//
//   - reports skip for snippets marked with the skip directive, without
//     running them or the BeforeEach hook
//   - calls BeforeEach
//   - transpiles the code unless NoTranspile is set
//   - evaluates the code, bounded by Timeout
//
// Any error in the last two steps fails the snippet; the remaining
// snippets still run. Only a document that cannot be parsed is dropped
// entirely, and its error is returned from [Runner.Run] alongside the
// results of the other documents.
//
// # Configuration
//
// [Config] mirrors the setup file read by [LoadSetup]:
//
//	globals:
//	  name: Nick
//	require:
//	  lodash: {}
//	regexRequire:
//	  - pattern: "^lib/(.*)$"
//	    module: {}
//	transpile: true
//	target: es2015
//	timeout: 5s
//
// Evaluator and Transpiler default to the goja and esbuild backends.
package doctest
