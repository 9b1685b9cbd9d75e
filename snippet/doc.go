// Package snippet extracts executable code snippets from documentation.
//
// A document is consumed line by line by a small state machine ([State]).
// Each line is classified (fence open, fence close, directive, assertion
// annotation, comment marker, plain code) and folded into the state; no
// line is ever revisited. The result is a [File]: the ordered snippets of
// one document plus document-wide directives.
//
// # Fences
//
// Fences tagged js, javascript, es6, mjs, cjs, jsx, ts, typescript or tsx
// (case-insensitive) become snippets. Blocks with any other tag, or none,
// are skipped entirely.
//
// # Directives
//
// Two HTML comments, each on its own line outside a fence, steer the run:
//
//	<!-- skip-example -->                  skip the next snippet
//	<!-- share-code-between-examples -->   run every snippet of the document in one sandbox
//
// # Annotations
//
// Inline annotations are rewritten into assertion calls against helpers
// provided by the sandbox:
//
//	1 + 1 // => 2                 return-value assertion
//	console.log("hi") // output: hi
//	console.log(1, 2) // log => 1, 2
//
// A line reading "// output:" (or "output:" inside a block comment) starts
// a run of expected output lines, one assertion per line.
//
// Every rewrite emits exactly one line for each line consumed, so line N of
// a snippet's Code is always document line Snippet.Line+N.
package snippet
