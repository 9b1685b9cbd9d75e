package snippet

import (
	"regexp"
	"slices"
	"strings"
)

// Directives recognized outside fences.
const (
	SkipDirective  = "<!-- skip-example -->"
	ShareDirective = "<!-- share-code-between-examples -->"
)

const fenceMarker = "```"

var openFence = regexp.MustCompile("(?i)^```\\W*(javascript|js|es6|mjs|cjs|jsx|typescript|ts|tsx)\\s*$")

// Fence is the parser's position relative to fenced blocks.
type Fence int

const (
	// FenceNone is outside any fenced block.
	FenceNone Fence = iota
	// FenceSnippet is inside a recognized snippet.
	FenceSnippet
	// FenceForeign is inside a block in another language; its lines are ignored.
	FenceForeign
)

// State is the parser state threaded through every line of a document.
// Next never mutates its receiver, so a State can be kept and replayed.
type State struct {
	// Path is the document path stamped on every snippet.
	Path string

	// Snippets collected so far, in source order.
	Snippets []Snippet

	// ShareSandbox is sticky once a share directive is seen.
	ShareSandbox bool

	// PendingSkip applies to the next fence opening only.
	PendingSkip bool

	// Fence tracks whether a fenced block is open.
	Fence Fence

	// InComment is set inside a /* */ block comment within a snippet.
	InComment bool

	// InOutput is set while consuming expected output lines.
	InOutput bool

	// Expected counts the expected output lines of the open output block.
	Expected int

	// Lines is the number of lines consumed.
	Lines int
}

// NewState returns the initial state for the document at path.
func NewState(path string) State {
	return State{Path: path}
}

// Parse splits doc into lines, folds them through a State and returns the
// resulting File. A document with an unterminated snippet fence fails with
// a *ParseError wrapping ErrIncompleteSnippet and yields no snippets.
func Parse(doc Document) (File, error) {
	state := NewState(doc.Path)
	for _, line := range strings.Split(doc.Text, "\n") {
		state = state.Next(line)
	}
	return state.Finish()
}

// Next classifies one line and returns the updated state.
func (s State) Next(line string) State {
	s.Lines++
	raw := strings.TrimSuffix(line, "\r")
	trimmed := strings.TrimSpace(raw)

	switch s.Fence {
	case FenceForeign:
		if trimmed == fenceMarker {
			s.Fence = FenceNone
		}
		return s

	case FenceSnippet:
		if m := openFence.FindStringSubmatch(trimmed); m != nil {
			return s.open(m[1])
		}
		if trimmed == fenceMarker {
			return s.close()
		}
		return s.code(raw, trimmed)
	}

	if m := openFence.FindStringSubmatch(trimmed); m != nil {
		return s.open(m[1])
	}
	switch {
	case trimmed == fenceMarker:
		// A bare fence with no snippet open starts an untagged block.
		s.Fence = FenceForeign
	case strings.HasPrefix(trimmed, fenceMarker):
		s.Fence = FenceForeign
	case trimmed == SkipDirective:
		s.PendingSkip = true
	case trimmed == ShareDirective:
		s.ShareSandbox = true
	}
	return s
}

// Finish validates the final state and returns the parsed File.
func (s State) Finish() (File, error) {
	for _, sn := range s.Snippets {
		if !sn.Complete {
			return File{}, &ParseError{Path: s.Path, Line: sn.Line, Err: ErrIncompleteSnippet}
		}
	}
	return File{
		Path:         s.Path,
		Snippets:     slices.Clone(s.Snippets),
		ShareSandbox: s.ShareSandbox,
	}, nil
}

func (s State) open(lang string) State {
	s.Snippets = append(slices.Clip(s.Snippets), Snippet{
		Path: s.Path,
		Line: s.Lines,
		Lang: strings.ToLower(lang),
		Skip: s.PendingSkip,
	})
	s.PendingSkip = false
	s.Fence = FenceSnippet
	s.InComment = false
	s.InOutput = false
	s.Expected = 0
	return s
}

func (s State) close() State {
	if s.InOutput {
		s = s.endOutput()
	}
	s = s.withLast(func(sn *Snippet) { sn.Complete = true })
	s.Fence = FenceNone
	s.InComment = false
	s.InOutput = false
	return s
}

// startOutput begins an output block.
func (s State) startOutput() State {
	s.InOutput = true
	s.Expected = 0
	return s
}

// endOutput closes a line-comment output block. Once the block expected any
// output, its last line also asserts that no console calls remain.
func (s State) endOutput() State {
	if !s.InComment && s.Expected > 0 {
		s = s.withLast(func(sn *Snippet) {
			sn.Code = strings.TrimSuffix(sn.Code, "\n") + " " + noOutputAssertion() + "\n"
		})
	}
	s.InOutput = false
	s.Expected = 0
	return s
}

// current reports whether an open snippet can receive lines.
func (s State) current() (Snippet, bool) {
	if len(s.Snippets) == 0 {
		return Snippet{}, false
	}
	last := s.Snippets[len(s.Snippets)-1]
	return last, !last.Complete
}

// withLast returns a copy of s whose open snippet has been updated by fn.
// It is a no-op when no snippet is open.
func (s State) withLast(fn func(*Snippet)) State {
	last, ok := s.current()
	if !ok {
		return s
	}
	fn(&last)
	snippets := slices.Clone(s.Snippets)
	snippets[len(snippets)-1] = last
	s.Snippets = snippets
	return s
}

func (s State) appendLine(line string) State {
	return s.withLast(func(sn *Snippet) { sn.Code += line + "\n" })
}

// code handles a line inside a snippet fence.
func (s State) code(raw, trimmed string) State {
	if s.InOutput {
		if next, ok := s.outputLine(raw, trimmed); ok {
			return next
		}
		s = s.endOutput()
	}

	if s.InComment {
		if commentOutputSentinel(trimmed) {
			s = s.startOutput()
		}
		s.InComment = commentOpenAfter(raw, true)
		return s.appendLine(raw)
	}

	if a, ok := matchAnnotation(raw); ok {
		return s.annotate(a, raw)
	}

	if strings.HasPrefix(trimmed, "/*") && blockOutputSentinel(trimmed) {
		s = s.startOutput()
		s.InComment = true
		return s.appendLine(raw)
	}

	s.InComment = commentOpenAfter(raw, false)
	return s.appendLine(raw)
}

// outputLine consumes one expected-output line. It reports false when the
// line does not continue the run and must be classified afresh.
func (s State) outputLine(raw, trimmed string) (State, bool) {
	indent := leadingSpace(raw)

	if s.InComment {
		if before, ok := strings.CutSuffix(trimmed, "*/"); ok {
			line := indent + "*/"
			if text := strings.TrimSpace(before); text != "" {
				line += " " + outputAssertion(text)
				s.Expected++
			}
			if s.Expected == 0 {
				line = raw
			} else {
				line += " " + noOutputAssertion()
			}
			s.InComment = false
			s.InOutput = false
			s.Expected = 0
			return s.appendLine(line), true
		}
		if trimmed == "" {
			return s.appendLine(raw), true
		}
		s.Expected++
		return s.appendLine(indent + "*/ " + outputAssertion(trimmed) + " /*"), true
	}

	m := continuationPattern.FindStringSubmatch(raw)
	if m == nil {
		return s, false
	}
	s.Expected++
	return s.appendLine(indent + outputAssertion(strings.TrimRight(m[1], " \t"))), true
}

// annotate applies an assertion annotation found on raw.
func (s State) annotate(a annotation, raw string) State {
	indent := leadingSpace(raw)

	switch a.kind {
	case annotateReturn:
		if a.code != "" {
			return s.appendLine(indent + returnAssignment(a.code) + " " + returnAssertion(a.expr))
		}
		return s.rewriteLastLine(raw, a.expr)

	case annotateLog:
		return s.appendLine(indent + withCode(a.code, logAssertion(a.expr)))

	case annotateOutput:
		return s.appendLine(indent + withCode(a.code, outputAssertion(a.expr)))

	case annotateOutputBlock:
		s = s.startOutput()
		if a.code != "" {
			return s.appendLine(indent + terminate(a.code))
		}
		return s.appendLine(raw)
	}
	return s.appendLine(raw)
}

// rewriteLastLine turns the last non-blank line of the open snippet into an
// assignment to __returnValue and emits the comparison in place of the
// annotation line. Without such a line the annotation is kept as a comment.
func (s State) rewriteLastLine(raw, expr string) State {
	last, ok := s.current()
	if !ok {
		return s
	}
	lines := strings.Split(strings.TrimSuffix(last.Code, "\n"), "\n")
	target := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			target = i
			break
		}
	}
	if last.Code == "" || target < 0 {
		return s.appendLine(raw)
	}

	line := lines[target]
	lines[target] = leadingSpace(line) + returnAssignment(strings.TrimSpace(line))
	code := strings.Join(lines, "\n") + "\n"

	s = s.withLast(func(sn *Snippet) { sn.Code = code })
	return s.appendLine(leadingSpace(raw) + returnAssertion(expr))
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
