package snippet

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Names the rewritten code relies on. The sandbox must bind the helpers.
const (
	ReturnValueName  = "__returnValue"
	DeepEqualHelper  = "__deepStrictEqual"
	NextOutputHelper = "__nextOutput"
	NextLogHelper    = "__nextLog"
	NoOutputHelper   = "__assertNoOutput"
)

type annotationKind int

const (
	annotateReturn annotationKind = iota + 1
	annotateLog
	annotateOutput
	annotateOutputBlock
)

// annotation is an assertion comment found on a line. code is the code
// preceding a trailing annotation and is empty for own-line annotations.
type annotation struct {
	kind annotationKind
	code string
	expr string
}

var (
	ownReturnPattern    = regexp.MustCompile(`^\s*//\s?=>\s?(.*\S)\s*$`)
	ownLogPattern       = regexp.MustCompile(`^\s*//\s?log\s?=>\s?(.*\S)\s*$`)
	ownOutputPattern    = regexp.MustCompile(`^\s*//\s?output:(.*)$`)
	trailingMarker      = regexp.MustCompile(`^\s?(=>|log\s?=>|output:)(.*)$`)
	continuationPattern = regexp.MustCompile(`^\s*//\s?(.*)$`)
	blockSentinel       = regexp.MustCompile(`^/\*+\s*output:\s*$`)
)

// matchAnnotation recognizes the assertion annotations on a code line.
func matchAnnotation(raw string) (annotation, bool) {
	if m := ownLogPattern.FindStringSubmatch(raw); m != nil {
		return annotation{kind: annotateLog, expr: m[1]}, true
	}
	if m := ownReturnPattern.FindStringSubmatch(raw); m != nil {
		return annotation{kind: annotateReturn, expr: m[1]}, true
	}
	if m := ownOutputPattern.FindStringSubmatch(raw); m != nil {
		return outputAnnotation("", m[1]), true
	}

	at, _ := scanComments(raw, false)
	if at < 0 {
		return annotation{}, false
	}
	code := strings.TrimSpace(raw[:at])
	m := trailingMarker.FindStringSubmatch(raw[at+2:])
	if code == "" || m == nil {
		return annotation{}, false
	}
	marker, rest := m[1], m[2]
	switch {
	case marker == "output:":
		return outputAnnotation(code, rest), true
	case strings.TrimSpace(rest) == "":
		return annotation{}, false
	case marker == "=>":
		return annotation{kind: annotateReturn, code: code, expr: strings.TrimSpace(rest)}, true
	default:
		return annotation{kind: annotateLog, code: code, expr: strings.TrimSpace(rest)}, true
	}
}

// outputAnnotation builds a single-line output assertion, or the start of an
// output block when no expected text follows the marker.
func outputAnnotation(code, rest string) annotation {
	text := strings.TrimRight(strings.TrimPrefix(rest, " "), " \t")
	if strings.TrimSpace(text) == "" {
		return annotation{kind: annotateOutputBlock, code: code}
	}
	return annotation{kind: annotateOutput, code: code, expr: text}
}

// commentOutputSentinel matches a bare "output:" line inside a block comment.
func commentOutputSentinel(trimmed string) bool {
	return trimmed == "output:"
}

// blockOutputSentinel matches "/* output:" opening an output block comment.
func blockOutputSentinel(trimmed string) bool {
	return blockSentinel.MatchString(trimmed)
}

func outputAssertion(text string) string {
	return DeepEqualHelper + "(" + NextOutputHelper + "(), " + quote(text) + ");"
}

// noOutputAssertion fails when console calls remain after an output block.
func noOutputAssertion() string {
	return NoOutputHelper + "();"
}

func logAssertion(expr string) string {
	return DeepEqualHelper + "(" + NextLogHelper + "(), [" + expr + "]);"
}

func returnAssertion(expr string) string {
	return DeepEqualHelper + "(" + ReturnValueName + ", (" + expr + "));"
}

func returnAssignment(code string) string {
	return "var " + ReturnValueName + " = " + terminate(code)
}

// withCode prefixes an assertion with the statement it annotates.
func withCode(code, assertion string) string {
	if code == "" {
		return assertion
	}
	return terminate(code) + " " + assertion
}

// terminate ends a statement with exactly one semicolon.
func terminate(code string) string {
	return strings.TrimRight(strings.TrimSpace(code), "; \t") + ";"
}

// quote renders s as a JavaScript string literal.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
