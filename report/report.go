package report

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonwraymond/doctest/doctest"
	"github.com/jonwraymond/doctest/runtime"
)

var (
	positionPattern  = regexp.MustCompile(`:(\d+):(\d+)`)
	frameLine        = regexp.MustCompile(`^\s+at `)
	undefinedPattern = regexp.MustCompile(`(\w+) is not defined`)
)

// Failure describes one failed snippet.
type Failure struct {
	// Location is "path:line" or "path:line:col" in the document.
	Location string `json:"location"`

	// Details is the diagnostic without stack frames.
	Details string `json:"details"`

	// Hint is set when the failure names an undefined variable.
	Hint string `json:"hint,omitempty"`

	// Undefined is the undefined variable named by the failure, if any.
	Undefined string `json:"undefined,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Passed   int       `json:"passed"`
	Failed   int       `json:"failed"`
	Skipped  int       `json:"skipped"`
	Failures []Failure `json:"failures,omitempty"`
}

// OK reports whether nothing failed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Aggregate counts results and describes each failure.
func Aggregate(results []doctest.Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case doctest.StatusPass:
			s.Passed++
		case doctest.StatusSkip:
			s.Skipped++
		case doctest.StatusFail:
			s.Failed++
			s.Failures = append(s.Failures, describe(r))
		}
	}
	return s
}

func describe(r doctest.Result) Failure {
	diagnostic := r.Diagnostic
	if diagnostic == "" && r.Err != nil {
		diagnostic = r.Err.Error()
	}
	f := Failure{
		Location: Location(r),
		Details:  relevantDetails(diagnostic),
	}
	if m := undefinedPattern.FindStringSubmatch(f.Details); m != nil {
		f.Undefined = m[1]
		f.Hint = fmt.Sprintf("You can declare %s in the globals section in %s", m[1], doctest.DefaultSetupFile)
	}
	return f
}

// Location returns the document position of a failure. The position of the
// error inside the snippet is added to the fence line when known.
func Location(r doctest.Result) string {
	s := r.Snippet
	var ce *runtime.CodeError
	if errors.As(r.Err, &ce) && ce.Line > 0 {
		return fmt.Sprintf("%s:%d:%d", s.Path, s.Line+ce.Line, ce.Column)
	}
	if m := positionPattern.FindStringSubmatch(r.Diagnostic); m != nil {
		line, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%s:%d:%s", s.Path, s.Line+line, m[2])
	}
	return s.Location()
}

// relevantDetails cuts the diagnostic at its first stack frame.
func relevantDetails(diagnostic string) string {
	lines := strings.Split(diagnostic, "\n")
	for i, line := range lines {
		if frameLine.MatchString(line) {
			lines = lines[:i]
			break
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
}

type styles struct {
	pass, fail, skip, accent, muted lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		pass:   r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")),
		skip:   r.NewStyle().Foreground(lipgloss.Color("3")),
		accent: r.NewStyle().Foreground(lipgloss.Color("4")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// label title-cases a status verb. A Caser is stateful, so each call gets
// its own.
func label(s string) string {
	return cases.Title(language.English).String(s)
}

// Print writes failures and totals to w and reports whether the run
// succeeded.
func Print(w io.Writer, results []doctest.Result) bool {
	summary := Aggregate(results)
	st := newStyles(w)

	for _, f := range summary.Failures {
		fmt.Fprintln(w, st.fail.Render(label(doctest.StatusFail.Past())+" - "+f.Location))
		fmt.Fprintln(w, f.Details)
		if f.Undefined != "" {
			printHint(w, st, f.Undefined)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, total(st, doctest.StatusPass, summary.Passed))
	if summary.Skipped > 0 {
		fmt.Fprintln(w, total(st, doctest.StatusSkip, summary.Skipped))
	}
	if summary.OK() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.pass.Render("Success!"))
	} else {
		fmt.Fprintln(w, total(st, doctest.StatusFail, summary.Failed))
	}
	return summary.OK()
}

// total renders one summary line such as "Passed: 3".
func total(st styles, s doctest.Status, n int) string {
	return st.forStatus(s).Render(fmt.Sprintf("%s: %d", label(s.Past()), n))
}

func (st styles) forStatus(s doctest.Status) lipgloss.Style {
	switch s {
	case doctest.StatusPass:
		return st.pass
	case doctest.StatusFail:
		return st.fail
	default:
		return st.skip
	}
}

func printHint(w io.Writer, st styles, name string) {
	fmt.Fprintf(w, "You can declare %s in the %s section in %s\n",
		st.accent.Render(name), st.accent.Render("globals"), st.muted.Render(doctest.DefaultSetupFile))
	fmt.Fprintf(w, "\nFor example:\n%s\nglobals:\n  %s: ...\n",
		st.muted.Render("# "+doctest.DefaultSetupFile), st.accent.Render(name))
}

// Progress returns a callback writing one colored marker per executed
// snippet, suitable for doctest.Config.Progress.
func Progress(w io.Writer) func(doctest.Status) {
	st := newStyles(w)
	return func(s doctest.Status) {
		if m := s.Marker(); m != "" {
			fmt.Fprint(w, st.forStatus(s).Render(m))
		}
	}
}
