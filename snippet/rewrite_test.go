package snippet

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parseBody(t *testing.T, body ...string) string {
	t.Helper()
	lines := append([]string{"```js"}, body...)
	lines = append(lines, "```")
	f := mustParse(t, doc(lines...))
	if len(f.Snippets) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(f.Snippets))
	}
	return f.Snippets[0].Code
}

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name string
		body []string
		want string
	}{
		{
			name: "own-line return assertion rewrites previous line",
			body: []string{"const a = 1;", "a + 1", "// => 2"},
			want: lines(
				"const a = 1;",
				"var __returnValue = a + 1;",
				"__deepStrictEqual(__returnValue, (2));",
			),
		},
		{
			name: "own-line return assertion skips blank lines",
			body: []string{"  [1, 2].length;", "", "  // => 2"},
			want: lines(
				"  var __returnValue = [1, 2].length;",
				"",
				"  __deepStrictEqual(__returnValue, (2));",
			),
		},
		{
			name: "return assertion on empty snippet is inert",
			body: []string{"// => 2"},
			want: lines("// => 2"),
		},
		{
			name: "trailing return assertion",
			body: []string{"1 + 1 // => 2"},
			want: lines("var __returnValue = 1 + 1; __deepStrictEqual(__returnValue, (2));"),
		},
		{
			name: "trailing return assertion with object",
			body: []string{"({a: 1}); // => {a: 1}"},
			want: lines("var __returnValue = ({a: 1}); __deepStrictEqual(__returnValue, ({a: 1}));"),
		},
		{
			name: "trailing output assertion",
			body: []string{`console.log("hi") // output: hi there`},
			want: lines(`console.log("hi"); __deepStrictEqual(__nextOutput(), "hi there");`),
		},
		{
			name: "own-line output assertion",
			body: []string{`console.log("a", 1);`, `// output: a 1`},
			want: lines(`console.log("a", 1);`, `__deepStrictEqual(__nextOutput(), "a 1");`),
		},
		{
			name: "output text is quoted",
			body: []string{`// output: say "hi" \o/`},
			want: lines(`__deepStrictEqual(__nextOutput(), "say \"hi\" \\o/");`),
		},
		{
			name: "trailing log assertion",
			body: []string{"console.log(1, 2) // log => 1, 2"},
			want: lines("console.log(1, 2); __deepStrictEqual(__nextLog(), [1, 2]);"),
		},
		{
			name: "own-line log assertion",
			body: []string{"console.log({a: 1});", "// log => {a: 1}"},
			want: lines("console.log({a: 1});", "__deepStrictEqual(__nextLog(), [{a: 1}]);"),
		},
		{
			name: "output block with line comments",
			body: []string{
				`console.log("a");`,
				`console.log("b");`,
				"// output:",
				"// a",
				"//b",
				"done();",
			},
			want: lines(
				`console.log("a");`,
				`console.log("b");`,
				"// output:",
				`__deepStrictEqual(__nextOutput(), "a");`,
				`__deepStrictEqual(__nextOutput(), "b"); __assertNoOutput();`,
				"done();",
			),
		},
		{
			name: "output block inside block comment",
			body: []string{
				`console.log("a");`,
				`console.log("b");`,
				"/*",
				"output:",
				"a",
				"b",
				"*/",
			},
			want: lines(
				`console.log("a");`,
				`console.log("b");`,
				"/*",
				"output:",
				`*/ __deepStrictEqual(__nextOutput(), "a"); /*`,
				`*/ __deepStrictEqual(__nextOutput(), "b"); /*`,
				"*/ __assertNoOutput();",
			),
		},
		{
			name: "output block opened on comment line and closed inline",
			body: []string{
				`console.log("a"); console.log("b");`,
				"/* output:",
				"a",
				"b */",
				"after();",
			},
			want: lines(
				`console.log("a"); console.log("b");`,
				"/* output:",
				`*/ __deepStrictEqual(__nextOutput(), "a"); /*`,
				`*/ __deepStrictEqual(__nextOutput(), "b"); __assertNoOutput();`,
				"after();",
			),
		},
		{
			name: "trailing output sentinel opens a block",
			body: []string{`console.log("x"); // output:`, "// x"},
			want: lines(`console.log("x");`, `__deepStrictEqual(__nextOutput(), "x"); __assertNoOutput();`),
		},
		{
			name: "empty output block adds no check",
			body: []string{"// output:", "run();"},
			want: lines("// output:", "run();"),
		},
		{
			name: "comment opener inside a string",
			body: []string{`var glob = "lib/*";`, "1 + 1", "// => 3"},
			want: lines(
				`var glob = "lib/*";`,
				"var __returnValue = 1 + 1;",
				"__deepStrictEqual(__returnValue, (3));",
			),
		},
		{
			name: "comment opener inside a string before a trailing annotation",
			body: []string{`var path = 'a/*b';`, "1 + 1 // => 2"},
			want: lines(
				`var path = 'a/*b';`,
				"var __returnValue = 1 + 1; __deepStrictEqual(__returnValue, (2));",
			),
		},
		{
			name: "comment opener inside a regular expression",
			body: []string{`var re = /a\/*/;`, `console.log("x") // output: x`},
			want: lines(
				`var re = /a\/*/;`,
				`console.log("x"); __deepStrictEqual(__nextOutput(), "x");`,
			),
		},
		{
			name: "annotation marker inside a string",
			body: []string{`var arrow = "a // => b";`},
			want: lines(`var arrow = "a // => b";`),
		},
		{
			name: "annotation marker inside a template literal",
			body: []string{"`x // output: y` // => \"x // output: y\""},
			want: lines("var __returnValue = `x // output: y`; __deepStrictEqual(__returnValue, (\"x // output: y\"));"),
		},
		{
			name: "annotations inside block comments are inert",
			body: []string{"/**", " * 1 + 1 // => 3", " */", "ok();"},
			want: lines("/**", " * 1 + 1 // => 3", " */", "ok();"),
		},
		{
			name: "inline block comment does not open a comment",
			body: []string{"/* note */ 1 + 1 // => 2"},
			want: lines("var __returnValue = /* note */ 1 + 1; __deepStrictEqual(__returnValue, (2));"),
		},
		{
			name: "arrow functions are not annotations",
			body: []string{"const f = x => x * 2;"},
			want: lines("const f = x => x * 2;"),
		},
		{
			name: "comment-only line with arrow text is not a trailing annotation",
			body: []string{"// see f // => g"},
			want: lines("// see f // => g"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseBody(t, tt.body...)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("code mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommentOpenAfter(t *testing.T) {
	tests := []struct {
		line string
		open bool
		want bool
	}{
		{"/*", false, true},
		{"/* done */", false, false},
		{"a(); /* start", false, true},
		{"// not /* a block", false, false},
		{"still inside", true, true},
		{"end */ code();", true, false},
		{"end */ /* again", true, true},
		{`var s = "/*";`, false, false},
		{`var s = '*/'; /*`, false, true},
		{"var re = /[/*]/;", false, false},
		{"var half = a / b; /* note */", false, false},
	}
	for _, tt := range tests {
		if got := commentOpenAfter(tt.line, tt.open); got != tt.want {
			t.Errorf("commentOpenAfter(%q, %v) = %v, want %v", tt.line, tt.open, got, tt.want)
		}
	}
}
