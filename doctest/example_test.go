package doctest_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/doctest/doctest"
	"github.com/jonwraymond/doctest/snippet"
)

func ExampleRunner_RunFile() {
	file, err := snippet.Parse(snippet.Document{
		Path: "README.md",
		Text: "```js\n" +
			"const greeting = `hello ${name}`;\n" +
			"greeting // => \"hello Nick\"\n" +
			"```\n" +
			"<!-- skip-example -->\n" +
			"```js\n" +
			"launchMissiles();\n" +
			"```\n" +
			"```js\n" +
			"console.log([1, 2].length) // output: 2\n" +
			"```\n",
	})
	if err != nil {
		fmt.Println("parse:", err)
		return
	}

	runner, err := doctest.NewRunner(doctest.Config{
		Globals:     map[string]any{"name": "Nick"},
		NoTranspile: true,
	})
	if err != nil {
		fmt.Println("config:", err)
		return
	}

	for _, r := range runner.RunFile(context.Background(), file) {
		fmt.Println(r.Snippet.Location(), r.Status)
	}
	// Output:
	// README.md:1 pass
	// README.md:6 skip
	// README.md:9 pass
}
