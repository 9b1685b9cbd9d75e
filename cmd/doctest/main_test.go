package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonwraymond/doctest/doctest"
)

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"))
	writeFile(t, filepath.Join(dir, "guide.markdown"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, "docs", "api.MD"))
	writeFile(t, filepath.Join(dir, "node_modules", "dep", "README.md"))
	writeFile(t, filepath.Join(dir, ".git", "README.md"))

	paths, err := expandPaths([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "README.md"),
		filepath.Join(dir, "guide.markdown"),
		filepath.Join(dir, "docs", "api.MD"),
	}, paths)
}

func TestExpandPaths_FilesAsGiven(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	writeFile(t, file)

	paths, err := expandPaths([]string{file})
	require.NoError(t, err)
	assert.Equal(t, []string{file}, paths)

	_, err = expandPaths([]string{filepath.Join(dir, "missing.md")})
	assert.Error(t, err)
}

func TestRunDoctest(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	pass := filepath.Join(dir, "pass.md")
	fail := filepath.Join(dir, "fail.md")
	writeFile(t, pass, "```js", "1 + 1 // => 2", "```", "<!-- skip-example -->", "```js", "nope();", "```")
	writeFile(t, fail, "```ts", "const n: number = 1;", "n // => 2", "```")

	t.Run("passing", func(t *testing.T) {
		var out bytes.Buffer
		err := runDoctest(context.Background(), &cobra.Command{}, &out, []string{pass})
		require.NoError(t, err)
		assert.Contains(t, out.String(), ".\n")
		assert.Contains(t, out.String(), "Passed: 1\nSkipped: 1\n")
		assert.Contains(t, out.String(), "Success!")
	})

	t.Run("failing", func(t *testing.T) {
		var out bytes.Buffer
		err := runDoctest(context.Background(), &cobra.Command{}, &out, []string{pass, fail})
		require.ErrorIs(t, err, errTestsFailed)
		assert.Contains(t, out.String(), "Failed - "+fail+":3")
		assert.Contains(t, out.String(), "AssertionError")
		assert.Contains(t, out.String(), "Failed: 1")
	})

	t.Run("unparseable document", func(t *testing.T) {
		broken := filepath.Join(dir, "broken.md")
		writeFile(t, broken, "```js", "open();")
		var out bytes.Buffer
		err := runDoctest(context.Background(), &cobra.Command{}, &out, []string{pass, broken})
		require.ErrorIs(t, err, errTestsFailed)
		assert.Contains(t, out.String(), "snippet parsing was incomplete")
		assert.Contains(t, out.String(), "Passed: 1")
	})
}

func TestLoadConfig_FlagsOverrideSetup(t *testing.T) {
	oldConfig, oldNoTranspile, oldTimeout := configPath, noTranspile, timeout
	t.Cleanup(func() { configPath, noTranspile, timeout = oldConfig, oldNoTranspile, oldTimeout })

	setup := filepath.Join(t.TempDir(), "setup.yaml")
	writeFile(t, setup, "globals: {name: Nick}", "transpile: true", "timeout: 5s")
	configPath = setup

	cmd := &cobra.Command{}
	cmd.Flags().BoolVar(&noTranspile, "no-transpile", false, "")
	cmd.Flags().DurationVar(&timeout, "timeout", doctest.DefaultTimeout, "")

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "Nick", cfg.Globals["name"])
	assert.False(t, cfg.NoTranspile)
	assert.Equal(t, 5*time.Second, cfg.Timeout)

	require.NoError(t, cmd.ParseFlags([]string{"--no-transpile", "--timeout=3s"}))
	cfg, err = loadConfig(cmd)
	require.NoError(t, err)
	assert.True(t, cfg.NoTranspile)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestLoadConfig_MissingExplicitSetup(t *testing.T) {
	old := configPath
	t.Cleanup(func() { configPath = old })
	configPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := loadConfig(&cobra.Command{})
	assert.ErrorIs(t, err, doctest.ErrConfiguration)
}

func TestWatchFiles(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	doc := filepath.Join(dir, "README.md")
	other := filepath.Join(dir, "other.txt")
	writeFile(t, doc, "# v1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, []string{doc}, func() { changed <- struct{}{} })
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	writeFile(t, other, "ignored")
	for i := 0; ; i++ {
		select {
		case <-changed:
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
			writeFile(t, doc, "# v", strings.Repeat("!", i))
		case <-deadline:
			t.Fatal("no change observed")
		}
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, version+"\n", out.String())
}
