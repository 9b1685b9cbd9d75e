// Command doctest runs the JavaScript and TypeScript examples in Markdown
// documentation and reports which of them fail.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonwraymond/doctest/doctest"
	"github.com/jonwraymond/doctest/mcpserver"
	"github.com/jonwraymond/doctest/report"
)

var version = "dev"

var (
	// Global flags
	verbose     bool
	configPath  string
	noTranspile bool
	timeout     time.Duration
	target      string

	// Logger
	logger *zap.Logger
)

// errTestsFailed signals a completed run with failures. It maps to exit
// status 1 without further output.
var errTestsFailed = errors.New("doctest: tests failed")

var rootCmd = &cobra.Command{
	Use:   "doctest [files or directories...]",
	Short: "Test the JavaScript and TypeScript examples in your Markdown",
	Long: `doctest extracts js, ts, jsx and tsx fenced blocks from Markdown files,
runs each one in a fresh sandbox and checks the assertions written as
comments:

  1 + 1 // => 2
  console.log("hi") // output: hi

Directories are searched for .md and .markdown files. With no arguments the
current directory is searched. Settings are read from .doctest.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctest(cmd.Context(), cmd, cmd.OutOrStdout(), args)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [files or directories...]",
	Short: "Re-run the examples whenever a document or the setup file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context(), cmd, cmd.OutOrStdout(), args)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the doctest tools over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg.Logger = zapLogger{logger.Sugar()}
		logger.Info("Serving MCP on stdio", zap.String("version", version))
		return mcpserver.NewMCPServer(cfg, version).Run(cmd.Context(), &mcp.StdioTransport{})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Setup file (default: "+doctest.DefaultSetupFile+" if present)")
	rootCmd.PersistentFlags().BoolVar(&noTranspile, "no-transpile", false, "Run snippets without transpiling them")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", doctest.DefaultTimeout, "Per-snippet timeout")
	rootCmd.PersistentFlags().StringVar(&target, "target", "", "Transpile target, e.g. es2015 or esnext")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// zapLogger adapts a sugared zap logger to doctest.Logger.
type zapLogger struct {
	*zap.SugaredLogger
}

func (l zapLogger) Logf(format string, args ...any) {
	l.Debugf(format, args...)
}

// loadConfig reads the setup file and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (doctest.Config, error) {
	cfg, err := doctest.LoadSetup(configPath)
	if err != nil {
		return doctest.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("no-transpile") {
		cfg.NoTranspile = noTranspile
	}
	if flags.Changed("timeout") || cfg.Timeout == 0 {
		cfg.Timeout = timeout
	}
	if flags.Changed("target") {
		cfg.Target = target
	}
	return cfg, nil
}

// runDoctest runs the documents named by args once, printing progress and
// a summary to out.
func runDoctest(ctx context.Context, cmd *cobra.Command, out io.Writer, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	logger.Debug("Running doctests", zap.Strings("paths", paths))

	cfg.Logger = zapLogger{logger.Sugar()}
	cfg.Progress = report.Progress(out)

	results, runErr := doctest.RunTests(ctx, paths, cfg)
	if errors.Is(runErr, doctest.ErrConfiguration) {
		return runErr
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)
	if runErr != nil {
		fmt.Fprintln(out, runErr)
		fmt.Fprintln(out)
	}

	ok := report.Print(out, results)
	logger.Debug("Run finished", zap.Int("results", len(results)), zap.Bool("ok", ok))
	if !ok || runErr != nil {
		return errTestsFailed
	}
	return nil
}

// expandPaths resolves arguments into document paths. Directories are
// searched for Markdown files, skipping hidden directories and
// node_modules.
func expandPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != arg && (name == "node_modules" || strings.HasPrefix(name, ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if isMarkdown(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
