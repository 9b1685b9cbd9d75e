package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonwraymond/doctest/doctest"
)

// debounce batches the burst of events an editor save produces.
const debounce = 200 * time.Millisecond

// runWatch runs the documents once, then again after every change to a
// watched document or the setup file, until ctx is done.
func runWatch(ctx context.Context, cmd *cobra.Command, out io.Writer, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rerun := func() {
		fmt.Fprintln(out, "\x1b[2J\x1b[H")
		if err := runDoctest(ctx, cmd, out, args); err != nil && !errors.Is(err, errTestsFailed) {
			fmt.Fprintln(out, err)
		}
		fmt.Fprintln(out, "\nWatching for changes...")
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	setup := configPath
	if setup == "" {
		setup = doctest.DefaultSetupFile
	}

	rerun()
	return watchFiles(ctx, append(paths, setup), rerun)
}

// watchFiles calls onChange after files change. Parent directories are
// watched so that editors replacing files through renames are noticed.
func watchFiles(ctx context.Context, files []string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, watched) {
				continue
			}
			logger.Debug("Document changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error", zap.Error(err))

		case <-timer.C:
			onChange()
		}
	}
}

func relevant(event fsnotify.Event, watched map[string]bool) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return watched[abs]
}
