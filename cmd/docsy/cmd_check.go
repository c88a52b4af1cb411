package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/docsy/parser"
	"github.com/dhamidi/docsy/resolve"
)

var checkLog = commonlog.GetLogger("docsy.check")

// checker parses files and, optionally, resolves them against globals.
type checker struct {
	opts    []parser.Option
	globals map[string]any
	resolve bool
	out     io.Writer
}

// check reports problems in file and returns whether it is clean.
func (c *checker) check(file string) bool {
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(c.out, "%s: %s\n", file, err)
		return false
	}
	f, err := parser.ParseDocument(string(data), file, c.opts...)
	if err != nil {
		fmt.Fprintln(c.out, describeError(err))
		return false
	}
	if c.resolve {
		_, err := resolve.Resolve(f, resolve.Options{Globals: c.globals, ElementConstructor: resolve.BuildElement})
		if err != nil {
			fmt.Fprintln(c.out, describeError(err))
			return false
		}
	}
	checkLog.Debugf("%s: ok", file)
	return true
}

func (c *checker) checkAll(files []string) int {
	failed := 0
	for _, file := range files {
		if !c.check(file) {
			failed++
		}
	}
	return failed
}

// watch rechecks .docsy files under paths whenever they are written.
func (c *checker) watch(ctx context.Context, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(paths)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		checkLog.Debugf("watching %s", dir)
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	mask := fsnotify.Create | fsnotify.Write
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&mask == 0 || !strings.HasSuffix(evt.Name, ".docsy") {
				continue
			}
			checkLog.Debugf("event %s", evt)
			if c.check(evt.Name) {
				fmt.Fprintf(c.out, "%s: ok\n", evt.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			checkLog.Errorf("watch: %s", err)
		}
	}
}

// watchDirs returns the directories to watch for paths: the parent of each
// file and every directory below each directory.
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Dir(path))
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}

func newCheckCmd(a *app) *cobra.Command {
	var watch bool
	var resolveDocs bool

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report syntax errors in .docsy files",
		Long: `Parse every .docsy file under the given paths and report errors.

With --resolve, documents are also resolved against the configured
globals. With --watch, files are checked again whenever they change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			files, err := docsyFiles(args)
			if err != nil {
				return fmt.Errorf("find files: %w", err)
			}

			c := &checker{
				opts:    a.parserOptions(),
				globals: a.config.Resolve.Globals,
				resolve: resolveDocs,
				out:     cmd.OutOrStdout(),
			}
			failed := c.checkAll(files)

			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				return c.watch(ctx, args)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files have errors", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "check files again when they change")
	cmd.Flags().BoolVar(&resolveDocs, "resolve", false, "also resolve documents against the configured globals")

	return cmd
}
