package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/docsy/ast"
	"github.com/dhamidi/docsy/parser"
)

// readSource reads the named file, or stdin when args is empty or "-".
func readSource(args []string) (source, filename string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
	filename = args[0]
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", "", fmt.Errorf("read file: %w", err)
	}
	return string(data), filename, nil
}

func parseSource(source, filename string, expression bool, opts []parser.Option) (*ast.File, error) {
	if expression {
		return parser.ParseExpression(source, filename, opts...)
	}
	return parser.ParseDocument(source, filename, opts...)
}

// describeError renders err with a source snippet when it carries a
// position.
func describeError(err error) string {
	var perr *parser.ParsingError
	if errors.As(err, &perr) {
		return fmt.Sprintf("%s: %s\n%s", perr.Position(), perr.Message(), perr.Snippet())
	}
	var ferr *ast.FileError
	if errors.As(err, &ferr) {
		if snippet := ferr.Snippet(); snippet != "" {
			return err.Error() + "\n" + snippet
		}
	}
	return err.Error()
}

// docsyFiles expands directories in paths to the .docsy files below them.
func docsyFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".docsy") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
