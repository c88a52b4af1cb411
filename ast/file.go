package ast

import (
	"fmt"
	"strings"

	"github.com/dhamidi/docsy/combinator"
)

// File is a parsed document together with the source and range table it
// came from.
type File struct {
	Filename string
	Source   string
	Root     Node
	Ranges   *Ranges
}

// Range returns the source span of n.
func (f *File) Range(n Node) (Range, bool) {
	return f.Ranges.Get(n)
}

// Text returns the source text n was parsed from.
func (f *File) Text(n Node) string {
	r, ok := f.Range(n)
	if !ok {
		return ""
	}
	return f.Source[r.Start:r.End]
}

// Position converts a byte offset to a line and column.
func (f *File) Position(offset int) Position {
	return PositionFor(f.Filename, f.Source, offset)
}

// NodeAt returns the innermost node whose range contains offset.
func (f *File) NodeAt(offset int) Node {
	var found Node
	Inspect(f.Root, func(n Node) bool {
		r, ok := f.Range(n)
		if !ok || !r.Contains(offset) {
			return !ok
		}
		found = n
		return true
	})
	return found
}

// Position is a location in a source file. Line and Column are 1-based;
// Column counts bytes.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// PositionFor computes the position of offset in source.
func PositionFor(filename, source string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	back := combinator.NewCursor(source).Skip(offset).Reverse()
	column := 1
	for !back.Empty() && back.Peek(1) != "\n" {
		back = back.Skip(1)
		column++
	}
	return Position{
		Filename: filename,
		Offset:   offset,
		Line:     strings.Count(source[:back.Position()], "\n") + 1,
		Column:   column,
	}
}

// Snippet renders the line holding pos with one line of context on each
// side and a caret under the column.
func Snippet(source string, pos Position) string {
	lines := strings.Split(source, "\n")
	line := pos.Line
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	var b strings.Builder
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	pad := pos.Column - 1
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", pad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// FileError is an error attached to a node of a parsed file.
type FileError struct {
	File    *File
	Node    Node
	Message string
}

func (e *FileError) Error() string {
	if pos, ok := e.Position(); ok {
		return fmt.Sprintf("%s: %s", pos, e.Message)
	}
	if e.File != nil && e.File.Filename != "" {
		return fmt.Sprintf("%s: %s", e.File.Filename, e.Message)
	}
	return e.Message
}

// Position returns the start of the offending node.
func (e *FileError) Position() (Position, bool) {
	if e.File == nil || e.Node == nil {
		return Position{}, false
	}
	r, ok := e.File.Range(e.Node)
	if !ok {
		return Position{}, false
	}
	return e.File.Position(r.Start), true
}

// Snippet renders the source around the offending node, or "" when the
// node has no known range.
func (e *FileError) Snippet() string {
	pos, ok := e.Position()
	if !ok {
		return ""
	}
	return Snippet(e.File.Source, pos)
}
