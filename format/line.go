package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/docsy/ast"
)

// LineEncoder prints one node per line, indented by depth:
//
//	Document	1:1-2:1
//	  Text	1:1-1:7	"Hello "
type LineEncoder struct {
	w    io.Writer
	file *ast.File
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(file *ast.File) error {
	e.file = file
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	if e.file != nil {
		e.writeNode(&sb, e.file.Root, 0)
	}
	return []byte(sb.String()), nil
}

func (e *LineEncoder) writeNode(sb *strings.Builder, n ast.Node, depth int) {
	fmt.Fprintf(sb, "%s%s\t%s", strings.Repeat("  ", depth), n.Kind(), e.span(n))
	if summary := ast.Summary(n); summary != "" {
		fmt.Fprintf(sb, "\t%s", summary)
	}
	sb.WriteByte('\n')
	for _, c := range ast.Children(n) {
		e.writeNode(sb, c, depth+1)
	}
}

func (e *LineEncoder) span(n ast.Node) string {
	r, ok := e.file.Range(n)
	if !ok {
		return "-"
	}
	start := e.file.Position(r.Start)
	end := e.file.Position(r.End)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Column, end.Line, end.Column)
}
