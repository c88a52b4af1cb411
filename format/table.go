package format

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/dhamidi/docsy/ast"
)

// TableEncoder renders every node of a file as a row of a table: depth,
// kind, byte range, position and a short summary.
type TableEncoder struct {
	w    io.Writer
	file *ast.File
}

func NewTableEncoder(w io.Writer) *TableEncoder {
	return &TableEncoder{w: w}
}

func (e *TableEncoder) Encode(file *ast.File) error {
	e.file = file
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TableEncoder) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Kind", "Range", "Position", "Summary"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetRowLine(false)
	if e.file != nil {
		e.appendRows(table, e.file.Root, 0)
	}
	table.Render()
	return buf.Bytes(), nil
}

func (e *TableEncoder) appendRows(table *tablewriter.Table, n ast.Node, depth int) {
	rng, pos := "-", "-"
	if r, ok := e.file.Range(n); ok {
		rng = fmt.Sprintf("%d..%d", r.Start, r.End)
		p := e.file.Position(r.Start)
		pos = fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	table.Append([]string{
		strings.Repeat(". ", depth) + n.Kind().String(),
		rng,
		pos,
		ast.Summary(n),
	})
	for _, c := range ast.Children(n) {
		e.appendRows(table, c, depth+1)
	}
}
