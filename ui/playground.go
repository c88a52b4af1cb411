package ui

import (
	"bytes"
	"errors"

	"github.com/dhamidi/docsy/ast"
	"github.com/dhamidi/docsy/format"
	"github.com/dhamidi/docsy/parser"
	"github.com/dhamidi/docsy/resolve"
)

type Mode string

const (
	ModeDocument   Mode = "document"
	ModeExpression Mode = "expression"
)

// Request is the input of the playground API.
type Request struct {
	Source  string         `json:"source"`
	Mode    Mode           `json:"mode"`
	Globals map[string]any `json:"globals,omitempty"`
}

// Response holds everything the playground shows for a source.
type Response struct {
	OK          bool                `json:"ok"`
	AST         *format.ASTJSONNode `json:"ast,omitempty"`
	Tree        string              `json:"tree,omitempty"`
	Serialized  string              `json:"serialized,omitempty"`
	Formatted   string              `json:"formatted,omitempty"`
	Value       any                 `json:"value,omitempty"`
	Diagnostics []Diagnostic        `json:"diagnostics"`
}

type Diagnostic struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Offset   int    `json:"offset"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Snippet  string `json:"snippet,omitempty"`
}

// Analyze parses req.Source and, when it parses, serializes, formats and
// resolves it. Failures are reported as diagnostics.
func Analyze(req Request, opts ...parser.Option) *Response {
	res := &Response{Diagnostics: []Diagnostic{}}

	var f *ast.File
	var err error
	if req.Mode == ModeExpression {
		f, err = parser.ParseExpression(req.Source, "playground.docsy", opts...)
	} else {
		f, err = parser.ParseDocument(req.Source, "playground.docsy", opts...)
	}
	if err != nil {
		var perr *parser.ParsingError
		if errors.As(err, &perr) {
			pos := perr.Position()
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Severity: "error",
				Message:  perr.Message(),
				Offset:   pos.Offset,
				Line:     pos.Line,
				Column:   pos.Column,
				Snippet:  perr.Snippet(),
			})
		} else {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Severity: "error", Message: err.Error()})
		}
		return res
	}
	res.OK = true
	res.AST = format.NodeToJSON(f, f.Root)

	var buf bytes.Buffer
	if err := format.NewLineEncoder(&buf).Encode(f); err == nil {
		res.Tree = buf.String()
	}
	if out, err := format.SerializeFile(f, f.Root); err != nil {
		res.Diagnostics = append(res.Diagnostics, fileDiagnostic("error", err))
	} else {
		res.Serialized = out
	}
	if out, err := format.FormatQuotes(f); err != nil {
		res.Diagnostics = append(res.Diagnostics, fileDiagnostic("error", err))
	} else {
		res.Formatted = out
	}

	v, err := resolve.Resolve(f, resolve.Options{
		Globals:            req.Globals,
		ElementConstructor: resolve.BuildElement,
	})
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, fileDiagnostic("warning", err))
	} else {
		res.Value = resolve.JSON(v)
	}
	return res
}

func fileDiagnostic(severity string, err error) Diagnostic {
	d := Diagnostic{Severity: severity, Message: err.Error()}
	var ferr *ast.FileError
	if errors.As(err, &ferr) {
		d.Message = ferr.Message
		if pos, ok := ferr.Position(); ok {
			d.Offset, d.Line, d.Column = pos.Offset, pos.Line, pos.Column
		}
		d.Snippet = ferr.Snippet()
	}
	return d
}
