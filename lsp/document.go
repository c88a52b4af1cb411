package lsp

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/docsy/ast"
	"github.com/dhamidi/docsy/format"
	"github.com/dhamidi/docsy/parser"
	"github.com/dhamidi/docsy/resolve"
)

// Document is an open text document and the result of parsing it.
type Document struct {
	URI  protocol.DocumentUri
	Text string

	File       *ast.File
	ParseErr   error
	ResolveErr error
}

// NewDocument parses text. When globals is not nil the parsed file is also
// resolved against them.
func NewDocument(uri protocol.DocumentUri, text string, globals map[string]any, opts ...parser.Option) *Document {
	filename, err := uriToPath(string(uri))
	if err != nil {
		filename = string(uri)
	}
	doc := &Document{URI: uri, Text: text}
	doc.File, doc.ParseErr = parser.ParseDocument(text, filename, opts...)
	if doc.ParseErr == nil && globals != nil {
		_, doc.ResolveErr = resolve.Resolve(doc.File, resolve.Options{
			Globals:            globals,
			ElementConstructor: resolve.BuildElement,
		})
	}
	return doc
}

// Diagnostics reports the parse error as an error and the resolve error, if
// any, as a warning.
func (d *Document) Diagnostics() []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	var perr *parser.ParsingError
	if errors.As(d.ParseErr, &perr) {
		pos := perr.Position()
		diags = append(diags, d.diagnostic(pos.Offset, pos.Offset+1, protocol.DiagnosticSeverityError, perr.Message()))
	} else if d.ParseErr != nil {
		diags = append(diags, d.diagnostic(0, 0, protocol.DiagnosticSeverityError, d.ParseErr.Error()))
	}

	var ferr *ast.FileError
	if errors.As(d.ResolveErr, &ferr) {
		start, end := 0, 0
		if r, ok := d.File.Range(ferr.Node); ok {
			start, end = r.Start, r.End
		}
		diags = append(diags, d.diagnostic(start, end, protocol.DiagnosticSeverityWarning, ferr.Message))
	}
	return diags
}

func (d *Document) diagnostic(start, end int, severity protocol.DiagnosticSeverity, message string) protocol.Diagnostic {
	if end > len(d.Text) {
		end = len(d.Text)
	}
	if start > end {
		start = end
	}
	source := lsName
	return protocol.Diagnostic{
		Range:    d.Range(start, end),
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// FormattingEdits returns a single edit replacing the document with its
// quote-normalized form, or no edits when nothing changes.
func (d *Document) FormattingEdits() []protocol.TextEdit {
	if d.File == nil {
		return nil
	}
	out, err := format.FormatQuotes(d.File)
	if err != nil {
		log.Errorf("format %s: %s", d.URI, err)
		return nil
	}
	if out == d.Text {
		return []protocol.TextEdit{}
	}
	return []protocol.TextEdit{{
		Range:   d.Range(0, len(d.Text)),
		NewText: out,
	}}
}

// Hover describes the innermost node under pos.
func (d *Document) Hover(pos protocol.Position) *protocol.Hover {
	if d.File == nil {
		return nil
	}
	n := d.File.NodeAt(Offset(d.Text, pos))
	if n == nil {
		return nil
	}
	r, _ := d.File.Range(n)
	value := fmt.Sprintf("**%s**", n.Kind())
	if summary := ast.Summary(n); summary != "" {
		value += " `" + summary + "`"
	}
	rng := d.Range(r.Start, r.End)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: value},
		Range:    &rng,
	}
}

// Symbols lists the elements of the document as nested symbols.
func (d *Document) Symbols() []protocol.DocumentSymbol {
	if d.File == nil {
		return []protocol.DocumentSymbol{}
	}
	return d.symbols(d.File.Root)
}

func (d *Document) symbols(n ast.Node) []protocol.DocumentSymbol {
	out := []protocol.DocumentSymbol{}
	for _, c := range ast.Children(n) {
		name, kind, ok := symbolName(c)
		if !ok {
			out = append(out, d.symbols(c)...)
			continue
		}
		r, _ := d.File.Range(c)
		detail := c.Kind().String()
		rng := d.Range(r.Start, r.End)
		out = append(out, protocol.DocumentSymbol{
			Name:           name,
			Detail:         &detail,
			Kind:           kind,
			Range:          rng,
			SelectionRange: rng,
			Children:       d.symbols(c),
		})
	}
	return out
}

func symbolName(n ast.Node) (string, protocol.SymbolKind, bool) {
	switch n := n.(type) {
	case *ast.Element:
		return ast.NameString(n.Name), protocol.SymbolKindStruct, true
	case *ast.SelfClosingElement:
		return ast.NameString(n.Name), protocol.SymbolKindStruct, true
	case *ast.LineElement:
		return ast.NameString(n.Name), protocol.SymbolKindStruct, true
	case *ast.RawElement:
		return ast.NameString(n.Name), protocol.SymbolKindString, true
	case *ast.Fragment, *ast.RawFragment:
		return "<>", protocol.SymbolKindNamespace, true
	}
	return "", 0, false
}

// Range converts a byte range of the document to an LSP range.
func (d *Document) Range(start, end int) protocol.Range {
	return protocol.Range{Start: Position(d.Text, start), End: Position(d.Text, end)}
}

// Position converts a byte offset to an LSP position, which counts UTF-16
// code units from the start of the line.
func Position(text string, offset int) protocol.Position {
	if offset > len(text) {
		offset = len(text)
	}
	var line, char protocol.UInteger
	for i, r := range text {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			char = 0
			continue
		}
		char += protocol.UInteger(utf16.RuneLen(r))
	}
	return protocol.Position{Line: line, Character: char}
}

// Offset converts an LSP position to a byte offset, clamping to the end of
// the line or text.
func Offset(text string, pos protocol.Position) int {
	offset := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		i := strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			return len(text)
		}
		offset += i + 1
	}
	var char protocol.UInteger
	for offset < len(text) && char < pos.Character {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}
		char += protocol.UInteger(utf16.RuneLen(r))
		offset += size
	}
	return offset
}
