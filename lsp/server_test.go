package lsp

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type notification struct {
	method string
	params protocol.PublishDiagnosticsParams
}

func testContext(t *testing.T, got *[]notification) *glsp.Context {
	t.Helper()
	return &glsp.Context{
		Notify: func(method string, params any) {
			p, ok := params.(protocol.PublishDiagnosticsParams)
			if !ok {
				t.Fatalf("unexpected params %T", params)
			}
			*got = append(*got, notification{method: method, params: p})
		},
	}
}

func openDoc(t *testing.T, ls *Server, uri protocol.DocumentUri, text string) []protocol.Diagnostic {
	t.Helper()
	var got []notification
	err := ls.textDocumentDidOpen(testContext(t, &got), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "docsy", Text: text},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].method != protocol.ServerTextDocumentPublishDiagnostics {
		t.Fatalf("expected one publishDiagnostics, got %+v", got)
	}
	return got[0].params.Diagnostics
}

func TestDiagnostics(t *testing.T) {
	ls := NewServer(Options{Version: "test"})

	diags := openDoc(t, ls, "file:///tmp/ok.docsy", "<|a>hi</>")
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %+v", diags)
	}

	diags = openDoc(t, ls, "file:///tmp/bad.docsy", "<|a>\nhi")
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", diags)
	}
	if *diags[0].Severity != protocol.DiagnosticSeverityError {
		t.Errorf("severity = %v", *diags[0].Severity)
	}
	if diags[0].Range.Start.Line != 1 {
		t.Errorf("range = %+v", diags[0].Range)
	}

	ls = NewServer(Options{Globals: map[string]any{}})
	diags = openDoc(t, ls, "file:///tmp/globals.docsy", "Hello {name}")
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", diags)
	}
	want := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 7},
		End:   protocol.Position{Line: 0, Character: 11},
	}
	if diff := cmp.Diff(want, diags[0].Range); diff != "" {
		t.Errorf("range mismatch (-want +got):\n%s", diff)
	}
	if *diags[0].Severity != protocol.DiagnosticSeverityWarning || diags[0].Message != "Missing global name" {
		t.Errorf("diagnostic = %+v", diags[0])
	}
}

func TestDidChange(t *testing.T) {
	ls := NewServer(Options{})
	uri := protocol.DocumentUri("file:///tmp/change.docsy")
	openDoc(t, ls, uri, "abc")

	var got []notification
	err := ls.textDocumentDidChange(testContext(t, &got), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{
					Start: protocol.Position{Line: 0, Character: 1},
					End:   protocol.Position{Line: 0, Character: 2},
				},
				Text: "{",
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc := ls.Document(uri); doc.Text != "a{c" {
		t.Errorf("text = %q", doc.Text)
	}
	if len(got) != 1 || len(got[0].params.Diagnostics) != 1 {
		t.Errorf("expected a diagnostic for the unclosed inject, got %+v", got)
	}

	err = ls.textDocumentDidChange(testContext(t, &got), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "fixed"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc := ls.Document(uri); doc.Text != "fixed" || doc.ParseErr != nil {
		t.Errorf("document = %+v", doc)
	}
}

func TestFormatting(t *testing.T) {
	ls := NewServer(Options{})
	uri := protocol.DocumentUri("file:///tmp/fmt.docsy")
	openDoc(t, ls, uri, "<|a t='it\\'s'>\n</>")

	edits, err := ls.textDocumentFormatting(nil, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 1, Character: 3},
		},
		NewText: "<|a t=\"it's\">\n</>",
	}}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestHoverAndSymbols(t *testing.T) {
	ls := NewServer(Options{})
	uri := protocol.DocumentUri("file:///tmp/sym.docsy")
	openDoc(t, ls, uri, "<|Card>\n</Icon/>\n</>")

	hover, err := ls.textDocumentHover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 1, Character: 3},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	content := hover.Contents.(protocol.MarkupContent)
	if !strings.HasPrefix(content.Value, "**Identifier**") {
		t.Errorf("hover = %q", content.Value)
	}

	result, err := ls.textDocumentDocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatal(err)
	}
	symbols := result.([]protocol.DocumentSymbol)
	if len(symbols) != 1 || symbols[0].Name != "Card" {
		t.Fatalf("symbols = %+v", symbols)
	}
	if len(symbols[0].Children) != 1 || symbols[0].Children[0].Name != "Icon" {
		t.Errorf("children = %+v", symbols[0].Children)
	}
}

func TestPositionOffset(t *testing.T) {
	text := "aé\U0001F600b\nxy"
	if got := Position(text, 7); got != (protocol.Position{Line: 0, Character: 4}) {
		t.Errorf("Position = %+v", got)
	}
	if got := Offset(text, protocol.Position{Line: 0, Character: 4}); got != 7 {
		t.Errorf("Offset = %d", got)
	}
	if got := Offset(text, protocol.Position{Line: 1, Character: 1}); got != 10 {
		t.Errorf("Offset = %d", got)
	}
	if got := Offset(text, protocol.Position{Line: 0, Character: 99}); got != 8 {
		t.Errorf("Offset should clamp to the line end, got %d", got)
	}
	if got := Offset(text, protocol.Position{Line: 5}); got != len(text) {
		t.Errorf("Offset should clamp to the text end, got %d", got)
	}
}
