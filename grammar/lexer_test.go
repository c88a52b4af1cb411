package grammar

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/docsy/ast"
	"github.com/dhamidi/docsy/parser"
)

func kinds(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind + ":" + tok.Text
	}
	return out
}

func TestLexerTokenize(t *testing.T) {
	g, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		src  string
		want []string
	}{
		{
			"foo 12.5 'a b' // c\n/* x\n*/",
			[]string{
				"identifier:foo", "whitespace: ", "number:12.5", "whitespace: ",
				"string:'a b'", "whitespace: ", "line_comment:// c", "whitespace:\n",
				"block_comment:/* x\n*/",
			},
		},
		{
			"<p>héllo {x}",
			[]string{
				"other:<", "text:p>héllo", "whitespace: ", "other:{", "identifier:x", "other:}",
			},
		},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens := NewLexer(g, tt.src).Tokenize()
			var got []string
			if len(tokens) > 0 {
				got = kinds(tokens)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
			end := 0
			for _, tok := range tokens {
				if tok.Start != end {
					t.Errorf("token %q starts at %d, want %d", tok.Text, tok.Start, end)
				}
				end = tok.End
			}
			if end != len(tt.src) {
				t.Errorf("tokens end at %d, want %d", end, len(tt.src))
			}
		})
	}
}

func TestLexerKinds(t *testing.T) {
	g, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	tokens := NewLexer(g, "a b", "inline_whitespace").Tokenize()
	want := []string{"other:a", "inline_whitespace: ", "other:b"}
	if diff := cmp.Diff(want, kinds(tokens)); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

// The lexical productions must accept exactly the literals the parser
// accepts.
func TestLexicalProductionsMatchParser(t *testing.T) {
	g, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	isNum := func(e ast.Expression) bool { _, ok := e.(*ast.Num); return ok }
	isStr := func(e ast.Expression) bool { _, ok := e.(*ast.Str); return ok }
	isIdent := func(e ast.Expression) bool { _, ok := e.(*ast.Identifier); return ok }

	tests := []struct {
		production string
		src        string
		is         func(ast.Expression) bool
		want       bool
	}{
		{"number", "42", isNum, true},
		{"number", "-1.5", isNum, true},
		{"number", ".5", isNum, true},
		{"number", "+3", isNum, true},
		{"number", "1.", isNum, false},
		{"number", "1.2.3", isNum, false},
		{"number", "-", isNum, false},
		{"string", `'it\'s'`, isStr, true},
		{"string", `"a b"`, isStr, true},
		{"string", "`multi\nline`", isStr, true},
		{"string", `"\q"`, isStr, true},
		{"string", `'open`, isStr, false},
		{"string", "'a\nb'", isStr, false},
		{"identifier", "foo", isIdent, true},
		{"identifier", "_x1", isIdent, true},
		{"identifier", "$el", isIdent, true},
		{"identifier", "1a", isIdent, false},
		{"identifier", "a-b", isIdent, false},
	}
	for _, tt := range tests {
		t.Run(tt.production+"/"+tt.src, func(t *testing.T) {
			lexed := NewLexer(g, tt.src).Match(tt.production, 0) == len(tt.src)

			parsed := false
			if f, err := parser.ParseExpression(tt.src, "test.docsy"); err == nil {
				parsed = tt.is(f.Root.(*ast.ExpressionDocument).Value)
			}

			if lexed != tt.want {
				t.Errorf("%s matches %q = %v, want %v", tt.production, tt.src, lexed, tt.want)
			}
			if parsed != tt.want {
				t.Errorf("parser accepts %q = %v, want %v", tt.src, parsed, tt.want)
			}
		})
	}
}
