package parser

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/dhamidi/docsy/ast"
	pc "github.com/dhamidi/docsy/combinator"
)

var ignoreIDs = cmpopts.IgnoreUnexported(ast.Base{})

func mustParse(t *testing.T, source string) *ast.File {
	t.Helper()
	f, err := ParseDocument(source, "test.docsy")
	if err != nil {
		t.Fatalf("ParseDocument(%q): %v", source, err)
	}
	return f
}

func mustParseExpr(t *testing.T, source string) ast.Expression {
	t.Helper()
	f, err := ParseExpression(source, "test.docsy")
	if err != nil {
		t.Fatalf("ParseExpression(%q): %v", source, err)
	}
	return f.Root.(*ast.ExpressionDocument).Value
}

func children(t *testing.T, f *ast.File) []ast.Node {
	t.Helper()
	return f.Root.(*ast.Document).Children
}

func TestParseText(t *testing.T) {
	f := mustParse(t, "Hello, world!\nBye")
	want := []ast.Node{&ast.Text{Content: "Hello, world!\nBye"}}
	if diff := cmp.Diff(want, children(t, f), ignoreIDs); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	r, _ := f.Range(f.Root)
	if r != (ast.Range{Start: 0, End: 17}) {
		t.Errorf("document range = %v", r)
	}
}

func TestParseTextEscapes(t *testing.T) {
	f := mustParse(t, `a \< b \{ c / d`)
	kids := children(t, f)
	if len(kids) != 1 {
		t.Fatalf("got %d children", len(kids))
	}
	text := kids[0].(*ast.Text)
	if text.Value() != "a < b { c / d" {
		t.Errorf("Value() = %q", text.Value())
	}
}

func TestParseInject(t *testing.T) {
	f := mustParse(t, "Hello {'Paul'}")
	want := []ast.Node{
		&ast.Text{Content: "Hello "},
		&ast.Inject{Value: &ast.Str{Raw: "Paul", Quote: ast.QuoteSingle}},
	}
	if diff := cmp.Diff(want, children(t, f), ignoreIDs); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyInject(t *testing.T) {
	f := mustParse(t, "A{ }B")
	kids := children(t, f)
	if len(kids) != 3 {
		t.Fatalf("got %d children", len(kids))
	}
	inject := kids[1].(*ast.Inject)
	if inject.Value != nil || len(inject.Before) != 1 {
		t.Errorf("inject = %+v", inject)
	}
}

func TestCloseTagMatching(t *testing.T) {
	named := mustParse(t, "<|Demo>hi<Demo/>")
	unnamed := mustParse(t, "<|Demo>hi</>")

	if !children(t, named)[0].(*ast.Element).NamedCloseTag {
		t.Error("named close tag not recorded")
	}
	if children(t, unnamed)[0].(*ast.Element).NamedCloseTag {
		t.Error("unnamed close tag recorded as named")
	}
	opts := cmp.Options{ignoreIDs, cmpopts.IgnoreFields(ast.Element{}, "NamedCloseTag")}
	if diff := cmp.Diff(named.Root, unnamed.Root, opts); diff != "" {
		t.Errorf("trees differ beyond the close tag flag:\n%s", diff)
	}
}

func TestCloseTagMismatch(t *testing.T) {
	source := "<|Demo>\n  hi\n<Yolo/>"
	_, err := ParseDocument(source, "demo.docsy")
	var perr *ParsingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParsingError, got %v", err)
	}
	if perr.Message() != "Wrong component: expected <Demo/> but got <Yolo/>" {
		t.Errorf("message = %q", perr.Message())
	}
	pos := perr.Position()
	if pos.Line != 3 || pos.Column != 1 {
		t.Errorf("reported at %s, want the closing tag at 3:1", pos)
	}
	if !strings.HasPrefix(err.Error(), "demo.docsy:3:1: Wrong component") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestCloseTagMismatchInsideChoice(t *testing.T) {
	// The mismatch is fatal even where an alternative could still match.
	_, err := ParseExpression("[<|A>x<B/>, 1]", "e.docsy")
	var perr *ParsingError
	if !errors.As(err, &perr) || !strings.HasPrefix(perr.Message(), "Wrong component") {
		t.Fatalf("got %v", err)
	}
}

func TestDottedElementNames(t *testing.T) {
	f := mustParse(t, "</Demo.Foo.Bar/>")
	el := children(t, f)[0].(*ast.SelfClosingElement)
	outer, ok := el.Name.(*ast.ElementNameMember)
	if !ok {
		t.Fatalf("name is %T", el.Name)
	}
	if outer.Property.Name != "Bar" {
		t.Errorf("outer property = %q", outer.Property.Name)
	}
	inner, ok := outer.Target.(*ast.ElementNameMember)
	if !ok || inner.Property.Name != "Foo" {
		t.Fatalf("inner = %+v", outer.Target)
	}
	if id, ok := inner.Target.(*ast.Identifier); !ok || id.Name != "Demo" {
		t.Errorf("innermost target = %+v", inner.Target)
	}

	mustParse(t, "<|A.B>x<A.B/>")
	if _, err := ParseDocument("<|A.B>x<A.C/>", "x"); err == nil {
		t.Error("expected mismatch on A.B vs A.C")
	}
}

func TestTrailingComma(t *testing.T) {
	with := mustParseExpr(t, "[1,2,]").(*ast.Arr)
	if with.Items.TrailingComma == nil {
		t.Error("[1,2,] should keep its trailing comma")
	}
	without := mustParseExpr(t, "[1,2]").(*ast.Arr)
	if without.Items.TrailingComma != nil {
		t.Error("[1,2] should have no trailing comma")
	}
	if len(with.Items.Items) != 2 || len(without.Items.Items) != 2 {
		t.Errorf("item counts %d %d", len(with.Items.Items), len(without.Items.Items))
	}

	f, err := ParseExpression("[1, 2 , /* c */ ]", "x")
	if err != nil {
		t.Fatal(err)
	}
	arr := f.Root.(*ast.ExpressionDocument).Value.(*ast.Arr)
	tc := arr.Items.TrailingComma
	if tc == nil || len(tc.Whitespace) != 3 {
		t.Fatalf("trailing comma = %+v", tc)
	}
	if r, _ := f.Range(tc); r != (ast.Range{Start: 6, End: 16}) {
		t.Errorf("trailing comma range = %v", r)
	}
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		source string
		want   ast.Expression
	}{
		{"42", &ast.Num{Value: 42, Raw: "42"}},
		{"-1.5", &ast.Num{Value: -1.5, Raw: "-1.5"}},
		{strings.Repeat("9", 400), &ast.Num{Value: math.Inf(1), Raw: strings.Repeat("9", 400)}},
		{"-" + strings.Repeat("9", 400), &ast.Num{Value: math.Inf(-1), Raw: "-" + strings.Repeat("9", 400)}},
		{"true", &ast.Bool{Value: true}},
		{"null", &ast.Null{}},
		{"undefined", &ast.Undefined{}},
		{"nullish", &ast.Identifier{Name: "nullish"}},
		{`"it's"`, &ast.Str{Raw: "it's", Quote: ast.QuoteDouble}},
		{"`a\nb`", &ast.Str{Raw: "a\nb", Quote: ast.QuoteBacktick}},
		{"[]", &ast.EmptyArray{}},
		{"{ }", &ast.EmptyObject{Whitespace: ast.WhitespaceLike{&ast.Whitespace{Content: " "}}}},
		{"a.b", &ast.MemberExpression{
			Target:   &ast.Identifier{Name: "a"},
			Property: &ast.Identifier{Name: "b"},
		}},
		{"f()", &ast.CallExpression{Target: &ast.Identifier{Name: "f"}}},
		{"a[0](x).c", &ast.MemberExpression{
			Target: &ast.CallExpression{
				Target: &ast.ComputedMemberExpression{
					Target:   &ast.Identifier{Name: "a"},
					Property: &ast.Num{Value: 0, Raw: "0"},
				},
				Arguments: &ast.ListItems{Items: []*ast.ListItem{{Item: &ast.Identifier{Name: "x"}}}},
			},
			Property: &ast.Identifier{Name: "c"},
		}},
		{"{a, 'b': 1, [k]: 2, ...rest}", &ast.Obj{Items: &ast.ObjItems{Items: []*ast.ObjItem{
			{Property: &ast.PropertyShorthand{Name: &ast.Identifier{Name: "a"}}},
			{
				Before: ast.WhitespaceLike{&ast.Whitespace{Content: " "}},
				Property: &ast.Property{
					Name:       &ast.Str{Raw: "b", Quote: ast.QuoteSingle},
					AfterColon: ast.WhitespaceLike{&ast.Whitespace{Content: " "}},
					Value:      &ast.Num{Value: 1, Raw: "1"},
				},
			},
			{
				Before: ast.WhitespaceLike{&ast.Whitespace{Content: " "}},
				Property: &ast.ComputedProperty{
					Expression: &ast.Identifier{Name: "k"},
					AfterColon: ast.WhitespaceLike{&ast.Whitespace{Content: " "}},
					Value:      &ast.Num{Value: 2, Raw: "2"},
				},
			},
			{
				Before:   ast.WhitespaceLike{&ast.Whitespace{Content: " "}},
				Property: &ast.Spread{Target: &ast.Identifier{Name: "rest"}},
			},
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := mustParseExpr(t, tt.source)
			if diff := cmp.Diff(tt.want, got, ignoreIDs); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChainRanges(t *testing.T) {
	f, err := ParseExpression("a.b.c", "x")
	if err != nil {
		t.Fatal(err)
	}
	outer := f.Root.(*ast.ExpressionDocument).Value.(*ast.MemberExpression)
	inner := outer.Target.(*ast.MemberExpression)
	if r, _ := f.Range(outer); r != (ast.Range{Start: 0, End: 5}) {
		t.Errorf("outer range = %v", r)
	}
	if r, _ := f.Range(inner); r != (ast.Range{Start: 0, End: 3}) {
		t.Errorf("inner range = %v", r)
	}
}

func TestElements(t *testing.T) {
	f := mustParse(t, "<|Card title='Hi' open>\n  <h1>Head {x}\n  body\n</>")
	card := children(t, f)[0].(*ast.Element)
	if len(card.Attributes) != 2 {
		t.Fatalf("attributes = %d", len(card.Attributes))
	}
	if card.Attributes[1].Value != nil {
		t.Error("bare attribute should have no value")
	}
	var line *ast.LineElement
	for _, c := range card.Children {
		if le, ok := c.(*ast.LineElement); ok {
			line = le
		}
	}
	if line == nil {
		t.Fatalf("no line element in %+v", card.Children)
	}
	if len(line.Children) != 2 {
		t.Fatalf("line children = %+v", line.Children)
	}
	if text, ok := line.Children[0].(*ast.Text); !ok || text.Content != "Head " {
		t.Errorf("line text = %+v", line.Children[0])
	}
}

func TestRawElements(t *testing.T) {
	f := mustParse(t, "<#Code lang='go'>x <|b> {y}<#Other/><#Code/>")
	raw := children(t, f)[0].(*ast.RawElement)
	if raw.Content != "x <|b> {y}<#Other/>" || !raw.NamedCloseTag {
		t.Errorf("raw element = %+v", raw)
	}

	f = mustParse(t, "<#>a</>b<#/>")
	frag := children(t, f)[0].(*ast.RawFragment)
	if frag.Content != "a</>b" {
		t.Errorf("raw fragment content = %q", frag.Content)
	}

	if _, err := ParseDocument("<#>never closed", "x"); err == nil {
		t.Error("unterminated raw fragment should fail")
	}
}

func TestComments(t *testing.T) {
	f := mustParse(t, "a // note\n/* block */b")
	want := []ast.Node{
		&ast.Text{Content: "a "},
		&ast.LineComment{Content: " note"},
		&ast.Whitespace{Content: "\n", HasNewline: true},
		&ast.BlockComment{Content: " block "},
		&ast.Text{Content: "b"},
	}
	if diff := cmp.Diff(want, children(t, f), ignoreIDs); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFailureMessages(t *testing.T) {
	tests := []struct {
		source  string
		message string
		column  int
	}{
		{"[1,2][0]", "Expected EOF", 6},
		{"a b", "Expected EOF", 3},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := ParseExpression(tt.source, "x.docsy")
			var perr *ParsingError
			if !errors.As(err, &perr) {
				t.Fatalf("got %v", err)
			}
			if perr.Message() != tt.message || perr.Position().Column != tt.column {
				t.Errorf("got %d: %q, want %d: %q", perr.Position().Column, perr.Message(), tt.column, tt.message)
			}
		})
	}

	for _, src := range []string{"", "{a: }", "[1,", "f(", "'open"} {
		_, err := ParseExpression(src, "x.docsy")
		if err == nil {
			t.Errorf("%q: expected an error", src)
			continue
		}
		if strings.Contains(err.Error(), "/^") {
			t.Errorf("%q: message exposes a pattern: %v", src, err)
		}
	}
}

func TestUnclosedElementReportsEOF(t *testing.T) {
	_, err := ParseDocument("<|Demo>hello", "x.docsy")
	var perr *ParsingError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v", err)
	}
	if perr.Stack[0].Pos != 12 {
		t.Errorf("deepest failure at %d, want 12", perr.Stack[0].Pos)
	}
	last := perr.Stack[len(perr.Stack)-1]
	if last.Message != "Unexpected EOF" {
		t.Errorf("outermost = %+v", last)
	}
}

func TestMaxDepth(t *testing.T) {
	deep := strings.Repeat("<|>", 200) + strings.Repeat("</>", 200)
	if _, err := ParseDocument(deep, "deep.docsy"); err != nil {
		t.Fatalf("default depth rejected 200 fragments: %v", err)
	}
	_, err := ParseDocument(deep, "deep.docsy", WithMaxDepth(50))
	if !errors.Is(err, pc.ErrMaxDepth) {
		t.Errorf("expected ErrMaxDepth, got %v", err)
	}
}

func TestRangesAreFrozen(t *testing.T) {
	f := mustParse(t, "x")
	if !f.Ranges.Frozen() {
		t.Error("ranges should be frozen after parsing")
	}
}
