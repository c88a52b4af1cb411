package resolve_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/docsy/ast"
	"github.com/dhamidi/docsy/parser"
	"github.com/dhamidi/docsy/resolve"
)

func resolveDocument(t *testing.T, src string, opts resolve.Options) (any, error) {
	t.Helper()
	f, err := parser.ParseDocument(src, "test.docsy")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return resolve.Resolve(f, opts)
}

func resolveExpression(t *testing.T, src string, opts resolve.Options) (any, error) {
	t.Helper()
	f, err := parser.ParseExpression(src, "test.docsy")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return resolve.Resolve(f, opts)
}

func TestResolveText(t *testing.T) {
	tests := []struct {
		src     string
		globals map[string]any
		want    any
	}{
		{"Hello {'Paul'}", nil, "Hello Paul"},
		{"The sky is {color}", map[string]any{"color": "Blue"}, "The sky is Blue"},
		{"", nil, nil},
		{"just text", nil, "just text"},
		{"a{ }b", nil, "ab"},
		{`a \{ b`, nil, "a { b"},
		{"x // note\ny", nil, "x \ny"},
		{"{user.name}", map[string]any{"user": map[string]any{"name": "Ada"}}, "Ada"},
		{"Hello {a} {b}", map[string]any{"a": "John", "b": "Doe"}, "Hello John Doe"},
		{"{a}\n{b}", map[string]any{"a": "John", "b": "Doe"}, "John\nDoe"},
		{"{a} /* c */ {b}", map[string]any{"a": "John", "b": "Doe"}, "John  Doe"},
		{"  {a}  ", map[string]any{"a": "John", "b": "Doe"}, "John"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := resolveDocument(t, tt.src, resolve.Options{Globals: tt.globals})
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveExpressions(t *testing.T) {
	upper := resolve.Func(func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("want 1 argument, got %d", len(args))
		}
		return strings.ToUpper(args[0].(string)), nil
	})
	globals := map[string]any{
		"xs":    []any{1.0, 2.0},
		"obj":   map[string]any{"a": 1.0, "b": "two"},
		"upper": upper,
		"k":     "dyn",
	}
	tests := []struct {
		src  string
		want any
	}{
		{"1.5", 1.5},
		{"true", true},
		{"null", nil},
		{"undefined", resolve.Undefined},
		{"[]", []any{}},
		{"{}", map[string]any{}},
		{"[1, 'a', ...xs,]", []any{1.0, "a", 1.0, 2.0}},
		{"{a: 1, 'b c': 2, [k]: 3, obj, ...obj}", map[string]any{
			"a": 1.0, "b c": 2.0, "dyn": 3.0, "b": "two",
			"obj": map[string]any{"a": 1.0, "b": "two"},
		}},
		{"xs[1]", 2.0},
		{"xs[5]", resolve.Undefined},
		{"xs[-1]", resolve.Undefined},
		{"xs[0.5]", resolve.Undefined},
		{"xs[99999999999999999999]", resolve.Undefined},
		{"xs[9223372036854775808]", resolve.Undefined},
		{"xs.length", 2.0},
		{"obj['b']", "two"},
		{"obj.missing", resolve.Undefined},
		{"upper('hi')", "HI"},
		{"( upper(obj.b) )", "TWO"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := resolveExpression(t, tt.src, resolve.Options{Globals: globals})
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got, cmp.Comparer(func(a, b resolve.Func) bool { return true })); diff != "" {
				t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveElements(t *testing.T) {
	globals := map[string]any{
		"Card": "Card",
		"ui":   map[string]any{"Button": "Button"},
		"name": "Ada",
	}
	opts := resolve.Options{Globals: globals, ElementConstructor: resolve.BuildElement}

	got, err := resolveDocument(t, `<|Card key="c1" title=name wide>Hi {name}</>`, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := &resolve.Element{
		Type:  "Card",
		Props: map[string]any{"title": "Ada", "wide": true, "children": "Hi Ada"},
		Key:   "c1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("element mismatch (-want +got):\n%s", diff)
	}

	got, err = resolveDocument(t, "</ui.Button/>", opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&resolve.Element{Type: "Button", Props: map[string]any{}}, got); diff != "" {
		t.Errorf("member element mismatch (-want +got):\n%s", diff)
	}

	got, err = resolveDocument(t, "<#Card>  {raw} <#Card/>", opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&resolve.Element{Type: "Card", Props: map[string]any{"children": "  {raw} "}}, got); diff != "" {
		t.Errorf("raw element mismatch (-want +got):\n%s", diff)
	}

	got, err = resolveDocument(t, "<|>a</>\n<|Card></>", opts)
	if err != nil {
		t.Fatal(err)
	}
	list, ok := got.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("expected two values, got %#v", got)
	}
	if el := list[0].(*resolve.Element); el.Type != resolve.Fragment || el.Props["children"] != "a" {
		t.Errorf("fragment = %#v", el)
	}
	if _, ok := list[1].(*resolve.Element).Props["children"]; ok {
		t.Error("empty element should have no children prop")
	}
}

func TestResolveErrors(t *testing.T) {
	_, err := resolveDocument(t, "Hi\n  {who}", resolve.Options{})
	var missing *resolve.MissingGlobalError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingGlobalError, got %v", err)
	}
	if missing.Name != "who" {
		t.Errorf("Name = %q", missing.Name)
	}
	if err.Error() != "test.docsy:2:4: Missing global who" {
		t.Errorf("Error() = %q", err.Error())
	}

	_, err = resolveDocument(t, "{count}", resolve.Options{Globals: map[string]any{"count": 3.0}})
	var inject *resolve.CannotResolveInjectError
	if !errors.As(err, &inject) || inject.Value != 3.0 {
		t.Errorf("expected CannotResolveInjectError, got %v", err)
	}

	_, err = resolveDocument(t, "<|Card></>", resolve.Options{Globals: map[string]any{"Card": "Card"}})
	var jsx *resolve.MissingJsxFunctionError
	if !errors.As(err, &jsx) {
		t.Errorf("expected MissingJsxFunctionError, got %v", err)
	}

	_, err = resolveExpression(t, "x()", resolve.Options{Globals: map[string]any{"x": 1.0}})
	var cannot *resolve.CannotResolveNodeError
	if !errors.As(err, &cannot) {
		t.Errorf("expected CannotResolveNodeError, got %v", err)
	}
	var ferr *ast.FileError
	if !errors.As(err, &ferr) {
		t.Error("resolve errors should unwrap to *ast.FileError")
	}
}

func TestElementJSON(t *testing.T) {
	el := &resolve.Element{
		Type:  resolve.Fragment,
		Props: map[string]any{"x": resolve.Undefined, "children": []any{"a", 1.0}},
	}
	data, err := json.Marshal(el)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"Fragment","props":{"children":["a",1],"x":null}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	v, err := resolveExpression(t, "[1, "+strings.Repeat("9", 400)+"]", resolve.Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err = json.Marshal(resolve.JSON(v))
	if err != nil {
		t.Fatal(err)
	}
	want = `[1,null]`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
