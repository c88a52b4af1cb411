package repl

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestEval(t *testing.T) {
	r := New(io.Discard, Options{Globals: map[string]any{"color": "Blue"}})

	steps := []struct {
		input string
		want  string
	}{
		{"[1, color]", "[\n  1,\n  \"Blue\"\n]\n"},
		{"undefined", "undefined\n"},
		{":let x = {a: 1}", ""},
		{"x.a", "1\n"},
		{":globals", "color = \"Blue\"\nx = {\n  \"a\": 1\n}\n"},
		{":doc", "reading documents\n"},
		{"Hi {color}", "\"Hi Blue\"\n"},
		{":expr", "reading expressions\n"},
	}
	for _, step := range steps {
		got, err := r.Eval(step.input)
		if err != nil {
			t.Fatalf("Eval(%q): %v", step.input, err)
		}
		if got != step.want {
			t.Errorf("Eval(%q) = %q, want %q", step.input, got, step.want)
		}
	}
}

func TestEvalAST(t *testing.T) {
	r := New(io.Discard, Options{Globals: map[string]any{"name": "Ada"}})
	if _, err := r.Eval(":ast"); err != nil {
		t.Fatal(err)
	}
	got, err := r.Eval("name")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Identifier") || !strings.HasSuffix(got, "\"Ada\"\n") {
		t.Errorf("Eval = %q", got)
	}
}

func TestEvalErrors(t *testing.T) {
	r := New(io.Discard, Options{})
	if _, err := r.Eval(":quit"); !errors.Is(err, ErrQuit) {
		t.Errorf("expected ErrQuit, got %v", err)
	}
	if _, err := r.Eval(":nope"); err == nil {
		t.Error("expected an error for an unknown command")
	}
	if _, err := r.Eval(":let = 1"); err == nil {
		t.Error("expected a usage error")
	}
	if _, err := r.Eval("missing"); err == nil || !strings.Contains(err.Error(), "Missing global missing") {
		t.Errorf("expected a missing global error, got %v", err)
	}
}

func TestIncomplete(t *testing.T) {
	r := New(io.Discard, Options{})
	tests := []struct {
		src  string
		want bool
	}{
		{"[1, 2", true},
		{"{a: ", true},
		{"[1, 2]", false},
		{"[1,, ]", false},
	}
	for _, tt := range tests {
		if got := r.Incomplete(tt.src); got != tt.want {
			t.Errorf("Incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}
