package grammar

import (
	"strings"
	"testing"
)

func TestEmbeddedGrammarVerifies(t *testing.T) {
	g, err := Check("docsy.ebnf", strings.NewReader(Source()), Start)
	if err != nil {
		for _, e := range Errors(err) {
			t.Error(e)
		}
		t.FailNow()
	}
	for _, name := range []string{"Document", "ExpressionDocument", "Element", "Inject", "identifier", "string"} {
		if _, ok := g[name]; !ok {
			t.Errorf("missing production %s", name)
		}
	}
}

func TestLoad(t *testing.T) {
	g, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	names := Productions(g)
	if names[0] != "AnyElement" {
		t.Errorf("first production = %s", names[0])
	}
	if last := names[len(names)-1]; !isLexical(last) {
		t.Errorf("last production %s should be lexical", last)
	}
}

func TestCheckReportsErrors(t *testing.T) {
	src := `Start = Used | Missing .
Used = "x" .
Unused = "y" .
`
	_, err := Check("bad.ebnf", strings.NewReader(src), "Start")
	if err == nil {
		t.Fatal("expected verification errors")
	}
	errs := Errors(err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors: %v", len(errs), errs)
	}
	joined := err.Error() + errs[0].Error() + errs[1].Error()
	for _, want := range []string{"Missing", "Unused"} {
		if !strings.Contains(joined, want) {
			t.Errorf("errors do not mention %s: %v", want, errs)
		}
	}

	if _, err := Check("syntax.ebnf", strings.NewReader("Start = ."), ""); err != nil {
		t.Errorf("empty production should parse: %v", err)
	}
	if _, err := Check("syntax.ebnf", strings.NewReader("Start = "), ""); err == nil {
		t.Error("expected a syntax error")
	}
}
