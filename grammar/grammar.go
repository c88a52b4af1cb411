// Package grammar holds the Docsy syntax as an EBNF grammar and checks
// grammars with golang.org/x/exp/ebnf.
package grammar

import (
	"bytes"
	_ "embed"
	"io"
	"reflect"
	"sort"

	"golang.org/x/exp/ebnf"
)

// Start is the start production of the Docsy grammar.
const Start = "Docsy"

//go:embed docsy.ebnf
var source []byte

// Source returns the Docsy grammar text.
func Source() string {
	return string(source)
}

// Load parses the embedded Docsy grammar.
func Load() (ebnf.Grammar, error) {
	return ebnf.Parse("docsy.ebnf", bytes.NewReader(source))
}

// Check parses the grammar read from r and, when start is not empty,
// verifies that every production is defined and reachable from start.
func Check(filename string, r io.Reader, start string) (ebnf.Grammar, error) {
	g, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, err
	}
	if start == "" {
		return g, nil
	}
	if err := ebnf.Verify(g, start); err != nil {
		return g, err
	}
	return g, nil
}

// Errors splits the error list returned by the ebnf package into its
// entries.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	v := reflect.ValueOf(err)
	if v.Kind() != reflect.Slice {
		return []error{err}
	}
	out := make([]error, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if e, ok := v.Index(i).Interface().(error); ok {
			out = append(out, e)
		}
	}
	return out
}

// Productions returns the production names of g, syntactic ones first.
func Productions(g ebnf.Grammar) []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := isLexical(names[i]), isLexical(names[j])
		if li != lj {
			return lj
		}
		return names[i] < names[j]
	})
	return names
}

func isLexical(name string) bool {
	return name != "" && name[0] >= 'a' && name[0] <= 'z'
}
