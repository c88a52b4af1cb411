package format

import (
	"sort"
	"strings"

	"github.com/dhamidi/docsy/ast"
)

// FormatStr returns an equivalent string literal that needs the fewest
// escapes. The original quote is kept when it needs none; otherwise the
// other quote kinds are tried, backtick last. If every quote needs escaping
// the original quote is kept and escaped. Single and double quoted strings
// cannot span lines, so a value with a newline always uses backticks.
//
// The result is a new, untracked node; FormatStr(FormatStr(s)) equals
// FormatStr(s).
func FormatStr(s *ast.Str) *ast.Str {
	value := s.Value()
	for _, q := range quoteOrder(s.Quote) {
		if allowed(value, q) && strings.Count(value, q.Char()) == 0 {
			return &ast.Str{Raw: escape(value, q), Quote: q}
		}
	}
	q := s.Quote
	if !allowed(value, q) {
		q = ast.QuoteBacktick
	}
	return &ast.Str{Raw: escape(value, q), Quote: q}
}

func quoteOrder(original ast.Quote) []ast.Quote {
	switch original {
	case ast.QuoteDouble:
		return []ast.Quote{ast.QuoteDouble, ast.QuoteSingle, ast.QuoteBacktick}
	case ast.QuoteBacktick:
		return []ast.Quote{ast.QuoteBacktick, ast.QuoteSingle, ast.QuoteDouble}
	default:
		return []ast.Quote{ast.QuoteSingle, ast.QuoteDouble, ast.QuoteBacktick}
	}
}

func allowed(value string, q ast.Quote) bool {
	return q == ast.QuoteBacktick || !strings.Contains(value, "\n")
}

func escape(value string, q ast.Quote) string {
	quote := q.Char()
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case string(r) == quote:
			b.WriteString(`\`)
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatQuotes rewrites every string literal of f through FormatStr and
// returns the new source. Everything outside string literals is copied
// unchanged.
func FormatQuotes(f *ast.File) (string, error) {
	type edit struct {
		r    ast.Range
		text string
	}
	var edits []edit
	var err error
	ast.Inspect(f.Root, func(n ast.Node) bool {
		s, ok := n.(*ast.Str)
		if !ok || err != nil {
			return err == nil
		}
		r, ok := f.Range(s)
		if !ok {
			err = &CannotSerializeNodeError{&ast.FileError{File: f, Node: s, Message: "String literal has no source range"}}
			return false
		}
		text, serr := Serialize(FormatStr(s))
		if serr != nil {
			err = serr
			return false
		}
		edits = append(edits, edit{r: r, text: text})
		return false
	})
	if err != nil {
		return "", err
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].r.Start < edits[j].r.Start })

	var b strings.Builder
	last := 0
	for _, e := range edits {
		b.WriteString(f.Source[last:e.r.Start])
		b.WriteString(e.text)
		last = e.r.End
	}
	b.WriteString(f.Source[last:])
	return b.String(), nil
}
