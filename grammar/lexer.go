package grammar

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// Token is a span of input matched by a lexical production.
type Token struct {
	Kind  string
	Text  string
	Start int
	End   int
}

// KindOther marks a single character no token production matched.
const KindOther = "other"

// TokenKinds lists the productions the lexer emits by default. When two
// productions match the same length the earlier one wins.
var TokenKinds = []string{
	"whitespace",
	"line_comment",
	"block_comment",
	"string",
	"number",
	"identifier",
	"text",
}

type memoKey struct {
	name   string
	offset int
}

// Lexer splits input into tokens using the lexical productions of a
// grammar. At every offset it emits the longest match among its kinds.
type Lexer struct {
	grammar  ebnf.Grammar
	kinds    []string
	input    string
	pos      int
	memo     map[memoKey][]int
	visiting map[memoKey]bool
}

// NewLexer creates a lexer emitting the given kinds, or TokenKinds when
// none are given.
func NewLexer(g ebnf.Grammar, input string, kinds ...string) *Lexer {
	if len(kinds) == 0 {
		kinds = TokenKinds
	}
	return &Lexer{
		grammar:  g,
		kinds:    kinds,
		input:    input,
		memo:     make(map[memoKey][]int),
		visiting: make(map[memoKey]bool),
	}
}

// Next returns the next token, or false at the end of input.
func (l *Lexer) Next() (Token, bool) {
	if l.pos >= len(l.input) {
		return Token{}, false
	}
	start := l.pos
	kind, end := KindOther, -1
	for _, name := range l.kinds {
		if n := l.Match(name, start); n > 0 && start+n > end {
			kind, end = name, start+n
		}
	}
	if end < 0 {
		_, size := utf8.DecodeRuneInString(l.input[start:])
		end = start + size
	}
	l.pos = end
	return Token{Kind: kind, Text: l.input[start:end], Start: start, End: end}, true
}

// Tokenize returns all remaining tokens.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok, ok := l.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Match returns the length of the longest match of the named production at
// offset, or -1 when it does not match.
func (l *Lexer) Match(name string, offset int) int {
	ends := l.matchName(name, offset)
	if len(ends) == 0 {
		return -1
	}
	return ends[len(ends)-1] - offset
}

// match returns every offset at which a match of expr starting at offset
// can end, in increasing order.
func (l *Lexer) match(expr ebnf.Expression, offset int) []int {
	switch e := expr.(type) {
	case nil:
		return []int{offset}

	case *ebnf.Token:
		if strings.HasPrefix(l.input[offset:], e.String) {
			return []int{offset + len(e.String)}
		}
		return nil

	case *ebnf.Range:
		if offset >= len(l.input) {
			return nil
		}
		lo, _ := utf8.DecodeRuneInString(e.Begin.String)
		hi, _ := utf8.DecodeRuneInString(e.End.String)
		r, size := utf8.DecodeRuneInString(l.input[offset:])
		if r >= lo && r <= hi {
			return []int{offset + size}
		}
		return nil

	case ebnf.Sequence:
		ends := []int{offset}
		for _, item := range e {
			var next []int
			for _, pos := range ends {
				next = append(next, l.match(item, pos)...)
			}
			ends = unique(next)
			if len(ends) == 0 {
				return nil
			}
		}
		return ends

	case ebnf.Alternative:
		var ends []int
		for _, alt := range e {
			ends = append(ends, l.match(alt, offset)...)
		}
		return unique(ends)

	case *ebnf.Repetition:
		seen := map[int]bool{offset: true}
		ends := []int{offset}
		frontier := []int{offset}
		for len(frontier) > 0 {
			var next []int
			for _, pos := range frontier {
				for _, end := range l.match(e.Body, pos) {
					if !seen[end] {
						seen[end] = true
						ends = append(ends, end)
						next = append(next, end)
					}
				}
			}
			frontier = next
		}
		return unique(ends)

	case *ebnf.Option:
		return unique(append([]int{offset}, l.match(e.Body, offset)...))

	case *ebnf.Group:
		return l.match(e.Body, offset)

	case *ebnf.Name:
		return l.matchName(e.String, offset)
	}
	return nil
}

// matchName memoizes matches per production and offset. A production that
// refers to itself at the same offset does not match there.
func (l *Lexer) matchName(name string, offset int) []int {
	key := memoKey{name: name, offset: offset}
	if ends, ok := l.memo[key]; ok {
		return ends
	}
	if l.visiting[key] {
		return nil
	}
	prod, ok := l.grammar[name]
	if !ok {
		l.memo[key] = nil
		return nil
	}

	l.visiting[key] = true
	ends := l.match(prod.Expr, offset)
	delete(l.visiting, key)

	l.memo[key] = ends
	return ends
}

func unique(ends []int) []int {
	if len(ends) < 2 {
		return ends
	}
	sort.Ints(ends)
	out := ends[:1]
	for _, e := range ends[1:] {
		if e != out[len(out)-1] {
			out = append(out, e)
		}
	}
	return out
}
