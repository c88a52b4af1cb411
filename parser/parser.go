package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/docsy/ast"
	pc "github.com/dhamidi/docsy/combinator"
)

type Option func(*config)

type config struct {
	maxDepth int
}

// WithMaxDepth bounds grammar nesting. Input nested deeper than this fails
// with an error wrapping combinator.ErrMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// ParseDocument parses a markup document.
func ParseDocument(source, filename string, opts ...Option) (*ast.File, error) {
	return parse(docsy.document.Parser(), source, filename, opts)
}

// ParseExpression parses a file holding a single expression surrounded by
// optional whitespace and comments.
func ParseExpression(source, filename string, opts ...Option) (*ast.File, error) {
	return parse(docsy.expressionDocument.Parser(), source, filename, opts)
}

func parse[T ast.Node](p pc.Parser[T], source, filename string, opts []Option) (*ast.File, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	ranges := ast.NewRanges()
	ctx := &pc.Context{User: ranges, MaxDepth: cfg.maxDepth}
	root, err := pc.Run(p, source, ctx)
	ranges.Freeze()
	if err != nil {
		var perr *pc.Error
		if errors.As(err, &perr) {
			return nil, &ParsingError{File: filename, Source: source, Stack: perr.Stack, Err: perr.Err}
		}
		return nil, err
	}
	return &ast.File{Filename: filename, Source: source, Root: root, Ranges: ranges}, nil
}

// ParsingError reports the furthest failure of a parse. Stack lists the
// failure chain with the deepest cause first.
type ParsingError struct {
	File   string
	Source string
	Stack  []pc.StackEntry
	Err    error
}

func (e *ParsingError) Error() string {
	if len(e.Stack) == 0 {
		return fmt.Sprintf("%s: parse failed", e.File)
	}
	var b strings.Builder
	top := e.Stack[0]
	fmt.Fprintf(&b, "%s: %s", e.Position(), top.Message)
	for _, entry := range e.Stack[1:] {
		pos := ast.PositionFor("", e.Source, entry.Pos)
		fmt.Fprintf(&b, "\n\t%s: %s", pos, entry.Message)
		if entry.Rule != "" {
			fmt.Fprintf(&b, " (%s)", entry.Rule)
		}
	}
	return b.String()
}

func (e *ParsingError) Unwrap() error {
	return e.Err
}

// Position returns the location of the deepest failure.
func (e *ParsingError) Position() ast.Position {
	if len(e.Stack) == 0 {
		return ast.PositionFor(e.File, e.Source, 0)
	}
	return ast.PositionFor(e.File, e.Source, e.Stack[0].Pos)
}

// Message is the message of the deepest failure.
func (e *ParsingError) Message() string {
	if len(e.Stack) == 0 {
		return "parse failed"
	}
	return e.Stack[0].Message
}

// Snippet renders the source around the failure with a caret.
func (e *ParsingError) Snippet() string {
	return ast.Snippet(e.Source, e.Position())
}
