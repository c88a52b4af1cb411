// Package combinator is a small backtracking parser-combinator engine.
//
// Parsers are values: given a Cursor and a State they return a Result. They
// never mutate the cursor, so alternatives are tried from the same position
// by simply calling them again. Diagnostics follow the furthest failure seen
// on any branch, including branches that were abandoned in favour of a
// success.
package combinator

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrMaxDepth is reported when rule nesting exceeds Context.MaxDepth.
var ErrMaxDepth = errors.New("maximum nesting depth exceeded")

// DefaultMaxDepth bounds rule nesting when Context.MaxDepth is zero.
const DefaultMaxDepth = 4000

// Context is the state shared by every parser during one run. It is owned
// by a single parse and must not be reused concurrently.
type Context struct {
	// User carries grammar-specific data such as the node range table.
	User     any
	MaxDepth int

	depth int
}

func (ctx *Context) enter() bool {
	ctx.depth++
	limit := ctx.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	return ctx.depth <= limit
}

func (ctx *Context) leave() {
	ctx.depth--
}

// guard is the set of parsers already being attempted, keyed by position.
type guard struct {
	id     uint64
	pos    int
	parent *guard
}

func (g *guard) has(id uint64, pos int) bool {
	for e := g; e != nil; e = e.parent {
		if e.pos != pos {
			continue
		}
		if e.id == id {
			return true
		}
	}
	return false
}

// State is threaded through every parser call.
type State struct {
	path  *Path
	guard *guard
	ctx   *Context
}

func NewState(ctx *Context) State {
	return State{ctx: ctx}
}

func (s State) Context() *Context {
	return s.ctx
}

func (s State) Path() *Path {
	return s.path
}

// Fail creates a failure at pos attributed to the current rule.
func (s State) Fail(pos int, format string, args ...any) *Failure {
	return &Failure{Pos: pos, Path: s.path, Message: fmt.Sprintf(format, args...)}
}

func (s State) withGuard(id uint64, pos int) State {
	s.guard = &guard{id: id, pos: pos, parent: s.guard}
	return s
}

// Parser produces a T from a cursor.
type Parser[T any] struct {
	name  string
	parse func(c Cursor, s State) Result[T]
}

// New wraps a parse function into a Parser.
func New[T any](name string, fn func(c Cursor, s State) Result[T]) Parser[T] {
	return Parser[T]{name: name, parse: fn}
}

func (p Parser[T]) Name() string {
	return p.name
}

func (p Parser[T]) Parse(c Cursor, s State) Result[T] {
	return p.parse(c, s)
}

func erase[T any](p Parser[T]) Parser[any] {
	return Parser[any]{name: p.name, parse: func(c Cursor, s State) Result[any] {
		return p.parse(c, s).erase()
	}}
}

var lastID atomic.Uint64

func nextID() uint64 {
	return lastID.Add(1)
}

// Rule is a named parser that can be referenced before it is defined. This
// is what allows mutually recursive grammars: declare every rule with
// NewRule, use rule.Parser() freely, then Bind each rule once.
type Rule[T any] struct {
	id     uint64
	name   string
	parser *Parser[T]
}

func NewRule[T any](name string) *Rule[T] {
	return &Rule[T]{id: nextID(), name: name}
}

func (r *Rule[T]) Name() string {
	return r.name
}

// Bind installs the rule's parser. Binding a rule twice is a programming
// error.
func (r *Rule[T]) Bind(p Parser[T]) {
	if r.parser != nil {
		panic(fmt.Sprintf("combinator: rule %s bound twice", r.name))
	}
	r.parser = &p
}

// Parser returns the indirection used to reference the rule from other
// parsers.
func (r *Rule[T]) Parser() Parser[T] {
	return Parser[T]{name: r.name, parse: r.parse}
}

func (r *Rule[T]) parse(c Cursor, s State) Result[T] {
	if r.parser == nil {
		panic(fmt.Sprintf("combinator: rule %s used before Bind", r.name))
	}
	pos := c.Position()
	inner := s
	inner.path = s.path.Push(r.name)
	if s.guard.has(r.id, pos) {
		return Failed[T](inner.Fail(pos, "Left recursion in %s", r.name))
	}
	if !s.ctx.enter() {
		s.ctx.leave()
		f := inner.Fail(pos, "%v", ErrMaxDepth)
		f.Fatal = true
		f.Err = ErrMaxDepth
		return Failed[T](f)
	}
	defer s.ctx.leave()
	return r.parser.parse(c, inner.withGuard(r.id, pos))
}
