package combinator

import (
	"fmt"
	"strings"
)

// StackEntry is one line of a flattened failure.
type StackEntry struct {
	Pos     int
	Rule    string
	Path    []string
	Message string
}

func (e StackEntry) String() string {
	if e.Rule == "" {
		return fmt.Sprintf("%d: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("%d: %s (%s)", e.Pos, e.Message, e.Rule)
}

// Error is returned by Run when the parser fails. Stack lists the failure
// chain with the deepest cause first.
type Error struct {
	Stack []StackEntry
	Err   error
}

func (e *Error) Error() string {
	if len(e.Stack) == 0 {
		return "parse failed"
	}
	lines := make([]string, len(e.Stack))
	for i, entry := range e.Stack {
		lines[i] = entry.String()
	}
	return strings.Join(lines, "\n")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Flatten turns a failure chain into a stack, deepest cause first.
func Flatten(f *Failure) []StackEntry {
	var stack []StackEntry
	for cur := f; cur != nil; cur = cur.Child {
		stack = append(stack, StackEntry{
			Pos:     cur.Pos,
			Rule:    cur.Rule(),
			Path:    cur.Path.Names(),
			Message: cur.Message,
		})
	}
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}

func rootErr(f *Failure) error {
	for cur := f; cur != nil; cur = cur.Child {
		if cur.Err != nil {
			return cur.Err
		}
	}
	return nil
}

// Run parses text with p. Parsing is all or nothing: the value is returned
// only when p succeeds, otherwise the error describes the furthest failure.
func Run[T any](p Parser[T], text string, ctx *Context) (T, error) {
	if ctx == nil {
		ctx = &Context{}
	}
	r := p.Parse(NewCursor(text), NewState(ctx))
	if !r.OK() {
		var zero T
		return zero, &Error{Stack: Flatten(r.Failure), Err: rootErr(r.Failure)}
	}
	return r.Value, nil
}
