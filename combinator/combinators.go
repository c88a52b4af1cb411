package combinator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Match describes the span covered by a successful sequence and gives
// transforms access to the parse context.
type Match struct {
	Start int
	End   int
	Ctx   *Context
}

// SemanticError is returned by transforms to reject input that is
// syntactically valid but wrong. It becomes a fatal failure at Pos: ordered
// choice and repetition will not backtrack over it.
type SemanticError struct {
	Pos     int
	Message string
}

func (e *SemanticError) Error() string {
	return e.Message
}

func transformFailure(s State, m Match, err error) *Failure {
	f := &Failure{Pos: m.Start, Path: s.path, Message: err.Error(), Fatal: true, Err: err}
	var se *SemanticError
	if errors.As(err, &se) {
		f.Pos = se.Pos
		f.Message = se.Message
	}
	return f
}

// Exact matches a literal prefix.
func Exact(literal string) Parser[string] {
	return New("Exact", func(c Cursor, s State) Result[string] {
		if c.Peek(len(literal)) == literal {
			return Success(literal, c, c.Skip(len(literal)), nil)
		}
		if c.Empty() {
			return Failed[string](s.Fail(c.Position(), "Unexpected EOF, expected %s", strconv.Quote(literal)))
		}
		return Failed[string](s.Fail(c.Position(), "Expected %s", strconv.Quote(literal)))
	})
}

var multiLineFlag = regexp.MustCompile(`\(\?[a-zA-Z]*m`)

func compileAnchored(pattern string) *regexp.Regexp {
	if !strings.HasPrefix(pattern, "^") {
		panic(fmt.Sprintf("combinator: pattern %q must be anchored with ^", pattern))
	}
	if multiLineFlag.MatchString(pattern) {
		panic(fmt.Sprintf("combinator: pattern %q must not use multi-line mode", pattern))
	}
	return regexp.MustCompile(pattern)
}

// Regexp matches pattern against the remaining input and returns the full
// match. The pattern must start with ^ and must not enable multi-line mode,
// otherwise it could match somewhere other than the cursor position; both
// are checked at construction and violations panic.
func Regexp(pattern string) Parser[string] {
	re := compileAnchored(pattern)
	return New("Regexp", func(c Cursor, s State) Result[string] {
		loc := re.FindStringIndex(c.Rest())
		if loc == nil || loc[0] != 0 {
			return Failed[string](regexpFailure(c, s, pattern))
		}
		return Success(c.Peek(loc[1]), c, c.Skip(loc[1]), nil)
	})
}

// RegexpGroups is like Regexp but returns the full match followed by every
// capture group.
func RegexpGroups(pattern string) Parser[[]string] {
	re := compileAnchored(pattern)
	return New("Regexp", func(c Cursor, s State) Result[[]string] {
		groups := re.FindStringSubmatch(c.Rest())
		if groups == nil {
			return Failed[[]string](regexpFailure(c, s, pattern))
		}
		return Success(groups, c, c.Skip(len(groups[0])), nil)
	})
}

func regexpFailure(c Cursor, s State, pattern string) *Failure {
	if c.Empty() {
		return s.Fail(c.Position(), "Unexpected EOF, expected /%s/", pattern)
	}
	return s.Fail(c.Position(), "Expected /%s/", pattern)
}

// EOF succeeds only at the end of input.
func EOF() Parser[struct{}] {
	return New("EOF", func(c Cursor, s State) Result[struct{}] {
		if c.Empty() {
			return Success(struct{}{}, c, c, nil)
		}
		return Failed[struct{}](s.Fail(c.Position(), "Expected EOF"))
	})
}

// Map transforms the value of a successful parse. An error returned by fn
// is fatal.
func Map[T, R any](p Parser[T], fn func(m Match, v T) (R, error)) Parser[R] {
	return New(p.name, func(c Cursor, s State) Result[R] {
		r := p.parse(c, s)
		if !r.OK() {
			return Failed[R](r.Failure)
		}
		m := Match{Start: r.Start, End: r.End, Ctx: s.ctx}
		v, err := fn(m, r.Value)
		if err != nil {
			return Failed[R](transformFailure(s, m, err))
		}
		return Result[R]{Value: v, Start: r.Start, End: r.End, Rest: r.Rest, IfError: r.IfError}
	})
}

// Many repeats p until it fails. Without allowEmpty, matching nothing is a
// failure. A repetition that stops making progress ends the loop. The
// failure that ends the loop is kept as an optional failure.
func Many[T any](p Parser[T], allowEmpty bool) Parser[[]T] {
	return New("Many", func(c Cursor, s State) Result[[]T] {
		var items []T
		var tr Tracker[T]
		cur := c
		for {
			r := p.parse(cur, s)
			if r.Fatal() {
				return Failed[[]T](r.Failure)
			}
			if !r.OK() {
				tr.Observe(r.Failure.optional())
				break
			}
			tr.Update(r)
			if r.End == cur.Position() {
				break
			}
			items = append(items, r.Value)
			cur = r.Rest
		}
		if len(items) == 0 && !allowEmpty {
			pos := c.Position()
			if f := tr.Failure(); f != nil && f.Pos > pos {
				pos = f.Pos
			}
			return Failed[[]T](&Failure{
				Pos:     pos,
				Path:    s.path,
				Message: "Expected at least one item",
				Child:   tr.Failure(),
			})
		}
		return Success(items, c, cur, tr.Failure())
	})
}

// SepItem is one separator/item pair following the head of a ManySepBy.
type SepItem[T, S any] struct {
	Sep  S
	Item T
}

// SepBy is the result of ManySepBy. Trailing is non-nil when a trailing
// separator was consumed.
type SepBy[T, S any] struct {
	Head     T
	HasHead  bool
	Tail     []SepItem[T, S]
	Trailing *S
}

// Items returns the head followed by every tail item.
func (sb SepBy[T, S]) Items() []T {
	if !sb.HasHead {
		return nil
	}
	items := []T{sb.Head}
	for _, t := range sb.Tail {
		items = append(items, t.Item)
	}
	return items
}

// ManySepBy parses item (sep item)*. A separator that is not followed by an
// item fails the whole parse unless allowTrailing is set, in which case the
// separator is kept as Trailing.
func ManySepBy[T, S any](item Parser[T], sep Parser[S], allowTrailing, allowEmpty bool) Parser[SepBy[T, S]] {
	return New("ManySepBy", func(c Cursor, s State) Result[SepBy[T, S]] {
		var out SepBy[T, S]
		var tr Tracker[T]
		head := item.parse(c, s)
		if head.Fatal() {
			return Failed[SepBy[T, S]](head.Failure)
		}
		if !head.OK() {
			if allowEmpty {
				return Success(out, c, c, head.Failure)
			}
			return Failed[SepBy[T, S]](head.Failure)
		}
		tr.Update(head)
		out.Head = head.Value
		out.HasHead = true
		cur := head.Rest
		for {
			sr := sep.parse(cur, s)
			if sr.Fatal() {
				return Failed[SepBy[T, S]](sr.Failure)
			}
			if !sr.OK() {
				tr.Observe(sr.Failure)
				break
			}
			tr.Observe(sr.IfError)
			ir := item.parse(sr.Rest, s)
			if ir.Fatal() {
				return Failed[SepBy[T, S]](ir.Failure)
			}
			if !ir.OK() {
				if allowTrailing {
					tr.Observe(ir.Failure)
					sepValue := sr.Value
					out.Trailing = &sepValue
					cur = sr.Rest
					break
				}
				return Failed[SepBy[T, S]](&Failure{
					Pos:     ir.Failure.Pos,
					Path:    s.path,
					Message: "Expected item after separator",
					Child:   ir.Failure,
				})
			}
			tr.Update(ir)
			out.Tail = append(out.Tail, SepItem[T, S]{Sep: sr.Value, Item: ir.Value})
			cur = ir.Rest
		}
		return Success(out, c, cur, tr.Failure())
	})
}

// Maybe never fails. When p does not match it yields the zero value and
// keeps p's failure as diagnostic context.
func Maybe[T any](p Parser[T]) Parser[T] {
	return New("Maybe", func(c Cursor, s State) Result[T] {
		r := p.parse(c, s)
		if r.OK() || r.Fatal() {
			return r
		}
		var zero T
		return Success(zero, c, c, r.Failure.optional())
	})
}

// Expect names what p matches in its failure messages. Failures at the
// start position are reported as "Expected <what>"; failures further in
// are left alone.
func Expect[T any](p Parser[T], what string) Parser[T] {
	return New(p.name, func(c Cursor, s State) Result[T] {
		r := p.parse(c, s)
		if r.OK() || r.Fatal() || r.Failure.Pos != c.Position() {
			return r
		}
		f := *r.Failure
		f.Child = nil
		if c.Empty() {
			f.Message = "Unexpected EOF, expected " + what
		} else {
			f.Message = "Expected " + what
		}
		return Failed[T](&f)
	})
}

// OneOf is ordered choice: the first alternative that succeeds wins. The
// reported failure, or the IfError of the winner, is the furthest failure
// across every alternative attempted.
func OneOf[T any](parsers ...Parser[T]) Parser[T] {
	return New("OneOf", func(c Cursor, s State) Result[T] {
		var tr Tracker[T]
		for _, p := range parsers {
			r := p.parse(c, s)
			if r.Fatal() {
				return r
			}
			tr.Update(r)
			if r.OK() {
				best, _ := tr.Success()
				return best
			}
		}
		if f := tr.Failure(); f != nil {
			return Failed[T](f)
		}
		return Failed[T](s.Fail(c.Position(), "No alternative"))
	})
}

// seq runs parsers in order. The sequence itself is placed in the recursion
// guard for its start position, so it cannot be re-entered there. The guard
// is keyed on the sequence rather than its first parser: re-entering the
// sequence at its start re-enters the first parser at the same position,
// while a first parser shared by unrelated sequences stays usable.
func seq[R any](parsers []Parser[any], fn func(m Match, values []any) (R, error)) Parser[R] {
	id := nextID()
	return New("Pipe", func(c Cursor, s State) Result[R] {
		pos := c.Position()
		if s.guard.has(id, pos) {
			return Failed[R](s.Fail(pos, "Left recursion in sequence"))
		}
		inner := s.withGuard(id, pos)
		values := make([]any, len(parsers))
		var tr Tracker[any]
		cur := c
		for i, p := range parsers {
			r := p.parse(cur, inner)
			if r.Fatal() {
				return Failed[R](r.Failure)
			}
			if !r.OK() {
				tr.Observe(r.Failure)
				return Failed[R](tr.Failure())
			}
			tr.Observe(r.IfError)
			values[i] = r.Value
			cur = r.Rest
		}
		m := Match{Start: pos, End: cur.Position(), Ctx: s.ctx}
		v, err := fn(m, values)
		if err != nil {
			return Failed[R](transformFailure(s, m, err))
		}
		return Success(v, c, cur, tr.Failure())
	})
}

// as converts an erased value back, mapping a nil interface to the zero
// value of T.
func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Pipe2 parses a then b and combines them with fn.
func Pipe2[A, B, R any](a Parser[A], b Parser[B], fn func(m Match, a A, b B) (R, error)) Parser[R] {
	return seq([]Parser[any]{erase(a), erase(b)}, func(m Match, v []any) (R, error) {
		return fn(m, as[A](v[0]), as[B](v[1]))
	})
}

func Pipe3[A, B, C, R any](a Parser[A], b Parser[B], c Parser[C], fn func(m Match, a A, b B, c C) (R, error)) Parser[R] {
	return seq([]Parser[any]{erase(a), erase(b), erase(c)}, func(m Match, v []any) (R, error) {
		return fn(m, as[A](v[0]), as[B](v[1]), as[C](v[2]))
	})
}

func Pipe4[A, B, C, D, R any](a Parser[A], b Parser[B], c Parser[C], d Parser[D], fn func(m Match, a A, b B, c C, d D) (R, error)) Parser[R] {
	return seq([]Parser[any]{erase(a), erase(b), erase(c), erase(d)}, func(m Match, v []any) (R, error) {
		return fn(m, as[A](v[0]), as[B](v[1]), as[C](v[2]), as[D](v[3]))
	})
}

func Pipe5[A, B, C, D, E, R any](a Parser[A], b Parser[B], c Parser[C], d Parser[D], e Parser[E], fn func(m Match, a A, b B, c C, d D, e E) (R, error)) Parser[R] {
	return seq([]Parser[any]{erase(a), erase(b), erase(c), erase(d), erase(e)}, func(m Match, v []any) (R, error) {
		return fn(m, as[A](v[0]), as[B](v[1]), as[C](v[2]), as[D](v[3]), as[E](v[4]))
	})
}

func Pipe6[A, B, C, D, E, F, R any](a Parser[A], b Parser[B], c Parser[C], d Parser[D], e Parser[E], f Parser[F], fn func(m Match, a A, b B, c C, d D, e E, f F) (R, error)) Parser[R] {
	return seq([]Parser[any]{erase(a), erase(b), erase(c), erase(d), erase(e), erase(f)}, func(m Match, v []any) (R, error) {
		return fn(m, as[A](v[0]), as[B](v[1]), as[C](v[2]), as[D](v[3]), as[E](v[4]), as[F](v[5]))
	})
}

func Pipe7[A, B, C, D, E, F, G, R any](a Parser[A], b Parser[B], c Parser[C], d Parser[D], e Parser[E], f Parser[F], g Parser[G], fn func(m Match, a A, b B, c C, d D, e E, f F, g G) (R, error)) Parser[R] {
	return seq([]Parser[any]{erase(a), erase(b), erase(c), erase(d), erase(e), erase(f), erase(g)}, func(m Match, v []any) (R, error) {
		return fn(m, as[A](v[0]), as[B](v[1]), as[C](v[2]), as[D](v[3]), as[E](v[4]), as[F](v[5]), as[G](v[6]))
	})
}

// ReduceRight parses init once, then keeps parsing condition and folding
// each match onto the accumulated value with combine. This expresses left
// recursive rules such as a.b(c)[d] without recursing on the left. The
// Match handed to combine spans from the start of init to the end of the
// current condition.
func ReduceRight[T, C any](init Parser[T], condition Parser[C], combine func(m Match, acc T, v C) (T, error)) Parser[T] {
	return New("ReduceRight", func(c Cursor, s State) Result[T] {
		r := init.parse(c, s)
		if !r.OK() {
			return r
		}
		var tr Tracker[C]
		tr.Observe(r.IfError)
		acc := r.Value
		cur := r.Rest
		for {
			cr := condition.parse(cur, s)
			if cr.Fatal() {
				return Failed[T](cr.Failure)
			}
			if !cr.OK() {
				tr.Observe(cr.Failure.optional())
				break
			}
			tr.Update(cr)
			if cr.End == cur.Position() {
				break
			}
			m := Match{Start: c.Position(), End: cr.End, Ctx: s.ctx}
			next, err := combine(m, acc, cr.Value)
			if err != nil {
				return Failed[T](transformFailure(s, m, err))
			}
			acc = next
			cur = cr.Rest
		}
		return Success(acc, c, cur, tr.Failure())
	})
}

// Between is the result of ManyBetween.
type Between[B, T, E any] struct {
	Begin B
	Items []T
	End   E
}

// ManyBetween parses begin, then items until end matches. end is tried
// before every item. Running out of input before end matches is reported as
// an unexpected EOF rather than as an item mismatch.
func ManyBetween[B, T, E any](begin Parser[B], item Parser[T], end Parser[E]) Parser[Between[B, T, E]] {
	return New("ManyBetween", func(c Cursor, s State) Result[Between[B, T, E]] {
		br := begin.parse(c, s)
		if !br.OK() {
			return Failed[Between[B, T, E]](br.Failure)
		}
		var tr Tracker[T]
		tr.Observe(br.IfError)
		out := Between[B, T, E]{Begin: br.Value}
		cur := br.Rest
		for {
			er := end.parse(cur, s)
			if er.Fatal() {
				return Failed[Between[B, T, E]](er.Failure)
			}
			if er.OK() {
				tr.Observe(er.IfError)
				out.End = er.Value
				return Success(out, c, er.Rest, tr.Failure())
			}
			tr.Observe(er.Failure)
			if cur.Empty() {
				return Failed[Between[B, T, E]](&Failure{
					Pos:     cur.Position(),
					Path:    s.path,
					Message: "Unexpected EOF",
					Child:   er.Failure,
				})
			}
			ir := item.parse(cur, s)
			if ir.Fatal() {
				return Failed[Between[B, T, E]](ir.Failure)
			}
			tr.Update(ir)
			if !ir.OK() {
				return Failed[Between[B, T, E]](tr.Failure())
			}
			if ir.End == cur.Position() {
				return Failed[Between[B, T, E]](s.Fail(cur.Position(), "Item did not consume any input"))
			}
			out.Items = append(out.Items, ir.Value)
			cur = ir.Rest
		}
	})
}
