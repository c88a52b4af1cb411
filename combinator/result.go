package combinator

import "strings"

// Path is an immutable list of rule names, innermost rule first. Branches
// share their tails so entering a rule never copies the path.
type Path struct {
	Name   string
	Parent *Path
}

func (p *Path) Push(name string) *Path {
	return &Path{Name: name, Parent: p}
}

// Names returns the rule names from the outermost rule to the innermost.
func (p *Path) Names() []string {
	var names []string
	for n := p; n != nil; n = n.Parent {
		names = append(names, n.Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

func (p *Path) String() string {
	return strings.Join(p.Names(), " > ")
}

// Failure describes why a parser did not match. Child points at the failure
// that explains this one in more detail. A fatal failure is never abandoned
// by alternation or repetition.
type Failure struct {
	Pos     int
	Path    *Path
	Message string
	Child   *Failure
	Fatal   bool
	Err     error
	// Optional marks a failure of a parser that was allowed to match
	// nothing, such as the body of Maybe.
	Optional bool
}

// Rule returns the innermost rule that was active when the failure was
// produced.
func (f *Failure) Rule() string {
	if f.Path == nil {
		return ""
	}
	return f.Path.Name
}

// optional returns a copy of f marked as optional.
func (f *Failure) optional() *Failure {
	c := *f
	c.Optional = true
	return &c
}

// Furthest returns whichever failure reached further into the input. On a
// tie a required failure beats an optional one, otherwise the first one
// wins. Either argument may be nil.
func Furthest(a, b *Failure) *Failure {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.Pos > a.Pos || (b.Pos == a.Pos && a.Optional && !b.Optional) {
		return b
	}
	return a
}

// Result is the outcome of running a parser. A nil Failure means success; a
// successful result still carries IfError, the best failure seen on a branch
// that was tried and abandoned along the way.
type Result[T any] struct {
	Value   T
	Start   int
	End     int
	Rest    Cursor
	IfError *Failure
	Failure *Failure
}

func (r Result[T]) OK() bool {
	return r.Failure == nil
}

func (r Result[T]) Fatal() bool {
	return r.Failure != nil && r.Failure.Fatal
}

// Success builds a successful result spanning from start to rest.
func Success[T any](value T, start, rest Cursor, ifError *Failure) Result[T] {
	return Result[T]{
		Value:   value,
		Start:   start.Position(),
		End:     rest.Position(),
		Rest:    rest,
		IfError: ifError,
	}
}

// Failed wraps a failure into a result of any value type.
func Failed[T any](f *Failure) Result[T] {
	return Result[T]{Failure: f, Start: f.Pos, End: f.Pos}
}

func (r Result[T]) erase() Result[any] {
	return Result[any]{
		Value:   r.Value,
		Start:   r.Start,
		End:     r.End,
		Rest:    r.Rest,
		IfError: r.IfError,
		Failure: r.Failure,
	}
}

// Tracker accumulates the results observed while a combinator tries several
// possibilities. It keeps the success that reached furthest and, separately,
// the failure that reached furthest.
type Tracker[T any] struct {
	success *Result[T]
	failure *Failure
}

func (t *Tracker[T]) Update(r Result[T]) {
	if !r.OK() {
		t.Observe(r.Failure)
		return
	}
	t.Observe(r.IfError)
	if t.success == nil || r.End > t.success.End {
		t.success = &r
	}
}

// Observe records a failure coming from a result of a different type.
func (t *Tracker[T]) Observe(f *Failure) {
	t.failure = Furthest(t.failure, f)
}

func (t *Tracker[T]) Failure() *Failure {
	return t.failure
}

// Success returns the furthest success with IfError replaced by the best
// failure tracked so far.
func (t *Tracker[T]) Success() (Result[T], bool) {
	if t.success == nil {
		return Result[T]{}, false
	}
	r := *t.success
	r.IfError = t.failure
	return r, true
}
