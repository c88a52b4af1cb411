package ast

import "fmt"

// Range is a half open byte span [Start, End) of the source.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether offset falls inside r.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Ranges maps nodes to the source span they were created from. A node is
// recorded once, when it is created; the table is frozen when the parse
// that owns it completes.
//
// Nodes are identified by a slot number assigned on registration rather
// than by contents, so two nodes with identical contents never alias. The
// slot is tagged with the owning table.
type Ranges struct {
	spans  []Range
	frozen bool
}

func NewRanges() *Ranges {
	return &Ranges{}
}

// Track records the span of n. It panics if n is already tracked or the
// table is frozen.
func (r *Ranges) Track(n Node, start, end int) {
	if r.frozen {
		panic("ast: track on frozen range table")
	}
	b := n.base()
	if b.id != 0 {
		panic(fmt.Sprintf("ast: %s already has a range", n.Kind()))
	}
	r.spans = append(r.spans, Range{Start: start, End: end})
	b.id = len(r.spans)
	b.table = r
}

// Get returns the span recorded for n. Nodes tracked by another table have
// no span in r.
func (r *Ranges) Get(n Node) (Range, bool) {
	if r == nil || n == nil {
		return Range{}, false
	}
	b := n.base()
	id := b.id
	if b.table != r || id <= 0 || id > len(r.spans) {
		return Range{}, false
	}
	return r.spans[id-1], true
}

// Freeze prevents further registrations.
func (r *Ranges) Freeze() {
	r.frozen = true
}

func (r *Ranges) Frozen() bool {
	return r.frozen
}

// Len is the number of tracked nodes.
func (r *Ranges) Len() int {
	return len(r.spans)
}

// Create records the span of n and returns it.
func Create[T Node](r *Ranges, start, end int, n T) T {
	if r != nil {
		r.Track(n, start, end)
	}
	return n
}
