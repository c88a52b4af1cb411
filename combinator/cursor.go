package combinator

// Cursor is an immutable view over source text. Skip returns a new cursor
// sharing the same text; a cursor is never advanced in place, so several
// alternatives can be tried from the same position.
type Cursor struct {
	text     string
	start    int
	end      int
	reversed bool
}

// NewCursor returns a cursor positioned at the start of text.
func NewCursor(text string) Cursor {
	return Cursor{text: text, start: 0, end: len(text)}
}

// Size is the number of bytes left to read.
func (c Cursor) Size() int {
	return c.end - c.start
}

// Position is the byte offset of the cursor in the original text. For a
// reversed cursor it is the offset just after the next byte to be read.
func (c Cursor) Position() int {
	if c.reversed {
		return c.end
	}
	return c.start
}

func (c Cursor) Empty() bool {
	return c.start >= c.end
}

// Text returns the full underlying source.
func (c Cursor) Text() string {
	return c.text
}

// Peek returns up to n bytes without consuming them. The result is shorter
// than n at the end of input. On a reversed cursor the bytes are returned in
// reading order (last byte first).
func (c Cursor) Peek(n int) string {
	if n > c.Size() {
		n = c.Size()
	}
	if n <= 0 {
		return ""
	}
	if !c.reversed {
		return c.text[c.start : c.start+n]
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = c.text[c.end-1-i]
	}
	return string(buf)
}

// Skip returns a cursor advanced by n bytes.
func (c Cursor) Skip(n int) Cursor {
	if n > c.Size() {
		n = c.Size()
	}
	if n < 0 {
		n = 0
	}
	if c.reversed {
		c.end -= n
	} else {
		c.start += n
	}
	return c
}

// Rest returns the remaining text in source order.
func (c Cursor) Rest() string {
	return c.text[c.start:c.end]
}

// Reverse returns a view reading backward from the current position toward
// the start of the text. Reversing a reversed cursor turns it forward again
// at the same position.
func (c Cursor) Reverse() Cursor {
	if c.reversed {
		return Cursor{text: c.text, start: c.end, end: len(c.text)}
	}
	return Cursor{text: c.text, start: 0, end: c.start, reversed: true}
}

// Reversed reports whether the cursor reads backward.
func (c Cursor) Reversed() bool {
	return c.reversed
}
