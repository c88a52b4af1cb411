package ast

// NormalizeChildren merges adjacent text in a child list. Two Text nodes
// become one, and a Whitespace node next to a Text node is folded into it,
// since whitespace between words is part of the text. Runs of Whitespace
// alone are left untouched. Merged nodes get a range spanning both inputs
// when r knows both of them.
func NormalizeChildren(r *Ranges, children []Node) []Node {
	if len(children) < 2 {
		return children
	}
	out := make([]Node, 0, len(children))
	for _, child := range children {
		if len(out) > 0 {
			if merged, ok := mergeText(r, out[len(out)-1], child); ok {
				out[len(out)-1] = merged
				continue
			}
		}
		out = append(out, child)
	}
	return out
}

func mergeText(r *Ranges, a, b Node) (Node, bool) {
	_, aText := a.(*Text)
	_, bText := b.(*Text)
	if !IsTextLike(a) || !IsTextLike(b) || (!aText && !bText) {
		return nil, false
	}
	merged := &Text{Content: textContent(a) + textContent(b)}
	ra, okA := r.Get(a)
	rb, okB := r.Get(b)
	if okA && okB && !r.Frozen() {
		r.Track(merged, ra.Start, rb.End)
	}
	return merged, true
}

func textContent(n Node) string {
	switch n := n.(type) {
	case *Text:
		return n.Content
	case *Whitespace:
		return n.Content
	}
	return ""
}
