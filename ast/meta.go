package ast

import (
	"math"
	"strings"
)

// NameString renders an element name the way it is written in source.
func NameString(name ElementName) string {
	switch n := name.(type) {
	case *Identifier:
		return n.Name
	case *ElementNameMember:
		return NameString(n.Target) + "." + n.Property.Name
	}
	return ""
}

// SameName compares two element names segment by segment.
func SameName(a, b ElementName) bool {
	switch a := a.(type) {
	case *Identifier:
		b, ok := b.(*Identifier)
		return ok && a.Name == b.Name
	case *ElementNameMember:
		b, ok := b.(*ElementNameMember)
		return ok && a.Property.Name == b.Property.Name && SameName(a.Target, b.Target)
	}
	return false
}

// Meta returns the scalar payload of n, keyed by field name. Nodes that
// only carry children return nil.
func Meta(n Node) map[string]any {
	switch n := n.(type) {
	case *Text:
		return map[string]any{"content": n.Content}
	case *Whitespace:
		return map[string]any{"content": n.Content, "hasNewline": n.HasNewline}
	case *LineComment:
		return map[string]any{"content": n.Content}
	case *BlockComment:
		return map[string]any{"content": n.Content}
	case *Identifier:
		return map[string]any{"name": n.Name}
	case *Str:
		return map[string]any{"raw": n.Raw, "quote": n.Quote.String()}
	case *Num:
		if math.IsInf(n.Value, 0) {
			return map[string]any{"raw": n.Raw}
		}
		return map[string]any{"value": n.Value, "raw": n.Raw}
	case *Bool:
		return map[string]any{"value": n.Value}
	case *Element:
		return map[string]any{"namedCloseTag": n.NamedCloseTag}
	case *RawElement:
		return map[string]any{"content": n.Content, "namedCloseTag": n.NamedCloseTag}
	case *RawFragment:
		return map[string]any{"content": n.Content}
	}
	return nil
}

// Summary is a one-line description of n used by tree and table dumps.
func Summary(n Node) string {
	switch n := n.(type) {
	case *Text:
		return quoteShort(n.Content)
	case *Whitespace:
		return quoteShort(n.Content)
	case *LineComment:
		return quoteShort(n.Content)
	case *BlockComment:
		return quoteShort(n.Content)
	case *Identifier:
		return n.Name
	case *Str:
		return n.Quote.Char() + n.Raw + n.Quote.Char()
	case *Num:
		return n.Raw
	case *Bool:
		if n.Value {
			return "true"
		}
		return "false"
	case *Element:
		return NameString(n.Name)
	case *SelfClosingElement:
		return NameString(n.Name)
	case *LineElement:
		return NameString(n.Name)
	case *RawElement:
		return NameString(n.Name)
	case *Attribute:
		return n.Name.Name
	case *MemberExpression:
		return "." + n.Property.Name
	case *ElementNameMember:
		return NameString(n)
	}
	return ""
}

func quoteShort(s string) string {
	const limit = 32
	r := strings.NewReplacer("\n", `\n`, "\t", `\t`, "\r", `\r`)
	s = r.Replace(s)
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return `"` + s + `"`
}
