package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/docsy/ast"
)

// CannotSerializeNodeError is returned when the tree holds a node the
// serializer does not know, or a required slot is empty.
type CannotSerializeNodeError struct {
	*ast.FileError
}

func (e *CannotSerializeNodeError) Unwrap() error {
	return e.FileError
}

// Serialize writes n back out as source text. For a tree produced by the
// parser the result is byte for byte the text that was parsed.
func Serialize(n ast.Node) (string, error) {
	return SerializeFile(&ast.File{}, n)
}

// SerializeFile is like Serialize but anchors errors to f so they carry a
// file position.
func SerializeFile(f *ast.File, n ast.Node) (string, error) {
	s := &serializer{file: f}
	s.node(n)
	if s.err != nil {
		return "", s.err
	}
	return s.b.String(), nil
}

type serializer struct {
	b    strings.Builder
	file *ast.File
	err  error
}

func (s *serializer) fail(n ast.Node, format string, args ...any) {
	if s.err != nil {
		return
	}
	s.err = &CannotSerializeNodeError{&ast.FileError{File: s.file, Node: n, Message: fmt.Sprintf(format, args...)}}
}

func (s *serializer) write(parts ...string) {
	for _, p := range parts {
		s.b.WriteString(p)
	}
}

func (s *serializer) ws(ws ast.WhitespaceLike) {
	for _, n := range ws {
		switch n.(type) {
		case *ast.Whitespace, *ast.LineComment, *ast.BlockComment:
			s.node(n)
		default:
			s.fail(n, "Cannot serialize %s as whitespace", n.Kind())
		}
	}
}

func (s *serializer) nodes(nodes []ast.Node) {
	for _, n := range nodes {
		s.node(n)
	}
}

// required serializes a slot that the grammar never leaves empty.
func (s *serializer) required(parent ast.Node, slot string, n ast.Node) {
	if n == nil || isNil(n) {
		s.fail(parent, "Cannot serialize %s: missing %s", parent.Kind(), slot)
		return
	}
	s.node(n)
}

func (s *serializer) attributes(attrs []*ast.Attribute) {
	for _, a := range attrs {
		s.node(a)
	}
}

func (s *serializer) node(n ast.Node) {
	if s.err != nil {
		return
	}
	switch n := n.(type) {
	case *ast.Document:
		s.nodes(n.Children)
	case *ast.ExpressionDocument:
		s.ws(n.Before)
		s.required(n, "value", n.Value)
		s.ws(n.After)

	case *ast.Text:
		s.write(n.Content)
	case *ast.Whitespace:
		s.write(n.Content)
	case *ast.LineComment:
		s.write("//", n.Content)
	case *ast.BlockComment:
		s.write("/*", n.Content, "*/")

	case *ast.Identifier:
		s.write(n.Name)
	case *ast.Str:
		q := n.Quote.Char()
		s.write(q, n.Raw, q)
	case *ast.Num:
		if n.Raw != "" {
			s.write(n.Raw)
		} else {
			s.write(strconv.FormatFloat(n.Value, 'f', -1, 64))
		}
	case *ast.Bool:
		s.write(strconv.FormatBool(n.Value))
	case *ast.Null:
		s.write("null")
	case *ast.Undefined:
		s.write("undefined")

	case *ast.EmptyArray:
		s.write("[")
		s.ws(n.Whitespace)
		s.write("]")
	case *ast.Arr:
		s.write("[")
		s.required(n, "items", n.Items)
		s.write("]")
	case *ast.ListItems:
		for i, item := range n.Items {
			if i > 0 {
				s.write(",")
			}
			s.node(item)
		}
		if n.TrailingComma != nil {
			s.node(n.TrailingComma)
		}
	case *ast.ListItem:
		s.ws(n.Before)
		s.required(n, "item", n.Item)
		s.ws(n.After)
	case *ast.TrailingComma:
		s.write(",")
		s.ws(n.Whitespace)
	case *ast.Spread:
		s.write("...")
		s.required(n, "target", n.Target)

	case *ast.EmptyObject:
		s.write("{")
		s.ws(n.Whitespace)
		s.write("}")
	case *ast.Obj:
		s.write("{")
		s.required(n, "items", n.Items)
		s.write("}")
	case *ast.ObjItems:
		for i, item := range n.Items {
			if i > 0 {
				s.write(",")
			}
			s.node(item)
		}
		if n.TrailingComma != nil {
			s.node(n.TrailingComma)
		}
	case *ast.ObjItem:
		s.ws(n.Before)
		s.required(n, "property", n.Property)
		s.ws(n.After)
	case *ast.Property:
		s.required(n, "name", n.Name)
		s.ws(n.BeforeColon)
		s.write(":")
		s.ws(n.AfterColon)
		s.required(n, "value", n.Value)
	case *ast.ComputedProperty:
		s.write("[")
		s.ws(n.BeforeExpression)
		s.required(n, "expression", n.Expression)
		s.ws(n.AfterExpression)
		s.write("]")
		s.ws(n.BeforeColon)
		s.write(":")
		s.ws(n.AfterColon)
		s.required(n, "value", n.Value)
	case *ast.PropertyShorthand:
		s.required(n, "name", n.Name)

	case *ast.MemberExpression:
		s.required(n, "target", n.Target)
		s.write(".")
		s.required(n, "property", n.Property)
	case *ast.ComputedMemberExpression:
		s.required(n, "target", n.Target)
		s.write("[")
		s.ws(n.Before)
		s.required(n, "property", n.Property)
		s.ws(n.After)
		s.write("]")
	case *ast.CallExpression:
		s.required(n, "target", n.Target)
		s.write("(")
		if n.Arguments != nil {
			s.node(n.Arguments)
		} else {
			s.ws(n.Whitespace)
		}
		s.write(")")
	case *ast.Parenthesis:
		s.write("(")
		s.ws(n.Before)
		s.required(n, "value", n.Value)
		s.ws(n.After)
		s.write(")")

	case *ast.ElementNameMember:
		s.required(n, "target", n.Target)
		s.write(".")
		s.required(n, "property", n.Property)
	case *ast.Attribute:
		s.ws(n.Whitespace)
		s.required(n, "name", n.Name)
		if n.Value != nil {
			s.write("=")
			s.node(n.Value)
		}
	case *ast.Element:
		s.openTag(n, "<|", n.Name, n.Attributes, n.Whitespace, ">")
		s.nodes(n.Children)
		if n.NamedCloseTag {
			s.write("<")
			s.node(n.Name)
			s.write("/>")
		} else {
			s.write("</>")
		}
	case *ast.SelfClosingElement:
		s.openTag(n, "</", n.Name, n.Attributes, n.Whitespace, "/>")
	case *ast.LineElement:
		s.openTag(n, "<", n.Name, n.Attributes, n.Whitespace, ">")
		s.nodes(n.Children)
	case *ast.RawElement:
		s.openTag(n, "<#", n.Name, n.Attributes, n.Whitespace, ">")
		s.write(n.Content)
		if n.NamedCloseTag {
			s.write("<#")
			s.node(n.Name)
			s.write("/>")
		} else {
			s.write("<#/>")
		}
	case *ast.Fragment:
		s.write("<|>")
		s.nodes(n.Children)
		s.write("</>")
	case *ast.RawFragment:
		s.write("<#>", n.Content, "<#/>")
	case *ast.Inject:
		s.write("{")
		s.ws(n.Before)
		if n.Value != nil {
			s.node(n.Value)
		}
		s.ws(n.After)
		s.write("}")

	case nil:
		s.fail(nil, "Cannot serialize a nil node")
	default:
		s.fail(n, "Cannot serialize node of kind %s", n.Kind())
	}
}

func (s *serializer) openTag(n ast.Node, opener string, name ast.ElementName, attrs []*ast.Attribute, ws ast.WhitespaceLike, closer string) {
	s.write(opener)
	s.required(n, "name", name)
	s.attributes(attrs)
	s.ws(ws)
	s.write(closer)
}

// isNil catches typed nil pointers stored in interface slots.
func isNil(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.ListItems:
		return n == nil
	case *ast.ObjItems:
		return n == nil
	case *ast.Identifier:
		return n == nil
	}
	return false
}
