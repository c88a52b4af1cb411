// Package ast defines the Docsy syntax tree.
//
// Nodes keep every byte of the source they were parsed from: whitespace,
// comments, quote styles and number spellings all survive, so a tree can be
// written back out unchanged. Source ranges are not stored on the nodes
// themselves but in a Ranges table owned by the parse that produced them.
package ast

import "strings"

// Base is embedded by every node. It carries the node's identity in the
// Ranges table that created it.
type Base struct {
	id    int
	table *Ranges
}

func (b *Base) base() *Base {
	return b
}

// Node is implemented by every syntax tree node.
type Node interface {
	Kind() NodeKind
	base() *Base
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expression()
}

// ElementName is the name of an element: an Identifier or a dotted
// ElementNameMember.
type ElementName interface {
	Node
	elementName()
}

// WhitespaceLike is a run of Whitespace, LineComment and BlockComment nodes.
// An empty slice means there was nothing between the surrounding tokens.
type WhitespaceLike []Node

// Quote is the delimiter used by a string literal.
type Quote int

const (
	QuoteSingle Quote = iota
	QuoteDouble
	QuoteBacktick
)

// Char returns the quote character.
func (q Quote) Char() string {
	switch q {
	case QuoteDouble:
		return `"`
	case QuoteBacktick:
		return "`"
	default:
		return "'"
	}
}

func (q Quote) String() string {
	switch q {
	case QuoteDouble:
		return "double"
	case QuoteBacktick:
		return "backtick"
	default:
		return "single"
	}
}

// Document is a markup document.
type Document struct {
	Base
	Children []Node
}

// ExpressionDocument is a document consisting of a single expression.
type ExpressionDocument struct {
	Base
	Before WhitespaceLike
	Value  Expression
	After  WhitespaceLike
}

// Text is literal markup text. Content keeps escape sequences as written.
type Text struct {
	Base
	Content string
}

// Value returns the text with escape sequences resolved.
func (t *Text) Value() string {
	return unescape(t.Content)
}

type Whitespace struct {
	Base
	Content    string
	HasNewline bool
}

// LineComment holds the text after // up to, not including, the newline.
type LineComment struct {
	Base
	Content string
}

// BlockComment holds the text between /* and */.
type BlockComment struct {
	Base
	Content string
}

type Identifier struct {
	Base
	Name string
}

// Str is a string literal. Raw is the source text between the quotes.
type Str struct {
	Base
	Raw   string
	Quote Quote
}

// Value returns the string with escape sequences resolved.
func (s *Str) Value() string {
	return unescape(s.Raw)
}

// Num is a numeric literal. Raw preserves the original spelling.
type Num struct {
	Base
	Value float64
	Raw   string
}

type Bool struct {
	Base
	Value bool
}

type Null struct {
	Base
}

type Undefined struct {
	Base
}

// EmptyArray is [] with only whitespace or comments inside.
type EmptyArray struct {
	Base
	Whitespace WhitespaceLike
}

type Arr struct {
	Base
	Items *ListItems
}

// ListItems is a comma separated list used by arrays and call arguments.
type ListItems struct {
	Base
	Items         []*ListItem
	TrailingComma *TrailingComma
}

// ListItem is an expression or a Spread with its surrounding whitespace.
type ListItem struct {
	Base
	Before WhitespaceLike
	Item   Node
	After  WhitespaceLike
}

// TrailingComma is a final comma and whatever follows it before the
// closing bracket.
type TrailingComma struct {
	Base
	Whitespace WhitespaceLike
}

// Spread is ...target.
type Spread struct {
	Base
	Target Expression
}

// EmptyObject is {} with only whitespace or comments inside.
type EmptyObject struct {
	Base
	Whitespace WhitespaceLike
}

type Obj struct {
	Base
	Items *ObjItems
}

type ObjItems struct {
	Base
	Items         []*ObjItem
	TrailingComma *TrailingComma
}

// ObjItem wraps a Property, ComputedProperty, PropertyShorthand or Spread.
type ObjItem struct {
	Base
	Before   WhitespaceLike
	Property Node
	After    WhitespaceLike
}

// Property is name: value. Name is an Identifier or a Str.
type Property struct {
	Base
	Name        Node
	BeforeColon WhitespaceLike
	AfterColon  WhitespaceLike
	Value       Expression
}

// ComputedProperty is [expression]: value.
type ComputedProperty struct {
	Base
	BeforeExpression WhitespaceLike
	Expression       Expression
	AfterExpression  WhitespaceLike
	BeforeColon      WhitespaceLike
	AfterColon       WhitespaceLike
	Value            Expression
}

type PropertyShorthand struct {
	Base
	Name *Identifier
}

// MemberExpression is target.property.
type MemberExpression struct {
	Base
	Target   Expression
	Property *Identifier
}

// ComputedMemberExpression is target[property].
type ComputedMemberExpression struct {
	Base
	Target   Expression
	Before   WhitespaceLike
	Property Expression
	After    WhitespaceLike
}

// CallExpression is target(arguments). Arguments is nil for an empty
// argument list, in which case Whitespace holds what was between the
// parentheses.
type CallExpression struct {
	Base
	Target     Expression
	Arguments  *ListItems
	Whitespace WhitespaceLike
}

type Parenthesis struct {
	Base
	Before WhitespaceLike
	Value  Expression
	After  WhitespaceLike
}

// ElementNameMember is a dotted element name such as Demo.Foo.
type ElementNameMember struct {
	Base
	Target   ElementName
	Property *Identifier
}

// Attribute is a leading whitespace run, a name and an optional value. A
// nil Value means the attribute was written without =.
type Attribute struct {
	Base
	Whitespace WhitespaceLike
	Name       *Identifier
	Value      Expression
}

// Element is <|Name attrs>children</> or <|Name attrs>children<Name/>.
// NamedCloseTag records which closing form was used.
type Element struct {
	Base
	Name          ElementName
	Attributes    []*Attribute
	Whitespace    WhitespaceLike
	Children      []Node
	NamedCloseTag bool
}

// SelfClosingElement is </Name attrs/>.
type SelfClosingElement struct {
	Base
	Name       ElementName
	Attributes []*Attribute
	Whitespace WhitespaceLike
}

// LineElement is <Name attrs> followed by children up to the end of the
// line. The newline is not part of the element.
type LineElement struct {
	Base
	Name       ElementName
	Attributes []*Attribute
	Whitespace WhitespaceLike
	Children   []Node
}

// RawElement is <#Name attrs>content<#Name/> whose content is not parsed.
type RawElement struct {
	Base
	Name          ElementName
	Attributes    []*Attribute
	Whitespace    WhitespaceLike
	Content       string
	NamedCloseTag bool
}

type Fragment struct {
	Base
	Children []Node
}

type RawFragment struct {
	Base
	Content string
}

// Inject is {expression} embedded in markup.
type Inject struct {
	Base
	Before WhitespaceLike
	Value  Expression
	After  WhitespaceLike
}

func (*Document) Kind() NodeKind                 { return KindDocument }
func (*ExpressionDocument) Kind() NodeKind       { return KindExpressionDocument }
func (*Text) Kind() NodeKind                     { return KindText }
func (*Whitespace) Kind() NodeKind               { return KindWhitespace }
func (*LineComment) Kind() NodeKind              { return KindLineComment }
func (*BlockComment) Kind() NodeKind             { return KindBlockComment }
func (*Identifier) Kind() NodeKind               { return KindIdentifier }
func (*Str) Kind() NodeKind                      { return KindStr }
func (*Num) Kind() NodeKind                      { return KindNum }
func (*Bool) Kind() NodeKind                     { return KindBool }
func (*Null) Kind() NodeKind                     { return KindNull }
func (*Undefined) Kind() NodeKind                { return KindUndefined }
func (*Arr) Kind() NodeKind                      { return KindArr }
func (*EmptyArray) Kind() NodeKind               { return KindEmptyArray }
func (*ListItems) Kind() NodeKind                { return KindListItems }
func (*ListItem) Kind() NodeKind                 { return KindListItem }
func (*TrailingComma) Kind() NodeKind            { return KindTrailingComma }
func (*Spread) Kind() NodeKind                   { return KindSpread }
func (*Obj) Kind() NodeKind                      { return KindObj }
func (*EmptyObject) Kind() NodeKind              { return KindEmptyObject }
func (*ObjItems) Kind() NodeKind                 { return KindObjItems }
func (*ObjItem) Kind() NodeKind                  { return KindObjItem }
func (*Property) Kind() NodeKind                 { return KindProperty }
func (*ComputedProperty) Kind() NodeKind         { return KindComputedProperty }
func (*PropertyShorthand) Kind() NodeKind        { return KindPropertyShorthand }
func (*MemberExpression) Kind() NodeKind         { return KindMemberExpression }
func (*ComputedMemberExpression) Kind() NodeKind { return KindComputedMemberExpression }
func (*CallExpression) Kind() NodeKind           { return KindCallExpression }
func (*Parenthesis) Kind() NodeKind              { return KindParenthesis }
func (*ElementNameMember) Kind() NodeKind        { return KindElementNameMember }
func (*Attribute) Kind() NodeKind                { return KindAttribute }
func (*Element) Kind() NodeKind                  { return KindElement }
func (*SelfClosingElement) Kind() NodeKind       { return KindSelfClosingElement }
func (*LineElement) Kind() NodeKind              { return KindLineElement }
func (*RawElement) Kind() NodeKind               { return KindRawElement }
func (*Fragment) Kind() NodeKind                 { return KindFragment }
func (*RawFragment) Kind() NodeKind              { return KindRawFragment }
func (*Inject) Kind() NodeKind                   { return KindInject }

func (*Identifier) expression()               {}
func (*Str) expression()                      {}
func (*Num) expression()                      {}
func (*Bool) expression()                     {}
func (*Null) expression()                     {}
func (*Undefined) expression()                {}
func (*Arr) expression()                      {}
func (*EmptyArray) expression()               {}
func (*Obj) expression()                      {}
func (*EmptyObject) expression()              {}
func (*MemberExpression) expression()         {}
func (*ComputedMemberExpression) expression() {}
func (*CallExpression) expression()           {}
func (*Parenthesis) expression()              {}
func (*Element) expression()                  {}
func (*SelfClosingElement) expression()       {}
func (*LineElement) expression()              {}
func (*RawElement) expression()               {}
func (*Fragment) expression()                 {}
func (*RawFragment) expression()              {}

func (*Identifier) elementName()        {}
func (*ElementNameMember) elementName() {}

// IsTextLike reports whether n is Text or Whitespace.
func IsTextLike(n Node) bool {
	switch n.(type) {
	case *Text, *Whitespace:
		return true
	}
	return false
}

func unescape(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}
