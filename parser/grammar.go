package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/docsy/ast"
	pc "github.com/dhamidi/docsy/combinator"
)

// postfix builds one link of a member/call chain onto its target.
type postfix func(target ast.Expression) ast.Expression

type tagHead struct {
	name  ast.ElementName
	attrs []*ast.Attribute
	ws    ast.WhitespaceLike
}

type closeTag struct {
	name ast.ElementName
	pos  int
}

type computedKey struct {
	before ast.WhitespaceLike
	expr   ast.Expression
	after  ast.WhitespaceLike
}

type grammar struct {
	document           *pc.Rule[*ast.Document]
	expressionDocument *pc.Rule[*ast.ExpressionDocument]

	// markup
	child             *pc.Rule[ast.Node]
	lineChild         *pc.Rule[ast.Node]
	text              *pc.Rule[*ast.Text]
	inject            *pc.Rule[*ast.Inject]
	anyElement        *pc.Rule[ast.Expression]
	element           *pc.Rule[*ast.Element]
	selfClosing       *pc.Rule[*ast.SelfClosingElement]
	lineElement       *pc.Rule[*ast.LineElement]
	rawElement        *pc.Rule[*ast.RawElement]
	fragment          *pc.Rule[*ast.Fragment]
	rawFragment       *pc.Rule[*ast.RawFragment]
	elementName       *pc.Rule[ast.ElementName]
	tagHead           *pc.Rule[tagHead]
	closeTag          *pc.Rule[closeTag]
	attribute         *pc.Rule[*ast.Attribute]
	whitespace        *pc.Rule[*ast.Whitespace]
	inlineWhitespace  *pc.Rule[*ast.Whitespace]
	lineComment       *pc.Rule[*ast.LineComment]
	blockComment      *pc.Rule[*ast.BlockComment]
	comment           *pc.Rule[ast.Node]
	whitespaceLike    *pc.Rule[ast.WhitespaceLike]

	// expressions
	expression        *pc.Rule[ast.Expression]
	primitive         *pc.Rule[ast.Expression]
	identifier        *pc.Rule[*ast.Identifier]
	str               *pc.Rule[*ast.Str]
	num               *pc.Rule[*ast.Num]
	boolean           *pc.Rule[*ast.Bool]
	null              *pc.Rule[*ast.Null]
	undefined         *pc.Rule[*ast.Undefined]
	collection        *pc.Rule[ast.Expression]
	arr               *pc.Rule[*ast.Arr]
	emptyArray        *pc.Rule[*ast.EmptyArray]
	listItems         *pc.Rule[*ast.ListItems]
	listItem          *pc.Rule[*ast.ListItem]
	spread            *pc.Rule[*ast.Spread]
	obj               *pc.Rule[*ast.Obj]
	emptyObject       *pc.Rule[*ast.EmptyObject]
	objItems          *pc.Rule[*ast.ObjItems]
	objItem           *pc.Rule[*ast.ObjItem]
	property          *pc.Rule[*ast.Property]
	computedProperty  *pc.Rule[*ast.ComputedProperty]
	propertyShorthand *pc.Rule[*ast.PropertyShorthand]
	chainable         *pc.Rule[ast.Expression]
	parenthesis       *pc.Rule[*ast.Parenthesis]
	member            *pc.Rule[postfix]
	computedMember    *pc.Rule[postfix]
	call              *pc.Rule[postfix]
}

var docsy = newGrammar()

func newGrammar() *grammar {
	g := &grammar{
		document:           pc.NewRule[*ast.Document]("Document"),
		expressionDocument: pc.NewRule[*ast.ExpressionDocument]("ExpressionDocument"),

		child:            pc.NewRule[ast.Node]("Child"),
		lineChild:        pc.NewRule[ast.Node]("LineChild"),
		text:             pc.NewRule[*ast.Text]("Text"),
		inject:           pc.NewRule[*ast.Inject]("Inject"),
		anyElement:       pc.NewRule[ast.Expression]("AnyElement"),
		element:          pc.NewRule[*ast.Element]("Element"),
		selfClosing:      pc.NewRule[*ast.SelfClosingElement]("SelfClosingElement"),
		lineElement:      pc.NewRule[*ast.LineElement]("LineElement"),
		rawElement:       pc.NewRule[*ast.RawElement]("RawElement"),
		fragment:         pc.NewRule[*ast.Fragment]("Fragment"),
		rawFragment:      pc.NewRule[*ast.RawFragment]("RawFragment"),
		elementName:      pc.NewRule[ast.ElementName]("ElementName"),
		tagHead:          pc.NewRule[tagHead]("OpenTag"),
		closeTag:         pc.NewRule[closeTag]("CloseTag"),
		attribute:        pc.NewRule[*ast.Attribute]("Attribute"),
		whitespace:       pc.NewRule[*ast.Whitespace]("Whitespace"),
		inlineWhitespace: pc.NewRule[*ast.Whitespace]("InlineWhitespace"),
		lineComment:      pc.NewRule[*ast.LineComment]("LineComment"),
		blockComment:     pc.NewRule[*ast.BlockComment]("BlockComment"),
		comment:          pc.NewRule[ast.Node]("Comment"),
		whitespaceLike:   pc.NewRule[ast.WhitespaceLike]("WhitespaceLike"),

		expression:        pc.NewRule[ast.Expression]("Expression"),
		primitive:         pc.NewRule[ast.Expression]("Primitive"),
		identifier:        pc.NewRule[*ast.Identifier]("Identifier"),
		str:               pc.NewRule[*ast.Str]("Str"),
		num:               pc.NewRule[*ast.Num]("Num"),
		boolean:           pc.NewRule[*ast.Bool]("Bool"),
		null:              pc.NewRule[*ast.Null]("Null"),
		undefined:         pc.NewRule[*ast.Undefined]("Undefined"),
		collection:        pc.NewRule[ast.Expression]("ObjectOrArray"),
		arr:               pc.NewRule[*ast.Arr]("Arr"),
		emptyArray:        pc.NewRule[*ast.EmptyArray]("EmptyArray"),
		listItems:         pc.NewRule[*ast.ListItems]("ListItems"),
		listItem:          pc.NewRule[*ast.ListItem]("ListItem"),
		spread:            pc.NewRule[*ast.Spread]("Spread"),
		obj:               pc.NewRule[*ast.Obj]("Obj"),
		emptyObject:       pc.NewRule[*ast.EmptyObject]("EmptyObject"),
		objItems:          pc.NewRule[*ast.ObjItems]("ObjItems"),
		objItem:           pc.NewRule[*ast.ObjItem]("ObjItem"),
		property:          pc.NewRule[*ast.Property]("Property"),
		computedProperty:  pc.NewRule[*ast.ComputedProperty]("ComputedProperty"),
		propertyShorthand: pc.NewRule[*ast.PropertyShorthand]("PropertyShorthand"),
		chainable:         pc.NewRule[ast.Expression]("Chainable"),
		parenthesis:       pc.NewRule[*ast.Parenthesis]("Parenthesis"),
		member:            pc.NewRule[postfix]("MemberExpression"),
		computedMember:    pc.NewRule[postfix]("ComputedMemberExpression"),
		call:              pc.NewRule[postfix]("CallExpression"),
	}
	g.bindTrivia()
	g.bindPrimitives()
	g.bindCollections()
	g.bindChains()
	g.bindMarkup()
	g.bindDocuments()
	return g
}

func rangesOf(ctx *pc.Context) *ast.Ranges {
	r, _ := ctx.User.(*ast.Ranges)
	return r
}

func track[T ast.Node](m pc.Match, n T) T {
	return ast.Create(rangesOf(m.Ctx), m.Start, m.End, n)
}

func asNode[T ast.Node](p pc.Parser[T]) pc.Parser[ast.Node] {
	return pc.Map(p, func(_ pc.Match, v T) (ast.Node, error) { return v, nil })
}

func asExpr[T ast.Expression](p pc.Parser[T]) pc.Parser[ast.Expression] {
	return pc.Map(p, func(_ pc.Match, v T) (ast.Expression, error) { return v, nil })
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// keyword matches word only when it is not the prefix of a longer
// identifier.
func keyword(word string) pc.Parser[string] {
	lit := pc.Exact(word)
	return pc.New("Keyword", func(c pc.Cursor, s pc.State) pc.Result[string] {
		r := lit.Parse(c, s)
		if !r.OK() {
			return r
		}
		if next := r.Rest.Peek(1); next != "" && isIdentByte(next[0]) {
			return pc.Failed[string](s.Fail(c.Position(), "Expected keyword %q", word))
		}
		return r
	})
}

func (g *grammar) ows() pc.Parser[ast.WhitespaceLike] {
	return pc.Maybe(g.whitespaceLike.Parser())
}

func (g *grammar) bindTrivia() {
	g.whitespace.Bind(pc.Map(pc.Expect(pc.Regexp(`^\s+`), "whitespace"), func(m pc.Match, s string) (*ast.Whitespace, error) {
		return track(m, &ast.Whitespace{Content: s, HasNewline: strings.Contains(s, "\n")}), nil
	}))
	g.inlineWhitespace.Bind(pc.Map(pc.Expect(pc.Regexp(`^[ \t]+`), "whitespace"), func(m pc.Match, s string) (*ast.Whitespace, error) {
		return track(m, &ast.Whitespace{Content: s}), nil
	}))
	g.lineComment.Bind(pc.Map(pc.Expect(pc.Regexp(`^//[^\n]*`), "line comment"), func(m pc.Match, s string) (*ast.LineComment, error) {
		return track(m, &ast.LineComment{Content: s[2:]}), nil
	}))
	g.blockComment.Bind(pc.Map(pc.Expect(pc.RegexpGroups(`^/\*([\s\S]*?)\*/`), "block comment"), func(m pc.Match, groups []string) (*ast.BlockComment, error) {
		return track(m, &ast.BlockComment{Content: groups[1]}), nil
	}))
	g.comment.Bind(pc.OneOf(asNode(g.lineComment.Parser()), asNode(g.blockComment.Parser())))
	g.whitespaceLike.Bind(pc.Map(
		pc.Many(pc.OneOf(asNode(g.whitespace.Parser()), g.comment.Parser()), false),
		func(_ pc.Match, nodes []ast.Node) (ast.WhitespaceLike, error) {
			return ast.WhitespaceLike(nodes), nil
		}))
}

func (g *grammar) bindPrimitives() {
	g.identifier.Bind(pc.Map(pc.Expect(pc.Regexp(`^[A-Za-z_$][A-Za-z0-9_$]*`), "identifier"), func(m pc.Match, s string) (*ast.Identifier, error) {
		return track(m, &ast.Identifier{Name: s}), nil
	}))
	g.num.Bind(pc.Map(pc.Expect(pc.Regexp(`^[+-]?(?:[0-9]+(?:\.[0-9]+)?|\.[0-9]+)`), "number"), func(m pc.Match, s string) (*ast.Num, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, &pc.SemanticError{Pos: m.Start, Message: fmt.Sprintf("Invalid number %s", s)}
		}
		return track(m, &ast.Num{Value: v, Raw: s}), nil
	}))
	g.boolean.Bind(pc.OneOf(
		pc.Map(keyword("true"), func(m pc.Match, _ string) (*ast.Bool, error) {
			return track(m, &ast.Bool{Value: true}), nil
		}),
		pc.Map(keyword("false"), func(m pc.Match, _ string) (*ast.Bool, error) {
			return track(m, &ast.Bool{Value: false}), nil
		}),
	))
	g.null.Bind(pc.Map(keyword("null"), func(m pc.Match, _ string) (*ast.Null, error) {
		return track(m, &ast.Null{}), nil
	}))
	g.undefined.Bind(pc.Map(keyword("undefined"), func(m pc.Match, _ string) (*ast.Undefined, error) {
		return track(m, &ast.Undefined{}), nil
	}))

	quoted := func(pattern string, q ast.Quote) pc.Parser[*ast.Str] {
		return pc.Map(pc.Expect(pc.RegexpGroups(pattern), "string"), func(m pc.Match, groups []string) (*ast.Str, error) {
			return track(m, &ast.Str{Raw: groups[1], Quote: q}), nil
		})
	}
	g.str.Bind(pc.OneOf(
		quoted(`^'((?:[^'\\\n]|\\[^\n])*)'`, ast.QuoteSingle),
		quoted(`^"((?:[^"\\\n]|\\[^\n])*)"`, ast.QuoteDouble),
		quoted("^`((?:[^`\\\\]|\\\\[^\\n])*)`", ast.QuoteBacktick),
	))

	g.primitive.Bind(pc.OneOf(
		asExpr(g.num.Parser()),
		asExpr(g.boolean.Parser()),
		asExpr(g.null.Parser()),
		asExpr(g.undefined.Parser()),
		asExpr(g.str.Parser()),
	))
}

func (g *grammar) bindCollections() {
	comma := pc.Map(pc.Exact(","), func(m pc.Match, _ string) (int, error) { return m.Start, nil })

	g.spread.Bind(pc.Pipe2(pc.Exact("..."), g.expression.Parser(),
		func(m pc.Match, _ string, target ast.Expression) (*ast.Spread, error) {
			return track(m, &ast.Spread{Target: target}), nil
		}))

	g.listItem.Bind(pc.Pipe3(
		g.ows(),
		pc.OneOf(asNode(g.spread.Parser()), asNode(g.expression.Parser())),
		g.ows(),
		func(m pc.Match, before ast.WhitespaceLike, item ast.Node, after ast.WhitespaceLike) (*ast.ListItem, error) {
			return track(m, &ast.ListItem{Before: before, Item: item, After: after}), nil
		}))
	g.listItems.Bind(pc.Pipe2(
		pc.ManySepBy(g.listItem.Parser(), comma, true, false),
		g.ows(),
		func(m pc.Match, items pc.SepBy[*ast.ListItem, int], ws ast.WhitespaceLike) (*ast.ListItems, error) {
			out := &ast.ListItems{Items: items.Items()}
			if items.Trailing != nil {
				out.TrailingComma = ast.Create(rangesOf(m.Ctx), *items.Trailing, m.End, &ast.TrailingComma{Whitespace: ws})
			}
			return track(m, out), nil
		}))
	g.emptyArray.Bind(pc.Pipe3(pc.Exact("["), g.ows(), pc.Exact("]"),
		func(m pc.Match, _ string, ws ast.WhitespaceLike, _ string) (*ast.EmptyArray, error) {
			return track(m, &ast.EmptyArray{Whitespace: ws}), nil
		}))
	g.arr.Bind(pc.Pipe3(pc.Exact("["), g.listItems.Parser(), pc.Exact("]"),
		func(m pc.Match, _ string, items *ast.ListItems, _ string) (*ast.Arr, error) {
			return track(m, &ast.Arr{Items: items}), nil
		}))

	g.property.Bind(pc.Pipe5(
		pc.OneOf(asNode(g.str.Parser()), asNode(g.identifier.Parser())),
		g.ows(),
		pc.Exact(":"),
		g.ows(),
		g.expression.Parser(),
		func(m pc.Match, name ast.Node, beforeColon ast.WhitespaceLike, _ string, afterColon ast.WhitespaceLike, value ast.Expression) (*ast.Property, error) {
			return track(m, &ast.Property{Name: name, BeforeColon: beforeColon, AfterColon: afterColon, Value: value}), nil
		}))
	key := pc.Pipe5(pc.Exact("["), g.ows(), g.expression.Parser(), g.ows(), pc.Exact("]"),
		func(_ pc.Match, _ string, before ast.WhitespaceLike, expr ast.Expression, after ast.WhitespaceLike, _ string) (computedKey, error) {
			return computedKey{before: before, expr: expr, after: after}, nil
		})
	g.computedProperty.Bind(pc.Pipe5(key, g.ows(), pc.Exact(":"), g.ows(), g.expression.Parser(),
		func(m pc.Match, k computedKey, beforeColon ast.WhitespaceLike, _ string, afterColon ast.WhitespaceLike, value ast.Expression) (*ast.ComputedProperty, error) {
			return track(m, &ast.ComputedProperty{
				BeforeExpression: k.before,
				Expression:       k.expr,
				AfterExpression:  k.after,
				BeforeColon:      beforeColon,
				AfterColon:       afterColon,
				Value:            value,
			}), nil
		}))
	g.propertyShorthand.Bind(pc.Map(g.identifier.Parser(), func(m pc.Match, id *ast.Identifier) (*ast.PropertyShorthand, error) {
		return track(m, &ast.PropertyShorthand{Name: id}), nil
	}))
	g.objItem.Bind(pc.Pipe3(
		g.ows(),
		pc.OneOf(
			asNode(g.property.Parser()),
			asNode(g.computedProperty.Parser()),
			asNode(g.spread.Parser()),
			asNode(g.propertyShorthand.Parser()),
		),
		g.ows(),
		func(m pc.Match, before ast.WhitespaceLike, prop ast.Node, after ast.WhitespaceLike) (*ast.ObjItem, error) {
			return track(m, &ast.ObjItem{Before: before, Property: prop, After: after}), nil
		}))
	g.objItems.Bind(pc.Pipe2(
		pc.ManySepBy(g.objItem.Parser(), comma, true, false),
		g.ows(),
		func(m pc.Match, items pc.SepBy[*ast.ObjItem, int], ws ast.WhitespaceLike) (*ast.ObjItems, error) {
			out := &ast.ObjItems{Items: items.Items()}
			if items.Trailing != nil {
				out.TrailingComma = ast.Create(rangesOf(m.Ctx), *items.Trailing, m.End, &ast.TrailingComma{Whitespace: ws})
			}
			return track(m, out), nil
		}))
	g.emptyObject.Bind(pc.Pipe3(pc.Exact("{"), g.ows(), pc.Exact("}"),
		func(m pc.Match, _ string, ws ast.WhitespaceLike, _ string) (*ast.EmptyObject, error) {
			return track(m, &ast.EmptyObject{Whitespace: ws}), nil
		}))
	g.obj.Bind(pc.Pipe3(pc.Exact("{"), g.objItems.Parser(), pc.Exact("}"),
		func(m pc.Match, _ string, items *ast.ObjItems, _ string) (*ast.Obj, error) {
			return track(m, &ast.Obj{Items: items}), nil
		}))

	g.collection.Bind(pc.OneOf(
		asExpr(g.emptyArray.Parser()),
		asExpr(g.arr.Parser()),
		asExpr(g.emptyObject.Parser()),
		asExpr(g.obj.Parser()),
	))
}

func (g *grammar) bindChains() {
	g.parenthesis.Bind(pc.Pipe5(pc.Exact("("), g.ows(), g.expression.Parser(), g.ows(), pc.Exact(")"),
		func(m pc.Match, _ string, before ast.WhitespaceLike, value ast.Expression, after ast.WhitespaceLike, _ string) (*ast.Parenthesis, error) {
			return track(m, &ast.Parenthesis{Before: before, Value: value, After: after}), nil
		}))

	g.member.Bind(pc.Pipe2(pc.Exact("."), g.identifier.Parser(),
		func(_ pc.Match, _ string, prop *ast.Identifier) (postfix, error) {
			return func(target ast.Expression) ast.Expression {
				return &ast.MemberExpression{Target: target, Property: prop}
			}, nil
		}))
	g.computedMember.Bind(pc.Pipe5(pc.Exact("["), g.ows(), g.expression.Parser(), g.ows(), pc.Exact("]"),
		func(_ pc.Match, _ string, before ast.WhitespaceLike, prop ast.Expression, after ast.WhitespaceLike, _ string) (postfix, error) {
			return func(target ast.Expression) ast.Expression {
				return &ast.ComputedMemberExpression{Target: target, Before: before, Property: prop, After: after}
			}, nil
		}))
	g.call.Bind(pc.OneOf(
		pc.Pipe3(pc.Exact("("), g.ows(), pc.Exact(")"),
			func(_ pc.Match, _ string, ws ast.WhitespaceLike, _ string) (postfix, error) {
				return func(target ast.Expression) ast.Expression {
					return &ast.CallExpression{Target: target, Whitespace: ws}
				}, nil
			}),
		pc.Pipe3(pc.Exact("("), g.listItems.Parser(), pc.Exact(")"),
			func(_ pc.Match, _ string, args *ast.ListItems, _ string) (postfix, error) {
				return func(target ast.Expression) ast.Expression {
					return &ast.CallExpression{Target: target, Arguments: args}
				}, nil
			}),
	))

	g.chainable.Bind(pc.ReduceRight(
		pc.OneOf(asExpr(g.identifier.Parser()), asExpr(g.parenthesis.Parser())),
		pc.OneOf(g.member.Parser(), g.computedMember.Parser(), g.call.Parser()),
		func(m pc.Match, acc ast.Expression, link postfix) (ast.Expression, error) {
			return track(m, link(acc)), nil
		}))

	g.expression.Bind(pc.OneOf(
		g.anyElement.Parser(),
		g.primitive.Parser(),
		g.collection.Parser(),
		g.chainable.Parser(),
	))
}

func (g *grammar) bindMarkup() {
	textRun := pc.Expect(pc.OneOf(
		pc.Regexp(`^[^<{}\\/\s]+`),
		pc.Exact("/"),
		pc.Regexp(`^\\[^\n]`),
	), "text")
	g.text.Bind(pc.Map(textRun, func(m pc.Match, s string) (*ast.Text, error) {
		return track(m, &ast.Text{Content: s}), nil
	}))

	g.inject.Bind(pc.OneOf(
		pc.Pipe5(pc.Exact("{"), g.ows(), g.expression.Parser(), g.ows(), pc.Exact("}"),
			func(m pc.Match, _ string, before ast.WhitespaceLike, value ast.Expression, after ast.WhitespaceLike, _ string) (*ast.Inject, error) {
				return track(m, &ast.Inject{Before: before, Value: value, After: after}), nil
			}),
		// {} and {/* note */} hold no expression
		pc.Pipe3(pc.Exact("{"), g.ows(), pc.Exact("}"),
			func(m pc.Match, _ string, ws ast.WhitespaceLike, _ string) (*ast.Inject, error) {
				return track(m, &ast.Inject{Before: ws}), nil
			}),
	))

	g.elementName.Bind(pc.ReduceRight(
		pc.Map(g.identifier.Parser(), func(_ pc.Match, id *ast.Identifier) (ast.ElementName, error) { return id, nil }),
		pc.Pipe2(pc.Exact("."), g.identifier.Parser(), func(_ pc.Match, _ string, id *ast.Identifier) (*ast.Identifier, error) {
			return id, nil
		}),
		func(m pc.Match, acc ast.ElementName, prop *ast.Identifier) (ast.ElementName, error) {
			return track(m, &ast.ElementNameMember{Target: acc, Property: prop}), nil
		}))

	g.attribute.Bind(pc.Pipe3(
		g.whitespaceLike.Parser(),
		g.identifier.Parser(),
		pc.Maybe(pc.Pipe2(pc.Exact("="), g.expression.Parser(), func(_ pc.Match, _ string, v ast.Expression) (ast.Expression, error) {
			return v, nil
		})),
		func(m pc.Match, ws ast.WhitespaceLike, name *ast.Identifier, value ast.Expression) (*ast.Attribute, error) {
			return track(m, &ast.Attribute{Whitespace: ws, Name: name, Value: value}), nil
		}))

	g.tagHead.Bind(pc.Pipe3(g.elementName.Parser(), pc.Many(g.attribute.Parser(), true), g.ows(),
		func(_ pc.Match, name ast.ElementName, attrs []*ast.Attribute, ws ast.WhitespaceLike) (tagHead, error) {
			return tagHead{name: name, attrs: attrs, ws: ws}, nil
		}))

	g.closeTag.Bind(pc.OneOf(
		pc.Map(pc.Exact("</>"), func(m pc.Match, _ string) (closeTag, error) {
			return closeTag{pos: m.Start}, nil
		}),
		pc.Pipe3(pc.Exact("<"), g.elementName.Parser(), pc.Exact("/>"),
			func(m pc.Match, _ string, name ast.ElementName, _ string) (closeTag, error) {
				return closeTag{name: name, pos: m.Start}, nil
			}),
	))

	open := func(opener string) pc.Parser[tagHead] {
		return pc.Pipe3(pc.Exact(opener), g.tagHead.Parser(), pc.Exact(">"),
			func(_ pc.Match, _ string, head tagHead, _ string) (tagHead, error) {
				return head, nil
			})
	}

	g.element.Bind(pc.Map(
		pc.ManyBetween(open("<|"), g.child.Parser(), g.closeTag.Parser()),
		func(m pc.Match, b pc.Between[tagHead, ast.Node, closeTag]) (*ast.Element, error) {
			if b.End.name != nil && !ast.SameName(b.Begin.name, b.End.name) {
				return nil, &pc.SemanticError{
					Pos: b.End.pos,
					Message: fmt.Sprintf("Wrong component: expected <%s/> but got <%s/>",
						ast.NameString(b.Begin.name), ast.NameString(b.End.name)),
				}
			}
			return track(m, &ast.Element{
				Name:          b.Begin.name,
				Attributes:    b.Begin.attrs,
				Whitespace:    b.Begin.ws,
				Children:      ast.NormalizeChildren(rangesOf(m.Ctx), b.Items),
				NamedCloseTag: b.End.name != nil,
			}), nil
		}))

	g.selfClosing.Bind(pc.Pipe3(pc.Exact("</"), g.tagHead.Parser(), pc.Exact("/>"),
		func(m pc.Match, _ string, head tagHead, _ string) (*ast.SelfClosingElement, error) {
			return track(m, &ast.SelfClosingElement{Name: head.name, Attributes: head.attrs, Whitespace: head.ws}), nil
		}))

	g.lineElement.Bind(pc.Pipe2(open("<"), pc.Many(g.lineChild.Parser(), true),
		func(m pc.Match, head tagHead, children []ast.Node) (*ast.LineElement, error) {
			return track(m, &ast.LineElement{
				Name:       head.name,
				Attributes: head.attrs,
				Whitespace: head.ws,
				Children:   ast.NormalizeChildren(rangesOf(m.Ctx), children),
			}), nil
		}))

	g.rawElement.Bind(rawElement(open("<#")))
	g.rawFragment.Bind(rawFragment())

	g.fragment.Bind(pc.Map(
		pc.ManyBetween(pc.Exact("<|>"), g.child.Parser(), pc.Exact("</>")),
		func(m pc.Match, b pc.Between[string, ast.Node, string]) (*ast.Fragment, error) {
			return track(m, &ast.Fragment{Children: ast.NormalizeChildren(rangesOf(m.Ctx), b.Items)}), nil
		}))

	g.anyElement.Bind(pc.OneOf(
		asExpr(g.fragment.Parser()),
		asExpr(g.element.Parser()),
		asExpr(g.rawFragment.Parser()),
		asExpr(g.rawElement.Parser()),
		asExpr(g.selfClosing.Parser()),
		asExpr(g.lineElement.Parser()),
	))

	g.child.Bind(pc.OneOf(
		asNode(g.anyElement.Parser()),
		g.comment.Parser(),
		asNode(g.inject.Parser()),
		asNode(g.whitespace.Parser()),
		asNode(g.text.Parser()),
	))
	g.lineChild.Bind(pc.OneOf(
		asNode(g.anyElement.Parser()),
		g.comment.Parser(),
		asNode(g.inject.Parser()),
		asNode(g.inlineWhitespace.Parser()),
		asNode(g.text.Parser()),
	))
}

func (g *grammar) bindDocuments() {
	g.document.Bind(pc.Pipe2(pc.Many(g.child.Parser(), true), pc.EOF(),
		func(m pc.Match, children []ast.Node, _ struct{}) (*ast.Document, error) {
			return track(m, &ast.Document{Children: ast.NormalizeChildren(rangesOf(m.Ctx), children)}), nil
		}))
	g.expressionDocument.Bind(pc.Pipe4(g.ows(), g.expression.Parser(), g.ows(), pc.EOF(),
		func(m pc.Match, before ast.WhitespaceLike, value ast.Expression, after ast.WhitespaceLike, _ struct{}) (*ast.ExpressionDocument, error) {
			return track(m, &ast.ExpressionDocument{Before: before, Value: value, After: after}), nil
		}))
}

// scanRaw finds the earliest of the close tokens in the remaining input.
// It returns the opaque content before it and the cursor after it.
func scanRaw(c pc.Cursor, tokens ...string) (content string, token string, rest pc.Cursor, ok bool) {
	text := c.Rest()
	best := -1
	for _, tok := range tokens {
		i := strings.Index(text, tok)
		if i >= 0 && (best < 0 || i < best) {
			best = i
			token = tok
		}
	}
	if best < 0 {
		return "", "", c, false
	}
	return text[:best], token, c.Skip(best + len(token)), true
}

func rawElement(open pc.Parser[tagHead]) pc.Parser[*ast.RawElement] {
	return pc.New("RawElement", func(c pc.Cursor, s pc.State) pc.Result[*ast.RawElement] {
		hr := open.Parse(c, s)
		if !hr.OK() {
			return pc.Failed[*ast.RawElement](hr.Failure)
		}
		head := hr.Value
		named := "<#" + ast.NameString(head.name) + "/>"
		content, tok, rest, ok := scanRaw(hr.Rest, named, "<#/>")
		if !ok {
			end := hr.Rest.Skip(hr.Rest.Size())
			return pc.Failed[*ast.RawElement](s.Fail(end.Position(), "Unexpected EOF, expected %s or <#/>", named))
		}
		n := ast.Create(rangesOf(s.Context()), c.Position(), rest.Position(), &ast.RawElement{
			Name:          head.name,
			Attributes:    head.attrs,
			Whitespace:    head.ws,
			Content:       content,
			NamedCloseTag: tok == named,
		})
		return pc.Success(n, c, rest, hr.IfError)
	})
}

func rawFragment() pc.Parser[*ast.RawFragment] {
	open := pc.Exact("<#>")
	return pc.New("RawFragment", func(c pc.Cursor, s pc.State) pc.Result[*ast.RawFragment] {
		or := open.Parse(c, s)
		if !or.OK() {
			return pc.Failed[*ast.RawFragment](or.Failure)
		}
		content, _, rest, ok := scanRaw(or.Rest, "<#/>")
		if !ok {
			end := or.Rest.Skip(or.Rest.Size())
			return pc.Failed[*ast.RawFragment](s.Fail(end.Position(), "Unexpected EOF, expected <#/>"))
		}
		n := ast.Create(rangesOf(s.Context()), c.Position(), rest.Position(), &ast.RawFragment{Content: content})
		return pc.Success(n, c, rest, nil)
	})
}
