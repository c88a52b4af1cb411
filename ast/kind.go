package ast

type NodeKind int

const (
	KindInvalid NodeKind = iota

	// Roots
	KindDocument
	KindExpressionDocument

	// Trivia and text
	KindText
	KindWhitespace
	KindLineComment
	KindBlockComment

	// Primitives
	KindIdentifier
	KindStr
	KindNum
	KindBool
	KindNull
	KindUndefined

	// Arrays and objects
	KindArr
	KindEmptyArray
	KindListItems
	KindListItem
	KindTrailingComma
	KindSpread
	KindObj
	KindEmptyObject
	KindObjItems
	KindObjItem
	KindProperty
	KindComputedProperty
	KindPropertyShorthand

	// Chains
	KindMemberExpression
	KindComputedMemberExpression
	KindCallExpression
	KindParenthesis

	// Markup
	KindElementNameMember
	KindAttribute
	KindElement
	KindSelfClosingElement
	KindLineElement
	KindRawElement
	KindFragment
	KindRawFragment
	KindInject
)

var nodeKindNames = map[NodeKind]string{
	KindInvalid:                  "Invalid",
	KindDocument:                 "Document",
	KindExpressionDocument:       "ExpressionDocument",
	KindText:                     "Text",
	KindWhitespace:               "Whitespace",
	KindLineComment:              "LineComment",
	KindBlockComment:             "BlockComment",
	KindIdentifier:               "Identifier",
	KindStr:                      "Str",
	KindNum:                      "Num",
	KindBool:                     "Bool",
	KindNull:                     "Null",
	KindUndefined:                "Undefined",
	KindArr:                      "Arr",
	KindEmptyArray:               "EmptyArray",
	KindListItems:                "ListItems",
	KindListItem:                 "ListItem",
	KindTrailingComma:            "TrailingComma",
	KindSpread:                   "Spread",
	KindObj:                      "Obj",
	KindEmptyObject:              "EmptyObject",
	KindObjItems:                 "ObjItems",
	KindObjItem:                  "ObjItem",
	KindProperty:                 "Property",
	KindComputedProperty:         "ComputedProperty",
	KindPropertyShorthand:        "PropertyShorthand",
	KindMemberExpression:         "MemberExpression",
	KindComputedMemberExpression: "ComputedMemberExpression",
	KindCallExpression:           "CallExpression",
	KindParenthesis:              "Parenthesis",
	KindElementNameMember:        "ElementNameMember",
	KindAttribute:                "Attribute",
	KindElement:                  "Element",
	KindSelfClosingElement:       "SelfClosingElement",
	KindLineElement:              "LineElement",
	KindRawElement:               "RawElement",
	KindFragment:                 "Fragment",
	KindRawFragment:              "RawFragment",
	KindInject:                   "Inject",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}
