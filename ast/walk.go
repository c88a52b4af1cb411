package ast

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil && !isNilNode(c) {
				out = append(out, c)
			}
		}
	}
	addWS := func(ws WhitespaceLike) {
		add(ws...)
	}
	addAttrs := func(attrs []*Attribute) {
		for _, a := range attrs {
			add(a)
		}
	}

	switch n := n.(type) {
	case *Document:
		add(n.Children...)
	case *ExpressionDocument:
		addWS(n.Before)
		add(n.Value)
		addWS(n.After)
	case *EmptyArray:
		addWS(n.Whitespace)
	case *Arr:
		add(n.Items)
	case *ListItems:
		for _, item := range n.Items {
			add(item)
		}
		add(n.TrailingComma)
	case *ListItem:
		addWS(n.Before)
		add(n.Item)
		addWS(n.After)
	case *TrailingComma:
		addWS(n.Whitespace)
	case *Spread:
		add(n.Target)
	case *EmptyObject:
		addWS(n.Whitespace)
	case *Obj:
		add(n.Items)
	case *ObjItems:
		for _, item := range n.Items {
			add(item)
		}
		add(n.TrailingComma)
	case *ObjItem:
		addWS(n.Before)
		add(n.Property)
		addWS(n.After)
	case *Property:
		add(n.Name)
		addWS(n.BeforeColon)
		addWS(n.AfterColon)
		add(n.Value)
	case *ComputedProperty:
		addWS(n.BeforeExpression)
		add(n.Expression)
		addWS(n.AfterExpression)
		addWS(n.BeforeColon)
		addWS(n.AfterColon)
		add(n.Value)
	case *PropertyShorthand:
		add(n.Name)
	case *MemberExpression:
		add(n.Target, n.Property)
	case *ComputedMemberExpression:
		add(n.Target)
		addWS(n.Before)
		add(n.Property)
		addWS(n.After)
	case *CallExpression:
		add(n.Target, n.Arguments)
		addWS(n.Whitespace)
	case *Parenthesis:
		addWS(n.Before)
		add(n.Value)
		addWS(n.After)
	case *ElementNameMember:
		add(n.Target, n.Property)
	case *Attribute:
		addWS(n.Whitespace)
		add(n.Name, n.Value)
	case *Element:
		add(n.Name)
		addAttrs(n.Attributes)
		addWS(n.Whitespace)
		add(n.Children...)
	case *SelfClosingElement:
		add(n.Name)
		addAttrs(n.Attributes)
		addWS(n.Whitespace)
	case *LineElement:
		add(n.Name)
		addAttrs(n.Attributes)
		addWS(n.Whitespace)
		add(n.Children...)
	case *RawElement:
		add(n.Name)
		addAttrs(n.Attributes)
		addWS(n.Whitespace)
	case *Fragment:
		add(n.Children...)
	case *Inject:
		addWS(n.Before)
		add(n.Value)
		addWS(n.After)
	}
	return out
}

// isNilNode catches typed nil pointers stored in interface fields.
func isNilNode(n Node) bool {
	switch n := n.(type) {
	case *ListItems:
		return n == nil
	case *ObjItems:
		return n == nil
	case *TrailingComma:
		return n == nil
	case *Identifier:
		return n == nil
	}
	return false
}

// Inspect traverses the tree rooted at n depth first. If fn returns false
// the children of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}
