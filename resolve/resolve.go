// Package resolve evaluates a parsed Docsy file against a set of globals.
//
// Values are plain Go values: string, float64, bool, nil for null,
// Undefined, []any for arrays and map[string]any for objects. Globals may
// also hold Func values, which calls invoke. Elements are handed to an
// ElementConstructor supplied by the caller.
package resolve

import (
	"math"
	"strconv"
	"strings"

	"github.com/dhamidi/docsy/ast"
)

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the value of the undefined literal and of missing members.
var Undefined any = undefined{}

type fragment struct{}

func (fragment) String() string { return "Fragment" }

// Fragment is the element type passed to the constructor for fragments.
var Fragment any = fragment{}

// Func is a callable global.
type Func func(args ...any) (any, error)

// ElementConstructor builds the value of an element. props holds the
// attributes, with the resolved children under "children" when the element
// has any. key is the value of the key attribute, or nil.
type ElementConstructor func(typ any, props map[string]any, key any) (any, error)

type Options struct {
	Globals            map[string]any
	ElementConstructor ElementConstructor
}

// Resolve evaluates the root of f.
func Resolve(f *ast.File, opts Options) (any, error) {
	r := &resolver{file: f, opts: opts}
	return r.node(f.Root)
}

type resolver struct {
	file *ast.File
	opts Options
}

func (r *resolver) node(n ast.Node) (any, error) {
	switch n := n.(type) {
	case *ast.Document:
		return r.children(n.Children)
	case *ast.ExpressionDocument:
		return r.node(n.Value)
	case *ast.Text:
		return n.Value(), nil
	case *ast.Whitespace:
		return n.Content, nil
	case *ast.Identifier:
		return r.global(n)
	case *ast.Str:
		return n.Value(), nil
	case *ast.Num:
		return n.Value, nil
	case *ast.Bool:
		return n.Value, nil
	case *ast.Null:
		return nil, nil
	case *ast.Undefined:
		return Undefined, nil
	case *ast.EmptyArray:
		return []any{}, nil
	case *ast.Arr:
		return r.list(n.Items)
	case *ast.EmptyObject:
		return map[string]any{}, nil
	case *ast.Obj:
		return r.object(n)
	case *ast.Parenthesis:
		return r.node(n.Value)
	case *ast.MemberExpression:
		target, err := r.node(n.Target)
		if err != nil {
			return nil, err
		}
		return r.member(n, target, n.Property.Name)
	case *ast.ComputedMemberExpression:
		return r.computedMember(n)
	case *ast.CallExpression:
		return r.call(n)
	case *ast.Inject:
		return r.inject(n)
	case *ast.Element:
		return r.element(n, n.Name, n.Attributes, n.Children, nil)
	case *ast.SelfClosingElement:
		return r.element(n, n.Name, n.Attributes, nil, nil)
	case *ast.LineElement:
		return r.element(n, n.Name, n.Attributes, n.Children, nil)
	case *ast.RawElement:
		content := n.Content
		return r.element(n, n.Name, n.Attributes, nil, &content)
	case *ast.Fragment:
		children, err := r.children(n.Children)
		if err != nil {
			return nil, err
		}
		return r.construct(n, Fragment, withChildren(map[string]any{}, children), nil)
	case *ast.RawFragment:
		return r.construct(n, Fragment, map[string]any{"children": n.Content}, nil)
	case nil:
		return nil, r.cannotResolve(nil, "Cannot resolve an empty node")
	}
	return nil, r.cannotResolve(n, "Cannot resolve %s", n.Kind())
}

func (r *resolver) global(id *ast.Identifier) (any, error) {
	v, ok := r.opts.Globals[id.Name]
	if !ok {
		return nil, r.missingGlobal(id)
	}
	return v, nil
}

// children resolves a child list to a single content value. Comments are
// skipped. Whitespace is kept when every sibling is text, or when it sits
// between two siblings that produce strings; next to elements it is
// dropped. No children yields nil, one child yields its value, all strings
// are concatenated, anything else is returned as a list.
func (r *resolver) children(nodes []ast.Node) (any, error) {
	textOnly := true
	for _, n := range nodes {
		switch n.(type) {
		case *ast.Text, *ast.Whitespace, *ast.LineComment, *ast.BlockComment:
		default:
			textOnly = false
		}
	}

	var values []any
	for i, n := range nodes {
		switch n := n.(type) {
		case *ast.LineComment, *ast.BlockComment:
			continue
		case *ast.Whitespace:
			if !textOnly && !betweenStrings(nodes, i) {
				continue
			}
		case *ast.Inject:
			if n.Value == nil {
				continue
			}
		}
		v, err := r.node(n)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	}
	var b strings.Builder
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return values, nil
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// betweenStrings reports whether the nearest siblings on both sides of
// nodes[i], skipping whitespace and comments, are text or injects.
func betweenStrings(nodes []ast.Node, i int) bool {
	return producesString(nodes, i, -1) && producesString(nodes, i, 1)
}

func producesString(nodes []ast.Node, i, step int) bool {
	for j := i + step; j >= 0 && j < len(nodes); j += step {
		switch nodes[j].(type) {
		case *ast.Whitespace, *ast.LineComment, *ast.BlockComment:
			continue
		case *ast.Text, *ast.Inject:
			return true
		}
		return false
	}
	return false
}

func (r *resolver) inject(n *ast.Inject) (any, error) {
	if n.Value == nil {
		return "", nil
	}
	v, err := r.node(n.Value)
	if err != nil {
		return nil, err
	}
	s, ok := v.(string)
	if !ok {
		return nil, &CannotResolveInjectError{
			FileError: r.fileError(n, "Cannot inject %s, expected a string", describe(v)),
			Value:     v,
		}
	}
	return s, nil
}

func (r *resolver) list(items *ast.ListItems) ([]any, error) {
	out := []any{}
	if items == nil {
		return out, nil
	}
	for _, item := range items.Items {
		if spread, ok := item.Item.(*ast.Spread); ok {
			v, err := r.node(spread.Target)
			if err != nil {
				return nil, err
			}
			list, ok := v.([]any)
			if !ok {
				return nil, r.cannotResolve(spread, "Cannot spread %s into an array", describe(v))
			}
			out = append(out, list...)
			continue
		}
		v, err := r.node(item.Item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *resolver) object(n *ast.Obj) (map[string]any, error) {
	out := map[string]any{}
	for _, item := range n.Items.Items {
		switch p := item.Property.(type) {
		case *ast.Property:
			v, err := r.node(p.Value)
			if err != nil {
				return nil, err
			}
			switch name := p.Name.(type) {
			case *ast.Identifier:
				out[name.Name] = v
			case *ast.Str:
				out[name.Value()] = v
			default:
				return nil, r.cannotResolve(p, "Cannot use %s as a property name", p.Name.Kind())
			}
		case *ast.ComputedProperty:
			k, err := r.node(p.Expression)
			if err != nil {
				return nil, err
			}
			key, ok := propertyKey(k)
			if !ok {
				return nil, r.cannotResolve(p.Expression, "Cannot use %s as a property name", describe(k))
			}
			v, err := r.node(p.Value)
			if err != nil {
				return nil, err
			}
			out[key] = v
		case *ast.PropertyShorthand:
			v, err := r.global(p.Name)
			if err != nil {
				return nil, err
			}
			out[p.Name.Name] = v
		case *ast.Spread:
			v, err := r.node(p.Target)
			if err != nil {
				return nil, err
			}
			m, ok := v.(map[string]any)
			if !ok {
				return nil, r.cannotResolve(p, "Cannot spread %s into an object", describe(v))
			}
			for k, mv := range m {
				out[k] = mv
			}
		default:
			return nil, r.cannotResolve(item, "Cannot resolve object item")
		}
	}
	return out, nil
}

func propertyKey(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

func (r *resolver) member(n ast.Node, target any, name string) (any, error) {
	switch t := target.(type) {
	case map[string]any:
		v, ok := t[name]
		if !ok {
			return Undefined, nil
		}
		return v, nil
	case []any:
		if name == "length" {
			return float64(len(t)), nil
		}
		return Undefined, nil
	case string:
		if name == "length" {
			return float64(len(t)), nil
		}
		return Undefined, nil
	}
	return nil, r.cannotResolve(n, "Cannot read property %s of %s", name, describe(target))
}

func (r *resolver) computedMember(n *ast.ComputedMemberExpression) (any, error) {
	target, err := r.node(n.Target)
	if err != nil {
		return nil, err
	}
	prop, err := r.node(n.Property)
	if err != nil {
		return nil, err
	}
	if list, ok := target.([]any); ok {
		if i, ok := prop.(float64); ok {
			if i != math.Trunc(i) || i < 0 || i >= float64(len(list)) {
				return Undefined, nil
			}
			return list[int(i)], nil
		}
	}
	key, ok := propertyKey(prop)
	if !ok {
		return nil, r.cannotResolve(n.Property, "Cannot use %s as a property name", describe(prop))
	}
	return r.member(n, target, key)
}

func (r *resolver) call(n *ast.CallExpression) (any, error) {
	target, err := r.node(n.Target)
	if err != nil {
		return nil, err
	}
	fn, ok := target.(Func)
	if !ok {
		return nil, r.cannotResolve(n, "Cannot call %s", describe(target))
	}
	args, err := r.list(n.Arguments)
	if err != nil {
		return nil, err
	}
	v, err := fn(args...)
	if err != nil {
		return nil, r.cannotResolve(n, "Call failed: %v", err)
	}
	return v, nil
}

func (r *resolver) elementType(name ast.ElementName) (any, error) {
	switch name := name.(type) {
	case *ast.Identifier:
		return r.global(name)
	case *ast.ElementNameMember:
		target, err := r.elementType(name.Target)
		if err != nil {
			return nil, err
		}
		return r.member(name, target, name.Property.Name)
	}
	return nil, r.cannotResolve(name, "Cannot resolve element name")
}

func (r *resolver) element(n ast.Node, name ast.ElementName, attrs []*ast.Attribute, children []ast.Node, raw *string) (any, error) {
	if r.opts.ElementConstructor == nil {
		return nil, &MissingJsxFunctionError{r.fileError(n, "Missing element constructor for <%s>", ast.NameString(name))}
	}
	typ, err := r.elementType(name)
	if err != nil {
		return nil, err
	}
	props := map[string]any{}
	var key any
	for _, a := range attrs {
		var v any = true
		if a.Value != nil {
			if v, err = r.node(a.Value); err != nil {
				return nil, err
			}
		}
		if a.Name.Name == "key" {
			key = v
			continue
		}
		props[a.Name.Name] = v
	}
	if raw != nil {
		props["children"] = *raw
	} else {
		content, err := r.children(children)
		if err != nil {
			return nil, err
		}
		withChildren(props, content)
	}
	return r.construct(n, typ, props, key)
}

func withChildren(props map[string]any, content any) map[string]any {
	if content != nil {
		props["children"] = content
	}
	return props
}

func (r *resolver) construct(n ast.Node, typ any, props map[string]any, key any) (any, error) {
	if r.opts.ElementConstructor == nil {
		return nil, &MissingJsxFunctionError{r.fileError(n, "Missing element constructor")}
	}
	v, err := r.opts.ElementConstructor(typ, props, key)
	if err != nil {
		return nil, r.cannotResolve(n, "Element constructor failed: %v", err)
	}
	return v, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	case Func:
		return "a function"
	case undefined:
		return "undefined"
	}
	return "a value"
}
