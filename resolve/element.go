package resolve

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Element is the value built by BuildElement.
type Element struct {
	Type  any            `json:"type"`
	Props map[string]any `json:"props"`
	Key   any            `json:"key,omitempty"`
}

// BuildElement is an ElementConstructor that returns *Element values. It
// is what the command line tools use when no other constructor is set.
func BuildElement(typ any, props map[string]any, key any) (any, error) {
	return &Element{Type: typ, Props: props, Key: key}, nil
}

// MarshalJSON writes the element type as its name when it is a string or a
// sentinel such as Fragment.
func (e *Element) MarshalJSON() ([]byte, error) {
	type element Element
	out := element(*e)
	out.Type = typeName(e.Type)
	out.Props = jsonValue(e.Props).(map[string]any)
	out.Key = jsonValue(e.Key)
	return json.Marshal(out)
}

func typeName(typ any) string {
	switch t := typ.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprintf("%T", typ)
}

// JSON converts a resolved value into a form encoding/json accepts.
// Undefined and non-finite numbers become null and functions become the
// string "[function]".
func JSON(v any) any {
	return jsonValue(v)
}

func jsonValue(v any) any {
	switch v := v.(type) {
	case undefined:
		return nil
	case Func:
		return "[function]"
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = jsonValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = jsonValue(item)
		}
		return out
	}
	return v
}

// Keys returns the keys of m in order.
func Keys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
