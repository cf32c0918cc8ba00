package bootstrap

import (
	"encoding/json"
	"fmt"

	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

// maxConvertDepth bounds the recursion of boxAny and unboxAny so cyclic
// containers fail instead of hanging.
const maxConvertDepth = 64

// boxAny turns decoded host data (JSON, YAML, database rows) into runtime
// values.
func boxAny(x any) (dynamic.Value, error) {
	return boxAnyDepth(x, 0)
}

func boxAnyDepth(x any, depth int) (dynamic.Value, error) {
	if depth > maxConvertDepth {
		return dynamic.Value{}, fmt.Errorf("value is nested too deeply")
	}
	switch x := x.(type) {
	case nil:
		return dynamic.Void(), nil
	case bool:
		return dynamic.Box(x), nil
	case int:
		return dynamic.Box(int64(x)), nil
	case int64:
		return dynamic.Box(x), nil
	case float64:
		return dynamic.Box(x), nil
	case string:
		return dynamic.Box(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return dynamic.Box(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return dynamic.Value{}, fmt.Errorf("cannot parse number %q", x.String())
		}
		return dynamic.Box(f), nil
	case []any:
		elems := make([]dynamic.Value, 0, len(x))
		for _, el := range x {
			v, err := boxAnyDepth(el, depth+1)
			if err != nil {
				return dynamic.Value{}, err
			}
			elems = append(elems, v)
		}
		return dynamic.Box(elems), nil
	case map[string]any:
		m := make(map[string]dynamic.Value, len(x))
		for k, el := range x {
			v, err := boxAnyDepth(el, depth+1)
			if err != nil {
				return dynamic.Value{}, err
			}
			m[k] = v
		}
		return dynamic.Box(m), nil
	}
	return dynamic.Value{}, fmt.Errorf("cannot convert %T to a script value", x)
}

// unboxAny turns a runtime value into plain Go data for serialization.
// Pairs flatten to two-element arrays; functions and handles to host
// resources have no data representation and fail.
func unboxAny(e *dispatch.Engine, v dynamic.Value) (any, error) {
	return unboxAnyDepth(e, v, 0)
}

func unboxAnyDepth(e *dispatch.Engine, v dynamic.Value, depth int) (any, error) {
	if depth > maxConvertDepth {
		return nil, fmt.Errorf("value is nested too deeply")
	}
	if v.IsVoid() {
		return nil, nil
	}
	switch x := v.Interface().(type) {
	case int64, float64, bool, string:
		return x, nil
	case []dynamic.Value:
		out := make([]any, 0, len(x))
		for _, el := range x {
			u, err := unboxAnyDepth(e, el, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, u)
		}
		return out, nil
	case map[string]dynamic.Value:
		out := make(map[string]any, len(x))
		for k, el := range x {
			u, err := unboxAnyDepth(e, el, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = u
		}
		return out, nil
	case Pair:
		first, err := unboxAnyDepth(e, x.First, depth+1)
		if err != nil {
			return nil, err
		}
		second, err := unboxAnyDepth(e, x.Second, depth+1)
		if err != nil {
			return nil, err
		}
		return []any{first, second}, nil
	}
	return nil, fmt.Errorf("cannot serialize a %s", e.Types().TypeName(v))
}
