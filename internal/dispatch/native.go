package dispatch

import (
	"fmt"
	"reflect"

	"github.com/funvibe/oolong/internal/dynamic"
)

var (
	valueType = reflect.TypeOf((*dynamic.Value)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Native wraps a Go function as a Callable. Parameter types become the
// guards: a dynamic.Value parameter accepts anything and receives the
// handle, a pointer parameter requires mutable storage of the pointed-to
// type and receives it in place, any other parameter requires that exact
// type and receives a copy.
type Native struct {
	fn      reflect.Value
	guards  []Guard
	retVal  bool
	retErr  bool
	passRaw []bool
}

// NewNative builds a Native from fn, which must be a non-variadic Go
// function returning nothing, a value, an error, or a value and an error.
func NewNative(fn any) (*Native, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("not a function: %T", fn)
	}
	rt := rv.Type()
	if rt.IsVariadic() {
		return nil, fmt.Errorf("variadic functions are not supported")
	}

	n := &Native{fn: rv}
	for i := 0; i < rt.NumIn(); i++ {
		pt := rt.In(i)
		switch {
		case pt == valueType:
			n.guards = append(n.guards, Guard{})
			n.passRaw = append(n.passRaw, true)
		case pt.Kind() == reflect.Ptr:
			n.guards = append(n.guards, Guard{Type: pt.Elem(), Ref: true})
			n.passRaw = append(n.passRaw, false)
		case pt.Kind() == reflect.Interface:
			return nil, fmt.Errorf("parameter %d: interface parameters are not supported, take dynamic.Value instead", i)
		default:
			n.guards = append(n.guards, Guard{Type: pt})
			n.passRaw = append(n.passRaw, false)
		}
	}

	switch rt.NumOut() {
	case 0:
	case 1:
		if rt.Out(0) == errorType {
			n.retErr = true
		} else {
			n.retVal = true
		}
	case 2:
		if rt.Out(1) != errorType {
			return nil, fmt.Errorf("second result must be error, got %s", rt.Out(1))
		}
		n.retVal = true
		n.retErr = true
	default:
		return nil, fmt.Errorf("too many results: %d", rt.NumOut())
	}
	return n, nil
}

func (n *Native) Arity() int      { return len(n.guards) }
func (n *Native) Guards() []Guard { return n.guards }

func (n *Native) Call(args []dynamic.Value) (dynamic.Value, error) {
	in := make([]reflect.Value, len(args))
	for i, g := range n.guards {
		switch {
		case n.passRaw[i]:
			in[i] = reflect.ValueOf(args[i])
		case g.Ref:
			pv, err := dynamic.Pointer(args[i], g.Type)
			if err != nil {
				return dynamic.Value{}, err
			}
			in[i] = pv
		default:
			cv, err := dynamic.Convert(args[i], g.Type)
			if err != nil {
				return dynamic.Value{}, err
			}
			in[i] = cv
		}
	}

	out := n.fn.Call(in)
	if n.retErr {
		if ev := out[len(out)-1]; !ev.IsNil() {
			return dynamic.Value{}, ev.Interface().(error)
		}
	}
	if !n.retVal {
		return dynamic.Void(), nil
	}
	res := out[0]
	if res.Type() == valueType {
		return res.Interface().(dynamic.Value), nil
	}
	return dynamic.Box(res.Interface()), nil
}

// MustNative is NewNative for wiring code with statically known signatures.
func MustNative(fn any) *Native {
	n, err := NewNative(fn)
	if err != nil {
		panic(err)
	}
	return n
}
