package oolong

import (
	"fmt"
	"reflect"

	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
	"github.com/funvibe/oolong/internal/evaluator"
	"github.com/funvibe/oolong/internal/parser"
	"github.com/funvibe/oolong/internal/units"
)

// Value is a handle to one script value. Copying a Value copies the
// handle, not the storage: both copies read and write the same cell.
type Value = dynamic.Value

// Func is a first-class function value, the payload behind every value of
// script type Function.
type Func = dispatch.Func

// The error types an embedder can match with errors.As.
type (
	// MismatchError: a cast or assignment found a different payload type.
	MismatchError = dynamic.MismatchError
	// ConstError: a write reached a const handle.
	ConstError = dynamic.ConstError
	// ConflictError: a type name or Go type was registered twice.
	ConflictError = dynamic.ConflictError
	// NotFoundError: no function of that name and arity.
	NotFoundError = dispatch.NotFoundError
	// NoOverloadError: right arity, no overload took the argument types.
	NoOverloadError = dispatch.NoOverloadError
	// ReservedError: a reserved word used as a name.
	ReservedError = dispatch.ReservedError
	// ParseError: one syntax error with its position.
	ParseError = parser.Error
	// ParseErrorList: every syntax error found in one parse.
	ParseErrorList = parser.ErrorList
	// EvalError: a runtime failure with the position that raised it.
	EvalError = evaluator.Error
	// LoadError: a module reference that matched no file.
	LoadError = units.LoadError
)

// Box copies v into a fresh script value.
func Box(v any) Value { return dynamic.Box(v) }

// BoxRef makes a script value backed by the host variable *p. Script
// writes show up in *p and host writes show up in the script.
func BoxRef(p any) (Value, error) { return dynamic.BoxRef(p) }

// Void returns an empty value that adopts the type of the first value
// assigned to it.
func Void() Value { return dynamic.Void() }

// Clone copies v's payload into fresh storage. Vectors and Maps copy one
// level deep, matching var semantics in scripts.
func Clone(v Value) Value { return dynamic.Clone(v) }

// As extracts v's payload as a T. The payload type must be exactly T; a
// failed cast leaves v untouched and returns a MismatchError.
func As[T any](v Value) (T, error) { return dynamic.As[T](v) }

// Ref returns a pointer to v's live payload, rejecting const handles.
func Ref[T any](v Value) (*T, error) { return dynamic.Ref[T](v) }

var (
	valueType = reflect.TypeOf((*dynamic.Value)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Functor returns a Go function of type F that dispatches name through the
// engine, script overloads and natives alike. Argument and result
// conversion follow the cast rules. When F's last result is an error,
// dispatch and conversion failures surface there; with no error result
// they panic, so the plain shape is for calls that cannot fail.
func Functor[F any](e *Engine, name string) (F, error) {
	var zero F
	ft := reflect.TypeOf((*F)(nil)).Elem()
	if ft.Kind() != reflect.Func {
		return zero, fmt.Errorf("functor for %q needs a function type, got %s", name, ft)
	}
	if ft.IsVariadic() {
		return zero, fmt.Errorf("functor for %q: variadic functions are not supported", name)
	}

	hasErr := ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType
	nVals := ft.NumOut()
	if hasErr {
		nVals--
	}
	if nVals > 1 {
		return zero, fmt.Errorf("functor for %q: at most one value result plus an error", name)
	}

	impl := func(in []reflect.Value) []reflect.Value {
		args := make([]dynamic.Value, len(in))
		for i, rv := range in {
			if rv.Type() == valueType {
				args[i] = rv.Interface().(dynamic.Value)
			} else {
				args[i] = dynamic.Box(rv.Interface())
			}
		}

		res, err := e.dispatch.Call(name, args)

		out := make([]reflect.Value, ft.NumOut())
		if nVals == 1 {
			out[0] = reflect.Zero(ft.Out(0))
			if err == nil {
				if ft.Out(0) == valueType {
					out[0] = reflect.ValueOf(res)
				} else if rv, convErr := dynamic.Convert(res, ft.Out(0)); convErr != nil {
					err = convErr
				} else {
					out[0] = rv
				}
			}
		}
		if hasErr {
			ev := reflect.New(errorType).Elem()
			if err != nil {
				ev.Set(reflect.ValueOf(err))
			}
			out[ft.NumOut()-1] = ev
		} else if err != nil {
			panic(fmt.Sprintf("functor %s: %v", name, err))
		}
		return out
	}

	return reflect.MakeFunc(ft, impl).Interface().(F), nil
}
