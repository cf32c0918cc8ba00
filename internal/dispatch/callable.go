package dispatch

import (
	"reflect"

	"github.com/funvibe/oolong/internal/dynamic"
)

// Guard constrains one positional parameter. A nil Type accepts any value
// (the callable receives the handle itself); Ref guards additionally require
// mutable storage of that exact type.
type Guard struct {
	Type reflect.Type
	Ref  bool
}

// Callable is a single function overload: fixed arity, per-position guards,
// and the invocation itself. An arity below zero means the callable checks
// its own arguments inside Call.
type Callable interface {
	Arity() int
	Guards() []Guard
	Call(args []dynamic.Value) (dynamic.Value, error)
}

func guardsMatch(guards []Guard, args []dynamic.Value) bool {
	for i, g := range guards {
		if g.Type == nil {
			continue
		}
		if args[i].Type() != g.Type {
			return false
		}
		if g.Ref && args[i].IsConst() {
			return false
		}
	}
	return true
}

// callOverloads is the dispatch loop shared by the engine and first-class
// function values: try overloads in registration order, first structural
// match wins. Arity mismatches and guard mismatches produce different
// errors so callers can tell a misspelled call from a badly typed one.
func callOverloads(name string, types *dynamic.TypeRegistry, fns []Callable, args []dynamic.Value) (dynamic.Value, error) {
	arityMatched := false
	for _, fn := range fns {
		n := fn.Arity()
		if n >= 0 {
			if n != len(args) {
				continue
			}
			arityMatched = true
			if !guardsMatch(fn.Guards(), args) {
				continue
			}
		}
		return fn.Call(args)
	}
	if !arityMatched {
		return dynamic.Value{}, &NotFoundError{Name: name, NArgs: len(args)}
	}
	return dynamic.Value{}, &NoOverloadError{Name: name, Args: argTypeNames(types, args)}
}

func argTypeNames(types *dynamic.TypeRegistry, args []dynamic.Value) []string {
	names := make([]string, len(args))
	for i, a := range args {
		if types != nil {
			names[i] = types.TypeName(a)
			continue
		}
		if t := a.Type(); t != nil {
			names[i] = t.String()
		} else {
			names[i] = "void"
		}
	}
	return names
}

// Func is a first-class function value: a (possibly empty) name and one or
// more overloads tried in order. Identifiers naming registered functions
// resolve to one of these, as do fun literals.
type Func struct {
	Name  string
	types *dynamic.TypeRegistry
	fns   []Callable
}

func NewFunc(name string, types *dynamic.TypeRegistry, fns ...Callable) *Func {
	return &Func{Name: name, types: types, fns: fns}
}

// Callables returns the overload list in registration order.
func (f *Func) Callables() []Callable {
	out := make([]Callable, len(f.fns))
	copy(out, f.fns)
	return out
}

// Arity marks the value as self-checking: each overload carries its own
// arity and guards.
func (f *Func) Arity() int      { return -1 }
func (f *Func) Guards() []Guard { return nil }

func (f *Func) Call(args []dynamic.Value) (dynamic.Value, error) {
	return callOverloads(f.Name, f.types, f.fns, args)
}

func (f *Func) String() string {
	if f.Name == "" {
		return "Function(anonymous)"
	}
	return "Function(" + f.Name + ")"
}
