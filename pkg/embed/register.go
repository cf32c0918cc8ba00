package oolong

import (
	"fmt"
	"reflect"

	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

// RegisterFunction makes a Go function callable from scripts as name.
// Overloads accumulate: registering a second function under the same name
// adds an alternative tried after the existing ones. Parameter types
// become the dispatch guards; a dynamic.Value parameter accepts anything,
// a pointer parameter receives the caller's storage in place.
func (e *Engine) RegisterFunction(name string, fn any) error {
	if c, ok := fn.(dispatch.Callable); ok {
		return e.dispatch.Register(name, c)
	}
	n, err := dispatch.NewNative(fn)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	if err := e.dispatch.Register(name, n); err != nil {
		return err
	}
	e.log.Debug("function registered", "name", name, "arity", n.Arity())
	return nil
}

// RegisterType binds a script-visible name to the Go type T, so values of
// T report it from type_name and match it in is_type. Each name and each
// type can be bound once.
func RegisterType[T any](e *Engine, name string) error {
	return e.dispatch.Types().Register(name, reflect.TypeOf((*T)(nil)).Elem())
}

// RegisterTypeOf is RegisterType for a type known only at run time.
func (e *Engine) RegisterTypeOf(name string, sample any) error {
	t := reflect.TypeOf(sample)
	if t == nil {
		return fmt.Errorf("register type %s: nil sample", name)
	}
	return e.dispatch.Types().Register(name, t)
}

// RegisterSharedObject binds name as a global visible to every evaluation
// and session. The value is boxed as given; rebinding replaces the handle.
func (e *Engine) RegisterSharedObject(name string, v any) error {
	if value, ok := v.(dynamic.Value); ok {
		return e.dispatch.SetShared(name, value)
	}
	return e.dispatch.SetShared(name, dynamic.Box(v))
}

// RegisterSharedRef binds name to the host variable *p. Script writes are
// visible through p and host writes are visible to scripts, making it the
// two-way version of RegisterSharedObject.
func (e *Engine) RegisterSharedRef(name string, p any) error {
	v, err := dynamic.BoxRef(p)
	if err != nil {
		return fmt.Errorf("register shared %s: %w", name, err)
	}
	return e.dispatch.SetShared(name, v)
}

// SharedObject returns the current handle bound to name.
func (e *Engine) SharedObject(name string) (Value, bool) {
	return e.dispatch.Shared(name)
}

// RegisterModule makes setup available to scripts as `use(name)`. The
// setup runs at most once per engine, on first use, and shadows any file
// of the same name on the module path.
func (e *Engine) RegisterModule(name string, setup func(*Engine) error) error {
	if name == "" {
		return fmt.Errorf("module name must not be empty")
	}
	if setup == nil {
		return fmt.Errorf("module %s: nil setup", name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.modules[name]; ok {
		return fmt.Errorf("module %s already registered", name)
	}
	e.modules[name] = setup
	return nil
}

// FunctionValue returns the overload set registered under name as a
// first-class function value, or false if nothing is registered.
func (e *Engine) FunctionValue(name string) (Value, bool) {
	f, ok := e.dispatch.Func(name)
	if !ok {
		return Value{}, false
	}
	return dynamic.Box(f), true
}
