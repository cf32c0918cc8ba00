package dispatch

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/funvibe/oolong/internal/dynamic"
)

// Engine holds the shared runtime state: named overload sets, shared
// objects, the reserved word set, and the type registry. Registration and
// lookup lock internally; dispatched calls run outside the lock so a
// callable may register more functions while it executes.
type Engine struct {
	mu        sync.RWMutex
	functions map[string][]Callable
	shared    map[string]dynamic.Value
	reserved  map[string]struct{}
	types     *dynamic.TypeRegistry

	// Format renders a value for DumpObject and diagnostics. Installed by
	// the bootstrap layer, which knows the built-in container types.
	Format func(dynamic.Value) string
}

func New(types *dynamic.TypeRegistry) *Engine {
	if types == nil {
		types = dynamic.NewTypeRegistry()
	}
	return &Engine{
		functions: make(map[string][]Callable),
		shared:    make(map[string]dynamic.Value),
		reserved:  make(map[string]struct{}),
		types:     types,
	}
}

func (e *Engine) Types() *dynamic.TypeRegistry { return e.types }

// ReserveWord marks name as unusable for functions, variables and shared
// objects.
func (e *Engine) ReserveWord(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reserved[name] = struct{}{}
}

func (e *Engine) IsReserved(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.reserved[name]
	return ok
}

// Register appends one overload under name. Existing overloads are never
// replaced or reordered; dispatch tries them in registration order.
func (e *Engine) Register(name string, fn Callable) error {
	if name == "" {
		return fmt.Errorf("function name must not be empty")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.reserved[name]; ok {
		return &ReservedError{Name: name}
	}
	e.functions[name] = append(e.functions[name], fn)
	return nil
}

// Overloads returns a snapshot of the overload list for name.
func (e *Engine) Overloads(name string) []Callable {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fns := e.functions[name]
	if len(fns) == 0 {
		return nil
	}
	out := make([]Callable, len(fns))
	copy(out, fns)
	return out
}

func (e *Engine) FunctionExists(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.functions[name]) > 0
}

// Func returns the current overload set for name as a first-class function
// value.
func (e *Engine) Func(name string) (*Func, bool) {
	fns := e.Overloads(name)
	if fns == nil {
		return nil, false
	}
	return &Func{Name: name, types: e.types, fns: fns}, true
}

// Call dispatches name over args: the first registered overload whose
// guards match wins. The snapshot is taken under the read lock, the call
// itself runs without it.
func (e *Engine) Call(name string, args []dynamic.Value) (dynamic.Value, error) {
	return callOverloads(name, e.types, e.Overloads(name), args)
}

// SetShared binds a shared object, visible as a global from every scope
// stack. Rebinding an existing name replaces the handle.
func (e *Engine) SetShared(name string, v dynamic.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.reserved[name]; ok {
		return &ReservedError{Name: name}
	}
	e.shared[name] = v
	return nil
}

func (e *Engine) Shared(name string) (dynamic.Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.shared[name]
	return v, ok
}

// SharedNames returns the shared object names in sorted order.
func (e *Engine) SharedNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.shared))
	for name := range e.shared {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DumpSystem writes every registered type and function signature to w.
func (e *Engine) DumpSystem(w io.Writer) {
	fmt.Fprintln(w, "types:")
	for _, name := range e.types.Names() {
		t, _ := e.types.Lookup(name)
		fmt.Fprintf(w, "  %s -> %s\n", name, t)
	}

	e.mu.RLock()
	names := make([]string, 0, len(e.functions))
	for name := range e.functions {
		names = append(names, name)
	}
	byName := make(map[string][]Callable, len(e.functions))
	for name, fns := range e.functions {
		byName[name] = append([]Callable(nil), fns...)
	}
	e.mu.RUnlock()

	sort.Strings(names)
	fmt.Fprintln(w, "functions:")
	for _, name := range names {
		for _, fn := range byName[name] {
			fmt.Fprintf(w, "  %s(%s)\n", name, e.signature(fn))
		}
	}
}

// DumpObject writes the type name and rendered contents of v to w.
func (e *Engine) DumpObject(w io.Writer, v dynamic.Value) {
	name := e.types.TypeName(v)
	if v.IsConst() {
		name = "const " + name
	}
	if e.Format != nil {
		fmt.Fprintf(w, "%s: %s\n", name, e.Format(v))
		return
	}
	if v.IsVoid() {
		fmt.Fprintf(w, "%s\n", name)
		return
	}
	fmt.Fprintf(w, "%s: %v\n", name, v.Interface())
}

func (e *Engine) signature(fn Callable) string {
	if fn.Arity() < 0 {
		return "..."
	}
	parts := make([]string, 0, fn.Arity())
	for _, g := range fn.Guards() {
		switch {
		case g.Type == nil:
			parts = append(parts, "?")
		case g.Ref:
			parts = append(parts, e.types.NameOf(g.Type)+"&")
		default:
			parts = append(parts, e.types.NameOf(g.Type))
		}
	}
	return strings.Join(parts, ", ")
}
