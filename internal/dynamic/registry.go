package dynamic

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// TypeRegistry maps script-visible type names to native type identities and
// back. Each engine owns one; nothing here is process-global.
type TypeRegistry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
	}
}

// Register binds name to the given type identity. Registering the same pair
// again is a no-op; rebinding either side to something else is a conflict.
func (r *TypeRegistry) Register(name string, rtype reflect.Type) error {
	if rtype == nil {
		return fmt.Errorf("cannot register %q with a nil type", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[name]; ok {
		if existing == rtype {
			return nil
		}
		return &ConflictError{Name: name, Existing: "already bound to " + existing.String()}
	}
	if prev, ok := r.byType[rtype]; ok {
		return &ConflictError{Name: name, Existing: fmt.Sprintf("%s already registered as %q", rtype, prev)}
	}

	r.byName[name] = rtype
	r.byType[rtype] = name
	return nil
}

// Lookup resolves a registered name to its type identity.
func (r *TypeRegistry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// NameOf returns the registered name for a type identity, falling back to
// the Go type string for unregistered types. A nil type is "void".
func (r *TypeRegistry) NameOf(t reflect.Type) string {
	if t == nil {
		return "void"
	}
	r.mu.RLock()
	name, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return name
	}
	return t.String()
}

// TypeName is NameOf applied to a value's identity.
func (r *TypeRegistry) TypeName(v Value) string {
	return r.NameOf(v.Type())
}

// IsType reports whether v's type identity is the one registered under name.
func (r *TypeRegistry) IsType(v Value, name string) bool {
	t, ok := r.Lookup(name)
	if !ok {
		return false
	}
	return v.Type() == t
}

// Names returns all registered type names, sorted.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
