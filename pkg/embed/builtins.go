package oolong

import (
	"github.com/funvibe/oolong/internal/dynamic"
)

// installRuntime registers the builtins that need the engine itself:
// loading, introspection and nested evaluation.
func (e *Engine) installRuntime() error {
	entries := []struct {
		name string
		fn   any
	}{
		{"use", func(name string) error { return e.Use(name) }},
		{"eval", func(code string) (dynamic.Value, error) { return e.Eval(code) }},
		{"eval_file", func(path string) (dynamic.Value, error) { return e.EvalFile(path) }},

		{"type_name", func(v dynamic.Value) string { return e.dispatch.Types().TypeName(v) }},
		{"is_type", func(v dynamic.Value, name string) bool { return e.dispatch.Types().IsType(v, name) }},
		{"function_exists", func(name string) bool { return e.dispatch.FunctionExists(name) }},

		{"dump_system", func() { e.dispatch.DumpSystem(e.out) }},
		{"dump_object", func(v dynamic.Value) { e.dispatch.DumpObject(e.out, v) }},
	}
	for _, en := range entries {
		if err := e.RegisterFunction(en.name, en.fn); err != nil {
			return err
		}
	}
	return nil
}
