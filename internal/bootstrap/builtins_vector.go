package bootstrap

import (
	"fmt"
	"io"

	"github.com/funvibe/oolong/internal/config"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

// installVector wires the Vector container. Elements are handles: indexing
// returns live storage, and push_back stores the pushed handle itself, so
// the vector and the pushed variable alias.
func installVector(e *dispatch.Engine, out io.Writer) error {
	return registerAll(e, []entry{
		{config.VectorTypeName, func() []dynamic.Value { return []dynamic.Value{} }},

		{"size", func(v []dynamic.Value) int64 { return int64(len(v)) }},
		{"empty", func(v []dynamic.Value) bool { return len(v) == 0 }},

		{"push_back", func(v *[]dynamic.Value, elem dynamic.Value) {
			*v = append(*v, elem)
		}},
		{"pop_back", func(v *[]dynamic.Value) error {
			if len(*v) == 0 {
				return fmt.Errorf("pop_back on an empty Vector")
			}
			*v = (*v)[:len(*v)-1]
			return nil
		}},
		{"clear", func(v *[]dynamic.Value) { *v = (*v)[:0] }},

		{"front", func(v []dynamic.Value) (dynamic.Value, error) {
			if len(v) == 0 {
				return dynamic.Value{}, fmt.Errorf("front on an empty Vector")
			}
			return v[0], nil
		}},
		{"back", func(v []dynamic.Value) (dynamic.Value, error) {
			if len(v) == 0 {
				return dynamic.Value{}, fmt.Errorf("back on an empty Vector")
			}
			return v[len(v)-1], nil
		}},

		{"[]", func(v []dynamic.Value, i int64) (dynamic.Value, error) {
			if i < 0 || i >= int64(len(v)) {
				return dynamic.Value{}, fmt.Errorf("index out of range: %d (size %d)", i, len(v))
			}
			return v[i], nil
		}},

		{"+", func(a, b []dynamic.Value) []dynamic.Value {
			out := make([]dynamic.Value, 0, len(a)+len(b))
			out = append(out, a...)
			return append(out, b...)
		}},
	})
}
