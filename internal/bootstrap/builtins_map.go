package bootstrap

import (
	"fmt"
	"io"
	"sort"

	"github.com/funvibe/oolong/internal/config"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

// installMap wires the string-keyed Map container and Pair. Indexing a
// missing key inserts a fresh void cell and returns it, so `m["k"] = v`
// works without a separate insert operation; the flip side is that reading
// a missing key also creates it.
func installMap(e *dispatch.Engine, out io.Writer) error {
	return registerAll(e, []entry{
		{config.MapTypeName, func() map[string]dynamic.Value { return map[string]dynamic.Value{} }},

		{"size", func(m map[string]dynamic.Value) int64 { return int64(len(m)) }},
		{"empty", func(m map[string]dynamic.Value) bool { return len(m) == 0 }},

		{"[]", func(m map[string]dynamic.Value, k string) dynamic.Value {
			if h, ok := m[k]; ok {
				return h
			}
			h := dynamic.Void()
			m[k] = h
			return h
		}},

		{"has_key", func(m map[string]dynamic.Value, k string) bool {
			_, ok := m[k]
			return ok
		}},
		{"keys", func(m map[string]dynamic.Value) []dynamic.Value {
			names := make([]string, 0, len(m))
			for k := range m {
				names = append(names, k)
			}
			sort.Strings(names)
			keys := make([]dynamic.Value, 0, len(names))
			for _, k := range names {
				keys = append(keys, dynamic.Box(k))
			}
			return keys
		}},
		{"erase", func(m map[string]dynamic.Value, k string) error {
			if _, ok := m[k]; !ok {
				return fmt.Errorf("erase: no key %q", k)
			}
			delete(m, k)
			return nil
		}},
		{"clear", func(m map[string]dynamic.Value) {
			for k := range m {
				delete(m, k)
			}
		}},

		{config.PairTypeName, func(first, second dynamic.Value) Pair {
			return Pair{First: first, Second: second}
		}},
		{"first", func(p Pair) dynamic.Value { return p.First }},
		{"second", func(p Pair) dynamic.Value { return p.Second }},
	})
}
