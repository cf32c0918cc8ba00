package bootstrap

import (
	"fmt"
	"io"

	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

// installCore wires printing, the arithmetic and comparison operators, and
// the unary operators. There is no implicit numeric conversion: mixing int
// and float in one operation is a dispatch failure, not a coercion.
func installCore(e *dispatch.Engine, out io.Writer) error {
	return registerAll(e, []entry{
		{"print", func(v dynamic.Value) { fmt.Fprintln(out, Format(v)) }},
		{"to_string", func(v dynamic.Value) string { return Format(v) }},

		{"+", func(a, b int64) int64 { return a + b }},
		{"-", func(a, b int64) int64 { return a - b }},
		{"*", func(a, b int64) int64 { return a * b }},
		{"/", func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return a / b, nil
		}},
		{"%", func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return a % b, nil
		}},

		{"+", func(a, b float64) float64 { return a + b }},
		{"-", func(a, b float64) float64 { return a - b }},
		{"*", func(a, b float64) float64 { return a * b }},
		{"/", func(a, b float64) float64 { return a / b }},

		{"-", func(a int64) int64 { return -a }},
		{"-", func(a float64) float64 { return -a }},
		{"!", func(b bool) bool { return !b }},

		{"==", func(a, b int64) bool { return a == b }},
		{"!=", func(a, b int64) bool { return a != b }},
		{"<", func(a, b int64) bool { return a < b }},
		{"<=", func(a, b int64) bool { return a <= b }},
		{">", func(a, b int64) bool { return a > b }},
		{">=", func(a, b int64) bool { return a >= b }},

		{"==", func(a, b float64) bool { return a == b }},
		{"!=", func(a, b float64) bool { return a != b }},
		{"<", func(a, b float64) bool { return a < b }},
		{"<=", func(a, b float64) bool { return a <= b }},
		{">", func(a, b float64) bool { return a > b }},
		{">=", func(a, b float64) bool { return a >= b }},

		{"==", func(a, b bool) bool { return a == b }},
		{"!=", func(a, b bool) bool { return a != b }},
	})
}
