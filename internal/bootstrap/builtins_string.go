package bootstrap

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

func installString(e *dispatch.Engine, out io.Writer) error {
	return registerAll(e, []entry{
		{"+", func(a, b string) string { return a + b }},

		{"==", func(a, b string) bool { return a == b }},
		{"!=", func(a, b string) bool { return a != b }},
		{"<", func(a, b string) bool { return a < b }},
		{"<=", func(a, b string) bool { return a <= b }},
		{">", func(a, b string) bool { return a > b }},
		{">=", func(a, b string) bool { return a >= b }},

		{"size", func(s string) int64 { return int64(len(s)) }},
		{"empty", func(s string) bool { return len(s) == 0 }},

		{"find", func(s, sub string) int64 { return int64(strings.Index(s, sub)) }},
		{"contains", func(s, sub string) bool { return strings.Contains(s, sub) }},
		{"replace", func(s, old, new string) string { return strings.ReplaceAll(s, old, new) }},
		{"trim", func(s string) string { return strings.TrimSpace(s) }},

		{"split", func(s, sep string) []dynamic.Value {
			parts := strings.Split(s, sep)
			elems := make([]dynamic.Value, 0, len(parts))
			for _, p := range parts {
				elems = append(elems, dynamic.Box(p))
			}
			return elems
		}},

		{"substr", func(s string, pos, n int64) (string, error) {
			if pos < 0 || pos > int64(len(s)) {
				return "", fmt.Errorf("substr position out of range: %d (size %d)", pos, len(s))
			}
			end := pos + n
			if n < 0 || end > int64(len(s)) {
				end = int64(len(s))
			}
			return s[pos:end], nil
		}},

		{"to_int", func(s string) (int64, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("cannot parse %q as an int", s)
			}
			return n, nil
		}},
		{"to_float", func(s string) (float64, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return 0, fmt.Errorf("cannot parse %q as a float", s)
			}
			return f, nil
		}},
	})
}
