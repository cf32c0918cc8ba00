package bootstrap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

// maxFormatDepth caps rendering of nested containers. A vector pushed into
// itself prints "..." where the cycle starts instead of recursing forever.
const maxFormatDepth = 16

// Format renders a value the way print and to_string show it. Top-level
// strings print bare, strings inside containers print quoted.
func Format(v dynamic.Value) string {
	return formatValue(v, 0)
}

func formatValue(v dynamic.Value, depth int) string {
	if depth > maxFormatDepth {
		return "..."
	}
	if v.IsVoid() {
		return "void"
	}
	switch x := v.Interface().(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case string:
		if depth > 0 {
			return strconv.Quote(x)
		}
		return x
	case []dynamic.Value:
		var out strings.Builder
		out.WriteString("[")
		for i, el := range x {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(formatValue(el, depth+1))
		}
		out.WriteString("]")
		return out.String()
	case map[string]dynamic.Value:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out strings.Builder
		out.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(k)
			out.WriteString(": ")
			out.WriteString(formatValue(x[k], depth+1))
		}
		out.WriteString("}")
		return out.String()
	case Pair:
		return "(" + formatValue(x.First, depth+1) + ", " + formatValue(x.Second, depth+1) + ")"
	case *dispatch.Func:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
