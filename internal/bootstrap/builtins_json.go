package bootstrap

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

func installJSON(e *dispatch.Engine, out io.Writer) error {
	return registerAll(e, []entry{
		{"to_json", func(v dynamic.Value) (string, error) {
			data, err := unboxAny(e, v)
			if err != nil {
				return "", err
			}
			buf, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return "", fmt.Errorf("to_json: %w", err)
			}
			return string(buf), nil
		}},

		{"from_json", func(s string) (dynamic.Value, error) {
			dec := json.NewDecoder(strings.NewReader(s))
			dec.UseNumber()
			var data any
			if err := dec.Decode(&data); err != nil {
				return dynamic.Value{}, fmt.Errorf("from_json: %w", err)
			}
			return boxAny(data)
		}},
	})
}
