package bootstrap

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

func installYAML(e *dispatch.Engine, out io.Writer) error {
	return registerAll(e, []entry{
		{"to_yaml", func(v dynamic.Value) (string, error) {
			data, err := unboxAny(e, v)
			if err != nil {
				return "", err
			}
			buf, err := yaml.Marshal(data)
			if err != nil {
				return "", fmt.Errorf("to_yaml: %w", err)
			}
			return strings.TrimRight(string(buf), "\n"), nil
		}},

		{"from_yaml", func(s string) (dynamic.Value, error) {
			var data any
			if err := yaml.Unmarshal([]byte(s), &data); err != nil {
				return dynamic.Value{}, fmt.Errorf("from_yaml: %w", err)
			}
			return boxAny(data)
		}},
	})
}
