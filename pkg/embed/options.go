package oolong

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Option configures an engine at construction.
type Option func(*Engine)

// WithOut routes print and the dump builtins to w instead of stdout.
func WithOut(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.out = w
		}
	}
}

// WithMaxDepth bounds evaluation nesting. Script recursion past the limit
// fails with an error instead of exhausting the Go stack.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithModulePath sets the directories use searches, in order. Without it
// the OOLONGPATH environment variable applies, then the current directory.
func WithModulePath(roots ...string) Option {
	return func(e *Engine) {
		e.roots = append([]string(nil), roots...)
	}
}

// WithLogger attaches a structured logger for engine internals. The
// default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Settings mirrors the optional oolong.yaml configuration file.
type Settings struct {
	MaxDepth   int      `yaml:"max_depth"`
	ModulePath []string `yaml:"module_path"`
}

// LoadSettings reads a settings file into options for New.
func LoadSettings(path string) ([]Option, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Settings
	if err := yaml.Unmarshal(buf, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var opts []Option
	if s.MaxDepth > 0 {
		opts = append(opts, WithMaxDepth(s.MaxDepth))
	}
	if len(s.ModulePath) > 0 {
		opts = append(opts, WithModulePath(s.ModulePath...))
	}
	return opts, nil
}
