// Package oolong embeds the script runtime in a Go program: evaluate
// source, register Go functions and types, share objects with scripts, and
// pull script functions back out as Go functions.
package oolong

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/funvibe/oolong/internal/bootstrap"
	"github.com/funvibe/oolong/internal/config"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
	"github.com/funvibe/oolong/internal/evaluator"
	"github.com/funvibe/oolong/internal/parser"
	"github.com/funvibe/oolong/internal/units"
)

//go:embed prelude.ool
var preludeSource string

// Engine is one script runtime: a dispatch table of functions and types,
// shared objects, and the record of loaded units. Every method is safe for
// concurrent use; each Eval call runs on its own scope stack.
type Engine struct {
	dispatch *dispatch.Engine
	units    *units.Table
	out      io.Writer
	maxDepth int
	roots    []string
	log      *slog.Logger

	mu      sync.RWMutex
	modules map[string]func(*Engine) error
}

// New builds an engine with the built-in types, operators, functions and
// the standard prelude installed.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		dispatch: dispatch.New(nil),
		units:    units.NewTable(),
		out:      os.Stdout,
		maxDepth: config.DefaultMaxDepth,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		modules:  make(map[string]func(*Engine) error),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.roots == nil {
		if env := os.Getenv(config.PathEnvVar); env != "" {
			e.roots = filepath.SplitList(env)
		}
	}

	for _, w := range config.ReservedWords {
		e.dispatch.ReserveWord(w)
	}
	if err := bootstrap.Install(e.dispatch, e.out); err != nil {
		return nil, err
	}
	if err := e.installRuntime(); err != nil {
		return nil, err
	}
	if err := e.loadPrelude(); err != nil {
		return nil, fmt.Errorf("prelude: %w", err)
	}
	e.log.Debug("engine ready", "module_path", strings.Join(e.roots, string(filepath.ListSeparator)))
	return e, nil
}

// Eval parses and runs code under the eval pseudo-unit. Each call gets a
// fresh scope stack: definitions, shared objects and loaded units persist
// across calls, locals do not.
func (e *Engine) Eval(code string) (Value, error) {
	return e.evalUnit(code, config.EvalUnitName, dispatch.NewStack(e.dispatch))
}

// EvalAs runs code and converts its result to T. The conversion follows
// cast rules: the payload type must match exactly.
func EvalAs[T any](e *Engine, code string) (T, error) {
	var zero T
	v, err := e.Eval(code)
	if err != nil {
		return zero, err
	}
	return dynamic.As[T](v)
}

// EvalFile reads and runs path. Unlike Use it re-evaluates on every call.
func (e *Engine) EvalFile(path string) (Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Value{}, fmt.Errorf("cannot open %q: %w", path, err)
	}
	return e.evalUnit(string(src), path, dispatch.NewStack(e.dispatch))
}

// Use brings in a module exactly once per engine. Host modules registered
// with RegisterModule win over files; files resolve against the module
// path, so "util" and "util.ool" are the same unit. Concurrent uses of one
// module block on the first load and share its outcome; a module using
// itself while loading is a no-op.
func (e *Engine) Use(name string) error {
	e.mu.RLock()
	setup := e.modules[name]
	e.mu.RUnlock()
	if setup != nil {
		return e.units.Run(name, func() error {
			e.log.Debug("host module loading", "name", name)
			return setup(e)
		})
	}

	path, err := units.Resolve(name, e.roots)
	if err != nil {
		return err
	}
	return e.units.Run(path, func() error {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot open %q: %w", path, err)
		}
		e.log.Debug("module loading", "path", path)
		_, err = e.evalUnit(string(src), path, dispatch.NewStack(e.dispatch))
		return err
	})
}

// Units returns the names of every loaded unit, prelude included.
func (e *Engine) Units() []string {
	return e.units.Names()
}

// Dispatch exposes the underlying dispatch engine for advanced embedding.
func (e *Engine) Dispatch() *dispatch.Engine {
	return e.dispatch
}

// DumpSystem writes all registered types and function signatures to w.
func (e *Engine) DumpSystem(w io.Writer) {
	e.dispatch.DumpSystem(w)
}

// DumpObject writes the type and contents of v to w.
func (e *Engine) DumpObject(w io.Writer, v Value) {
	e.dispatch.DumpObject(w, v)
}

func (e *Engine) evalUnit(code, unit string, s *dispatch.Stack) (Value, error) {
	e.units.Intern(unit)
	prog, err := parser.Parse(code, unit)
	if err != nil {
		return Value{}, err
	}
	ev := evaluator.New(e.dispatch)
	ev.MaxDepth = e.maxDepth
	return ev.EvalProgram(prog, s)
}

func (e *Engine) loadPrelude() error {
	return e.units.Run(config.PreludeUnitName, func() error {
		_, err := e.evalUnit(preludeSource, config.PreludeUnitName, dispatch.NewStack(e.dispatch))
		return err
	})
}

// Session is a persistent evaluation scope for interactive use: locals
// survive across Eval calls. A session is a single conversation and is not
// safe for concurrent use; the engine underneath still is.
type Session struct {
	engine *Engine
	stack  *dispatch.Stack
}

func (e *Engine) NewSession() *Session {
	return &Session{engine: e, stack: dispatch.NewStack(e.dispatch)}
}

func (s *Session) Eval(code string) (Value, error) {
	return s.engine.evalUnit(code, config.EvalUnitName, s.stack)
}

func (s *Session) Engine() *Engine { return s.engine }
