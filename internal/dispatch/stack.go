package dispatch

import (
	"github.com/funvibe/oolong/internal/dynamic"
)

// Stack is one evaluation's scope stack, innermost frame last. A stack is
// confined to the goroutine evaluating with it and takes no locks of its
// own; only the engine fallthroughs synchronize.
type Stack struct {
	engine *Engine
	frames []map[string]dynamic.Value
}

// NewStack returns a stack with a single base frame.
func NewStack(e *Engine) *Stack {
	return &Stack{
		engine: e,
		frames: []map[string]dynamic.Value{make(map[string]dynamic.Value)},
	}
}

func (s *Stack) Engine() *Engine { return s.engine }

// Push opens a new innermost frame.
func (s *Stack) Push() {
	s.frames = append(s.frames, make(map[string]dynamic.Value))
}

// Pop discards the innermost frame. The base frame stays.
func (s *Stack) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Get resolves name against the local frames innermost first, then the
// engine's shared objects, then the function registry as a first-class
// function value. Locals shadow shared objects, shared objects shadow
// functions.
func (s *Stack) Get(name string) (dynamic.Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	if v, ok := s.engine.Shared(name); ok {
		return v, true
	}
	if f, ok := s.engine.Func(name); ok {
		return dynamic.Box(f), true
	}
	return dynamic.Value{}, false
}

// Lookup resolves name in the local frames only.
func (s *Stack) Lookup(name string) (dynamic.Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	return dynamic.Value{}, false
}

// Declare binds name in the innermost frame, replacing any binding already
// there. Outer bindings of the same name are shadowed, not touched.
func (s *Stack) Declare(name string, v dynamic.Value) error {
	if s.engine.IsReserved(name) {
		return &ReservedError{Name: name}
	}
	s.frames[len(s.frames)-1][name] = v
	return nil
}
