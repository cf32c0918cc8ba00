package evaluator

import (
	"errors"
	"fmt"

	"github.com/funvibe/oolong/internal/dynamic"
)

// Error is an evaluation failure annotated with the source position of the
// innermost node that produced it.
type Error struct {
	Unit   string
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("%s:%d:%d: %v", e.Unit, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%d:%d: %v", e.Line, e.Column, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// returnSignal and errBreak ride the error channel out of nested Eval
// calls. They are control flow, not failures: function application catches
// returnSignal, loops catch errBreak, and the program boundary converts
// whatever escapes. They are never position-annotated.
type returnSignal struct {
	value dynamic.Value
}

func (returnSignal) Error() string { return "return outside of a function" }

var errBreak = errors.New("break outside of a loop")

func isSignal(err error) bool {
	if _, ok := err.(returnSignal); ok {
		return true
	}
	return errors.Is(err, errBreak)
}
