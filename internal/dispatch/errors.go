package dispatch

import (
	"fmt"
	"strings"
)

// NotFoundError reports a call to a name with no registered function, or
// none of a matching arity.
type NotFoundError struct {
	Name  string
	NArgs int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("function not found: %s/%d", displayName(e.Name), e.NArgs)
}

// NoOverloadError reports a call where overloads of the right arity exist
// but none accepted the argument types.
type NoOverloadError struct {
	Name string
	Args []string
}

func (e *NoOverloadError) Error() string {
	return fmt.Sprintf("no matching overload for %s(%s)", displayName(e.Name), strings.Join(e.Args, ", "))
}

// ReservedError reports an attempt to bind a reserved word.
type ReservedError struct {
	Name string
}

func (e *ReservedError) Error() string {
	return fmt.Sprintf("%q is a reserved word", e.Name)
}

func displayName(name string) string {
	if name == "" {
		return "(anonymous)"
	}
	return name
}
