package dynamic

import (
	"fmt"
	"reflect"
)

// MismatchError reports a cast or assignment between incompatible type
// identities. A nil type stands for void.
type MismatchError struct {
	Want reflect.Type
	Got  reflect.Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s", typeString(e.Got), typeString(e.Want))
}

// ConstError reports a mutating operation on a const value.
type ConstError struct {
	Type reflect.Type
}

func (e *ConstError) Error() string {
	return fmt.Sprintf("value of type %s is const", typeString(e.Type))
}

// ConflictError reports a type registration that clashes with an earlier one.
type ConflictError struct {
	Name     string
	Existing string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting type registration for %q: %s", e.Name, e.Existing)
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}
