package dynamic

import (
	"errors"
	"fmt"
	"reflect"
)

// cell is the storage a handle points at. ptr holds a *T whose pointee is the
// payload; rtype is the cell's fixed type identity. Both are nil while the
// cell is empty (void).
type cell struct {
	rtype reflect.Type
	ptr   any
}

// Value is a handle onto dynamically typed storage. Copying a Value copies
// the handle only: both copies address the same storage, and payload writes
// through one are observed by the other. Clone produces independent storage.
type Value struct {
	cell *cell
	ro   bool
}

var errDetached = errors.New("assignment to a zero Value")

// Box copies v into fresh storage and returns a handle onto it. A nil v
// yields a void value; a Value passes through unchanged.
func Box(v any) Value {
	if v == nil {
		return Void()
	}
	if bv, ok := v.(Value); ok {
		return bv
	}
	rv := reflect.ValueOf(v)
	np := reflect.New(rv.Type())
	np.Elem().Set(rv)
	return Value{cell: &cell{rtype: rv.Type(), ptr: np.Interface()}}
}

// BoxRef wraps storage the host owns. p must be a non-nil pointer; script
// assignments write through it, so the host observes every update and the
// script observes host writes.
func BoxRef(p any) (Value, error) {
	rv := reflect.ValueOf(p)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Value{}, fmt.Errorf("BoxRef needs a non-nil pointer, got %T", p)
	}
	return Value{cell: &cell{rtype: rv.Type().Elem(), ptr: p}}, nil
}

// Void returns a handle onto fresh empty storage. An empty cell adopts the
// type and payload of the first value assigned into it.
func Void() Value {
	return Value{cell: &cell{}}
}

func (v Value) IsVoid() bool {
	return v.cell == nil || v.cell.rtype == nil
}

func (v Value) IsConst() bool { return v.ro }

// AsConst returns a read-only handle onto the same storage.
func (v Value) AsConst() Value {
	v.ro = true
	return v
}

// Type returns the payload's type identity, nil for void.
func (v Value) Type() reflect.Type {
	if v.IsVoid() {
		return nil
	}
	return v.cell.rtype
}

// Interface returns a copy of the payload as any; void yields nil.
func (v Value) Interface() any {
	if v.IsVoid() {
		return nil
	}
	return reflect.ValueOf(v.cell.ptr).Elem().Interface()
}

// As copies the payload out as a T. The cast fails unless the value's type
// identity is exactly T; the value itself is never modified.
func As[T any](v Value) (T, error) {
	var zero T
	if v.IsVoid() {
		return zero, &MismatchError{Want: reflect.TypeOf((*T)(nil)).Elem(), Got: nil}
	}
	p, ok := v.cell.ptr.(*T)
	if !ok {
		return zero, &MismatchError{Want: reflect.TypeOf((*T)(nil)).Elem(), Got: v.cell.rtype}
	}
	return *p, nil
}

// Ref returns a pointer into the payload storage, for in-place mutation.
// Const values refuse; the type identity must be exactly T.
func Ref[T any](v Value) (*T, error) {
	if v.ro {
		return nil, &ConstError{Type: v.Type()}
	}
	if v.IsVoid() {
		return nil, &MismatchError{Want: reflect.TypeOf((*T)(nil)).Elem(), Got: nil}
	}
	p, ok := v.cell.ptr.(*T)
	if !ok {
		return nil, &MismatchError{Want: reflect.TypeOf((*T)(nil)).Elem(), Got: v.cell.rtype}
	}
	return p, nil
}

// Convert copies the payload out as the wanted type, the reflection
// counterpart of As.
func Convert(v Value, want reflect.Type) (reflect.Value, error) {
	if v.IsVoid() || v.cell.rtype != want {
		return reflect.Value{}, &MismatchError{Want: want, Got: v.Type()}
	}
	out := reflect.New(want).Elem()
	out.Set(reflect.ValueOf(v.cell.ptr).Elem())
	return out, nil
}

// Pointer returns a *want pointer into the payload storage, the reflection
// counterpart of Ref.
func Pointer(v Value, want reflect.Type) (reflect.Value, error) {
	if v.ro {
		return reflect.Value{}, &ConstError{Type: v.Type()}
	}
	if v.IsVoid() || v.cell.rtype != want {
		return reflect.Value{}, &MismatchError{Want: want, Got: v.Type()}
	}
	return reflect.ValueOf(v.cell.ptr), nil
}

// Assign writes src's payload into dst's storage. dst keeps its type
// identity: assigning across different identities fails and leaves dst
// untouched. An empty (void) dst adopts src's type and a copy of its
// payload. Handles sharing dst's storage observe the new payload.
func Assign(dst, src Value) error {
	if dst.cell == nil {
		return errDetached
	}
	if dst.ro {
		return &ConstError{Type: dst.Type()}
	}
	if src.IsVoid() {
		return &MismatchError{Want: dst.Type(), Got: nil}
	}
	if dst.cell.rtype == nil {
		rv := reflect.ValueOf(src.cell.ptr).Elem()
		np := reflect.New(rv.Type())
		np.Elem().Set(rv)
		dst.cell.rtype = rv.Type()
		dst.cell.ptr = np.Interface()
		return nil
	}
	if dst.cell.rtype != src.cell.rtype {
		return &MismatchError{Want: dst.cell.rtype, Got: src.cell.rtype}
	}
	reflect.ValueOf(dst.cell.ptr).Elem().Set(reflect.ValueOf(src.cell.ptr).Elem())
	return nil
}

// Clone returns a handle onto fresh storage holding a copy of the payload.
// Slice and map payloads are copied one level deep, so the clone gets its
// own entries while element handles keep sharing their cells. The clone is
// mutable even when v is const.
func Clone(v Value) Value {
	if v.IsVoid() {
		return Void()
	}
	rv := reflect.ValueOf(v.cell.ptr).Elem()
	np := reflect.New(rv.Type())
	switch rv.Kind() {
	case reflect.Slice:
		if !rv.IsNil() {
			ns := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
			reflect.Copy(ns, rv)
			np.Elem().Set(ns)
		}
	case reflect.Map:
		if !rv.IsNil() {
			nm := reflect.MakeMap(rv.Type())
			iter := rv.MapRange()
			for iter.Next() {
				nm.SetMapIndex(iter.Key(), iter.Value())
			}
			np.Elem().Set(nm)
		}
	default:
		np.Elem().Set(rv)
	}
	return Value{cell: &cell{rtype: v.cell.rtype, ptr: np.Interface()}}
}
