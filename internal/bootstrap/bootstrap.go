package bootstrap

import (
	"database/sql"
	"fmt"
	"io"
	"reflect"

	"github.com/funvibe/oolong/internal/config"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

// Pair is the built-in two-value container. The fields are handles, so
// first(p) and second(p) hand out live storage even though the struct
// itself moves by value.
type Pair struct {
	First  dynamic.Value
	Second dynamic.Value
}

var (
	intType    = reflect.TypeOf((*int64)(nil)).Elem()
	floatType  = reflect.TypeOf((*float64)(nil)).Elem()
	boolType   = reflect.TypeOf((*bool)(nil)).Elem()
	stringType = reflect.TypeOf((*string)(nil)).Elem()
	vectorType = reflect.TypeOf((*[]dynamic.Value)(nil)).Elem()
	mapType    = reflect.TypeOf((*map[string]dynamic.Value)(nil)).Elem()
	pairType   = reflect.TypeOf((*Pair)(nil)).Elem()
	funcType   = reflect.TypeOf((**dispatch.Func)(nil)).Elem()
	dbType     = reflect.TypeOf((**sql.DB)(nil)).Elem()
)

// Install registers the built-in types, operators and functions every
// engine starts with. print and its relatives write to out.
func Install(e *dispatch.Engine, out io.Writer) error {
	if err := registerTypes(e); err != nil {
		return err
	}
	e.Format = Format

	parts := []func(*dispatch.Engine, io.Writer) error{
		installCore,
		installVector,
		installMap,
		installString,
		installJSON,
		installYAML,
		installDatabase,
		installMisc,
	}
	for _, part := range parts {
		if err := part(e, out); err != nil {
			return err
		}
	}
	return nil
}

func registerTypes(e *dispatch.Engine) error {
	types := []struct {
		name string
		t    reflect.Type
	}{
		{"int", intType},
		{"float", floatType},
		{"bool", boolType},
		{"string", stringType},
		{config.VectorTypeName, vectorType},
		{config.MapTypeName, mapType},
		{config.PairTypeName, pairType},
		{config.FunctionTypeName, funcType},
		{config.DatabaseTypeName, dbType},
	}
	for _, entry := range types {
		if err := e.Types().Register(entry.name, entry.t); err != nil {
			return err
		}
	}
	return nil
}

func register(e *dispatch.Engine, name string, fn any) error {
	n, err := dispatch.NewNative(fn)
	if err != nil {
		return fmt.Errorf("builtin %s: %w", name, err)
	}
	return e.Register(name, n)
}

type entry struct {
	name string
	fn   any
}

func registerAll(e *dispatch.Engine, entries []entry) error {
	for _, en := range entries {
		if err := register(e, en.name, en.fn); err != nil {
			return err
		}
	}
	return nil
}
