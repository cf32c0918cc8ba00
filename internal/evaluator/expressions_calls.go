package evaluator

import (
	"errors"
	"fmt"

	"github.com/funvibe/oolong/internal/ast"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, s *dispatch.Stack) (dynamic.Value, error) {
	args := make([]dynamic.Value, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		v, err := e.Eval(a, s)
		if err != nil {
			return dynamic.Value{}, err
		}
		args = append(args, v)
	}

	if ident, ok := node.Function.(*ast.Identifier); ok {
		// Local and shared bindings shadow registered functions.
		if v, ok := s.Lookup(ident.Value); ok {
			return e.callValue(ident.Value, v, args)
		}
		if v, ok := e.Engine.Shared(ident.Value); ok {
			return e.callValue(ident.Value, v, args)
		}
		return e.Engine.Call(ident.Value, args)
	}

	fn, err := e.Eval(node.Function, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	return e.callValue("", fn, args)
}

func (e *Evaluator) callValue(name string, v dynamic.Value, args []dynamic.Value) (dynamic.Value, error) {
	f, err := dynamic.As[*dispatch.Func](v)
	if err != nil {
		if name != "" {
			return dynamic.Value{}, fmt.Errorf("%q is not a function, it is a %s", name, e.typeName(v))
		}
		return dynamic.Value{}, fmt.Errorf("not a function: %s", e.typeName(v))
	}
	return f.Call(args)
}

// evalFunctionLiteral builds an anonymous function value. Bodies do not
// capture locals: like named definitions they see their parameters, shared
// objects, and registered functions.
func (e *Evaluator) evalFunctionLiteral(node *ast.FunctionLiteral, s *dispatch.Stack) (dynamic.Value, error) {
	fn, err := newScriptFunction(e, "", node.Parameters, node.Body)
	if err != nil {
		return dynamic.Value{}, err
	}
	return dynamic.Box(dispatch.NewFunc("", e.Engine.Types(), fn)), nil
}

// scriptFunction is a Callable backed by a parsed body. Parameters are
// untyped, so the guards accept anything and arguments are passed by
// handle: mutating a parameter mutates the caller's value.
type scriptFunction struct {
	owner  *Evaluator
	name   string
	params []*ast.Identifier
	body   *ast.BlockStatement
	guards []dispatch.Guard
}

func newScriptFunction(e *Evaluator, name string, params []*ast.Identifier, body *ast.BlockStatement) (*scriptFunction, error) {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if e.Engine.IsReserved(p.Value) {
			return nil, &dispatch.ReservedError{Name: p.Value}
		}
		if _, dup := seen[p.Value]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", p.Value)
		}
		seen[p.Value] = struct{}{}
	}
	return &scriptFunction{
		owner:  e,
		name:   name,
		params: params,
		body:   body,
		guards: make([]dispatch.Guard, len(params)),
	}, nil
}

func (f *scriptFunction) Arity() int               { return len(f.params) }
func (f *scriptFunction) Guards() []dispatch.Guard { return f.guards }

// Call runs the body on the evaluator driving the calling goroutine, so a
// function invoked from inside another evaluation shares its depth budget.
// Calls arriving from outside any evaluation (a functor held by the host)
// get a fresh evaluator with the defining one's configuration, bound for
// the duration so nested calls join it.
func (f *scriptFunction) Call(args []dynamic.Value) (dynamic.Value, error) {
	ev := currentEvaluator(nil)
	if ev == nil || ev.Engine != f.owner.Engine {
		ev = f.owner.fresh()
		release := ev.bind()
		defer release()
	}
	return ev.applyScript(f, args)
}

// applyScript runs a script function body on a fresh stack whose base
// frame binds the parameters. Bodies yield their last statement's value
// unless a return gets there first.
func (e *Evaluator) applyScript(f *scriptFunction, args []dynamic.Value) (dynamic.Value, error) {
	s := dispatch.NewStack(e.Engine)
	for i, p := range f.params {
		if err := s.Declare(p.Value, args[i]); err != nil {
			return dynamic.Value{}, err
		}
	}

	v, err := e.evalBlockStatement(f.body, s)
	if err != nil {
		if ret, ok := err.(returnSignal); ok {
			return ret.value, nil
		}
		if errors.Is(err, errBreak) {
			return dynamic.Value{}, fmt.Errorf("break outside of a loop")
		}
		return dynamic.Value{}, err
	}
	return v, nil
}
