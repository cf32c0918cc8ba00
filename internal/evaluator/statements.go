package evaluator

import (
	"github.com/funvibe/oolong/internal/ast"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

// evalVarStatement declares a fresh variable in the innermost frame. The
// initializer is copied, so `var y = x` gives y its own storage. Without an
// initializer the variable starts as a void cell and adopts the type of the
// first value assigned to it.
func (e *Evaluator) evalVarStatement(node *ast.VarStatement, s *dispatch.Stack) (dynamic.Value, error) {
	v := dynamic.Void()
	if node.Value != nil {
		init, err := e.Eval(node.Value, s)
		if err != nil {
			return dynamic.Value{}, err
		}
		v = dynamic.Clone(init)
	}
	if err := s.Declare(node.Name.Value, v); err != nil {
		return dynamic.Value{}, err
	}
	return dynamic.Void(), nil
}

// evalDefStatement registers a named script function with the engine.
// Definitions are global: the overload joins any existing ones under the
// same name, including natives, in registration order.
func (e *Evaluator) evalDefStatement(node *ast.DefStatement, s *dispatch.Stack) (dynamic.Value, error) {
	fn, err := newScriptFunction(e, node.Name.Value, node.Parameters, node.Body)
	if err != nil {
		return dynamic.Value{}, err
	}
	if err := e.Engine.Register(node.Name.Value, fn); err != nil {
		return dynamic.Value{}, err
	}
	return dynamic.Void(), nil
}

// evalBlockStatement runs the block in its own frame and yields the value
// of its last statement. Control-flow signals pass straight through.
func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, s *dispatch.Stack) (dynamic.Value, error) {
	s.Push()
	defer s.Pop()

	result := dynamic.Void()
	for _, stmt := range block.Statements {
		if stmt == nil {
			continue
		}
		v, err := e.Eval(stmt, s)
		if err != nil {
			return dynamic.Value{}, err
		}
		result = v
	}
	return result, nil
}
