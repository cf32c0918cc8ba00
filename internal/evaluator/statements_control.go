package evaluator

import (
	"errors"
	"fmt"

	"github.com/funvibe/oolong/internal/ast"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

func (e *Evaluator) evalReturnStatement(node *ast.ReturnStatement, s *dispatch.Stack) (dynamic.Value, error) {
	if node.Value == nil {
		return dynamic.Value{}, returnSignal{value: dynamic.Void()}
	}
	v, err := e.Eval(node.Value, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	return dynamic.Value{}, returnSignal{value: v}
}

// evalCondition evaluates a guard expression. Conditions must be booleans;
// there is no truthiness for other types.
func (e *Evaluator) evalCondition(cond ast.Expression, s *dispatch.Stack) (bool, error) {
	v, err := e.Eval(cond, s)
	if err != nil {
		return false, err
	}
	b, err := dynamic.As[bool](v)
	if err != nil {
		return false, e.annotate(fmt.Errorf("condition must be a boolean, got %s", e.typeName(v)), cond)
	}
	return b, nil
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement, s *dispatch.Stack) (dynamic.Value, error) {
	cond, err := e.evalCondition(node.Condition, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	if cond {
		return e.Eval(node.Consequence, s)
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative, s)
	}
	return dynamic.Void(), nil
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement, s *dispatch.Stack) (dynamic.Value, error) {
	for {
		cond, err := e.evalCondition(node.Condition, s)
		if err != nil {
			return dynamic.Value{}, err
		}
		if !cond {
			return dynamic.Void(), nil
		}
		if _, err := e.Eval(node.Body, s); err != nil {
			if errors.Is(err, errBreak) {
				return dynamic.Void(), nil
			}
			return dynamic.Value{}, err
		}
	}
}

// evalForStatement runs a C-style for loop. The init clause gets its own
// frame so the loop variable does not leak; every clause is optional and a
// missing condition loops until break.
func (e *Evaluator) evalForStatement(node *ast.ForStatement, s *dispatch.Stack) (dynamic.Value, error) {
	s.Push()
	defer s.Pop()

	if node.Init != nil {
		if _, err := e.Eval(node.Init, s); err != nil {
			return dynamic.Value{}, err
		}
	}
	for {
		if node.Condition != nil {
			cond, err := e.evalCondition(node.Condition, s)
			if err != nil {
				return dynamic.Value{}, err
			}
			if !cond {
				return dynamic.Void(), nil
			}
		}
		if _, err := e.Eval(node.Body, s); err != nil {
			if errors.Is(err, errBreak) {
				return dynamic.Void(), nil
			}
			return dynamic.Value{}, err
		}
		if node.Post != nil {
			if _, err := e.Eval(node.Post, s); err != nil {
				return dynamic.Value{}, err
			}
		}
	}
}
