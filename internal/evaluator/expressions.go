package evaluator

import (
	"fmt"

	"github.com/funvibe/oolong/internal/ast"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

func (e *Evaluator) evalIdentifier(node *ast.Identifier, s *dispatch.Stack) (dynamic.Value, error) {
	if v, ok := s.Get(node.Value); ok {
		return v, nil
	}
	return dynamic.Value{}, fmt.Errorf("undefined name %q", node.Value)
}

func (e *Evaluator) evalVectorLiteral(node *ast.VectorLiteral, s *dispatch.Stack) (dynamic.Value, error) {
	elems := make([]dynamic.Value, 0, len(node.Elements))
	for _, el := range node.Elements {
		v, err := e.Eval(el, s)
		if err != nil {
			return dynamic.Value{}, err
		}
		elems = append(elems, v)
	}
	return dynamic.Box(elems), nil
}

// evalPrefixExpression dispatches unary operators through the engine. The
// one-argument overloads of "-" and "!" are distinct from any binary ones.
func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, s *dispatch.Stack) (dynamic.Value, error) {
	right, err := e.Eval(node.Right, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	return e.Engine.Call(node.Operator, []dynamic.Value{right})
}

// evalInfixExpression dispatches binary operators through the engine.
// && and || are special forms: boolean only, right side evaluated lazily.
func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, s *dispatch.Stack) (dynamic.Value, error) {
	if node.Operator == "&&" || node.Operator == "||" {
		return e.evalShortCircuit(node, s)
	}

	left, err := e.Eval(node.Left, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	right, err := e.Eval(node.Right, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	return e.Engine.Call(node.Operator, []dynamic.Value{left, right})
}

func (e *Evaluator) evalShortCircuit(node *ast.InfixExpression, s *dispatch.Stack) (dynamic.Value, error) {
	left, err := e.Eval(node.Left, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	lb, err := dynamic.As[bool](left)
	if err != nil {
		return dynamic.Value{}, e.annotate(fmt.Errorf("left operand of %q must be a boolean, got %s", node.Operator, e.typeName(left)), node.Left)
	}
	if node.Operator == "&&" && !lb {
		return dynamic.Box(false), nil
	}
	if node.Operator == "||" && lb {
		return dynamic.Box(true), nil
	}

	right, err := e.Eval(node.Right, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	rb, err := dynamic.As[bool](right)
	if err != nil {
		return dynamic.Value{}, e.annotate(fmt.Errorf("right operand of %q must be a boolean, got %s", node.Operator, e.typeName(right)), node.Right)
	}
	return dynamic.Box(rb), nil
}

// evalIndexExpression reads v[i] by dispatching the "[]" operator, which
// returns a live handle into the container.
func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, s *dispatch.Stack) (dynamic.Value, error) {
	left, err := e.Eval(node.Left, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	index, err := e.Eval(node.Index, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	return e.Engine.Call("[]", []dynamic.Value{left, index})
}

// evalAssignExpression writes through an existing handle. Assigning to an
// unknown name declares it in the innermost frame with a copy of the value,
// so plain scripts can say `x = 5` without a var. The expression yields the
// target handle, which makes `a = b = c` chain.
func (e *Evaluator) evalAssignExpression(node *ast.AssignExpression, s *dispatch.Stack) (dynamic.Value, error) {
	switch target := node.Target.(type) {
	case *ast.Identifier:
		value, err := e.Eval(node.Value, s)
		if err != nil {
			return dynamic.Value{}, err
		}
		dst, ok := s.Get(target.Value)
		if !ok {
			dst = dynamic.Clone(value)
			if err := s.Declare(target.Value, dst); err != nil {
				return dynamic.Value{}, err
			}
			return dst, nil
		}
		if err := dynamic.Assign(dst, value); err != nil {
			return dynamic.Value{}, err
		}
		return dst, nil

	case *ast.IndexExpression:
		container, err := e.Eval(target.Left, s)
		if err != nil {
			return dynamic.Value{}, err
		}
		index, err := e.Eval(target.Index, s)
		if err != nil {
			return dynamic.Value{}, err
		}
		value, err := e.Eval(node.Value, s)
		if err != nil {
			return dynamic.Value{}, err
		}
		elem, err := e.Engine.Call("[]", []dynamic.Value{container, index})
		if err != nil {
			return dynamic.Value{}, err
		}
		if err := dynamic.Assign(elem, value); err != nil {
			return dynamic.Value{}, err
		}
		return elem, nil
	}
	return dynamic.Value{}, fmt.Errorf("invalid assignment target")
}

// evalBindExpression makes name another handle to the right side's storage
// in the innermost frame. No copy: writes through either name show through
// both.
func (e *Evaluator) evalBindExpression(node *ast.BindExpression, s *dispatch.Stack) (dynamic.Value, error) {
	value, err := e.Eval(node.Value, s)
	if err != nil {
		return dynamic.Value{}, err
	}
	if err := s.Declare(node.Name.Value, value); err != nil {
		return dynamic.Value{}, err
	}
	return value, nil
}
