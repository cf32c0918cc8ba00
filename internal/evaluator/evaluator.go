package evaluator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/petermattis/goid"

	"github.com/funvibe/oolong/internal/ast"
	"github.com/funvibe/oolong/internal/config"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
	"github.com/funvibe/oolong/internal/token"
)

// Evaluator walks one program tree. It is confined to the goroutine driving
// it; everything shared between evaluations lives in the dispatch engine.
type Evaluator struct {
	Engine *dispatch.Engine

	// MaxDepth bounds the nesting of Eval calls so runaway script recursion
	// fails with an error instead of overflowing the Go stack.
	MaxDepth int

	evalDepth int
}

// active tracks the evaluator driving each goroutine. Script functions are
// invoked through the dispatch engine, which knows nothing about
// evaluators; looking the caller up here lets them rejoin the evaluation
// that invoked them instead of starting a detached one with a fresh depth
// budget.
var active sync.Map // goroutine id -> *Evaluator

func New(engine *dispatch.Engine) *Evaluator {
	return &Evaluator{
		Engine:   engine,
		MaxDepth: config.DefaultMaxDepth,
	}
}

// bind installs e as this goroutine's evaluator for the duration of a
// program run. A goroutine already driving an evaluation keeps its owner.
func (e *Evaluator) bind() (release func()) {
	id := goid.Get()
	if _, loaded := active.LoadOrStore(id, e); loaded {
		return func() {}
	}
	return func() { active.Delete(id) }
}

func currentEvaluator(fallback *Evaluator) *Evaluator {
	if v, ok := active.Load(goid.Get()); ok {
		return v.(*Evaluator)
	}
	return fallback
}

// fresh copies the configuration without the per-run state.
func (e *Evaluator) fresh() *Evaluator {
	return &Evaluator{Engine: e.Engine, MaxDepth: e.MaxDepth}
}

// EvalProgram runs every statement of prog on s and returns the value of
// the last one. A return escaping the top level yields its value; a break
// escaping a loop is an error.
func (e *Evaluator) EvalProgram(prog *ast.Program, s *dispatch.Stack) (dynamic.Value, error) {
	// A program started from inside another evaluation (the eval builtin)
	// continues that evaluation's depth budget, so recursion through eval
	// strings hits the limit instead of the Go stack.
	if cur := currentEvaluator(nil); cur != nil && cur != e && cur.Engine == e.Engine {
		e.evalDepth = cur.evalDepth
	}
	release := e.bind()
	defer release()

	result := dynamic.Void()
	for _, stmt := range prog.Statements {
		if stmt == nil {
			continue
		}
		v, err := e.Eval(stmt, s)
		if err != nil {
			if ret, ok := err.(returnSignal); ok {
				return ret.value, nil
			}
			if errors.Is(err, errBreak) {
				err = e.annotate(errBreak, stmt)
			}
			return dynamic.Value{}, e.annotateUnit(err, prog.File)
		}
		result = v
	}
	return result, nil
}

// Eval evaluates one node. Errors other than control-flow signals are
// annotated with the position of the innermost node that raised them.
func (e *Evaluator) Eval(node ast.Node, s *dispatch.Stack) (dynamic.Value, error) {
	e.evalDepth++
	if e.evalDepth > e.MaxDepth {
		e.evalDepth--
		return dynamic.Value{}, fmt.Errorf("maximum recursion depth exceeded")
	}
	defer func() { e.evalDepth-- }()

	v, err := e.evalCore(node, s)
	if err != nil && !isSignal(err) {
		err = e.annotate(err, node)
	}
	return v, err
}

func (e *Evaluator) evalCore(node ast.Node, s *dispatch.Stack) (dynamic.Value, error) {
	switch node := node.(type) {
	// Statements
	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, s)
	case *ast.VarStatement:
		return e.evalVarStatement(node, s)
	case *ast.DefStatement:
		return e.evalDefStatement(node, s)
	case *ast.BlockStatement:
		return e.evalBlockStatement(node, s)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(node, s)
	case *ast.BreakStatement:
		return dynamic.Value{}, errBreak
	case *ast.IfStatement:
		return e.evalIfStatement(node, s)
	case *ast.WhileStatement:
		return e.evalWhileStatement(node, s)
	case *ast.ForStatement:
		return e.evalForStatement(node, s)

	// Expressions
	case *ast.Identifier:
		return e.evalIdentifier(node, s)
	case *ast.IntegerLiteral:
		return dynamic.Box(node.Value), nil
	case *ast.FloatLiteral:
		return dynamic.Box(node.Value), nil
	case *ast.StringLiteral:
		return dynamic.Box(node.Value), nil
	case *ast.BooleanLiteral:
		return dynamic.Box(node.Value), nil
	case *ast.VectorLiteral:
		return e.evalVectorLiteral(node, s)
	case *ast.PrefixExpression:
		return e.evalPrefixExpression(node, s)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, s)
	case *ast.AssignExpression:
		return e.evalAssignExpression(node, s)
	case *ast.BindExpression:
		return e.evalBindExpression(node, s)
	case *ast.IndexExpression:
		return e.evalIndexExpression(node, s)
	case *ast.CallExpression:
		return e.evalCallExpression(node, s)
	case *ast.FunctionLiteral:
		return e.evalFunctionLiteral(node, s)
	}
	return dynamic.Value{}, fmt.Errorf("unknown node type %T", node)
}

func (e *Evaluator) annotate(err error, node ast.Node) error {
	var ee *Error
	if errors.As(err, &ee) {
		return err
	}
	var tok token.Token
	if provider, ok := node.(ast.TokenProvider); ok {
		tok = provider.GetToken()
	}
	return &Error{Line: tok.Line, Column: tok.Column, Err: err}
}

func (e *Evaluator) annotateUnit(err error, unit string) error {
	var ee *Error
	if errors.As(err, &ee) && ee.Unit == "" {
		ee.Unit = unit
	}
	return err
}

func (e *Evaluator) typeName(v dynamic.Value) string {
	return e.Engine.Types().TypeName(v)
}
