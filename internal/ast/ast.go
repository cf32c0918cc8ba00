package ast

import (
	"strings"

	"github.com/funvibe/oolong/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary
// token. This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Program is the root node of every tree the parser produces.
type Program struct {
	File       string // Source file path, or a unit name for non-file input
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var sb strings.Builder
	for i, s := range p.Statements {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// ExpressionStatement is an expression used in statement position.
type ExpressionStatement struct {
	Token      token.Token // first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	return es.Expression.String()
}

// VarStatement declares a fresh variable in the innermost scope.
// var x = expr
type VarStatement struct {
	Token token.Token // the 'var' token
	Name  *Identifier
	Value Expression // may be nil: var x
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }
func (vs *VarStatement) GetToken() token.Token {
	if vs == nil {
		return token.Token{}
	}
	return vs.Token
}
func (vs *VarStatement) String() string {
	var sb strings.Builder
	sb.WriteString("var ")
	sb.WriteString(vs.Name.String())
	if vs.Value != nil {
		sb.WriteString(" = ")
		sb.WriteString(vs.Value.String())
	}
	return sb.String()
}

// DefStatement registers a named function overload.
// def name(a, b) { ... }
type DefStatement struct {
	Token      token.Token // the 'def' token
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
}

func (ds *DefStatement) statementNode()       {}
func (ds *DefStatement) TokenLiteral() string { return ds.Token.Lexeme }
func (ds *DefStatement) GetToken() token.Token {
	if ds == nil {
		return token.Token{}
	}
	return ds.Token
}
func (ds *DefStatement) String() string {
	params := make([]string, len(ds.Parameters))
	for i, p := range ds.Parameters {
		params[i] = p.String()
	}
	return "def " + ds.Name.String() + "(" + strings.Join(params, ", ") + ") " + ds.Body.String()
}

// BlockStatement is a braced statement list with its own scope frame.
type BlockStatement struct {
	Token      token.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}
func (bs *BlockStatement) String() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, s := range bs.Statements {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(s.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

// ReturnStatement unwinds to the nearest function boundary (or the unit
// boundary at top level).
type ReturnStatement struct {
	Token token.Token // the 'return' token
	Value Expression  // may be nil: bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

// BreakStatement unwinds to the nearest enclosing loop.
type BreakStatement struct {
	Token token.Token // the 'break' token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}
func (bs *BreakStatement) String() string { return "break" }

// IfStatement branches on a boolean condition. Alternative is either a
// *BlockStatement or another *IfStatement (else-if chain), or nil.
type IfStatement struct {
	Token       token.Token // the 'if' token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}
func (is *IfStatement) String() string {
	var sb strings.Builder
	sb.WriteString("if (")
	sb.WriteString(is.Condition.String())
	sb.WriteString(") ")
	sb.WriteString(is.Consequence.String())
	if is.Alternative != nil {
		sb.WriteString(" else ")
		sb.WriteString(is.Alternative.String())
	}
	return sb.String()
}

// WhileStatement loops while the condition holds.
type WhileStatement struct {
	Token     token.Token // the 'while' token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token {
	if ws == nil {
		return token.Token{}
	}
	return ws.Token
}
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

// ForStatement is the three-clause loop. Init and Post may be nil; a nil
// Condition loops until break.
type ForStatement struct {
	Token     token.Token // the 'for' token
	Init      Statement
	Condition Expression
	Post      Statement
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}
func (fs *ForStatement) String() string {
	var sb strings.Builder
	sb.WriteString("for (")
	if fs.Init != nil {
		sb.WriteString(fs.Init.String())
	}
	sb.WriteString("; ")
	if fs.Condition != nil {
		sb.WriteString(fs.Condition.String())
	}
	sb.WriteString("; ")
	if fs.Post != nil {
		sb.WriteString(fs.Post.String())
	}
	sb.WriteString(") ")
	sb.WriteString(fs.Body.String())
	return sb.String()
}
