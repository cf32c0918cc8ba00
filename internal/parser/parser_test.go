package parser

import (
	"strings"
	"testing"

	"github.com/funvibe/oolong/internal/ast"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := Parse(input, "test")
	if err != nil {
		t.Fatalf("parse errors:\n%s", err)
	}
	return program
}

func TestVarStatements(t *testing.T) {
	program := parseProgram(t, "var x = 5\nvar name = \"bob\"\nvar v")

	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(program.Statements))
	}

	names := []string{"x", "name", "v"}
	for i, want := range names {
		stmt, ok := program.Statements[i].(*ast.VarStatement)
		if !ok {
			t.Fatalf("statement %d is %T, want *ast.VarStatement", i, program.Statements[i])
		}
		if stmt.Name.Value != want {
			t.Errorf("statement %d: name %q, want %q", i, stmt.Name.Value, want)
		}
	}
	if program.Statements[2].(*ast.VarStatement).Value != nil {
		t.Errorf("var without initializer should have nil Value")
	}
}

func TestDefStatement(t *testing.T) {
	program := parseProgram(t, "def add(a, b) { return a + b }")

	stmt, ok := program.Statements[0].(*ast.DefStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.DefStatement", program.Statements[0])
	}
	if stmt.Name.Value != "add" {
		t.Errorf("name = %q, want add", stmt.Name.Value)
	}
	if len(stmt.Parameters) != 2 || stmt.Parameters[0].Value != "a" || stmt.Parameters[1].Value != "b" {
		t.Errorf("wrong parameters: %v", stmt.Parameters)
	}
	if len(stmt.Body.Statements) != 1 {
		t.Errorf("body has %d statements, want 1", len(stmt.Body.Statements))
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-a * b", "((-a) * b)"},
		{"!x", "(!x)"},
		{"a + b + c", "((a + b) + c)"},
		{"a + b * c", "(a + (b * c))"},
		{"a % b - c", "((a % b) - c)"},
		{"a < b == c > d", "((a < b) == (c > d))"},
		{"a <= b && c >= d", "((a <= b) && (c >= d))"},
		{"a && b || c && d", "((a && b) || (c && d))"},
		{"(a + b) * c", "((a + b) * c)"},
		{"x = y = z", "(x = (y = z))"},
		{"x = a || b", "(x = (a || b))"},
		{"x := a + b", "(x := (a + b))"},
		{"add(a, b * c)", "add(a, (b * c))"},
		{"v[1] + 2", "((v[1]) + 2)"},
		{"v[0] = 9", "((v[0]) = 9)"},
		{"x.size", "size(x)"},
		{"x.push_back(5)", "push_back(x, 5)"},
		{"a.f(b).g(c)", "g(f(a, b), c)"},
		{"-v[0]", "(-(v[0]))"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		if len(program.Statements) != 1 {
			t.Fatalf("%q: expected 1 statement, got %d", tt.input, len(program.Statements))
		}
		got := program.Statements[0].String()
		if got != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestIfElseChain(t *testing.T) {
	program := parseProgram(t, `if (a) { 1 } else if (b) { 2 } else { 3 }`)

	stmt, ok := program.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.IfStatement", program.Statements[0])
	}
	alt, ok := stmt.Alternative.(*ast.IfStatement)
	if !ok {
		t.Fatalf("alternative is %T, want *ast.IfStatement", stmt.Alternative)
	}
	if _, ok := alt.Alternative.(*ast.BlockStatement); !ok {
		t.Fatalf("final alternative is %T, want *ast.BlockStatement", alt.Alternative)
	}
}

func TestWhileAndFor(t *testing.T) {
	program := parseProgram(t, `
while (i < 10) { i = i + 1 }
for (var i = 0; i < 3; i = i + 1) { print(i) }
for (;;) { break }
`)

	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(program.Statements))
	}

	if _, ok := program.Statements[0].(*ast.WhileStatement); !ok {
		t.Errorf("statement 0 is %T, want *ast.WhileStatement", program.Statements[0])
	}

	fs, ok := program.Statements[1].(*ast.ForStatement)
	if !ok {
		t.Fatalf("statement 1 is %T, want *ast.ForStatement", program.Statements[1])
	}
	if fs.Init == nil || fs.Condition == nil || fs.Post == nil {
		t.Errorf("three-clause for should have all clauses")
	}

	empty, ok := program.Statements[2].(*ast.ForStatement)
	if !ok {
		t.Fatalf("statement 2 is %T, want *ast.ForStatement", program.Statements[2])
	}
	if empty.Init != nil || empty.Condition != nil || empty.Post != nil {
		t.Errorf("for (;;) should have nil clauses")
	}
}

func TestVectorLiteralAndIndex(t *testing.T) {
	program := parseProgram(t, "[1, 2 * 2, \"three\"][1]")

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	idx, ok := stmt.Expression.(*ast.IndexExpression)
	if !ok {
		t.Fatalf("expression is %T, want *ast.IndexExpression", stmt.Expression)
	}
	vec, ok := idx.Left.(*ast.VectorLiteral)
	if !ok {
		t.Fatalf("left is %T, want *ast.VectorLiteral", idx.Left)
	}
	if len(vec.Elements) != 3 {
		t.Errorf("vector has %d elements, want 3", len(vec.Elements))
	}
}

func TestFunctionLiteral(t *testing.T) {
	program := parseProgram(t, "var f = fun(x) { x * 2 }")

	stmt := program.Statements[0].(*ast.VarStatement)
	fl, ok := stmt.Value.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("value is %T, want *ast.FunctionLiteral", stmt.Value)
	}
	if len(fl.Parameters) != 1 || fl.Parameters[0].Value != "x" {
		t.Errorf("wrong parameters: %v", fl.Parameters)
	}
}

func TestMultilineCallArguments(t *testing.T) {
	program := parseProgram(t, "add(\n  1,\n  2\n)")

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	call, ok := stmt.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expression is %T, want *ast.CallExpression", stmt.Expression)
	}
	if len(call.Arguments) != 2 {
		t.Errorf("call has %d arguments, want 2", len(call.Arguments))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantMsg string
	}{
		{"var 5 = 1", `expected "IDENT"`},
		{"1 + * 2", "unexpected token"},
		{"5 = 1", "invalid assignment target"},
		{"a + b := 2", "left side of := must be a name"},
	}

	for _, tt := range tests {
		_, err := Parse(tt.input, "test")
		if err == nil {
			t.Errorf("%q: expected parse error", tt.input)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantMsg) {
			t.Errorf("%q: error %q does not mention %q", tt.input, err.Error(), tt.wantMsg)
		}
	}
}

func TestErrorPositions(t *testing.T) {
	_, err := Parse("var x = 1\nvar 7", "test")
	if err == nil {
		t.Fatal("expected parse error")
	}
	list, ok := err.(ErrorList)
	if !ok {
		t.Fatalf("error is %T, want ErrorList", err)
	}
	if list[0].Line != 2 {
		t.Errorf("error line = %d, want 2", list[0].Line)
	}
}

func TestIncompleteInput(t *testing.T) {
	for _, input := range []string{"def f(a) {", "if (x) {", "add(1,", "var x = "} {
		_, err := Parse(input, "test")
		if err == nil {
			t.Errorf("%q: expected parse error", input)
			continue
		}
		if !IsIncomplete(err) {
			t.Errorf("%q: error should be flagged incomplete: %s", input, err)
		}
	}

	_, err := Parse("var 5 = 1", "test")
	if err == nil || IsIncomplete(err) {
		t.Errorf("mid-line garbage must not look incomplete")
	}
}
