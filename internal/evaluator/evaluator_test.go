package evaluator

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/funvibe/oolong/internal/bootstrap"
	"github.com/funvibe/oolong/internal/config"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
	"github.com/funvibe/oolong/internal/parser"
)

func newTestEngine(t *testing.T, out io.Writer) *dispatch.Engine {
	t.Helper()
	if out == nil {
		out = io.Discard
	}
	eng := dispatch.New(nil)
	for _, w := range config.ReservedWords {
		eng.ReserveWord(w)
	}
	if err := bootstrap.Install(eng, out); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return eng
}

func evalOn(t *testing.T, eng *dispatch.Engine, src string) (dynamic.Value, error) {
	t.Helper()
	prog, err := parser.Parse(src, "test")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return New(eng).EvalProgram(prog, dispatch.NewStack(eng))
}

func evalSrc(t *testing.T, src string) dynamic.Value {
	t.Helper()
	v, err := evalOn(t, newTestEngine(t, nil), src)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	return v
}

func evalErr(t *testing.T, src string) error {
	t.Helper()
	_, err := evalOn(t, newTestEngine(t, nil), src)
	if err == nil {
		t.Fatalf("eval of %q should fail", src)
	}
	return err
}

func wantInt(t *testing.T, v dynamic.Value, want int64) {
	t.Helper()
	got, err := dynamic.As[int64](v)
	if err != nil {
		t.Fatalf("not an int: %v", err)
	}
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func wantString(t *testing.T, v dynamic.Value, want string) {
	t.Helper()
	got, err := dynamic.As[string](v)
	if err != nil {
		t.Fatalf("not a string: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLiteralsAndArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"5", 5},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 / 3", 3},
		{"10 % 3", 1},
		{"-7 + 2", -5},
	}
	for _, tt := range tests {
		wantInt(t, evalSrc(t, tt.src), tt.want)
	}
}

func TestLastStatementValue(t *testing.T) {
	wantInt(t, evalSrc(t, "1; 2; 3"), 3)
	wantString(t, evalSrc(t, `var x = 1
"done"`), "done")
	if v := evalSrc(t, "var x = 1"); !v.IsVoid() {
		t.Error("a declaration should yield void")
	}
}

func TestVarCopiesAssignShares(t *testing.T) {
	// var copies the initializer.
	wantInt(t, evalSrc(t, `
var a = 10
var b = a
b = 99
a
`), 10)

	// := binds another name to the same storage.
	wantInt(t, evalSrc(t, `
var a = 10
b := a
b = 99
a
`), 99)
}

func TestAssignAutoDeclares(t *testing.T) {
	wantInt(t, evalSrc(t, "x = 41; x + 1"), 42)
	// The copy happens at declaration time.
	wantInt(t, evalSrc(t, `
var a = 1
b = a
b = 5
a
`), 1)
}

func TestAssignChains(t *testing.T) {
	wantInt(t, evalSrc(t, `
var a = 0
var b = 0
a = b = 7
a + b
`), 14)
}

func TestAssignTypeMismatch(t *testing.T) {
	err := evalErr(t, `
var x = 1
x = "text"
`)
	var mismatch *dynamic.MismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("got %v, want MismatchError", err)
	}
}

func TestVoidVarAdoptsFirstAssignment(t *testing.T) {
	wantString(t, evalSrc(t, `
var x
x = "adopted"
x
`), "adopted")
}

func TestIfElse(t *testing.T) {
	wantInt(t, evalSrc(t, `
var x = 10
if (x > 5) {
	1
} else {
	2
}
`), 1)
	wantInt(t, evalSrc(t, `
var x = 3
if (x > 5) {
	1
} else if (x > 1) {
	2
} else {
	3
}
`), 2)
}

func TestConditionMustBeBool(t *testing.T) {
	err := evalErr(t, "if (1) { 2 }")
	if !strings.Contains(err.Error(), "condition must be a boolean") {
		t.Errorf("got %v", err)
	}
	err = evalErr(t, "while (\"yes\") { 1 }")
	if !strings.Contains(err.Error(), "condition must be a boolean") {
		t.Errorf("got %v", err)
	}
}

func TestWhileLoop(t *testing.T) {
	wantInt(t, evalSrc(t, `
var i = 0
var total = 0
while (i < 5) {
	total = total + i
	i = i + 1
}
total
`), 10)
}

func TestForLoop(t *testing.T) {
	wantInt(t, evalSrc(t, `
var total = 0
for (var i = 0; i < 4; i = i + 1) {
	total = total + i
}
total
`), 6)
}

func TestForLoopVariableScoped(t *testing.T) {
	err := evalErr(t, `
for (var i = 0; i < 2; i = i + 1) { }
i
`)
	if !strings.Contains(err.Error(), "undefined name") {
		t.Errorf("loop variable leaked: %v", err)
	}
}

func TestBreak(t *testing.T) {
	wantInt(t, evalSrc(t, `
var i = 0
while (true) {
	i = i + 1
	if (i >= 3) {
		break
	}
}
i
`), 3)
	wantInt(t, evalSrc(t, `
var n = 0
for (;;) {
	n = n + 1
	if (n == 5) { break }
}
n
`), 5)
}

func TestBreakOutsideLoop(t *testing.T) {
	err := evalErr(t, "break")
	if !strings.Contains(err.Error(), "break outside of a loop") {
		t.Errorf("got %v", err)
	}
	err = evalErr(t, `
def f() {
	break
}
f()
`)
	if !strings.Contains(err.Error(), "break outside of a loop") {
		t.Errorf("break escaping a function body: %v", err)
	}
}

func TestShortCircuit(t *testing.T) {
	eng := newTestEngine(t, nil)
	calls := 0
	n, err := dispatch.NewNative(func() bool { calls++; return true })
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Register("probe", n); err != nil {
		t.Fatal(err)
	}

	v, err := evalOn(t, eng, "false && probe()")
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := dynamic.As[bool](v); b {
		t.Error("false && probe() = true")
	}
	if calls != 0 {
		t.Errorf("&& evaluated its right side %d times", calls)
	}

	if _, err := evalOn(t, eng, "true || probe()"); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("|| evaluated its right side %d times", calls)
	}

	if _, err := evalOn(t, eng, "true && probe()"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("right side evaluated %d times, want 1", calls)
	}
}

func TestShortCircuitRequiresBool(t *testing.T) {
	err := evalErr(t, "1 && true")
	if !strings.Contains(err.Error(), "must be a boolean") {
		t.Errorf("got %v", err)
	}
}

func TestFunctionDefinitionAndCall(t *testing.T) {
	wantInt(t, evalSrc(t, `
def add(a, b) {
	a + b
}
add(2, 3)
`), 5)
}

func TestFunctionReturn(t *testing.T) {
	wantInt(t, evalSrc(t, `
def classify(n) {
	if (n < 0) {
		return -1
	}
	if (n == 0) {
		return 0
	}
	1
}
classify(-5) + classify(0) + classify(9)
`), 0)
}

func TestBareReturn(t *testing.T) {
	v := evalSrc(t, `
def noop() {
	return
}
noop()
`)
	if !v.IsVoid() {
		t.Error("bare return should yield void")
	}
}

func TestTopLevelReturn(t *testing.T) {
	wantInt(t, evalSrc(t, `
var x = 1
return 42
x = 2
`), 42)
}

func TestRecursion(t *testing.T) {
	wantInt(t, evalSrc(t, `
def fib(n) {
	if (n < 2) {
		return n
	}
	fib(n - 1) + fib(n - 2)
}
fib(10)
`), 55)
}

func TestRecursionDepthLimit(t *testing.T) {
	eng := newTestEngine(t, nil)
	prog, err := parser.Parse(`
def spin(n) {
	spin(n + 1)
}
spin(0)
`, "test")
	if err != nil {
		t.Fatal(err)
	}
	ev := New(eng)
	ev.MaxDepth = 200
	_, err = ev.EvalProgram(prog, dispatch.NewStack(eng))
	if err == nil || !strings.Contains(err.Error(), "maximum recursion depth exceeded") {
		t.Errorf("got %v", err)
	}
}

func TestScriptOverloadsFirstMatchWins(t *testing.T) {
	wantString(t, evalSrc(t, `
def describe(n) {
	"first"
}
def describe(n) {
	"second"
}
describe(1)
`), "first")
}

func TestScriptAndNativeOverloadsShareNames(t *testing.T) {
	// size has native overloads; a script overload of a new arity joins them.
	wantInt(t, evalSrc(t, `
def size(a, b) {
	size(a) + size(b)
}
size("ab", "cde")
`), 5)
}

func TestParametersShareCallerStorage(t *testing.T) {
	wantInt(t, evalSrc(t, `
def bump(v) {
	push_back(v, 99)
}
var data = [1, 2]
bump(data)
size(data)
`), 3)
}

func TestFunctionBodiesDoNotSeeCallerLocals(t *testing.T) {
	err := evalErr(t, `
def peek() {
	hidden
}
var hidden = 5
peek()
`)
	if !strings.Contains(err.Error(), "undefined name") {
		t.Errorf("got %v", err)
	}
}

func TestDotCallSugar(t *testing.T) {
	wantInt(t, evalSrc(t, `
var v = [1, 2, 3]
v.size()
`), 3)
	wantInt(t, evalSrc(t, "\"hello\".size"), 5)
}

func TestVectorLiteralsAndIndexing(t *testing.T) {
	wantInt(t, evalSrc(t, `
var v = [10, 20, 30]
v[0] + v[2]
`), 40)
	wantInt(t, evalSrc(t, `
var v = [1, 2, 3]
v[1] = 99
v[1]
`), 99)
}

func TestMapThroughIndexAssignment(t *testing.T) {
	wantInt(t, evalSrc(t, `
var m = Map()
m["a"] = 1
m["b"] = 2
m["a"] + m["b"]
`), 3)
}

func TestVarClonesContainersOneLevel(t *testing.T) {
	wantInt(t, evalSrc(t, `
var a = [1, 2]
var b = a
push_back(b, 3)
size(a)
`), 2)
}

func TestAnonymousFunctions(t *testing.T) {
	wantInt(t, evalSrc(t, `
var twice = fun(n) { n * 2 }
twice(21)
`), 42)
	wantInt(t, evalSrc(t, `
def apply(f, x) {
	f(x)
}
apply(fun(n) { n + 1 }, 41)
`), 42)
}

func TestFunctionsAreValues(t *testing.T) {
	wantInt(t, evalSrc(t, `
var f = size
f("four")
`), 4)
}

func TestCallingNonFunction(t *testing.T) {
	err := evalErr(t, `
var x = 5
x(1)
`)
	if !strings.Contains(err.Error(), "is not a function") {
		t.Errorf("got %v", err)
	}
}

func TestUnknownFunction(t *testing.T) {
	err := evalErr(t, "no_such_fn(1, 2)")
	var nf *dispatch.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
	if nf.Name != "no_such_fn" || nf.NArgs != 2 {
		t.Errorf("NotFoundError = %+v", nf)
	}
}

func TestWrongArgumentTypes(t *testing.T) {
	err := evalErr(t, `1 + "x"`)
	var no *dispatch.NoOverloadError
	if !errors.As(err, &no) {
		t.Fatalf("got %v, want NoOverloadError", err)
	}
}

func TestErrorsCarryPositions(t *testing.T) {
	err := evalErr(t, "var a = 1\nvar b = missing_name\n")
	var ee *Error
	if !errors.As(err, &ee) {
		t.Fatalf("got %T, want *Error", err)
	}
	if ee.Line != 2 {
		t.Errorf("line = %d, want 2", ee.Line)
	}
	if ee.Unit != "test" {
		t.Errorf("unit = %q", ee.Unit)
	}
}

func TestSignalsAreNotPositionWrapped(t *testing.T) {
	// A return crossing several block levels must still be caught by the
	// function boundary, not annotated into an ordinary error.
	wantInt(t, evalSrc(t, `
def find(v, x) {
	for (var i = 0; i < size(v); i = i + 1) {
		if (v[i] == x) {
			return i
		}
	}
	return -1
}
find([5, 6, 7], 7)
`), 2)
}

func TestReservedWordsRejected(t *testing.T) {
	for _, src := range []string{
		"var _ = 1",
		"def f(_) { 1 }",
	} {
		err := evalErr(t, src)
		var re *dispatch.ReservedError
		if !errors.As(err, &re) {
			t.Errorf("%q: got %v, want ReservedError", src, err)
		}
	}
}

func TestPrintGoesToOut(t *testing.T) {
	var sb strings.Builder
	eng := newTestEngine(t, &sb)
	if _, err := evalOn(t, eng, `print("a"); print([1, 2])`); err != nil {
		t.Fatal(err)
	}
	if got := sb.String(); got != "a\n[1, 2]\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSharedObjectsVisible(t *testing.T) {
	eng := newTestEngine(t, nil)
	if err := eng.SetShared("greeting", dynamic.Box("hi")); err != nil {
		t.Fatal(err)
	}
	v, err := evalOn(t, eng, "greeting + \" there\"")
	if err != nil {
		t.Fatal(err)
	}
	wantString(t, v, "hi there")
}

func TestLocalsShadowFunctions(t *testing.T) {
	wantInt(t, evalSrc(t, `
var size = fun(v) { 1000 }
size("abc")
`), 1000)
}

func TestDefInsideFunctionIsGlobal(t *testing.T) {
	wantInt(t, evalSrc(t, `
def outer() {
	def inner(n) {
		n * 2
	}
	inner(10)
}
outer() + inner(1)
`), 22)
}
