package oolong_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"

	oolong "github.com/funvibe/oolong/pkg/embed"
)

func newEngine(t *testing.T, opts ...oolong.Option) *oolong.Engine {
	t.Helper()
	eng, err := oolong.New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func mustEval(t *testing.T, eng *oolong.Engine, code string) oolong.Value {
	t.Helper()
	v, err := eng.Eval(code)
	if err != nil {
		t.Fatalf("eval %q: %v", code, err)
	}
	return v
}

func evalInt(t *testing.T, eng *oolong.Engine, code string) int64 {
	t.Helper()
	n, err := oolong.EvalAs[int64](eng, code)
	if err != nil {
		t.Fatalf("eval %q: %v", code, err)
	}
	return n
}

func evalStr(t *testing.T, eng *oolong.Engine, code string) string {
	t.Helper()
	s, err := oolong.EvalAs[string](eng, code)
	if err != nil {
		t.Fatalf("eval %q: %v", code, err)
	}
	return s
}

func evalBool(t *testing.T, eng *oolong.Engine, code string) bool {
	t.Helper()
	b, err := oolong.EvalAs[bool](eng, code)
	if err != nil {
		t.Fatalf("eval %q: %v", code, err)
	}
	return b
}

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEvalArithmetic(t *testing.T) {
	eng := newEngine(t)
	if got := evalInt(t, eng, "21 * 2"); got != 42 {
		t.Errorf("21 * 2 = %d, want 42", got)
	}
	if got := evalStr(t, eng, `"foo" + "bar"`); got != "foobar" {
		t.Errorf("string concat = %q", got)
	}
}

func TestDefinitionsPersistLocalsDoNot(t *testing.T) {
	eng := newEngine(t)
	mustEval(t, eng, "def treble(n) { n * 3 }")
	if got := evalInt(t, eng, "treble(14)"); got != 42 {
		t.Errorf("treble(14) = %d, want 42", got)
	}

	mustEval(t, eng, "var stale = 1")
	_, err := eng.Eval("stale")
	var ee *oolong.EvalError
	if !errors.As(err, &ee) {
		t.Fatalf("locals leaked across Eval calls: %v", err)
	}
}

func TestEvalAsMismatch(t *testing.T) {
	eng := newEngine(t)
	_, err := oolong.EvalAs[int64](eng, `"forty two"`)
	var mis *oolong.MismatchError
	if !errors.As(err, &mis) {
		t.Fatalf("want MismatchError, got %v", err)
	}
}

func TestParseErrorsReported(t *testing.T) {
	eng := newEngine(t)
	_, err := eng.Eval("def (")
	if err == nil {
		t.Fatal("malformed input evaluated without error")
	}
	var list oolong.ParseErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		t.Fatalf("want ParseErrorList, got %v", err)
	}
	if list[0].Line != 1 {
		t.Errorf("first error at line %d, want 1", list[0].Line)
	}
}

func TestDispatchErrorsSurface(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.Eval("launch(1, 2)")
	var nf *oolong.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("want NotFoundError, got %v", err)
	}

	_, err = eng.Eval(`1 + "x"`)
	var no *oolong.NoOverloadError
	if !errors.As(err, &no) {
		t.Fatalf("want NoOverloadError, got %v", err)
	}
	if no.Name != "+" {
		t.Errorf("overload error names %q, want +", no.Name)
	}
}

func TestRegisterFunction(t *testing.T) {
	eng := newEngine(t)
	if err := eng.RegisterFunction("shout", func(s string) string {
		return strings.ToUpper(s) + "!"
	}); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}
	if got := evalStr(t, eng, `shout("hey")`); got != "HEY!" {
		t.Errorf("shout = %q", got)
	}
}

func TestRegisterFunctionOverloads(t *testing.T) {
	eng := newEngine(t)
	if err := eng.RegisterFunction("describe", func(s string) string { return "text " + s }); err != nil {
		t.Fatal(err)
	}
	if err := eng.RegisterFunction("describe", func(n int64) string {
		return fmt.Sprintf("number %d", n)
	}); err != nil {
		t.Fatal(err)
	}
	if got := evalStr(t, eng, `describe("x")`); got != "text x" {
		t.Errorf("string overload = %q", got)
	}
	if got := evalStr(t, eng, "describe(7)"); got != "number 7" {
		t.Errorf("int overload = %q", got)
	}
}

func TestRegisterFunctionRejectsReservedName(t *testing.T) {
	eng := newEngine(t)
	err := eng.RegisterFunction("def", func() {})
	var res *oolong.ReservedError
	if !errors.As(err, &res) {
		t.Fatalf("want ReservedError, got %v", err)
	}
}

func TestRegisterFunctionRejectsNonFunction(t *testing.T) {
	eng := newEngine(t)
	if err := eng.RegisterFunction("x", 42); err == nil {
		t.Fatal("registering a non-function succeeded")
	}
}

type point struct{ X, Y int64 }

func TestRegisterTypeIntrospection(t *testing.T) {
	eng := newEngine(t)
	if err := oolong.RegisterType[point](eng, "Point"); err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	if err := eng.RegisterFunction("point", func(x, y int64) point {
		return point{x, y}
	}); err != nil {
		t.Fatal(err)
	}

	if got := evalStr(t, eng, "type_name(point(1, 2))"); got != "Point" {
		t.Errorf("type_name = %q, want Point", got)
	}
	if !evalBool(t, eng, `is_type(point(1, 2), "Point")`) {
		t.Error("is_type(point, Point) = false")
	}
	if evalBool(t, eng, `is_type(3, "Point")`) {
		t.Error("is_type(3, Point) = true")
	}

	err := oolong.RegisterType[point](eng, "Spot")
	var conflict *oolong.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("re-registering a type: want ConflictError, got %v", err)
	}
}

func TestSharedObjectPersistsAcrossEvals(t *testing.T) {
	eng := newEngine(t)
	if err := eng.RegisterSharedObject("counter", int64(0)); err != nil {
		t.Fatal(err)
	}
	mustEval(t, eng, "counter = counter + 1")
	mustEval(t, eng, "counter = counter + 1")

	v, ok := eng.SharedObject("counter")
	if !ok {
		t.Fatal("shared object vanished")
	}
	n, err := oolong.As[int64](v)
	if err != nil || n != 2 {
		t.Errorf("counter = %d (%v), want 2", n, err)
	}
}

func TestSharedObjectBoxCopies(t *testing.T) {
	eng := newEngine(t)
	orig := int64(5)
	if err := eng.RegisterSharedObject("base", orig); err != nil {
		t.Fatal(err)
	}
	orig = 99
	if got := evalInt(t, eng, "base"); got != 5 {
		t.Errorf("base = %d, want the boxed copy 5", got)
	}
}

func TestSharedValueHandleIsLive(t *testing.T) {
	eng := newEngine(t)
	v := oolong.Box(int64(3))
	if err := eng.RegisterSharedObject("n3", v); err != nil {
		t.Fatal(err)
	}
	mustEval(t, eng, "n3 = n3 + 1")
	n, err := oolong.As[int64](v)
	if err != nil || n != 4 {
		t.Errorf("host handle sees %d (%v), want 4", n, err)
	}
}

func TestSharedRefTwoWay(t *testing.T) {
	eng := newEngine(t)
	score := int64(7)
	if err := eng.RegisterSharedRef("score", &score); err != nil {
		t.Fatal(err)
	}

	mustEval(t, eng, "score = score + 3")
	if score != 10 {
		t.Errorf("script write invisible to host: score = %d", score)
	}

	score = 40
	if got := evalInt(t, eng, "score"); got != 40 {
		t.Errorf("host write invisible to script: score = %d", got)
	}
}

func TestFunctorPlain(t *testing.T) {
	eng := newEngine(t)
	add, err := oolong.Functor[func(int64, int64) int64](eng, "+")
	if err != nil {
		t.Fatalf("Functor: %v", err)
	}
	if got := add(20, 22); got != 42 {
		t.Errorf("add(20, 22) = %d", got)
	}
}

func TestFunctorErrorShape(t *testing.T) {
	eng := newEngine(t)
	parse, err := oolong.Functor[func(string) (int64, error)](eng, "to_int")
	if err != nil {
		t.Fatalf("Functor: %v", err)
	}

	n, err := parse("41")
	if err != nil || n != 41 {
		t.Errorf("parse(41) = %d, %v", n, err)
	}
	if _, err := parse("x"); err == nil {
		t.Error("parse(x) succeeded")
	}
}

func TestFunctorScriptFunction(t *testing.T) {
	eng := newEngine(t)
	mustEval(t, eng, `def classify(n) {
		if (n < 0) { return "neg" }
		"pos"
	}`)

	classify, err := oolong.Functor[func(int64) (string, error)](eng, "classify")
	if err != nil {
		t.Fatalf("Functor: %v", err)
	}
	if got, err := classify(-5); err != nil || got != "neg" {
		t.Errorf("classify(-5) = %q, %v", got, err)
	}
	if got, err := classify(5); err != nil || got != "pos" {
		t.Errorf("classify(5) = %q, %v", got, err)
	}
}

func TestFunctorShapeChecks(t *testing.T) {
	eng := newEngine(t)
	if _, err := oolong.Functor[int](eng, "+"); err == nil {
		t.Error("non-function type accepted")
	}
	if _, err := oolong.Functor[func(...int64) int64](eng, "+"); err == nil {
		t.Error("variadic functor accepted")
	}
	if _, err := oolong.Functor[func() (int64, string)](eng, "+"); err == nil {
		t.Error("two value results accepted")
	}
}

func TestFunctionValue(t *testing.T) {
	eng := newEngine(t)
	v, ok := eng.FunctionValue("size")
	if !ok {
		t.Fatal("size not found")
	}
	if err := eng.RegisterSharedObject("length", v); err != nil {
		t.Fatal(err)
	}
	if got := evalInt(t, eng, `length("four")`); got != 4 {
		t.Errorf("length(four) = %d", got)
	}

	if _, ok := eng.FunctionValue("no_such_thing"); ok {
		t.Error("FunctionValue invented a function")
	}
}

func TestSessionKeepsLocals(t *testing.T) {
	eng := newEngine(t)
	s := eng.NewSession()
	if _, err := s.Eval("var tally = 1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Eval("tally = tally + 9"); err != nil {
		t.Fatal(err)
	}
	v, err := s.Eval("tally")
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := oolong.As[int64](v); n != 10 {
		t.Errorf("tally = %d, want 10", n)
	}

	if _, err := eng.Eval("tally"); err == nil {
		t.Error("session local visible outside the session")
	}
}

func TestMaxDepthOption(t *testing.T) {
	eng := newEngine(t, oolong.WithMaxDepth(50))
	_, err := eng.Eval("def dive(n) { dive(n + 1) }\ndive(0)")
	if err == nil || !strings.Contains(err.Error(), "maximum recursion depth") {
		t.Fatalf("want depth error, got %v", err)
	}
}

func TestNestedEvalSharesDepthBudget(t *testing.T) {
	eng := newEngine(t, oolong.WithMaxDepth(64))
	_, err := eng.Eval(`def dig() { eval("dig()") }
dig()`)
	if err == nil || !strings.Contains(err.Error(), "maximum recursion depth") {
		t.Fatalf("want depth error, got %v", err)
	}
}

func TestEvalBuiltin(t *testing.T) {
	eng := newEngine(t)
	if got := evalInt(t, eng, `eval("40 + 2")`); got != 42 {
		t.Errorf("eval(40 + 2) = %d", got)
	}
}

func TestFunctionExistsBuiltin(t *testing.T) {
	eng := newEngine(t)
	if !evalBool(t, eng, `function_exists("sum")`) {
		t.Error("sum reported missing")
	}
	if evalBool(t, eng, `function_exists("warp")`) {
		t.Error("warp reported present")
	}
}

func TestPrintAndDumpOutput(t *testing.T) {
	var buf bytes.Buffer
	eng := newEngine(t, oolong.WithOut(&buf))

	mustEval(t, eng, `print("ping")`)
	if got := buf.String(); got != "ping\n" {
		t.Errorf("print wrote %q", got)
	}

	buf.Reset()
	mustEval(t, eng, "dump_object([1, 2])")
	if got := buf.String(); got != "Vector: [1, 2]\n" {
		t.Errorf("dump_object wrote %q", got)
	}

	buf.Reset()
	mustEval(t, eng, "dump_system()")
	out := buf.String()
	for _, want := range []string{"types:", "functions:", "Vector", "sum(?)"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump_system output missing %q:\n%s", want, out)
		}
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	if err := os.Mkdir(lib, 0o755); err != nil {
		t.Fatal(err)
	}
	writeScript(t, lib, "answers.ool", "def answer() { 42 }")
	cfg := writeScript(t, dir, "oolong.yaml",
		"max_depth: 40\nmodule_path:\n  - "+lib+"\n")

	opts, err := oolong.LoadSettings(cfg)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	eng := newEngine(t, opts...)

	mustEval(t, eng, `use("answers")`)
	if got := evalInt(t, eng, "answer()"); got != 42 {
		t.Errorf("answer() = %d", got)
	}

	_, err = eng.Eval("def sink(n) { sink(n + 1) }\nsink(0)")
	if err == nil || !strings.Contains(err.Error(), "maximum recursion depth") {
		t.Errorf("max_depth setting ignored: %v", err)
	}
}

func TestLoadSettingsBadYAML(t *testing.T) {
	dir := t.TempDir()
	cfg := writeScript(t, dir, "oolong.yaml", "max_depth: [")
	if _, err := oolong.LoadSettings(cfg); err == nil {
		t.Fatal("malformed settings accepted")
	}
}

func TestConcurrentEval(t *testing.T) {
	eng := newEngine(t)
	mustEval(t, eng, `def fib(n) {
		if (n < 2) { return n }
		fib(n - 1) + fib(n - 2)
	}`)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			n, err := oolong.EvalAs[int64](eng, "fib(12)")
			if err != nil {
				return err
			}
			if n != 144 {
				return fmt.Errorf("fib(12) = %d", n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
