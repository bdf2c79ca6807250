package runtime

import (
	"bytes"
	"fmt"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/resolver"
	"strings"
	"testing"
	"time"
)

// runSource lexes, parses, resolves and executes source, returning captured
// output and the first static or runtime error.
func runSource(source string) (string, error) {
	var buf bytes.Buffer
	err := runWith(NewInterpreter(&buf), source)
	return buf.String(), err
}

func runWith(interp *Interpreter, source string) error {
	tokens, lexDiags := lexer.New(source, "test.lox").Tokenize()
	stmts, parseDiags := parser.New(tokens).Parse()
	locals, resolveDiags := resolver.New().Resolve(stmts)

	all := append(append(lexDiags, parseDiags...), resolveDiags...)
	if diag.HasErrors(all) {
		return fmt.Errorf("static errors: %v", all)
	}
	interp.Resolve(locals)
	return interp.Interpret(stmts)
}

func expectOutput(t *testing.T, source, expected string) {
	t.Helper()
	out, err := runSource(source)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimRight(out, "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}
}

func expectError(t *testing.T, source, contains string) {
	t.Helper()
	_, err := runSource(source)
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", contains)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("expected error containing %q, got: %v", contains, err)
	}
}

// ---- Literals and operators ----

func TestPrintLiterals(t *testing.T) {
	expectOutput(t, `print 42; print 2.5; print "hello"; print true; print nil;`,
		"42\n2.5\nhello\ntrue\nnil\n")
}

func TestArithmetic(t *testing.T) {
	expectOutput(t, `print 1 + 2 * 3;`, "7\n")
	expectOutput(t, `print (1 + 2) * 3;`, "9\n")
	expectOutput(t, `print 10 / 4;`, "2.5\n")
	expectOutput(t, `print 10 / 3;`, "3.3333333333333335\n")
	expectOutput(t, `print -(3 - 5);`, "2\n")
	expectOutput(t, `print 1 + 1;`, "2\n")
}

func TestDivisionByZero(t *testing.T) {
	expectOutput(t, `print 1 / 0; print -1 / 0; print 0 / 0;`, "inf\n-inf\nnan\n")
}

func TestStringConcat(t *testing.T) {
	expectOutput(t, `print "a" + "b";`, "ab\n")
}

func TestComparison(t *testing.T) {
	expectOutput(t, `print 1 < 2; print 2 <= 2; print 3 > 4; print 4 >= 5;`,
		"true\ntrue\nfalse\nfalse\n")
}

func TestEquality(t *testing.T) {
	expectOutput(t, `print nil == nil;`, "true\n")
	expectOutput(t, `print nil == false;`, "false\n")
	expectOutput(t, `print 1 == 1; print 1 == "1"; print "a" != "a";`, "true\nfalse\nfalse\n")
	expectOutput(t, `fun f() {} var g = f; print f == g;`, "true\n")
	expectOutput(t, `class C {} print C() == C();`, "false\n")
}

func TestTruthiness(t *testing.T) {
	expectOutput(t, `if (0) print "yes"; else print "no";`, "yes\n")
	expectOutput(t, `if ("") print "yes"; else print "no";`, "yes\n")
	expectOutput(t, `if (nil) print "yes"; else print "no";`, "no\n")
	expectOutput(t, `print !nil; print !0;`, "true\nfalse\n")
}

func TestLogicalShortCircuit(t *testing.T) {
	expectOutput(t, `print nil or "x"; print 1 and 2; print false and undefined;`, "x\n2\nfalse\n")
	expectOutput(t, `print "a" or undefined;`, "a\n")
}

func TestTypeErrors(t *testing.T) {
	expectError(t, `print "a" + 1;`, "Operands must be two numbers or two strings.")
	expectError(t, `print -"a";`, "Operand must be a number.")
	expectError(t, `print 1 < "2";`, "Operands must be numbers.")
	expectError(t, `print nil * 2;`, "Operands must be numbers.")
}

// ---- Variables and scope ----

func TestVarDecl(t *testing.T) {
	expectOutput(t, `var x = 10; print x; var y; print y;`, "10\nnil\n")
}

func TestAssignmentIsExpression(t *testing.T) {
	expectOutput(t, `var a; var b; a = b = 3; print a; print b;`, "3\n3\n")
}

func TestBlockScope(t *testing.T) {
	expectOutput(t, `var a = 1; { var a = 2; print a; } print a;`, "2\n1\n")
}

func TestUndefinedVariable(t *testing.T) {
	expectError(t, `print nope;`, "Undefined variable 'nope'.")
	expectError(t, `nope = 1;`, "Undefined variable 'nope'.")
}

func TestUndefinedVariableHint(t *testing.T) {
	_, err := runSource(`var counter = 1; print countr;`)
	rerr, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	if rerr.Hint != "did you mean 'counter'?" {
		t.Errorf("unexpected hint: %q", rerr.Hint)
	}
	if d := rerr.Diagnostic(); d.Code != diag.CodeRuntime || d.Span.Start.Line != 1 {
		t.Errorf("unexpected diagnostic: %v", d)
	}
}

func TestLateGlobalBinding(t *testing.T) {
	expectOutput(t, `fun f() { return g(); } fun g() { return 1; } print f();`, "1\n")
	expectOutput(t, `fun show() { print x; } var x = "late"; show();`, "late\n")
}

func TestClosureCapturesDeclarationScope(t *testing.T) {
	source := `var a = "global";
{
  fun show() { print a; }
  show();
  var a = "block";
  show();
}`
	expectOutput(t, source, "global\nglobal\n")
}

func TestLocalRedeclaration(t *testing.T) {
	expectOutput(t, `{ var a = 1; var a = 2; print a; }`, "2\n")
}

// ---- Control flow ----

func TestIfElse(t *testing.T) {
	expectOutput(t, `var x = 5; if (x > 3) print "big"; else print "small";`, "big\n")
}

func TestWhileLoop(t *testing.T) {
	expectOutput(t, `var i = 0; while (i < 3) { print i; i = i + 1; }`, "0\n1\n2\n")
}

func TestForLoop(t *testing.T) {
	expectOutput(t, `for (var i = 0; i < 3; i = i + 1) print i;`, "0\n1\n2\n")
	expectOutput(t, `var i = 10; for (i = 0; i < 2; i = i + 1) {} print i;`, "2\n")
}

func TestForLoopClosures(t *testing.T) {
	// One loop variable shared by every iteration.
	source := `var fs;
for (var i = 0; i < 3; i = i + 1) {
  fun f() { print i; }
  if (i == 1) fs = f;
}
fs();`
	expectOutput(t, source, "3\n")
}

// ---- Functions ----

func TestFunctionCall(t *testing.T) {
	expectOutput(t, `fun add(a, b) { return a + b; } print add(3, 4);`, "7\n")
}

func TestFunctionNoReturn(t *testing.T) {
	expectOutput(t, `fun f() {} print f();`, "nil\n")
	expectOutput(t, `fun f() { return; } print f();`, "nil\n")
}

func TestReturnFromNestedLoop(t *testing.T) {
	source := `fun first(limit) {
  for (var i = 0; i < 10; i = i + 1) {
    while (true) {
      if (i == limit) return i;
      i = i + 1;
    }
  }
  return -1;
}
print first(3);`
	expectOutput(t, source, "3\n")
}

func TestRecursion(t *testing.T) {
	source := `fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
print fib(15);`
	expectOutput(t, source, "610\n")
}

func TestClosureCounter(t *testing.T) {
	source := `fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; print i; }
  return count;
}
var c = makeCounter();
c(); c(); c();`
	expectOutput(t, source, "1\n2\n3\n")
}

func TestIndependentClosures(t *testing.T) {
	source := `fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; return i; }
  return count;
}
var a = makeCounter();
var b = makeCounter();
a(); a();
print a();
print b();`
	expectOutput(t, source, "3\n1\n")
}

func TestFunctionFormatting(t *testing.T) {
	expectOutput(t, `fun f() {} print f; print clock;`, "<fn f>\n<native fn>\n")
}

func TestCallErrors(t *testing.T) {
	expectError(t, `"not a fn"();`, "Can only call functions and classes.")
	expectError(t, `fun f(a, b) {} f(1);`, "Expected 2 arguments but got 1.")
	expectError(t, `class C { init(x) {} } C();`, "Expected 1 arguments but got 0.")
	expectError(t, `clock(1);`, "Expected 0 arguments but got 1.")
}

func TestArgumentEvaluationOrder(t *testing.T) {
	source := `fun say(x) { print x; return x; }
fun three(a, b, c) {}
three(say(1), say(2), say(3));`
	expectOutput(t, source, "1\n2\n3\n")
}

func TestStackOverflow(t *testing.T) {
	expectError(t, `fun f() { f(); } f();`, "Stack overflow.")
}

func TestClockNative(t *testing.T) {
	var buf bytes.Buffer
	fixed := time.Unix(1700000000, 500000000)
	interp := NewInterpreter(&buf, WithClock(func() time.Time { return fixed }))
	if err := runWith(interp, `print clock();`); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "1700000000.5" {
		t.Errorf("expected 1700000000.5, got %q", got)
	}
}

// ---- Classes ----

func TestClassFormatting(t *testing.T) {
	expectOutput(t, `class Point {} print Point; print Point();`, "Point\nPoint instance\n")
}

func TestClassFieldsAndMethods(t *testing.T) {
	source := `class Point {
  init(x, y) { this.x = x; this.y = y; }
  sum() { return this.x + this.y; }
}
var p = Point(1, 2);
print p.sum();
p.x = 10;
print p.sum();`
	expectOutput(t, source, "3\n12\n")
}

func TestBoundMethodKeepsThis(t *testing.T) {
	source := `class Box {
  init(v) { this.v = v; }
  get() { return this.v; }
}
var m = Box(7).get;
print m();`
	expectOutput(t, source, "7\n")
}

func TestFieldShadowsMethod(t *testing.T) {
	source := `class C { m() { return "method"; } }
var c = C();
fun other() { return "field"; }
c.m = other;
print c.m();`
	expectOutput(t, source, "field\n")
}

func TestInitializerReturnsInstance(t *testing.T) {
	source := `class C {
  init() { this.x = 1; return; }
}
var c = C();
print c.init();
print c.init() == c;`
	expectOutput(t, source, "C instance\ntrue\n")
}

func TestClassRefersToItself(t *testing.T) {
	source := `class Node {
  make() { return Node(); }
}
print Node().make();`
	expectOutput(t, source, "Node instance\n")
}

func TestPropertyErrors(t *testing.T) {
	expectError(t, `class C {} print C().missing;`, "Undefined property 'missing'.")
	expectError(t, `var x = 1; print x.y;`, "Only instances have properties.")
	expectError(t, `var x = "s"; x.y = 1;`, "Only instances have fields.")
}

func TestUndefinedPropertyHint(t *testing.T) {
	_, err := runSource(`class C { total() {} } C().totl();`)
	rerr, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	if rerr.Hint != "did you mean 'total'?" {
		t.Errorf("unexpected hint: %q", rerr.Hint)
	}
}

// ---- Inheritance ----

func TestInheritance(t *testing.T) {
	source := `class A {
  hello() { return "A"; }
  name() { return "a"; }
}
class B < A {
  hello() { return "B+" + super.hello(); }
}
var b = B();
print b.hello();
print b.name();`
	expectOutput(t, source, "B+A\na\n")
}

func TestInheritedInitializer(t *testing.T) {
	source := `class A { init(x) { this.x = x; } }
class B < A {}
print B(5).x;`
	expectOutput(t, source, "5\n")
}

func TestSuperBindsCurrentThis(t *testing.T) {
	source := `class A { say() { print this.word; } }
class B < A { say() { super.say(); } }
class C < B {}
var c = C();
c.word = "hi";
c.say();`
	expectOutput(t, source, "hi\n")
}

func TestSuperclassMustBeClass(t *testing.T) {
	expectError(t, `var NotClass = 1; class C < NotClass {}`, "Superclass must be a class.")
}

func TestSuperUndefinedMethod(t *testing.T) {
	expectError(t, `class A {} class B < A { m() { super.m(); } } B().m();`, "Undefined property 'm'.")
}

// ---- Errors and state ----

func TestStaticErrorsPreventExecution(t *testing.T) {
	out, err := runSource(`print "before"; { var a = a; }`)
	if err == nil {
		t.Fatal("expected a static error")
	}
	if out != "" {
		t.Errorf("nothing should run, got output %q", out)
	}
}

func TestRuntimeErrorKeepsEarlierGlobals(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)

	if err := runWith(interp, `var a = 1; print a; a = "x" + nil; print "unreached";`); err == nil {
		t.Fatal("expected runtime error")
	}
	if err := runWith(interp, `print a;`); err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}
	if buf.String() != "1\n1\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestRuntimeErrorRestoresEnvironment(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)

	if err := runWith(interp, `{ var inner = 1; fun f() { return nil + 1; } f(); }`); err == nil {
		t.Fatal("expected runtime error")
	}
	if interp.env != interp.globals {
		t.Error("current frame was not restored to the globals after the error")
	}
}

func TestRuntimeErrorLocation(t *testing.T) {
	_, err := runSource("var a = 1;\nprint a + \"s\";")
	rerr, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	if rerr.Token.Line() != 2 {
		t.Errorf("expected error on line 2, got %d", rerr.Token.Line())
	}
	if !strings.HasPrefix(rerr.Error(), "runtime error at 2:") {
		t.Errorf("unexpected error text: %s", rerr.Error())
	}
}

func TestStats(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	if err := runWith(interp, `fun f(n) { if (n > 0) f(n - 1); } f(3);`); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	stats := interp.Stats()
	if stats.Calls != 4 {
		t.Errorf("expected 4 calls, got %d", stats.Calls)
	}
	if stats.MaxDepth != 4 {
		t.Errorf("expected max depth 4, got %d", stats.MaxDepth)
	}
	if stats.Frames != 4 {
		t.Errorf("expected 4 frames, got %d", stats.Frames)
	}
}

func TestStatsString(t *testing.T) {
	s := Stats{Statements: 1234567, Calls: 1000, Frames: 12, MaxDepth: 3}
	want := "statements=1,234,567 calls=1,000 frames=12 max-depth=3"
	if s.String() != want {
		t.Errorf("expected %q, got %q", want, s.String())
	}
}

// ---- Strings, names and output ----

func TestStringsAreRaw(t *testing.T) {
	expectOutput(t, `print "C:\dir\new";`, "C:\\dir\\new\n")
	expectOutput(t, `print "a\nb";`, "a\\nb\n")
	expectOutput(t, "print \"two\nlines\";", "two\nlines\n")
}

func TestQuestionMarkInNames(t *testing.T) {
	expectOutput(t, `
fun empty?(n) { return n == 0; }
var done? = empty?(0);
print done?;
print empty?(1);
`, "true\nfalse\n")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, fmt.Errorf("disk full")
}

func TestPrintWriteError(t *testing.T) {
	err := runWith(NewInterpreter(failingWriter{}), `var a = 1; print a; a = 2;`)
	if err == nil {
		t.Fatal("expected the write error to be returned")
	}
	if !strings.Contains(err.Error(), "print") || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("unexpected error: %v", err)
	}
}
