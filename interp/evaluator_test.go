package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/loxrt/lox/ast"
	"github.com/loxrt/lox/bumparena"
	"github.com/loxrt/lox/diag"
	"github.com/loxrt/lox/gcheap"
	"github.com/loxrt/lox/parser"
	"github.com/loxrt/lox/scanner"
	"github.com/loxrt/lox/token"
)

func arenaLiteral(t *testing.T, a *bumparena.Arena) ast.Expr {
	t.Helper()
	return ast.NewLiteral(a, float64(42), token.Token{Type: token.Number})
}

func run(t *testing.T, source string) (string, *diag.Reporter) {
	t.Helper()
	var out bytes.Buffer
	rep := diag.NewReporter(source, token.NewSourceMap(source), &out)
	res, nums := scanner.Scan(source, rep)
	arena := bumparena.New()
	program := parser.Parse(res, nums, arena, rep)
	if rep.HasErrors() {
		t.Fatalf("scan/parse errors for %q", source)
	}
	heap := gcheap.New(1 << 20)
	ev, err := New(heap, source, &out, rep)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ev.Run(program)
	return out.String(), rep
}

func TestArithmeticPrecedence(t *testing.T) {
	out, rep := run(t, "print 1 + 2 * 3;")
	if rep.HasErrors() {
		t.Fatalf("unexpected runtime errors")
	}
	if strings.TrimSpace(out) != ":: 7" {
		t.Fatalf("output = %q, want %q", out, " :: 7\n")
	}
}

func TestBlockScopingShadowsAndRestores(t *testing.T) {
	out, rep := run(t, `var a = 1; { var a = 2; print a; } print a;`)
	if rep.HasErrors() {
		t.Fatalf("unexpected runtime errors")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 || lines[0] != " :: 2" || lines[1] != " :: 1" {
		t.Fatalf("output = %q, want ' :: 2' then ' :: 1'", out)
	}
}

func TestClosureCountsAcrossCalls(t *testing.T) {
	out, rep := run(t, `
		fun make() {
			var i = 0;
			fun inc() {
				i = i + 1;
				return i;
			}
			return inc;
		}
		var c = make();
		print c();
		print c();
		print c();
	`)
	if rep.HasErrors() {
		t.Fatalf("unexpected runtime errors")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{" :: 1", " :: 2", " :: 3"}
	if len(lines) != len(want) {
		t.Fatalf("output = %q, want 3 lines", out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestForLoopPrintsRange(t *testing.T) {
	out, rep := run(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	if rep.HasErrors() {
		t.Fatalf("unexpected runtime errors")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{" :: 0", " :: 1", " :: 2"}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestStringConcatenationAndTypeError(t *testing.T) {
	out, _ := run(t, `print "a" + "b";`)
	if strings.TrimSpace(out) != ":: ab" {
		t.Fatalf("output = %q, want ' :: ab'", out)
	}

	var errOut bytes.Buffer
	source := `print 1 + "a";`
	rep := diag.NewReporter(source, token.NewSourceMap(source), &errOut)
	res, nums := scanner.Scan(source, rep)
	arena := bumparena.New()
	program := parser.Parse(res, nums, arena, rep)
	heap := gcheap.New(1 << 20)
	ev, err := New(heap, source, &errOut, rep)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ev.Run(program)
	if !rep.HasErrors() {
		t.Fatalf("expected a runtime type error for 1 + \"a\"")
	}
}

func TestForwardReferenceThroughEnvironment(t *testing.T) {
	out, rep := run(t, `var f; fun a() { f = b; } fun b() { return 7; } a(); print f();`)
	if rep.HasErrors() {
		t.Fatalf("unexpected runtime errors")
	}
	if strings.TrimSpace(out) != ":: 7" {
		t.Fatalf("output = %q, want ' :: 7'", out)
	}
}

func TestLogicalOperatorsReturnOperandNotBool(t *testing.T) {
	out, rep := run(t, `print 1 or 2; print false and "x";`)
	if rep.HasErrors() {
		t.Fatalf("unexpected runtime errors")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != " :: 1" {
		t.Fatalf("`1 or 2` = %q, want ' :: 1'", lines[0])
	}
	if lines[1] != " :: false" {
		t.Fatalf("`false and \"x\"` = %q, want ' :: false'", lines[1])
	}
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	out, rep := run(t, `
		var evaluated = false;
		fun sideEffect() { evaluated = true; return true; }
		false and sideEffect();
		print evaluated;
	`)
	if rep.HasErrors() {
		t.Fatalf("unexpected runtime errors")
	}
	if strings.TrimSpace(out) != ":: false" {
		t.Fatalf("right operand of `and` was evaluated despite short-circuit: %q", out)
	}
}

func TestOperandStackDisciplinePerExpression(t *testing.T) {
	heap := gcheap.New(1 << 16)
	var out bytes.Buffer
	rep := diag.NewReporter("", token.NewSourceMap(""), &out)
	ev, err := New(heap, "", &out, rep)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	arena := bumparena.New()
	lit := arenaLiteral(t, arena)

	before := len(ev.stack)
	if err := ev.eval(lit); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if len(ev.stack) != before+1 {
		t.Fatalf("stack grew by %d, want 1", len(ev.stack)-before)
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, rep := run(t, `print nope;`)
	if !rep.HasErrors() {
		t.Fatalf("expected undefined-variable runtime error")
	}
}

func TestCallArityMismatchIsRuntimeError(t *testing.T) {
	_, rep := run(t, `fun f(a) { return a; } f();`)
	if !rep.HasErrors() {
		t.Fatalf("expected arity-mismatch runtime error")
	}
}

func TestCallCheckedBeforeArgumentsAreEvaluated(t *testing.T) {
	out, rep := run(t, `
		var notCallable = 1;
		fun sideEffect() { print "ran"; return 0; }
		notCallable(sideEffect());
	`)
	if !rep.HasErrors() {
		t.Fatalf("expected a not-callable runtime error")
	}
	if strings.Contains(out, "ran") {
		t.Fatalf("argument was evaluated despite callee not being callable: %q", out)
	}
}

func TestArityCheckedBeforeArgumentsAreEvaluated(t *testing.T) {
	out, rep := run(t, `
		fun f(a) { return a; }
		fun sideEffect() { print "ran"; return 0; }
		f(sideEffect(), sideEffect());
	`)
	if !rep.HasErrors() {
		t.Fatalf("expected an arity-mismatch runtime error")
	}
	if strings.Contains(out, "ran") {
		t.Fatalf("arguments were evaluated despite the arity mismatch: %q", out)
	}
}
