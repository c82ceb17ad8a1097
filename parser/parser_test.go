package parser

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/loxrt/lox/ast"
	"github.com/loxrt/lox/bumparena"
	"github.com/loxrt/lox/diag"
	"github.com/loxrt/lox/scanner"
	"github.com/loxrt/lox/token"
)

func parseSource(t *testing.T, source string) ([]ast.Stmt, *diag.Reporter) {
	t.Helper()
	var buf bytes.Buffer
	rep := diag.NewReporter(source, token.NewSourceMap(source), &buf)
	res, nums := scanner.Scan(source, rep)
	arena := bumparena.New()
	return Parse(res, nums, arena, rep), rep
}

func TestPrecedenceClimbing(t *testing.T) {
	stmts, rep := parseSource(t, "1 + 2 * 3;")
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors")
	}
	if len(stmts) != 1 {
		t.Fatalf("len(stmts) = %d, want 1", len(stmts))
	}
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("stmts[0] is %T, want *ast.ExprStmt", stmts[0])
	}
	bin, ok := es.Expr.(*ast.Binary)
	if !ok {
		t.Fatalf("top expr is %T, want *ast.Binary (+)", es.Expr)
	}
	if bin.Op.Type != token.Plus {
		t.Fatalf("top operator = %v, want Plus", bin.Op.Type)
	}
	right, ok := bin.Right.(*ast.Binary)
	if !ok || right.Op.Type != token.Star {
		t.Fatalf("right operand should be a Star Binary, got %#v", bin.Right)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	stmts, rep := parseSource(t, "a = b = 3;")
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors")
	}
	es := stmts[0].(*ast.ExprStmt)
	outer, ok := es.Expr.(*ast.Assign)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Assign", es.Expr)
	}
	if _, ok := outer.Value.(*ast.Assign); !ok {
		t.Fatalf("outer assignment's value is %T, want nested *ast.Assign", outer.Value)
	}
}

func TestInvalidAssignmentTargetReportsErrorButKeepsGoing(t *testing.T) {
	stmts, rep := parseSource(t, "1 = 2; print 3;")
	if !rep.HasErrors() {
		t.Fatalf("expected an invalid-assignment-target diagnostic")
	}
	// Recovery should still surface the second statement.
	found := false
	for _, s := range stmts {
		if _, ok := s.(*ast.Print); ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the print statement to survive recovery, got %#v", stmts)
	}
}

func TestForLoopDesugarsToWhileInBlock(t *testing.T) {
	stmts, rep := parseSource(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors")
	}
	outer, ok := stmts[0].(*ast.Block)
	if !ok {
		t.Fatalf("stmts[0] is %T, want *ast.Block (initializer wrapper)", stmts[0])
	}
	if len(outer.Stmts) != 2 {
		t.Fatalf("outer block has %d statements, want 2 (initializer, while)", len(outer.Stmts))
	}
	if _, ok := outer.Stmts[0].(*ast.VarStmt); !ok {
		t.Fatalf("outer.Stmts[0] is %T, want *ast.VarStmt", outer.Stmts[0])
	}
	while, ok := outer.Stmts[1].(*ast.While)
	if !ok {
		t.Fatalf("outer.Stmts[1] is %T, want *ast.While", outer.Stmts[1])
	}
	body, ok := while.Body.(*ast.Block)
	if !ok {
		t.Fatalf("while body is %T, want *ast.Block (body+increment wrapper)", while.Body)
	}
	if len(body.Stmts) != 2 {
		t.Fatalf("while body has %d statements, want 2 (print, increment)", len(body.Stmts))
	}
}

func TestForLoopWithOmittedConditionDefaultsToTrue(t *testing.T) {
	stmts, rep := parseSource(t, "for (;;) print 1;")
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors")
	}
	while, ok := stmts[0].(*ast.While)
	if !ok {
		t.Fatalf("stmts[0] is %T, want *ast.While", stmts[0])
	}
	lit, ok := while.Cond.(*ast.Literal)
	if !ok || lit.Value != true {
		t.Fatalf("default for-condition = %#v, want literal true", while.Cond)
	}
}

func TestFunctionDeclarationParsesParamsAndBody(t *testing.T) {
	stmts, rep := parseSource(t, "fun add(a, b) { return a + b; }")
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors")
	}
	fn, ok := stmts[0].(*ast.Fun)
	if !ok {
		t.Fatalf("stmts[0] is %T, want *ast.Fun", stmts[0])
	}
	if len(fn.Params) != 2 {
		t.Fatalf("len(Params) = %d, want 2", len(fn.Params))
	}
	if len(fn.Body) != 1 {
		t.Fatalf("len(Body) = %d, want 1", len(fn.Body))
	}
	if _, ok := fn.Body[0].(*ast.Return); !ok {
		t.Fatalf("fn.Body[0] is %T, want *ast.Return", fn.Body[0])
	}
}

func TestTooManyParametersIsReportedButParsesOn(t *testing.T) {
	var params bytes.Buffer
	for i := 0; i < 260; i++ {
		if i > 0 {
			params.WriteString(", ")
		}
		// Letters only: identifiers take no digits in their body.
		fmt.Fprintf(&params, "p%c%c", 'a'+i/26, 'a'+i%26)
	}
	source := fmt.Sprintf("fun many(%s) { return 0; }", params.String())
	stmts, rep := parseSource(t, source)
	if !rep.HasErrors() {
		t.Fatalf("expected a too-many-parameters diagnostic")
	}
	if len(stmts) != 1 {
		t.Fatalf("parsing should continue past the limit diagnostic, got %d stmts", len(stmts))
	}
}

func TestMissingSemicolonRecoversAtNextStatement(t *testing.T) {
	// The missing ';' is reported at the second 'var'; recovery skips that
	// offending token and the rest of its statement, then resumes at 'var c'.
	stmts, rep := parseSource(t, "var a = 1\nvar b = 2;\nvar c = 3;")
	if !rep.HasErrors() {
		t.Fatalf("expected a missing-';' diagnostic")
	}
	found := false
	for _, s := range stmts {
		if _, ok := s.(*ast.VarStmt); ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected at least the recovered var declaration, got %#v", stmts)
	}
}

func TestCallParsesArguments(t *testing.T) {
	stmts, rep := parseSource(t, "f(1, 2, 3);")
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors")
	}
	es := stmts[0].(*ast.ExprStmt)
	call, ok := es.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Call", es.Expr)
	}
	if len(call.Args) != 3 {
		t.Fatalf("len(Args) = %d, want 3", len(call.Args))
	}
}

func TestStringLiteralStripsQuotes(t *testing.T) {
	stmts, rep := parseSource(t, `print "hi";`)
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors")
	}
	p := stmts[0].(*ast.Print)
	lit, ok := p.Expr.(*ast.Literal)
	if !ok || lit.Value != "hi" {
		t.Fatalf("literal = %#v, want \"hi\"", p.Expr)
	}
}
