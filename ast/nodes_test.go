package ast

import (
	"testing"

	"github.com/loxrt/lox/bumparena"
	"github.com/loxrt/lox/token"
)

func tok(typ token.Type, offset, length int) token.Token {
	return token.Token{Type: typ, Offset: offset, Length: length}
}

func TestNodeConstructionAndMainToken(t *testing.T) {
	a := bumparena.New()

	lit := NewLiteral(a, 1.0, tok(token.Number, 0, 1))
	plus := tok(token.Plus, 2, 1)
	rhs := NewLiteral(a, 2.0, tok(token.Number, 4, 1))
	bin := NewBinary(a, lit, plus, rhs)

	if bin.MainToken() != plus {
		t.Fatalf("Binary.MainToken() = %v, want %v", bin.MainToken(), plus)
	}

	var _ Expr = bin
	var _ Expr = lit
}

func TestFingerprintStableAcrossEquivalentTrees(t *testing.T) {
	const source = "var a = 1; print a;"
	build := func() []Stmt {
		a := bumparena.New()
		name := tok(token.Identifier, 4, 1)
		init := NewLiteral(a, 1.0, tok(token.Number, 8, 1))
		decl := NewVarStmt(a, name, init)
		printTok := tok(token.Print, 11, 5)
		v := NewVar(a, name)
		pr := NewPrint(a, printTok, v)
		return []Stmt{decl, pr}
	}

	h1, err := Fingerprint(build(), source)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := Fingerprint(build(), source)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatalf("expected equal fingerprints for structurally identical trees, got %q vs %q", h1, h2)
	}
}

func TestFingerprintDiffersOnStructure(t *testing.T) {
	a := bumparena.New()
	tree1 := []Stmt{NewExprStmt(a, NewLiteral(a, 1.0, tok(token.Number, 0, 1)))}
	tree2 := []Stmt{NewExprStmt(a, NewLiteral(a, 2.0, tok(token.Number, 0, 1)))}

	h1, err := Fingerprint(tree1, "")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := Fingerprint(tree2, "")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Fatalf("expected different fingerprints for different literal values")
	}
}

func TestArenaResetInvalidatesChildScope(t *testing.T) {
	a := bumparena.New()
	outer := a.Mark()
	_ = NewLiteral(a, 1.0, tok(token.Number, 0, 1))
	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}
	a.Reset(outer)
	if a.Len() != 0 {
		t.Fatalf("Len() after reset = %d, want 0", a.Len())
	}
}
