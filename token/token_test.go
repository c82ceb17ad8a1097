package token

import "testing"

func TestSourceMapLocate(t *testing.T) {
	src := "var a = 1;\nprint a;\n\nprint 2;"
	sm := NewSourceMap(src)

	cases := []struct {
		offset   int
		wantLine int
		wantCol  int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{11, 2, 1},
		{20, 3, 1},
		{21, 4, 1},
	}
	for _, c := range cases {
		line, col := sm.Locate(c.offset)
		if line != c.wantLine || col != c.wantCol {
			t.Errorf("Locate(%d) = (%d,%d), want (%d,%d)", c.offset, line, col, c.wantLine, c.wantCol)
		}
	}
}

func TestSourceMapLineText(t *testing.T) {
	src := "line one\nline two\nline three"
	sm := NewSourceMap(src)
	want := []string{"line one", "line two", "line three"}
	for i, w := range want {
		if got := sm.LineText(i + 1); got != w {
			t.Errorf("LineText(%d) = %q, want %q", i+1, got, w)
		}
	}
	if got := sm.LineText(0); got != "" {
		t.Errorf("LineText(0) = %q, want empty", got)
	}
	if got := sm.LineText(99); got != "" {
		t.Errorf("LineText(99) = %q, want empty", got)
	}
}

func TestTokenLexeme(t *testing.T) {
	src := "foo + bar"
	tok := Token{Type: Identifier, Offset: 0, Length: 3}
	if got := tok.Lexeme(src); got != "foo" {
		t.Errorf("Lexeme() = %q, want %q", got, "foo")
	}
	if tok.End() != 3 {
		t.Errorf("End() = %d, want 3", tok.End())
	}
}

func TestKeywordTable(t *testing.T) {
	if Keywords["print"] != Print {
		t.Fatalf("expected 'print' to map to Print")
	}
	if _, ok := Keywords["foobar"]; ok {
		t.Fatalf("'foobar' must not be a reserved word")
	}
}
