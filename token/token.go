// Package token defines the lexical token record and the source position
// map shared by the scanner, parser, and diagnostic reporter.
package token

import (
	"fmt"
	"sort"
)

// --- Tokens ------------------------------------------------------------

// Type is a category type for a Token. Scanners and parsers agree on a
// shared set of values via the constants below.
type Type int

const (
	// single-character tokens
	LeftParen Type = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// one or two character tokens
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// literals
	Identifier
	String
	Number

	// keywords
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	EOF
)

var typeNames = [...]string{
	LeftParen: "(", RightParen: ")", LeftBrace: "{", RightBrace: "}",
	Comma: ",", Dot: ".", Minus: "-", Plus: "+", Semicolon: ";", Slash: "/", Star: "*",
	Bang: "!", BangEqual: "!=", Equal: "=", EqualEqual: "==",
	Greater: ">", GreaterEqual: ">=", Less: "<", LessEqual: "<=",
	Identifier: "identifier", String: "string", Number: "number",
	And: "and", Class: "class", Else: "else", False: "false", Fun: "fun", For: "for",
	If: "if", Nil: "nil", Or: "or", Print: "print", Return: "return", Super: "super",
	This: "this", True: "true", Var: "var", While: "while", EOF: "EOF",
}

// String renders a Type for diagnostics.
func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(typeNames) || typeNames[t] == "" {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Keywords maps reserved identifiers to their token type.
var Keywords = map[string]Type{
	"and": And, "class": Class, "else": Else, "false": False, "for": For,
	"fun": Fun, "if": If, "nil": Nil, "or": Or, "print": Print, "return": Return,
	"super": Super, "this": This, "true": True, "var": Var, "while": While,
}

// Token is an immutable record of a single lexeme: its category and its
// byte-offset span into the source it was scanned from. The lexeme itself
// is never copied out of the source; callers slice it on demand via Lexeme.
type Token struct {
	Type   Type
	Offset int // byte offset of the first rune of the lexeme
	Length int // byte length of the lexeme
}

// Lexeme extracts the token's source text out of the original source string.
func (t Token) Lexeme(source string) string {
	return source[t.Offset : t.Offset+t.Length]
}

// End returns the offset one past the last byte of the token.
func (t Token) End() int {
	return t.Offset + t.Length
}

func (t Token) String() string {
	return fmt.Sprintf("%s@%d+%d", t.Type, t.Offset, t.Length)
}

// --- Source maps ---------------------------------------------------------

// SourceMap is an ascending list of byte offsets at which each 1-indexed
// line of a source text begins. It is built once by the scanner and used
// by the diagnostic reporter to translate a byte offset into a (line,
// column) pair, and to fetch the raw text of a given line.
type SourceMap struct {
	source      string
	lineOffsets []int // lineOffsets[i] is the byte offset at which line i+1 begins
}

// NewSourceMap scans source once to build the line-offset table.
func NewSourceMap(source string) *SourceMap {
	sm := &SourceMap{source: source, lineOffsets: []int{0}}
	for i, r := range source {
		if r == '\n' {
			sm.lineOffsets = append(sm.lineOffsets, i+1)
		}
	}
	return sm
}

// Locate maps a byte offset to its 1-indexed (line, column). Column is
// 1-indexed and counted in bytes from the start of the line.
func (sm *SourceMap) Locate(offset int) (line, col int) {
	// last lineOffset <= offset
	i := sort.Search(len(sm.lineOffsets), func(i int) bool {
		return sm.lineOffsets[i] > offset
	})
	line = i // sort.Search returns the first index whose offset exceeds ours;
	// that index (1-indexed by construction) is the line number.
	if line == 0 {
		line = 1
	}
	col = offset - sm.lineOffsets[line-1] + 1
	return line, col
}

// LineStart returns the byte offset at which the given 1-indexed line
// begins, or -1 if line is out of range.
func (sm *SourceMap) LineStart(line int) int {
	if line < 1 || line > len(sm.lineOffsets) {
		return -1
	}
	return sm.lineOffsets[line-1]
}

// LineText returns the raw text of the given 1-indexed line, without its
// trailing newline.
func (sm *SourceMap) LineText(line int) string {
	start := sm.LineStart(line)
	if start < 0 {
		return ""
	}
	end := len(sm.source)
	if line < len(sm.lineOffsets) {
		end = sm.lineOffsets[line] - 1 // exclude the newline
	}
	if end < start {
		end = start
	}
	if end > len(sm.source) {
		end = len(sm.source)
	}
	return sm.source[start:end]
}
