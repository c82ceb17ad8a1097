package scanner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/loxrt/lox/diag"
	"github.com/loxrt/lox/token"
)

var lexmachineLexer *lexmachine.Lexer

// makeToken is a lexmachine.Action that wraps a scanned match as a
// *lexmachine.Token of the given type, following the same
// Scanner.Token(id, value, match) idiom the rest of this module's
// dependency pack uses for its own lexmachine adapter.
func makeToken(id token.Type) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(id), string(m.Bytes), m), nil
	}
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// buildLexmachineLexer compiles the DFA once; Lexer.Compile is expensive
// relative to a single scan, so the compiled lexer is cached at package
// scope and reused across calls to ScanWithLexmachine.
func buildLexmachineLexer() (*lexmachine.Lexer, error) {
	lex := lexmachine.NewLexer()

	for name, typ := range token.Keywords {
		lex.Add([]byte(strings.ToLower(name)), makeToken(typ))
	}
	lex.Add([]byte(`\(`), makeToken(token.LeftParen))
	lex.Add([]byte(`\)`), makeToken(token.RightParen))
	lex.Add([]byte(`\{`), makeToken(token.LeftBrace))
	lex.Add([]byte(`\}`), makeToken(token.RightBrace))
	lex.Add([]byte(`,`), makeToken(token.Comma))
	lex.Add([]byte(`\.`), makeToken(token.Dot))
	lex.Add([]byte(`-`), makeToken(token.Minus))
	lex.Add([]byte(`\+`), makeToken(token.Plus))
	lex.Add([]byte(`;`), makeToken(token.Semicolon))
	lex.Add([]byte(`\*`), makeToken(token.Star))
	lex.Add([]byte(`==`), makeToken(token.EqualEqual))
	lex.Add([]byte(`=`), makeToken(token.Equal))
	lex.Add([]byte(`!=`), makeToken(token.BangEqual))
	lex.Add([]byte(`!`), makeToken(token.Bang))
	lex.Add([]byte(`<=`), makeToken(token.LessEqual))
	lex.Add([]byte(`<`), makeToken(token.Less))
	lex.Add([]byte(`>=`), makeToken(token.GreaterEqual))
	lex.Add([]byte(`>`), makeToken(token.Greater))
	lex.Add([]byte(`/`), makeToken(token.Slash))
	lex.Add([]byte(`[A-Za-z_]+`), makeToken(token.Identifier))
	lex.Add([]byte(`0|[1-9][0-9]*(\.[0-9]+)?|0\.[0-9]+`), makeToken(token.Number))
	lex.Add([]byte(`"[^"]*"`), makeToken(token.String))
	lex.Add([]byte(`//[^\n]*`), skip)
	lex.Add([]byte(`( |\t|\n|\r)+`), skip)

	if err := lex.Compile(); err != nil {
		return nil, err
	}
	return lex, nil
}

// ScanWithLexmachine tokenizes source using a lexmachine-compiled DFA
// rather than the hand-written character-class scanner in Scan. It
// produces the same token.Token stream for well-formed input; malformed
// numbers and unterminated strings are simply reported as "unexpected
// character" at the offending byte, since a DFA has no notion of "almost
// matched" the way the hand-written scanner's explicit lookahead does.
func ScanWithLexmachine(source string, rep *diag.Reporter) (Result, Numbers, error) {
	if lexmachineLexer == nil {
		lex, err := buildLexmachineLexer()
		if err != nil {
			return Result{}, nil, fmt.Errorf("scanner: compiling lexmachine DFA: %w", err)
		}
		lexmachineLexer = lex
	}

	scan, err := lexmachineLexer.Scanner([]byte(source))
	if err != nil {
		return Result{}, nil, fmt.Errorf("scanner: creating lexmachine scanner: %w", err)
	}

	var tokens []token.Token
	nums := Numbers{}
	for tk, scanErr, eof := scan.Next(); !eof; tk, scanErr, eof = scan.Next() {
		if scanErr != nil {
			tracer().Errorf("lexmachine scan error: %v", scanErr)
			if ui, ok := scanErr.(*machines.UnconsumedInput); ok {
				rep.Report(token.Token{Offset: ui.FailTC, Length: 1}, "unexpected character")
				scan.TC = ui.FailTC
				continue
			}
			return Result{}, nil, fmt.Errorf("scanner: lexmachine scan error: %w", scanErr)
		}
		if tk == nil {
			continue // whitespace/comment action returned nil
		}
		lt := tk.(*lexmachine.Token)
		tok := token.Token{
			Type:   token.Type(lt.Type),
			Offset: lt.TC,
			Length: len(lt.Lexeme),
		}
		if tok.Type == token.Number {
			v, perr := strconv.ParseFloat(string(lt.Lexeme), 64)
			if perr == nil {
				nums[tok.Offset] = v
			}
		}
		tokens = append(tokens, tok)
	}
	tokens = append(tokens, token.Token{Type: token.EOF, Offset: len(source), Length: 0})

	return Result{Tokens: tokens, Source: source, SourceMap: token.NewSourceMap(source)}, nums, nil
}
