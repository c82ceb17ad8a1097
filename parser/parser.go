package parser

import (
	"strings"

	"github.com/loxrt/lox/ast"
	"github.com/loxrt/lox/bumparena"
	"github.com/loxrt/lox/diag"
	"github.com/loxrt/lox/scanner"
	"github.com/loxrt/lox/token"
)

// maxArgs is the soft limit on call arguments and function parameters: a
// reported error, not a hard parse failure.
const maxArgs = 255

// parseError unwinds a single declaration's recursive-descent call stack
// back to Parse's statement loop, where synchronize resets to the next
// likely statement boundary.
type parseError struct{}

// Parser turns a token stream into a list of top-level statements
// allocated in arena. It never touches the scanner's Numbers map directly
// except to decode Number literals by the token's own offset.
type Parser struct {
	toks   []token.Token
	source string
	nums   scanner.Numbers
	arena  *bumparena.Arena
	rep    *diag.Reporter
	pos    int
}

// Parse runs a Parser over res/nums, allocating every node it builds in
// arena and reporting malformed input through rep. Declarations that fail
// to parse are omitted from the result; parsing continues past them.
func Parse(res scanner.Result, nums scanner.Numbers, arena *bumparena.Arena, rep *diag.Reporter) []ast.Stmt {
	p := &Parser{toks: res.Tokens, source: res.Source, nums: nums, arena: arena, rep: rep}
	var stmts []ast.Stmt
	for !p.atEnd() {
		if d := p.declaration(); d != nil {
			stmts = append(stmts, d)
		}
	}
	return stmts
}

// --- declarations --------------------------------------------------------

func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()
	if p.match(token.Fun) {
		return p.function("function")
	}
	if p.match(token.Var) {
		return p.varDeclaration()
	}
	return p.statement()
}

func (p *Parser) function(kind string) ast.Stmt {
	name := p.consume(token.Identifier, "expect "+kind+" name")
	p.consume(token.LeftParen, "expect '(' after "+kind+" name")
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.reportHere("can't have more than 255 parameters")
			}
			params = append(params, p.consume(token.Identifier, "expect parameter name"))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "expect ')' after parameters")
	p.consume(token.LeftBrace, "expect '{' before "+kind+" body")
	body := p.blockStatements()
	return ast.NewFun(p.arena, name, params, body)
}

func (p *Parser) varDeclaration() ast.Stmt {
	name := p.consume(token.Identifier, "expect variable name")
	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.consume(token.Semicolon, "expect ';' after variable declaration")
	return ast.NewVarStmt(p.arena, name, init)
}

// --- statements ------------------------------------------------------------

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.Print):
		return p.printStatement()
	case p.match(token.Return):
		return p.returnStatement()
	case p.match(token.While):
		return p.whileStatement()
	case p.match(token.LeftBrace):
		return ast.NewBlock(p.arena, p.blockStatements())
	default:
		return p.exprStatement()
	}
}

// forStatement desugars `for (init; cond; incr) body` into a While loop
// wrapped in one or two enclosing Blocks: the increment is appended to the
// body as a second block statement, and the initializer (if any) precedes
// the While. A missing condition defaults to a `true` literal.
func (p *Parser) forStatement() ast.Stmt {
	forTok := p.previous()
	p.consume(token.LeftParen, "expect '(' after 'for'")

	var initializer ast.Stmt
	switch {
	case p.match(token.Semicolon):
		// no initializer
	case p.match(token.Var):
		initializer = p.varDeclaration()
	default:
		initializer = p.exprStatement()
	}

	var condition ast.Expr
	if !p.check(token.Semicolon) {
		condition = p.expression()
	}
	p.consume(token.Semicolon, "expect ';' after loop condition")

	var increment ast.Expr
	if !p.check(token.RightParen) {
		increment = p.expression()
	}
	p.consume(token.RightParen, "expect ')' after for clauses")

	body := p.statement()
	if increment != nil {
		body = ast.NewBlock(p.arena, []ast.Stmt{body, ast.NewExprStmt(p.arena, increment)})
	}
	if condition == nil {
		condition = ast.NewLiteral(p.arena, true, forTok)
	}
	body = ast.NewWhile(p.arena, forTok, condition, body)
	if initializer != nil {
		body = ast.NewBlock(p.arena, []ast.Stmt{initializer, body})
	}
	return body
}

func (p *Parser) ifStatement() ast.Stmt {
	ifTok := p.previous()
	p.consume(token.LeftParen, "expect '(' after 'if'")
	cond := p.expression()
	p.consume(token.RightParen, "expect ')' after if condition")
	then := p.statement()
	var els ast.Stmt
	if p.match(token.Else) {
		els = p.statement()
	}
	return ast.NewIf(p.arena, ifTok, cond, then, els)
}

func (p *Parser) printStatement() ast.Stmt {
	tok := p.previous()
	value := p.expression()
	p.consume(token.Semicolon, "expect ';' after value")
	return ast.NewPrint(p.arena, tok, value)
}

func (p *Parser) returnStatement() ast.Stmt {
	tok := p.previous()
	var value ast.Expr
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.consume(token.Semicolon, "expect ';' after return value")
	return ast.NewReturn(p.arena, tok, value)
}

func (p *Parser) whileStatement() ast.Stmt {
	tok := p.previous()
	p.consume(token.LeftParen, "expect '(' after 'while'")
	cond := p.expression()
	p.consume(token.RightParen, "expect ')' after condition")
	body := p.statement()
	return ast.NewWhile(p.arena, tok, cond, body)
}

func (p *Parser) blockStatements() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		if d := p.declaration(); d != nil {
			stmts = append(stmts, d)
		}
	}
	p.consume(token.RightBrace, "expect '}' after block")
	return stmts
}

func (p *Parser) exprStatement() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "expect ';' after expression")
	return ast.NewExprStmt(p.arena, expr)
}

// --- expressions, by ascending priority -----------------------------------

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment is priority 0, right-associative; its target must already
// have parsed as a bare variable reference.
func (p *Parser) assignment() ast.Expr {
	expr := p.or()
	if p.match(token.Equal) {
		eq := p.previous()
		value := p.assignment()
		if v, ok := expr.(*ast.Var); ok {
			return ast.NewAssign(p.arena, v.Name, value)
		}
		p.report(eq, "invalid assignment target")
		return expr
	}
	return expr
}

// or is priority 5.
func (p *Parser) or() ast.Expr {
	left := p.and()
	for p.match(token.Or) {
		op := p.previous()
		right := p.and()
		left = ast.NewLogical(p.arena, left, op, right)
	}
	return left
}

// and is priority 6.
func (p *Parser) and() ast.Expr {
	left := p.equality()
	for p.match(token.And) {
		op := p.previous()
		right := p.equality()
		left = ast.NewLogical(p.arena, left, op, right)
	}
	return left
}

// equality is priority 10.
func (p *Parser) equality() ast.Expr {
	left := p.comparison()
	for p.match(token.BangEqual, token.EqualEqual) {
		op := p.previous()
		right := p.comparison()
		left = ast.NewBinary(p.arena, left, op, right)
	}
	return left
}

// comparison is priority 20.
func (p *Parser) comparison() ast.Expr {
	left := p.term()
	for p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.previous()
		right := p.term()
		left = ast.NewBinary(p.arena, left, op, right)
	}
	return left
}

// term is priority 30 (+, -).
func (p *Parser) term() ast.Expr {
	left := p.factor()
	for p.match(token.Plus, token.Minus) {
		op := p.previous()
		right := p.factor()
		left = ast.NewBinary(p.arena, left, op, right)
	}
	return left
}

// factor is priority 40 (*, /).
func (p *Parser) factor() ast.Expr {
	left := p.unary()
	for p.match(token.Star, token.Slash) {
		op := p.previous()
		right := p.unary()
		left = ast.NewBinary(p.arena, left, op, right)
	}
	return left
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right := p.unary()
		return ast.NewUnary(p.arena, op, right)
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for p.match(token.LeftParen) {
		expr = p.finishCall(expr)
	}
	return expr
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.reportHere("can't have more than 255 arguments")
			}
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.consume(token.RightParen, "expect ')' after arguments")
	return ast.NewCall(p.arena, callee, paren, args)
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return ast.NewLiteral(p.arena, false, p.previous())
	case p.match(token.True):
		return ast.NewLiteral(p.arena, true, p.previous())
	case p.match(token.Nil):
		return ast.NewLiteral(p.arena, nil, p.previous())
	case p.match(token.Number):
		tok := p.previous()
		return ast.NewLiteral(p.arena, p.nums[tok.Offset], tok)
	case p.match(token.String):
		tok := p.previous()
		return ast.NewLiteral(p.arena, stringLiteralValue(tok, p.source), tok)
	case p.match(token.Identifier):
		return ast.NewVar(p.arena, p.previous())
	case p.match(token.LeftParen):
		paren := p.previous()
		inner := p.expression()
		p.consume(token.RightParen, "expect ')' after expression")
		return ast.NewGrouping(p.arena, paren, inner)
	default:
		p.reportHere("expect expression")
		panic(parseError{})
	}
}

// stringLiteralValue strips the surrounding double quotes from a String
// token's lexeme.
func stringLiteralValue(tok token.Token, source string) string {
	lex := tok.Lexeme(source)
	return strings.TrimSuffix(strings.TrimPrefix(lex, `"`), `"`)
}

// --- token-stream helpers --------------------------------------------------

func (p *Parser) atEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) previous() token.Token {
	return p.toks[p.pos-1]
}

func (p *Parser) check(t token.Type) bool {
	return p.peek().Type == t
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t token.Type, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.reportHere(message)
	panic(parseError{})
}

func (p *Parser) report(tok token.Token, message string) {
	p.rep.Report(tok, message)
}

func (p *Parser) reportHere(message string) {
	p.rep.Report(p.peek(), message)
}

// synchronize discards tokens until it reaches a likely statement
// boundary: just past a semicolon, or just before a keyword that starts a
// new declaration or statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
