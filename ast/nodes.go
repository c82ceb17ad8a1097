package ast

import (
	"github.com/loxrt/lox/bumparena"
	"github.com/loxrt/lox/token"
)

// Expr is implemented by every expression node kind.
type Expr interface {
	exprNode()
	// MainToken returns the token diagnostics should anchor to when
	// reporting a problem evaluating this expression.
	MainToken() token.Token
}

// Stmt is implemented by every statement node kind.
type Stmt interface {
	stmtNode()
}

// alloc places v inside a, panicking if the arena rejects the request
// (which only happens for a request larger than a single block — never
// the case for any node kind declared here).
func alloc[T any](a *bumparena.Arena, v T) *T {
	p, err := bumparena.Allocate(a, func() (T, error) { return v, nil })
	if err != nil {
		panic(err)
	}
	return p
}

// --- Expressions -----------------------------------------------------

// Binary is a binary operator expression: Left Op Right.
type Binary struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (*Binary) exprNode()               {}
func (b *Binary) MainToken() token.Token { return b.Op }

// NewBinary allocates a Binary node in a.
func NewBinary(a *bumparena.Arena, left Expr, op token.Token, right Expr) *Binary {
	return alloc(a, Binary{Left: left, Op: op, Right: right})
}

// Logical is `and`/`or`, kept distinct from Binary because both
// short-circuit and return the winning operand's value rather than a bool.
type Logical struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (*Logical) exprNode()                {}
func (l *Logical) MainToken() token.Token { return l.Op }

// NewLogical allocates a Logical node in a.
func NewLogical(a *bumparena.Arena, left Expr, op token.Token, right Expr) *Logical {
	return alloc(a, Logical{Left: left, Op: op, Right: right})
}

// Unary is a prefix operator expression: Op Right.
type Unary struct {
	Op    token.Token
	Right Expr
}

func (*Unary) exprNode()               {}
func (u *Unary) MainToken() token.Token { return u.Op }

// NewUnary allocates a Unary node in a.
func NewUnary(a *bumparena.Arena, op token.Token, right Expr) *Unary {
	return alloc(a, Unary{Op: op, Right: right})
}

// Grouping is a parenthesized expression, kept as its own node so that
// diagnostics and pretty-printing can distinguish "(a)" from "a".
type Grouping struct {
	Paren token.Token // the opening '('
	Inner Expr
}

func (*Grouping) exprNode()                {}
func (g *Grouping) MainToken() token.Token { return g.Paren }

// NewGrouping allocates a Grouping node in a.
func NewGrouping(a *bumparena.Arena, paren token.Token, inner Expr) *Grouping {
	return alloc(a, Grouping{Paren: paren, Inner: inner})
}

// Literal is a constant value baked into the source: nil, a bool, a
// float64 number, or a string. The value is kept in its plain Go form
// here; package interp lifts it into an object.Value at evaluation time,
// keeping ast free of any dependency on the runtime value representation.
type Literal struct {
	Value any
	Tok   token.Token
}

func (*Literal) exprNode()               {}
func (l *Literal) MainToken() token.Token { return l.Tok }

// NewLiteral allocates a Literal node in a.
func NewLiteral(a *bumparena.Arena, value any, tok token.Token) *Literal {
	return alloc(a, Literal{Value: value, Tok: tok})
}

// Var is a reference to a variable by name.
type Var struct {
	Name token.Token
}

func (*Var) exprNode()               {}
func (v *Var) MainToken() token.Token { return v.Name }

// NewVar allocates a Var node in a.
func NewVar(a *bumparena.Arena, name token.Token) *Var {
	return alloc(a, Var{Name: name})
}

// Assign is `name = value`, itself an expression yielding value.
type Assign struct {
	Name  token.Token
	Value Expr
}

func (*Assign) exprNode()               {}
func (as *Assign) MainToken() token.Token { return as.Name }

// NewAssign allocates an Assign node in a.
func NewAssign(a *bumparena.Arena, name token.Token, value Expr) *Assign {
	return alloc(a, Assign{Name: name, Value: value})
}

// Call is a function or method invocation: Callee(Args...). Paren is the
// closing parenthesis, used to anchor arity-mismatch diagnostics.
type Call struct {
	Callee Expr
	Paren  token.Token
	Args   []Expr
}

func (*Call) exprNode()               {}
func (c *Call) MainToken() token.Token { return c.Paren }

// NewCall allocates a Call node in a.
func NewCall(a *bumparena.Arena, callee Expr, paren token.Token, args []Expr) *Call {
	return alloc(a, Call{Callee: callee, Paren: paren, Args: args})
}

// --- Statements --------------------------------------------------------

// ExprStmt evaluates Expr for its side effect and discards the result.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

// NewExprStmt allocates an ExprStmt node in a.
func NewExprStmt(a *bumparena.Arena, expr Expr) *ExprStmt {
	return alloc(a, ExprStmt{Expr: expr})
}

// Print evaluates Expr and writes its rendered form to the interpreter's
// output stream.
type Print struct {
	Tok  token.Token
	Expr Expr
}

func (*Print) stmtNode() {}

// NewPrint allocates a Print node in a.
func NewPrint(a *bumparena.Arena, tok token.Token, expr Expr) *Print {
	return alloc(a, Print{Tok: tok, Expr: expr})
}

// VarStmt declares a new variable in the current scope. Init is nil for
// `var x;` with no initializer, in which case the variable starts out nil.
type VarStmt struct {
	Name token.Token
	Init Expr
}

func (*VarStmt) stmtNode() {}

// NewVarStmt allocates a VarStmt node in a.
func NewVarStmt(a *bumparena.Arena, name token.Token, init Expr) *VarStmt {
	return alloc(a, VarStmt{Name: name, Init: init})
}

// Block is a lexical scope containing a sequence of statements.
type Block struct {
	Stmts []Stmt
}

func (*Block) stmtNode() {}

// NewBlock allocates a Block node in a.
func NewBlock(a *bumparena.Arena, stmts []Stmt) *Block {
	return alloc(a, Block{Stmts: stmts})
}

// If is a conditional. Else is nil when there is no else-branch.
type If struct {
	Tok    token.Token
	Cond   Expr
	Then   Stmt
	Else   Stmt
}

func (*If) stmtNode() {}

// NewIf allocates an If node in a.
func NewIf(a *bumparena.Arena, tok token.Token, cond Expr, then, els Stmt) *If {
	return alloc(a, If{Tok: tok, Cond: cond, Then: then, Else: els})
}

// While is a condition-checked loop. `for` loops desugar into While plus
// Block during parsing; there is no separate For node.
type While struct {
	Tok  token.Token
	Cond Expr
	Body Stmt
}

func (*While) stmtNode() {}

// NewWhile allocates a While node in a.
func NewWhile(a *bumparena.Arena, tok token.Token, cond Expr, body Stmt) *While {
	return alloc(a, While{Tok: tok, Cond: cond, Body: body})
}

// Fun declares a named function.
type Fun struct {
	Name   token.Token
	Params []token.Token
	Body   []Stmt
}

func (*Fun) stmtNode() {}

// NewFun allocates a Fun node in a.
func NewFun(a *bumparena.Arena, name token.Token, params []token.Token, body []Stmt) *Fun {
	return alloc(a, Fun{Name: name, Params: params, Body: body})
}

// Return exits the enclosing function call, optionally with a value.
// Value is nil for a bare `return;`, in which case the call yields nil.
type Return struct {
	Tok   token.Token
	Value Expr
}

func (*Return) stmtNode() {}

// NewReturn allocates a Return node in a.
func NewReturn(a *bumparena.Arena, tok token.Token, value Expr) *Return {
	return alloc(a, Return{Tok: tok, Value: value})
}
