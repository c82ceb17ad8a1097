package interp

import (
	"fmt"
	"io"

	"github.com/loxrt/lox/ast"
	"github.com/loxrt/lox/diag"
	"github.com/loxrt/lox/gcheap"
	"github.com/loxrt/lox/object"
	"github.com/loxrt/lox/token"
)

// RuntimeError is a reported, source-anchored failure during evaluation:
// a type mismatch, an undefined name, an arity mismatch, or a call to a
// non-callable value.
type RuntimeError struct {
	Tok     token.Token
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// Evaluator walks a parsed program against a gcheap.Heap-backed
// environment chain. It is not safe for concurrent use — nothing in this
// engine is.
type Evaluator struct {
	heap    *gcheap.Heap
	globals gcheap.Ref[object.Environment]
	active  gcheap.Ref[object.Environment]
	stack   []object.Value
	source  string
	out     io.Writer
	rep     *diag.Reporter

	// funSource records, per function declaration, the source text its
	// tokens are offsets into, so a function declared in one fragment can
	// still be called after Reset has moved on to another.
	funSource map[*ast.Fun]string
}

// New builds an Evaluator over heap, registering the native clock()
// built-in in a fresh globals frame. source is the program text the AST
// was parsed from — every token.Token the AST carries is an offset into
// it, and Lexeme needs it to recover identifier text.
func New(heap *gcheap.Heap, source string, out io.Writer, rep *diag.Reporter) (*Evaluator, error) {
	globals, err := object.NewGlobals(heap)
	if err != nil {
		return nil, err
	}
	e := &Evaluator{heap: heap, globals: globals, active: globals, source: source, out: out, rep: rep}
	registerNatives(e)
	return e, nil
}

// Reset points the Evaluator at a new fragment of source text (and its
// matching Reporter) while leaving heap, globals, and the active
// environment untouched. A REPL reads many independent fragments into
// one long-lived session; each fragment's tokens are offsets into its
// own source string, so Lexeme decoding must track whichever fragment
// is currently executing.
func (e *Evaluator) Reset(source string, rep *diag.Reporter) {
	e.source = source
	e.rep = rep
}

// Globals returns the distinguished root environment, for REPL
// introspection commands.
func (e *Evaluator) Globals() gcheap.Ref[object.Environment] { return e.globals }

// Active returns the currently installed environment frame.
func (e *Evaluator) Active() gcheap.Ref[object.Environment] { return e.active }

func (e *Evaluator) env() *object.EnvHandle { return object.Handle(e.heap, e.active) }

// Run executes program statement by statement. A runtime error in one
// top-level statement is already reported through the Reporter by the
// time Exec returns; execution simply continues with the next statement,
// matching this engine's file-run behavior.
func (e *Evaluator) Run(program []ast.Stmt) {
	for _, stmt := range program {
		_, _ = e.Exec(stmt)
	}
}

// --- operand stack ---------------------------------------------------------

func (e *Evaluator) push(v object.Value) {
	e.stack = append(e.stack, v)
}

func (e *Evaluator) pop() object.Value {
	n := len(e.stack) - 1
	v := e.stack[n]
	e.stack = e.stack[:n]
	return v
}

// --- scoped environment guard ------------------------------------------

// envGuard installs a fresh child frame as active and, on pop, restores
// the prior frame and releases the child's root reference — the heap
// decides reachability from there, it does not free on scope exit.
type envGuard struct {
	e       *Evaluator
	saved   gcheap.Ref[object.Environment]
	current gcheap.Ref[object.Environment]
}

func (e *Evaluator) pushScope(parent gcheap.Ref[object.Environment]) (*envGuard, error) {
	child, err := object.NewChild(e.heap, parent)
	if err != nil {
		return nil, err
	}
	g := &envGuard{e: e, saved: e.active, current: child}
	e.active = child
	return g, nil
}

func (g *envGuard) pop() {
	g.e.active = g.saved
	gcheap.Release(&g.current)
}

// --- expressions -------------------------------------------------------

// Eval evaluates expr and returns its value. On error the operand stack
// is restored to the size it had on entry.
func (e *Evaluator) Eval(expr ast.Expr) (object.Value, error) {
	before := len(e.stack)
	if err := e.eval(expr); err != nil {
		e.stack = e.stack[:before]
		return object.Nil, err
	}
	return e.pop(), nil
}

// eval is the recursive visitor: every case pushes exactly one value
// onto e.stack before returning nil, or returns an error having pushed
// nothing extra beyond what its own sub-evaluations already consumed.
func (e *Evaluator) eval(expr ast.Expr) error {
	switch n := expr.(type) {
	case *ast.Literal:
		e.push(literalValue(n.Value))
		return nil
	case *ast.Grouping:
		return e.eval(n.Inner)
	case *ast.Unary:
		return e.evalUnary(n)
	case *ast.Binary:
		return e.evalBinary(n)
	case *ast.Logical:
		return e.evalLogical(n)
	case *ast.Var:
		return e.evalVar(n)
	case *ast.Assign:
		return e.evalAssign(n)
	case *ast.Call:
		return e.evalCall(n)
	default:
		return e.runtimeErr(expr.MainToken(), "unhandled expression kind %T", expr)
	}
}

func literalValue(v any) object.Value {
	switch t := v.(type) {
	case nil:
		return object.Nil
	case bool:
		return object.Bool(t)
	case float64:
		return object.Number(t)
	case string:
		return object.String(t)
	default:
		return object.Nil
	}
}

func (e *Evaluator) evalUnary(n *ast.Unary) error {
	if err := e.eval(n.Right); err != nil {
		return err
	}
	v := e.pop()
	switch n.Op.Type {
	case token.Minus:
		if v.Kind() != object.KindNumber {
			return e.runtimeErr(n.Op, "operand must be a number")
		}
		e.push(object.Number(-v.AsNumber()))
	case token.Bang:
		e.push(object.Bool(!v.Truthy()))
	default:
		return e.runtimeErr(n.Op, "unhandled unary operator %s", n.Op.Type)
	}
	return nil
}

func (e *Evaluator) evalBinary(n *ast.Binary) error {
	if err := e.eval(n.Left); err != nil {
		return err
	}
	if err := e.eval(n.Right); err != nil {
		return err
	}
	right := e.pop()
	left := e.pop()
	result, err := e.applyBinary(n.Op, left, right)
	if err != nil {
		return err
	}
	e.push(result)
	return nil
}

func (e *Evaluator) applyBinary(op token.Token, left, right object.Value) (object.Value, error) {
	switch op.Type {
	case token.Plus:
		if left.Kind() == object.KindNumber && right.Kind() == object.KindNumber {
			return object.Number(left.AsNumber() + right.AsNumber()), nil
		}
		if left.Kind() == object.KindString && right.Kind() == object.KindString {
			return object.String(left.AsString() + right.AsString()), nil
		}
		return object.Nil, e.runtimeErr(op, "operands must be two numbers or two strings")
	case token.Minus:
		l, r, err := e.requireNumbers(op, left, right)
		if err != nil {
			return object.Nil, err
		}
		return object.Number(l - r), nil
	case token.Star:
		l, r, err := e.requireNumbers(op, left, right)
		if err != nil {
			return object.Nil, err
		}
		return object.Number(l * r), nil
	case token.Slash:
		l, r, err := e.requireNumbers(op, left, right)
		if err != nil {
			return object.Nil, err
		}
		return object.Number(l / r), nil
	case token.Greater:
		l, r, err := e.requireNumbers(op, left, right)
		if err != nil {
			return object.Nil, err
		}
		return object.Bool(l > r), nil
	case token.GreaterEqual:
		l, r, err := e.requireNumbers(op, left, right)
		if err != nil {
			return object.Nil, err
		}
		return object.Bool(l >= r), nil
	case token.Less:
		l, r, err := e.requireNumbers(op, left, right)
		if err != nil {
			return object.Nil, err
		}
		return object.Bool(l < r), nil
	case token.LessEqual:
		l, r, err := e.requireNumbers(op, left, right)
		if err != nil {
			return object.Nil, err
		}
		return object.Bool(l <= r), nil
	case token.EqualEqual:
		return object.Bool(left.Equal(right)), nil
	case token.BangEqual:
		return object.Bool(!left.Equal(right)), nil
	default:
		return object.Nil, e.runtimeErr(op, "unhandled binary operator %s", op.Type)
	}
}

func (e *Evaluator) requireNumbers(op token.Token, left, right object.Value) (float64, float64, error) {
	if left.Kind() != object.KindNumber || right.Kind() != object.KindNumber {
		return 0, 0, e.runtimeErr(op, "operands must be numbers")
	}
	return left.AsNumber(), right.AsNumber(), nil
}

// evalLogical implements and/or short-circuiting: the right operand is
// not evaluated when the left already determines the result, and the
// result is the deciding operand's own value, not a bare boolean.
func (e *Evaluator) evalLogical(n *ast.Logical) error {
	if err := e.eval(n.Left); err != nil {
		return err
	}
	left := e.pop()
	if n.Op.Type == token.Or {
		if left.Truthy() {
			e.push(left)
			return nil
		}
	} else { // token.And
		if !left.Truthy() {
			e.push(left)
			return nil
		}
	}
	return e.eval(n.Right)
}

func (e *Evaluator) evalVar(n *ast.Var) error {
	name := n.Name.Lexeme(e.source)
	v, ok := e.env().Get(name)
	if !ok {
		return e.runtimeErr(n.Name, "undefined variable '%s'", name)
	}
	e.push(v)
	return nil
}

func (e *Evaluator) evalAssign(n *ast.Assign) error {
	if err := e.eval(n.Value); err != nil {
		return err
	}
	v := e.pop()
	name := n.Name.Lexeme(e.source)
	if err := e.env().Assign(name, v); err != nil {
		return e.runtimeErr(n.Name, "%s", err.Error())
	}
	e.push(v)
	return nil
}

func (e *Evaluator) evalCall(n *ast.Call) error {
	if err := e.eval(n.Callee); err != nil {
		return err
	}
	callee := e.pop()

	if callee.Kind() != object.KindCallable {
		return e.runtimeErr(n.Paren, "can only call functions and classes")
	}
	callable := callee.AsCallable()
	if callable.Arity != len(n.Args) {
		return e.runtimeErr(n.Paren, "expected %d arguments but got %d", callable.Arity, len(n.Args))
	}

	args := make([]object.Value, len(n.Args))
	for i, a := range n.Args {
		if err := e.eval(a); err != nil {
			return err
		}
		args[i] = e.pop()
	}

	result, err := e.invoke(callable, args, n.Paren)
	if err != nil {
		return err
	}
	e.push(result)
	return nil
}

func (e *Evaluator) invoke(c object.Callable, args []object.Value, paren token.Token) (object.Value, error) {
	if c.IsNative() {
		return c.Body.Native(args)
	}

	if src, ok := e.funSource[c.Body.Decl]; ok && src != e.source {
		saved := e.source
		e.source = src
		defer func() { e.source = saved }()
	}

	guard, err := e.pushScope(c.Env)
	if err != nil {
		return object.Nil, e.runtimeErr(paren, "%s", err.Error())
	}
	defer guard.pop()

	for i, p := range c.Body.Params {
		e.env().Define(p.Lexeme(e.source), args[i])
	}

	for _, stmt := range c.Body.Decl.Body {
		returning, err := e.Exec(stmt)
		if err != nil {
			return object.Nil, err
		}
		if returning {
			return e.pop(), nil
		}
	}
	return object.Nil, nil
}

// --- statements ----------------------------------------------------------

// Exec executes stmt and reports whether it signaled a return. On error
// the operand stack is restored to the size it had on entry.
func (e *Evaluator) Exec(stmt ast.Stmt) (bool, error) {
	before := len(e.stack)
	returning, err := e.exec(stmt)
	if err != nil {
		e.stack = e.stack[:before]
		return false, err
	}
	return returning, nil
}

func (e *Evaluator) exec(stmt ast.Stmt) (bool, error) {
	switch n := stmt.(type) {
	case *ast.ExprStmt:
		_, err := e.Eval(n.Expr)
		return false, err
	case *ast.Print:
		v, err := e.Eval(n.Expr)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(e.out, " :: %s\n", v.Render())
		return false, nil
	case *ast.VarStmt:
		v := object.Nil
		if n.Init != nil {
			var err error
			v, err = e.Eval(n.Init)
			if err != nil {
				return false, err
			}
		}
		e.env().Define(n.Name.Lexeme(e.source), v)
		return false, nil
	case *ast.Block:
		return e.execBlock(n.Stmts, e.active)
	case *ast.If:
		return e.execIf(n)
	case *ast.While:
		return e.execWhile(n)
	case *ast.Fun:
		return e.execFun(n)
	case *ast.Return:
		if n.Value != nil {
			if err := e.eval(n.Value); err != nil {
				return false, err
			}
		} else {
			e.push(object.Nil)
		}
		return true, nil
	default:
		return false, e.runtimeErr(token.Token{}, "unhandled statement kind %T", stmt)
	}
}

func (e *Evaluator) execBlock(stmts []ast.Stmt, parent gcheap.Ref[object.Environment]) (bool, error) {
	guard, err := e.pushScope(parent)
	if err != nil {
		tracer().Errorf("opening block scope: %s", err)
		return false, &RuntimeError{Message: err.Error()}
	}
	defer guard.pop()

	for _, s := range stmts {
		returning, err := e.Exec(s)
		if err != nil {
			return false, err
		}
		if returning {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) execIf(n *ast.If) (bool, error) {
	cond, err := e.Eval(n.Cond)
	if err != nil {
		return false, err
	}
	if cond.Truthy() {
		return e.Exec(n.Then)
	}
	if n.Else != nil {
		return e.Exec(n.Else)
	}
	return false, nil
}

func (e *Evaluator) execWhile(n *ast.While) (bool, error) {
	for {
		cond, err := e.Eval(n.Cond)
		if err != nil {
			return false, err
		}
		if !cond.Truthy() {
			return false, nil
		}
		returning, err := e.Exec(n.Body)
		if err != nil {
			return false, err
		}
		if returning {
			return true, nil
		}
	}
}

// execFun binds a Callable capturing the currently active environment.
// Because the name is defined before the body ever runs, a recursive
// call inside the function resolves its own name by looking it up in
// that same (now-defined) environment.
func (e *Evaluator) execFun(n *ast.Fun) (bool, error) {
	name := n.Name.Lexeme(e.source)
	if e.funSource == nil {
		e.funSource = make(map[*ast.Fun]string)
	}
	e.funSource[n] = e.source
	fn := object.Callable{
		Arity: len(n.Params),
		Env:   e.active,
		Body:  object.CallableBody{Decl: n, Params: n.Params, Name: name},
	}
	e.env().Define(name, object.FromCallable(fn))
	return false, nil
}

func (e *Evaluator) runtimeErr(tok token.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	e.rep.Report(tok, msg)
	return &RuntimeError{Tok: tok, Message: msg}
}
