package object

import (
	"fmt"

	"github.com/loxrt/lox/ast"
	"github.com/loxrt/lox/gcheap"
	"github.com/loxrt/lox/token"
)

// NativeFunc is the shape of a built-in callable's implementation.
type NativeFunc func(args []Value) (Value, error)

// CallableBody is a sum of a native Go function and a user-declared
// function's AST: exactly one of Native or Decl is set.
type CallableBody struct {
	Native NativeFunc
	Decl   *ast.Fun
	Params []token.Token
	Name   string // the lexeme of the function's name, captured at construction
}

func (b CallableBody) sameDecl(other CallableBody) bool {
	if (b.Native == nil) != (other.Native == nil) {
		return false
	}
	if b.Decl != nil {
		return b.Decl == other.Decl
	}
	return b.Name == other.Name
}

// Callable is an invocable runtime value: its declared arity, the lexical
// environment captured at the point it was created (the closure), and its
// body. Env must always be a reference obtained via gcheap.Bind against
// the block that will own this Callable's storage — see Environment.Define.
type Callable struct {
	Arity int
	Env   gcheap.Ref[Environment]
	Body  CallableBody
}

// IsNative reports whether c wraps a built-in Go function rather than a
// user function declaration.
func (c Callable) IsNative() bool {
	return c.Body.Native != nil
}

func (c Callable) String() string {
	if c.IsNative() {
		return fmt.Sprintf("<native fn %s>", c.Body.Name)
	}
	return fmt.Sprintf("<fn %s>", c.Body.Name)
}
