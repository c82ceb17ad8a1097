package object

import (
	"fmt"
	"strconv"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindCallable
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindCallable:
		return "callable"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a tagged union over the language's runtime types: Nil, Bool,
// Number, String, Callable. The zero Value is Nil.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	c    Callable
}

// Nil is the single nil value.
var Nil = Value{kind: KindNil}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// FromCallable wraps a Callable.
func FromCallable(c Callable) Value { return Value{kind: KindCallable, c: c} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is the Nil variant.
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsBool returns v's bool payload; only meaningful when Kind() == KindBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns v's float64 payload; only meaningful when
// Kind() == KindNumber.
func (v Value) AsNumber() float64 { return v.n }

// AsString returns v's string payload; only meaningful when
// Kind() == KindString.
func (v Value) AsString() string { return v.s }

// AsCallable returns v's Callable payload; only meaningful when
// Kind() == KindCallable.
func (v Value) AsCallable() Callable { return v.c }

// Truthy implements canonical Lox truthiness: Nil and Bool(false) are
// false, every other value — including Number(0) and String("") — is
// true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

// Equal implements the language's structural equality: values of
// differing variants are never equal; callables compare by identity of
// their captured environment and declaration.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindCallable:
		return v.c.Env.Equal(other.c.Env) && v.c.Body.sameDecl(other.c.Body)
	default:
		return false
	}
}

// Render formats v the way `print` writes it to standard output: numbers
// in a concise general format, nil as "nil", booleans as "true"/"false"
// with no embedded newline (a bug present in one evolutionary snapshot of
// this engine, deliberately not reproduced here), and strings verbatim.
func (v Value) Render() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindString:
		return v.s
	case KindCallable:
		return v.c.String()
	default:
		return "<invalid>"
	}
}

func (v Value) String() string { return v.Render() }
