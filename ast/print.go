package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Unparse renders program back into Lox source text. Parentheses are
// emitted only for Grouping nodes: a parsed tree already records every
// place where the source overrode operator precedence as a Grouping, so
// the printed text reparses to a structurally equal tree. source is the
// text the program's tokens were scanned from, needed to recover
// identifier and operator lexemes.
func Unparse(program []Stmt, source string) string {
	var b strings.Builder
	for _, s := range program {
		printStmt(&b, s, source)
	}
	return b.String()
}

func printStmt(b *strings.Builder, s Stmt, source string) {
	if s == nil {
		return
	}
	switch n := s.(type) {
	case *ExprStmt:
		fmt.Fprintf(b, "%s;\n", printExpr(n.Expr, source))
	case *Print:
		fmt.Fprintf(b, "print %s;\n", printExpr(n.Expr, source))
	case *VarStmt:
		if n.Init != nil {
			fmt.Fprintf(b, "var %s = %s;\n", n.Name.Lexeme(source), printExpr(n.Init, source))
		} else {
			fmt.Fprintf(b, "var %s;\n", n.Name.Lexeme(source))
		}
	case *Block:
		b.WriteString("{\n")
		for _, st := range n.Stmts {
			printStmt(b, st, source)
		}
		b.WriteString("}\n")
	case *If:
		fmt.Fprintf(b, "if (%s) ", printExpr(n.Cond, source))
		printStmt(b, n.Then, source)
		if n.Else != nil {
			b.WriteString("else ")
			printStmt(b, n.Else, source)
		}
	case *While:
		fmt.Fprintf(b, "while (%s) ", printExpr(n.Cond, source))
		printStmt(b, n.Body, source)
	case *Fun:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Lexeme(source)
		}
		fmt.Fprintf(b, "fun %s(%s) {\n", n.Name.Lexeme(source), strings.Join(params, ", "))
		for _, st := range n.Body {
			printStmt(b, st, source)
		}
		b.WriteString("}\n")
	case *Return:
		if n.Value != nil {
			fmt.Fprintf(b, "return %s;\n", printExpr(n.Value, source))
		} else {
			b.WriteString("return;\n")
		}
	default:
		panic(fmt.Sprintf("ast: unhandled statement kind %T", s))
	}
}

func printExpr(e Expr, source string) string {
	if e == nil {
		return "nil"
	}
	switch n := e.(type) {
	case *Binary:
		return fmt.Sprintf("%s %s %s", printExpr(n.Left, source), n.Op.Lexeme(source), printExpr(n.Right, source))
	case *Logical:
		return fmt.Sprintf("%s %s %s", printExpr(n.Left, source), n.Op.Lexeme(source), printExpr(n.Right, source))
	case *Unary:
		return fmt.Sprintf("%s%s", n.Op.Lexeme(source), printExpr(n.Right, source))
	case *Grouping:
		return fmt.Sprintf("(%s)", printExpr(n.Inner, source))
	case *Literal:
		return printLiteral(n.Value)
	case *Var:
		return n.Name.Lexeme(source)
	case *Assign:
		return fmt.Sprintf("%s = %s", n.Name.Lexeme(source), printExpr(n.Value, source))
	case *Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = printExpr(a, source)
		}
		return fmt.Sprintf("%s(%s)", printExpr(n.Callee, source), strings.Join(args, ", "))
	default:
		panic(fmt.Sprintf("ast: unhandled expression kind %T", e))
	}
}

func printLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return strconv.Quote(t)
	default:
		panic(fmt.Sprintf("ast: unhandled literal type %T", v))
	}
}
