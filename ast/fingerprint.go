package ast

import (
	"fmt"

	"github.com/cnf/structhash"
)

// snapshot is a plain, arena-free mirror of a statement tree, built solely
// so structhash has ordinary Go values to walk: hashing the real nodes
// directly would fold in arena-internal pointer identity, which is not
// part of a program's meaning.
type snapshot struct {
	Kind     string
	Fields   map[string]any
	Children []snapshot
}

func snapshotExpr(e Expr, source string) snapshot {
	if e == nil {
		return snapshot{Kind: "nil"}
	}
	switch n := e.(type) {
	case *Binary:
		return snapshot{Kind: "Binary", Fields: map[string]any{"op": n.Op.Type},
			Children: []snapshot{snapshotExpr(n.Left, source), snapshotExpr(n.Right, source)}}
	case *Logical:
		return snapshot{Kind: "Logical", Fields: map[string]any{"op": n.Op.Type},
			Children: []snapshot{snapshotExpr(n.Left, source), snapshotExpr(n.Right, source)}}
	case *Unary:
		return snapshot{Kind: "Unary", Fields: map[string]any{"op": n.Op.Type},
			Children: []snapshot{snapshotExpr(n.Right, source)}}
	case *Grouping:
		return snapshot{Kind: "Grouping", Children: []snapshot{snapshotExpr(n.Inner, source)}}
	case *Literal:
		return snapshot{Kind: "Literal", Fields: map[string]any{"value": n.Value}}
	case *Var:
		return snapshot{Kind: "Var", Fields: map[string]any{"name": n.Name.Lexeme(source)}}
	case *Assign:
		return snapshot{Kind: "Assign", Fields: map[string]any{"name": n.Name.Lexeme(source)},
			Children: []snapshot{snapshotExpr(n.Value, source)}}
	case *Call:
		children := make([]snapshot, 0, len(n.Args)+1)
		children = append(children, snapshotExpr(n.Callee, source))
		for _, arg := range n.Args {
			children = append(children, snapshotExpr(arg, source))
		}
		return snapshot{Kind: "Call", Children: children}
	default:
		panic(fmt.Sprintf("ast: unhandled expression kind %T", e))
	}
}

func snapshotStmt(s Stmt, source string) snapshot {
	if s == nil {
		return snapshot{Kind: "nil"}
	}
	switch n := s.(type) {
	case *ExprStmt:
		return snapshot{Kind: "ExprStmt", Children: []snapshot{snapshotExpr(n.Expr, source)}}
	case *Print:
		return snapshot{Kind: "Print", Children: []snapshot{snapshotExpr(n.Expr, source)}}
	case *VarStmt:
		return snapshot{Kind: "VarStmt", Fields: map[string]any{"name": n.Name.Lexeme(source)},
			Children: []snapshot{snapshotExpr(n.Init, source)}}
	case *Block:
		children := make([]snapshot, len(n.Stmts))
		for i, st := range n.Stmts {
			children[i] = snapshotStmt(st, source)
		}
		return snapshot{Kind: "Block", Children: children}
	case *If:
		return snapshot{Kind: "If", Children: []snapshot{
			snapshotExpr(n.Cond, source), snapshotStmt(n.Then, source), snapshotStmt(n.Else, source),
		}}
	case *While:
		return snapshot{Kind: "While", Children: []snapshot{snapshotExpr(n.Cond, source), snapshotStmt(n.Body, source)}}
	case *Fun:
		children := make([]snapshot, len(n.Body))
		for i, st := range n.Body {
			children[i] = snapshotStmt(st, source)
		}
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Lexeme(source)
		}
		return snapshot{Kind: "Fun", Fields: map[string]any{"name": n.Name.Lexeme(source), "params": params}, Children: children}
	case *Return:
		return snapshot{Kind: "Return", Children: []snapshot{snapshotExpr(n.Value, source)}}
	default:
		panic(fmt.Sprintf("ast: unhandled statement kind %T", s))
	}
}

// Fingerprint returns a stable content hash of a parsed program, ignoring
// arena identity and byte offsets that don't affect program meaning: names
// are captured through their lexeme text (via source), not their position,
// so a tree printed by Unparse and reparsed from a different source string
// still fingerprints equal to the tree it came from.
func Fingerprint(program []Stmt, source string) (string, error) {
	snaps := make([]snapshot, len(program))
	for i, s := range program {
		snaps[i] = snapshotStmt(s, source)
	}
	return structhash.Hash(snaps, 1)
}
