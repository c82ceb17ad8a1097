/*
Package interp implements the tree-walking evaluator: a single Evaluator
type that visits ast.Expr/ast.Stmt nodes, threading an explicit operand
stack (rather than returning values straight up the Go call stack) so the
push-exactly-one-per-expression discipline is a literal, testable
invariant rather than an implementation detail. Environment frames are
exchanged via a scoped guard (envGuard) that always restores the prior
frame and releases the child frame's root reference on exit, whether the
exit is normal or an error unwind.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Lox Contributors
*/
package interp

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lox.interp'.
func tracer() tracing.Trace {
	return tracing.Select("lox.interp")
}
