/*
Package ast defines the syntax tree produced by package parser: a closed
set of expression and statement node kinds, each allocated through a
bumparena.Arena rather than the ordinary Go heap.

Every node is constructed once and never mutated afterward. Expr and Stmt
are sealed marker interfaces — only the node kinds declared in this
package can implement them — so a switch over a concrete type covers every
case the compiler can check.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Lox Contributors
*/
package ast

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lox.ast'.
func tracer() tracing.Trace {
	return tracing.Select("lox.ast")
}
