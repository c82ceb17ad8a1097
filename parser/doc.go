/*
Package parser builds an AST from a token stream via a precedence-climbing
descent over the priority table in the project's design notes: assignment
(lowest, right-associative), or, and, equality, comparison, term, factor,
unary, call, primary (highest). Each precedence level is its own method,
following the classic Lox recursive-descent shape rather than a single
generic climbing loop, since assignment-target validation and the
and/or-return-the-operand rule don't fit a uniform binary-operator table.

Parsing is permissive: a malformed construct is reported through a
diag.Reporter, the parser synchronizes to the next likely statement
boundary, and parsing continues. The returned statement list omits any
declaration that failed to parse.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Lox Contributors
*/
package parser

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lox.parser'.
func tracer() tracing.Trace {
	return tracing.Select("lox.parser")
}
