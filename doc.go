/*
Package lox implements a tree-walking interpreter for a small
dynamically-typed scripting language in the Lox family: expression
statements, variables, blocks, control flow, first-class functions and
closures.

The runtime substrate — not the front end — is the interesting part of
this module:

■ gcheap: a precise, tracing mark-and-sweep garbage collector with
intrusive back-reference lists, so that ordinary Go values can hold
handles into the managed heap and cyclic structures (mutually recursive
closures sharing an environment) are still reclaimed.

■ bumparena: a bump (arena) allocator for AST nodes with deterministic
scoped rewind and an interleaved destructor chain.

■ object, interp: a lexically scoped, GC-backed environment chain and
the tree-walking evaluator built on top of it.

Package structure:

■ lox (this package): the top-level Interpreter facade wiring the pieces
below together for cmd/lox.
■ token: the lexical token record and source-position map.
■ bumparena: the AST-lifetime bump allocator.
■ gcheap: the garbage-collected heap and its generic handle type.
■ ast: expression and statement node kinds.
■ scanner: source text to token stream.
■ parser: Pratt-style precedence-climbing parser.
■ object: runtime values and environments.
■ interp: the evaluator.
■ diag: source-position error reporting.
■ cmd/lox: the file/REPL driver.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Lox Contributors

*/
package lox
