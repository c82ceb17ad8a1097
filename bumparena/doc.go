/*
Package bumparena implements a monotonic bump allocator with scoped
rewind and an interleaved destructor chain, sized for the lifetime of a
single parsed AST.

Allocation is O(1) and never individually freed; instead the arena's
entire state can be rewound to an earlier checkpoint (State), running
the destructors of everything allocated since in strict reverse
construction order — mirroring lexical nesting during parsing.

Go cannot place arbitrary struct types at raw byte offsets the way the
original BumpAlloc does (no placement new, no alignment control over a
byte buffer holding mixed types), so this port organizes the arena as a
sequence of fixed-capacity blocks of boxed slots instead of raw bytes.
The externally observable contract — scoped rewind, destructor ordering,
a block-size ceiling above which a single allocation is a programmer
error — is preserved exactly.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Lox Contributors
*/
package bumparena

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lox.bumparena'.
func tracer() tracing.Trace {
	return tracing.Select("lox.bumparena")
}
