/*
Package object implements the interpreter's runtime value representation
(Value) and the lexically scoped, GC-backed environment chain
(Environment) those values live in.

A Value that embeds a captured environment (a Callable's closure) must
never be copied into a new map slot by a bare Go assignment: Environment's
Define and Assign re-tag any embedded gcheap.Ref via gcheap.Bind at the
moment of storage, exactly mirroring the instant HeapPtr's copy
constructor would have fired in the collector this package's heap is
modeled on. Every Environment registers a destructor that releases the
edges it owns when the collector sweeps it, keeping the heap's
referencedBy lists from accumulating stale entries across many call
frames.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Lox Contributors
*/
package object

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lox.object'.
func tracer() tracing.Trace {
	return tracing.Select("lox.object")
}
