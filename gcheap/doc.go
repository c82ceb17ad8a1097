/*
Package gcheap implements a precise, tracing mark-and-sweep garbage
collector over a fixed-capacity managed heap, together with a generic
smart handle, Ref[T].

The design follows the "GarbageCollectedHeap"/"HeapPtr<T>" pair from the
C++ implementation this runtime is modeled on: a contiguous pool
subdivided into allocated and free blocks, with each allocated block
maintaining an intrusive doubly-linked list of every handle that
references it (referencedBy). Collection walks that list for every block:
a handle whose owner is outside the managed heap marks the block a root;
a handle embedded inside another managed block instead records a
directed edge from the owner block to the target. Reachability is then
propagated from roots along those edges, and everything left unmarked is
swept.

Go has no address space to scan for "is this pointer inside my mmap'd
region" the way the original C++ does — and no user-definable copy
constructor to intercept every place a handle gets duplicated into new
storage. This port keeps the same block/edge/root graph and the same
collection algorithm, but replaces address-range membership with an
explicit owner tag carried by each list node: a node created via Root is
tagged as an external root; a node created via Bind is tagged with the
BlockID of the managed block that logically embeds it (a map value, a
struct field of another managed value). Call sites are responsible for
choosing Root vs. Bind at the point a Ref is stored somewhere new,
exactly mirroring the moment HeapPtr's copy constructor would have fired
in the original.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Lox Contributors
*/
package gcheap

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lox.gcheap'.
func tracer() tracing.Trace {
	return tracing.Select("lox.gcheap")
}
