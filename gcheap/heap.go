package gcheap

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// AllocGranularity is the unit every allocation's virtual offset and size
// is rounded to, mirroring GarbageCollectedHeap::ALLOC_GRANULARITY.
const AllocGranularity = 32

// ErrOutOfMemory is returned when an allocation cannot be satisfied even
// after a collection.
var ErrOutOfMemory = errors.New("gcheap: out of memory")

// BlockID identifies a single allocated block for the lifetime of that
// allocation. IDs are handed out in increasing order starting at zero and
// are never reused, not even after the block is freed; the invalid
// sentinel is negative.
type BlockID int64

// invalidBlock marks a refNode as either targeting nothing or, in the
// owner field, as an external root.
const invalidBlock BlockID = -1

// refNode is one entry in a block's referencedBy list: a handle that
// currently points at that block. owner is the BlockID of the managed
// block whose memory logically embeds this node, or invalidBlock if the
// node lives outside the heap (an evaluator-local variable, a package
// global) and therefore roots its target.
type refNode struct {
	prev, next *refNode
	owner      BlockID
	block      BlockID
}

// allocatedBlock is the heap's bookkeeping record for one live
// allocation. offset/size are virtual byte coordinates used purely for
// free-list geometry and OOM accounting; the actual Go value lives in
// `value`.
type allocatedBlock struct {
	id           BlockID
	offset, size int
	value        any
	dtor         func(any)
	referencedBy *refNode
	references   []BlockID // transient, rebuilt every collection
	alive        bool
	visited      bool
}

type freeBlock struct {
	offset, size int
}

func freeBlockComparator(a, b interface{}) int {
	return utils.IntComparator(a.(*freeBlock).offset, b.(*freeBlock).offset)
}

func blockOffsetComparator(a, b interface{}) int {
	return utils.IntComparator(a.(*allocatedBlock).offset, b.(*allocatedBlock).offset)
}

// Heap is a fixed-capacity garbage-collected pool. It is not a
// package-level singleton: callers construct exactly one with New,
// exercise it for the lifetime of an evaluation, and Close it afterward.
type Heap struct {
	capacity int // in bytes (virtual)
	nextID   BlockID

	free      *treeset.Set    // *freeBlock, ordered by offset
	allocated *arraylist.List // *allocatedBlock, ordered by offset
	byID      map[BlockID]*allocatedBlock

	collections int
}

// Stats summarizes heap occupancy, supplementing spec.md's external
// interfaces with a `:heap` REPL introspection command.
type Stats struct {
	Capacity    int
	FreeBytes   int
	LiveBlocks  int
	Collections int
}

// New creates a heap with the given capacity in bytes, rounded up to a
// multiple of AllocGranularity.
func New(capacity int) *Heap {
	capacity = roundUp(capacity, AllocGranularity)
	h := &Heap{
		capacity:  capacity,
		free:      treeset.NewWith(freeBlockComparator),
		allocated: arraylist.New(),
		byID:      make(map[BlockID]*allocatedBlock),
	}
	h.free.Add(&freeBlock{offset: 0, size: capacity})
	return h
}

func roundUp(n, granularity int) int {
	return (n + granularity - 1) / granularity * granularity
}

// Close runs a final collection and reports (without aborting the
// process) if anything is still reachable — the Go analogue of the
// original's teardown assertion that the heap is empty when destroyed.
func (h *Heap) Close() error {
	h.Collect()
	if h.allocated.Size() > 0 {
		err := fmt.Errorf("gcheap: %d block(s) still allocated at close", h.allocated.Size())
		tracer().Errorf(err.Error())
		return err
	}
	return nil
}

// Stats reports current occupancy.
func (h *Heap) Stats() Stats {
	free := 0
	h.free.Each(func(_ int, v interface{}) { free += v.(*freeBlock).size })
	return Stats{
		Capacity:    h.capacity,
		FreeBytes:   free,
		LiveBlocks:  h.allocated.Size(),
		Collections: h.collections,
	}
}

// Ref is a generic smart handle into the managed heap: an intrusive
// doubly-linked list node (see refNode) plus the type witness needed to
// recover a *T from the block it targets. The zero value is a valid nil
// handle.
type Ref[T any] struct {
	heap *Heap
	node *refNode
}

// IsNil reports whether r targets no block, either because it was never
// bound or because its target has been collected/released.
func (r Ref[T]) IsNil() bool {
	if r.node == nil || r.heap == nil {
		return true
	}
	blk := r.heap.byID[r.node.block]
	return blk == nil
}

// Deref returns a pointer to the referenced value, or nil if r is nil.
func (r Ref[T]) Deref() *T {
	if r.IsNil() {
		return nil
	}
	blk := r.heap.byID[r.node.block]
	v, _ := blk.value.(*T)
	return v
}

// Block returns the BlockID r targets, or invalidBlock if nil.
func (r Ref[T]) Block() BlockID {
	if r.node == nil {
		return invalidBlock
	}
	return r.node.block
}

// Equal reports whether two handles target the same block; two nil
// handles are equal, matching HeapPtr's target-pointer equality.
func (r Ref[T]) Equal(other Ref[T]) bool {
	return r.Block() == other.Block()
}

// Allocate reserves storage for a T and constructs it in place via
// build, which receives the new block's own BlockID so the constructed
// value can create internal edges back to itself (self-referential
// closures) or to sibling fields via Bind. If build fails, the raw
// allocation is rolled back and the failure propagated, mirroring
// AllocationHelper's revert-on-abort contract.
func Allocate[T any](h *Heap, build func(self BlockID) (T, error)) (Ref[T], error) {
	size := int(unsafe.Sizeof(*new(T)))
	blk, err := h.allocateRaw(size)
	if err != nil {
		return Ref[T]{}, err
	}
	value, err := build(blk.id)
	if err != nil {
		h.undoRawAllocation(blk)
		return Ref[T]{}, err
	}
	blk.value = &value
	node := &refNode{owner: invalidBlock, block: blk.id}
	h.link(blk, node)
	tracer().Debugf("allocated block %d (%d bytes)", blk.id, blk.size)
	return Ref[T]{heap: h, node: node}, nil
}

// SetDtor registers a finalizer for the block r targets. Finalizers run
// at sweep time; they must not allocate, must not resurrect references,
// and must not panic.
func SetDtor[T any](r Ref[T], dtor func(*T)) {
	if r.IsNil() {
		return
	}
	blk := r.heap.byID[r.node.block]
	blk.dtor = func(v any) { dtor(v.(*T)) }
}

// Root creates a brand-new external-root handle aliasing the same
// target as r — the Go stand-in for HeapPtr's copy constructor firing
// when a handle is copied into a new evaluator-owned variable that must
// independently keep the target alive.
func Root[T any](r Ref[T]) Ref[T] {
	if r.IsNil() {
		return Ref[T]{}
	}
	blk := r.heap.byID[r.node.block]
	node := &refNode{owner: invalidBlock, block: blk.id}
	r.heap.link(blk, node)
	return Ref[T]{heap: r.heap, node: node}
}

// Bind creates a new handle to the same target as r, tagged as an
// internal edge owned by the given block — the Go stand-in for
// HeapPtr's copy constructor firing when a handle is stored inside
// another managed block's value (a map entry, a struct field). Callers
// must use Bind, not a bare Go assignment, whenever a Ref crosses into
// storage that itself lives inside the heap; otherwise the collector
// will treat it as unreachable and free it prematurely.
func Bind[T any](h *Heap, owner BlockID, r Ref[T]) Ref[T] {
	if r.IsNil() {
		return Ref[T]{}
	}
	blk := h.byID[r.node.block]
	node := &refNode{owner: owner, block: blk.id}
	h.link(blk, node)
	return Ref[T]{heap: h, node: node}
}

// Release unlinks r from its target's referencedBy list. After Release,
// r is nil. It does not free the target directly — reachability decides
// that at the next Collect.
func Release[T any](r *Ref[T]) {
	if r.node == nil {
		return
	}
	r.heap.unlink(r.node)
	r.node = nil
}

func (h *Heap) link(blk *allocatedBlock, node *refNode) {
	node.next = blk.referencedBy
	node.prev = nil
	if blk.referencedBy != nil {
		blk.referencedBy.prev = node
	}
	blk.referencedBy = node
}

func (h *Heap) unlink(node *refNode) {
	if node.block == invalidBlock {
		return
	}
	blk := h.byID[node.block]
	if blk != nil {
		if node.prev != nil {
			node.prev.next = node.next
		} else if blk.referencedBy == node {
			blk.referencedBy = node.next
		}
		if node.next != nil {
			node.next.prev = node.prev
		}
	}
	node.prev, node.next = nil, nil
	node.block = invalidBlock
}

// allocateRaw finds a first-fit free block, splits or consumes it, and
// registers a new allocatedBlock. It runs a Collect and retries once
// before failing with ErrOutOfMemory — this is a genuine linear scan
// that always advances (the original C++ first-fit loop had a
// missing-advance bug; see SPEC_FULL.md §9).
func (h *Heap) allocateRaw(size int) (*allocatedBlock, error) {
	if size == 0 {
		size = 1
	}
	size = roundUp(size, AllocGranularity)
	fb := h.findFirstFit(size)
	if fb == nil {
		h.Collect()
		fb = h.findFirstFit(size)
	}
	if fb == nil {
		return nil, ErrOutOfMemory
	}
	offset := fb.offset
	// The free block's key (offset) is about to change, or the block is
	// consumed outright: remove before mutating, since the underlying
	// tree is keyed on offset and must not observe a stale ordering.
	h.free.Remove(fb)
	if fb.size > size {
		h.free.Add(&freeBlock{offset: fb.offset + size, size: fb.size - size})
	}

	blk := &allocatedBlock{id: h.nextID, offset: offset, size: size}
	h.nextID++
	h.insertAllocated(blk)
	h.byID[blk.id] = blk
	return blk, nil
}

func (h *Heap) findFirstFit(size int) *freeBlock {
	for _, v := range h.free.Values() {
		fb := v.(*freeBlock)
		if fb.size >= size {
			return fb
		}
	}
	return nil
}

func (h *Heap) undoRawAllocation(blk *allocatedBlock) {
	h.removeAllocated(blk)
	delete(h.byID, blk.id)
	h.insertFree(blk.offset, blk.size)
	h.coalesceFree()
}

func (h *Heap) insertFree(offset, size int) {
	h.free.Add(&freeBlock{offset: offset, size: size})
}

func (h *Heap) coalesceFree() {
	values := h.free.Values()
	if len(values) < 2 {
		return
	}
	merged := make([]*freeBlock, 0, len(values))
	for _, v := range values {
		fb := v.(*freeBlock)
		if n := len(merged); n > 0 && merged[n-1].offset+merged[n-1].size == fb.offset {
			merged[n-1].size += fb.size
			continue
		}
		merged = append(merged, fb)
	}
	h.free.Clear()
	for _, fb := range merged {
		h.free.Add(fb)
	}
}

// insertAllocated keeps h.allocated sorted by offset via binary search,
// mirroring std::lower_bound over the original's m_allocated vector.
func (h *Heap) insertAllocated(blk *allocatedBlock) {
	idx := sortSearch(h.allocated, blk.offset)
	h.allocated.Insert(idx, blk)
}

func (h *Heap) removeAllocated(blk *allocatedBlock) {
	for i, v := range h.allocated.Values() {
		if v.(*allocatedBlock) == blk {
			h.allocated.Remove(i)
			return
		}
	}
}

func sortSearch(list *arraylist.List, offset int) int {
	lo, hi := 0, list.Size()
	for lo < hi {
		mid := (lo + hi) / 2
		v, _ := list.Get(mid)
		if v.(*allocatedBlock).offset < offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// AnyRef is a type-erased handle used only to keep a block alive and to
// test its identity/liveness — it cannot Deref, since the block's static
// type is not recoverable once erased. See RefToAllocation.
type AnyRef struct {
	heap *Heap
	node *refNode
}

// IsNil reports whether the referenced block is gone.
func (r AnyRef) IsNil() bool {
	if r.node == nil || r.heap == nil {
		return true
	}
	return r.heap.byID[r.node.block] == nil
}

// Block returns the BlockID this handle targets.
func (r AnyRef) Block() BlockID {
	if r.node == nil {
		return invalidBlock
	}
	return r.node.block
}

// RefToAllocation resurrects a handle to the block identified by id, or
// a nil AnyRef if no such block is currently live. This is the Go
// analogue of reference_to_allocation_impl: recovering a handle from a
// raw interior identity (here, a BlockID) instead of a raw pointer, e.g.
// to resurrect `this` from inside a native method.
func RefToAllocation(h *Heap, id BlockID) AnyRef {
	blk := h.byID[id]
	if blk == nil {
		return AnyRef{}
	}
	node := &refNode{owner: invalidBlock, block: blk.id}
	h.link(blk, node)
	return AnyRef{heap: h, node: node}
}

// Collect runs one precise mark-and-sweep pass.
func (h *Heap) Collect() {
	h.collections++
	blocks := h.allocated.Values()

	for _, v := range blocks {
		b := v.(*allocatedBlock)
		b.alive, b.visited = false, false
		b.references = b.references[:0]
	}

	for _, v := range blocks {
		b := v.(*allocatedBlock)
		for node := b.referencedBy; node != nil; node = node.next {
			if node.owner == invalidBlock {
				b.alive = true
				continue
			}
			if owner := h.byID[node.owner]; owner != nil {
				owner.references = append(owner.references, b.id)
			}
		}
	}

	for _, v := range blocks {
		b := v.(*allocatedBlock)
		if b.visited || !b.alive {
			continue
		}
		for _, id := range b.references {
			if next := h.byID[id]; next != nil {
				h.propagate(next)
			}
		}
	}

	freed := 0
	for _, v := range blocks {
		b := v.(*allocatedBlock)
		if b.alive {
			continue
		}
		if b.dtor != nil {
			b.dtor(b.value)
		}
		h.removeAllocated(b)
		delete(h.byID, b.id)
		h.insertFree(b.offset, b.size)
		freed++
		tracer().Debugf("collected block %d (%d bytes)", b.id, b.size)
	}
	if freed > 0 {
		h.coalesceFree()
	}
}

func (h *Heap) propagate(b *allocatedBlock) {
	if b.visited {
		return
	}
	b.visited = true
	b.alive = true
	for _, id := range b.references {
		if next := h.byID[id]; next != nil {
			h.propagate(next)
		}
	}
}
