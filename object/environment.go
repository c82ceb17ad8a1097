package object

import (
	"fmt"

	"golang.org/x/exp/maps"

	"github.com/loxrt/lox/gcheap"
)

// Environment is a single lexical scope frame: a name-to-value map plus a
// link to the enclosing frame. Frames are allocated on the gcheap.Heap so
// that closures capturing an inner frame can keep it (and its ancestors)
// alive after the scope that created it has lexically ended.
type Environment struct {
	Values map[string]Value
	Parent gcheap.Ref[Environment]
}

// NewGlobals allocates the distinguished root environment, whose Parent is
// nil.
func NewGlobals(h *gcheap.Heap) (gcheap.Ref[Environment], error) {
	ref, err := gcheap.Allocate(h, func(gcheap.BlockID) (Environment, error) {
		return Environment{Values: make(map[string]Value)}, nil
	})
	if err != nil {
		return ref, err
	}
	gcheap.SetDtor(ref, releaseOwnedEdges)
	return ref, nil
}

// NewChild allocates a fresh frame with parent as its enclosing scope.
func NewChild(h *gcheap.Heap, parent gcheap.Ref[Environment]) (gcheap.Ref[Environment], error) {
	ref, err := gcheap.Allocate(h, func(self gcheap.BlockID) (Environment, error) {
		return Environment{
			Values: make(map[string]Value),
			Parent: gcheap.Bind(h, self, parent),
		}, nil
	})
	if err != nil {
		return ref, err
	}
	gcheap.SetDtor(ref, releaseOwnedEdges)
	return ref, nil
}

// releaseOwnedEdges runs when the collector sweeps an Environment block: it
// releases every gcheap.Ref this frame owns (its Parent link and any
// Callable closures stored in Values) so their nodes don't linger in some
// other block's referencedBy list after this frame is gone.
func releaseOwnedEdges(env *Environment) {
	for _, v := range env.Values {
		if v.kind == KindCallable {
			gcheap.Release(&v.c.Env)
		}
	}
	gcheap.Release(&env.Parent)
}

// rebind re-tags any gcheap.Ref embedded in v (currently, a Callable's
// captured environment) as an edge owned by owner — the moment a copy
// constructor would have fired in the collector this heap is modeled on.
func rebind(h *gcheap.Heap, owner gcheap.BlockID, v Value) Value {
	if v.kind != KindCallable {
		return v
	}
	c := v.c
	c.Env = gcheap.Bind(h, owner, c.Env)
	return FromCallable(c)
}

// Define binds name to value in this frame, overwriting any existing
// binding (shadowing within the same frame is not an error; it's simply a
// second define).
func (h *EnvHandle) Define(name string, value Value) {
	env := h.ref.Deref()
	env.Values[name] = rebind(h.heap, h.ref.Block(), value)
}

// Assign walks the parent chain starting at this frame and updates the
// first frame that already defines name. It reports an error if no frame
// in the chain defines name.
func (h *EnvHandle) Assign(name string, value Value) error {
	for ref := h.ref; !ref.IsNil(); {
		env := ref.Deref()
		if _, ok := env.Values[name]; ok {
			env.Values[name] = rebind(h.heap, ref.Block(), value)
			return nil
		}
		ref = env.Parent
	}
	return fmt.Errorf("undefined variable '%s'", name)
}

// Get walks the parent chain starting at this frame and returns the first
// binding found for name.
func (h *EnvHandle) Get(name string) (Value, bool) {
	for ref := h.ref; !ref.IsNil(); {
		env := ref.Deref()
		if v, ok := env.Values[name]; ok {
			return v, true
		}
		ref = env.Parent
	}
	return Nil, false
}

// Names returns every name visible from this frame, walking outward
// through Parent links, for REPL introspection (":env"). A name shadowed
// by an inner frame appears once.
func (h *EnvHandle) Names() []string {
	seen := make(map[string]struct{})
	for ref := h.ref; !ref.IsNil(); {
		env := ref.Deref()
		for _, name := range maps.Keys(env.Values) {
			seen[name] = struct{}{}
		}
		ref = env.Parent
	}
	return maps.Keys(seen)
}

// EnvHandle pairs a live Environment reference with the heap it belongs
// to, since Define/Assign need the heap to call gcheap.Bind.
type EnvHandle struct {
	heap *gcheap.Heap
	ref  gcheap.Ref[Environment]
}

// Handle wraps ref with the operations above.
func Handle(h *gcheap.Heap, ref gcheap.Ref[Environment]) *EnvHandle {
	return &EnvHandle{heap: h, ref: ref}
}
