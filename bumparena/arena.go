package bumparena

import (
	"fmt"
	"unsafe"

	"github.com/emirpasic/gods/lists/arraylist"
)

// BlockSize is the capacity, in bytes, of a single arena block. It mirrors
// the 16 KiB BLOCK_SIZE of the allocator this package is modeled on.
// Occupancy is tracked by unsafe.Sizeof of the boxed type, not by actual
// slot count, so a block still holds roughly sixteen kibibytes worth of
// nodes regardless of their individual size.
const BlockSize = 16 * 1024

// Finalizer is implemented by values that need cleanup run when the slot
// holding them is rewound past. Most AST node kinds have no such need and
// simply omit it; only the rare node wrapping an external resource (a
// compiled regular expression, an open file used while constant-folding,
// and the like) should bother.
type Finalizer interface {
	Finalize()
}

type slotPos struct {
	block, slot int
}

type block struct {
	slots []any
	sizes []int
	used  int
}

type dtorEntry struct {
	fin     Finalizer
	ordinal int
}

// State is an opaque checkpoint of an Arena's allocation history. The zero
// State denotes the arena's initial, empty position.
type State int

// Arena is a monotonic bump allocator for values that all share one
// lifetime: the nodes of a single parsed syntax tree. It never frees an
// individual allocation; callers instead roll the whole arena back to an
// earlier State with Reset, which runs the Finalize method of every
// Finalizer allocated since, in strict reverse order of construction.
//
// An Arena is not safe for concurrent use.
type Arena struct {
	blocks    *arraylist.List // of *block
	positions []slotPos       // positions[i] = where allocation i was placed
	dtors     []dtorEntry     // finalizers registered so far, construction order
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{blocks: arraylist.New()}
}

func (a *Arena) blockAt(i int) *block {
	v, ok := a.blocks.Get(i)
	if !ok {
		return nil
	}
	return v.(*block)
}

func (a *Arena) currentBlock() *block {
	n := a.blocks.Size()
	if n == 0 {
		return nil
	}
	return a.blockAt(n - 1)
}

// Allocate constructs a T inside the arena by calling build, and returns a
// pointer to the stored value. If build returns an error, nothing is
// allocated and the arena's state is unchanged.
//
// If a single T does not fit within one block (size > BlockSize), Allocate
// panics: that is a fatal programmer error, not a recoverable one, exactly
// as an allocation request larger than a block was in the original.
func Allocate[T any](a *Arena, build func() (T, error)) (*T, error) {
	size := int(unsafe.Sizeof(*new(T)))
	if size > BlockSize {
		panic(fmt.Sprintf("bumparena: allocation of %d bytes exceeds block size %d", size, BlockSize))
	}

	val, err := build()
	if err != nil {
		return nil, err
	}

	cur := a.currentBlock()
	if cur == nil || cur.used+size > BlockSize {
		cur = &block{}
		a.blocks.Add(cur)
	}

	p := new(T)
	*p = val
	blockIdx := a.blocks.Size() - 1
	slotIdx := len(cur.slots)
	cur.slots = append(cur.slots, p)
	cur.sizes = append(cur.sizes, size)
	cur.used += size

	pos := slotPos{block: blockIdx, slot: slotIdx}
	ordinal := len(a.positions)
	a.positions = append(a.positions, pos)

	if f, ok := any(p).(Finalizer); ok {
		a.dtors = append(a.dtors, dtorEntry{fin: f, ordinal: ordinal})
	}

	tracer().Debugf("bumparena: allocated %T at block=%d slot=%d (%d bytes)", val, blockIdx, slotIdx, size)
	return p, nil
}

// Mark returns a checkpoint of the arena's current position, suitable for
// a later Reset.
func (a *Arena) Mark() State {
	return State(len(a.positions))
}

// Reset rewinds the arena to a previously obtained State, running the
// Finalize method of every Finalizer allocated since in strict reverse
// construction order. Reset to the zero State empties the arena entirely.
func (a *Arena) Reset(s State) {
	n := int(s)
	if n < 0 || n > len(a.positions) {
		panic("bumparena: Reset to an invalid or foreign State")
	}

	for len(a.dtors) > 0 {
		last := a.dtors[len(a.dtors)-1]
		if last.ordinal < n {
			break
		}
		last.fin.Finalize()
		a.dtors = a.dtors[:len(a.dtors)-1]
	}

	if n == len(a.positions) {
		return
	}

	if n == 0 {
		a.blocks = arraylist.New()
		a.positions = nil
		return
	}

	target := a.positions[n-1]
	for a.blocks.Size() > target.block+1 {
		a.blocks.Remove(a.blocks.Size() - 1)
	}
	cur := a.currentBlock()
	cur.slots = cur.slots[:target.slot+1]
	used := 0
	for _, sz := range cur.sizes[:target.slot+1] {
		used += sz
	}
	cur.sizes = cur.sizes[:target.slot+1]
	cur.used = used

	a.positions = a.positions[:n]
}

// Len reports the number of live allocations in the arena.
func (a *Arena) Len() int {
	return len(a.positions)
}
