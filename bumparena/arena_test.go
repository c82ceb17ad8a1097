package bumparena

import "testing"

func TestAllocateAndDeref(t *testing.T) {
	a := New()
	p, err := Allocate(a, func() (int, error) { return 42, nil })
	if err != nil {
		t.Fatal(err)
	}
	if *p != 42 {
		t.Fatalf("got %d, want 42", *p)
	}
	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}
}

func TestFailingBuilderLeavesArenaUnchanged(t *testing.T) {
	a := New()
	mark := a.Mark()
	_, err := Allocate(a, func() (int, error) { return 0, errTestBoom })
	if err != errTestBoom {
		t.Fatalf("expected errTestBoom, got %v", err)
	}
	if a.Mark() != mark {
		t.Fatalf("a failed build must not advance the arena's state")
	}
}

type recorder struct {
	id  int
	log *[]int
}

func (r *recorder) Finalize() {
	*r.log = append(*r.log, r.id)
}

func TestResetRunsFinalizersInReverseOrder(t *testing.T) {
	a := New()
	var log []int

	outer := a.Mark()
	_, _ = Allocate(a, func() (recorder, error) { return recorder{id: 1, log: &log}, nil })
	inner := a.Mark()
	_, _ = Allocate(a, func() (recorder, error) { return recorder{id: 2, log: &log}, nil })
	_, _ = Allocate(a, func() (recorder, error) { return recorder{id: 3, log: &log}, nil })

	a.Reset(inner)
	if len(log) != 2 || log[0] != 3 || log[1] != 2 {
		t.Fatalf("expected finalizers 3 then 2, got %v", log)
	}
	if a.Len() != 1 {
		t.Fatalf("Len() after partial reset = %d, want 1", a.Len())
	}

	a.Reset(outer)
	if len(log) != 3 || log[2] != 1 {
		t.Fatalf("expected finalizer 1 to run last, got %v", log)
	}
	if a.Len() != 0 {
		t.Fatalf("Len() after full reset = %d, want 0", a.Len())
	}
}

func TestResetToZeroEmptiesArena(t *testing.T) {
	a := New()
	for i := 0; i < 5; i++ {
		_, _ = Allocate(a, func() (int, error) { return i, nil })
	}
	a.Reset(State(0))
	if a.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", a.Len())
	}
	p, err := Allocate(a, func() (int, error) { return 99, nil })
	if err != nil {
		t.Fatal(err)
	}
	if *p != 99 {
		t.Fatalf("got %d, want 99", *p)
	}
}

func TestAllocationSpanningManyBlocks(t *testing.T) {
	a := New()
	const n = 4000
	ptrs := make([]*[64]byte, n)
	for i := range ptrs {
		idx := i
		p, err := Allocate(a, func() ([64]byte, error) {
			var buf [64]byte
			buf[0] = byte(idx)
			return buf, nil
		})
		if err != nil {
			t.Fatal(err)
		}
		ptrs[i] = p
	}
	for i, p := range ptrs {
		if p[0] != byte(i) {
			t.Fatalf("slot %d corrupted: got %d", i, p[0])
		}
	}
	if a.blocks.Size() < 2 {
		t.Fatalf("expected allocation to span multiple blocks, got %d", a.blocks.Size())
	}
}

func TestOversizeAllocationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for an allocation larger than BlockSize")
		}
	}()
	a := New()
	type oversize [BlockSize + 1]byte
	_, _ = Allocate(a, func() (oversize, error) { return oversize{}, nil })
}

var errTestBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }
