// Package testutil provides deterministic fakes for allocator tests:
// fixed, predictable addresses so assertions can name exact offsets.
package testutil

import (
	"sync"

	"github.com/nmxmxh/slabkit/arena"
)

// FakeFrameSource hands out page runs bump-pointer style from a
// backing byte slice, never reusing an address. Frees are
// recorded, not recycled, so a test can assert exactly which runs
// came back. FailAfter, when non-negative, makes every AllocFrames
// call past the Nth return ErrOutOfFrames, the hook for exercising
// frame-exhaustion paths.
type FakeFrameSource struct {
	mu sync.Mutex

	store    []byte
	pageSize uint32
	next     uint32

	allocs    int
	FailAfter int

	Freed []FreedRun
}

// FreedRun records one FreeFrames call.
type FreedRun struct {
	Addr  uint32
	Pages uint32
}

// NewFakeFrameSource backs the source with totalPages frames. The
// first page is reserved so no valid address is ever 0.
func NewFakeFrameSource(pageSize, totalPages uint32) *FakeFrameSource {
	return &FakeFrameSource{
		store:     make([]byte, (totalPages+1)*pageSize),
		pageSize:  pageSize,
		next:      pageSize,
		FailAfter: -1,
	}
}

func (f *FakeFrameSource) PageSize() uint32 { return f.pageSize }
func (f *FakeFrameSource) Bytes() []byte    { return f.store }

func (f *FakeFrameSource) AllocFrames(n uint32) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailAfter >= 0 && f.allocs >= f.FailAfter {
		return arena.NullAddr, arena.ErrOutOfFrames
	}
	size := n * f.pageSize
	if f.next+size > uint32(len(f.store)) {
		return arena.NullAddr, arena.ErrOutOfFrames
	}
	addr := f.next
	f.next += size
	f.allocs++
	return addr, nil
}

func (f *FakeFrameSource) FreeFrames(addr uint32, n uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Freed = append(f.Freed, FreedRun{Addr: addr, Pages: n})
}

// AllocCalls reports how many AllocFrames calls have succeeded.
func (f *FakeFrameSource) AllocCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.allocs
}

// FixedCPUID is a CPUIDOracle pinned to one bucket, so single-threaded
// tests always hit the same per-CPU array cache.
type FixedCPUID struct {
	CPU int
}

func (f *FixedCPUID) CurrentCPU() int { return f.CPU }
