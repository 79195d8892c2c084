// Package arena defines the FrameSource collaborator the slab engine
// is layered on, plus a reference in-memory implementation and a
// circuit-breaker decorator. The slab engine treats the frame source
// as an external collaborator with a fixed interface; this package
// exists so the rest of the module, and its tests, have a real one to
// run against.
package arena

import "errors"

// ErrOutOfFrames is returned by AllocFrames when no contiguous run of
// the requested size is available.
var ErrOutOfFrames = errors.New("arena: out of frames")

// NullAddr is the sentinel "no address" value. Address 0 is never
// handed out by a conforming FrameSource.
const NullAddr uint32 = 0

// FrameSource supplies and reclaims contiguous power-of-two runs of
// page frames. Addresses are offsets into the source's own backing
// store, not raw pointers: every frame-addressed value in this module
// (slab object addresses, ArrayCache entries, kmalloc results) is a
// uint32 offset into Bytes().
type FrameSource interface {
	// AllocFrames returns the base offset of n contiguous frames, or
	// ErrOutOfFrames. n is always a power of two in pages.
	AllocFrames(n uint32) (uint32, error)

	// FreeFrames returns n frames starting at addr, previously
	// returned by AllocFrames, to the source.
	FreeFrames(addr uint32, n uint32)

	// PageSize returns the fixed page size configured at construction.
	PageSize() uint32

	// Bytes exposes the backing store so callers needing real memory
	// (the typed object allocator) can read/write through it.
	Bytes() []byte
}

// CPUIDOracle reports the identifier of the CPU the calling goroutine
// is presently running on, in [0, CPUS). Correctness must never
// depend on the goroutine staying on that CPU between the read and
// the subsequent lock acquisition; only the lock matters.
type CPUIDOracle interface {
	CurrentCPU() int
}
