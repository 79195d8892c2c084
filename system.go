// Package slabkit is the root facade over the slab allocator engine:
// System bring-up, the typed object allocator wrapper, and re-exports
// of the error taxonomy and introspection types callers need without
// reaching into the slab package directly.
package slabkit

import (
	"github.com/nmxmxh/slabkit/arena"
	"github.com/nmxmxh/slabkit/config"
	"github.com/nmxmxh/slabkit/internal/obslog"
	"github.com/nmxmxh/slabkit/slab"
)

// Re-exported error taxonomy.
var (
	ErrNameTooLong          = slab.ErrNameTooLong
	ErrNameDuplicate        = slab.ErrNameDuplicate
	ErrArrayCacheAllocError = slab.ErrArrayCacheAllocError
	ErrCantAllocFrame       = slab.ErrCantAllocFrame
	ErrNotInCache           = slab.ErrNotInCache
	ErrSizeTooLarge         = slab.ErrSizeTooLarge
)

// MemCache and SlabInfo are re-exported so callers never need to
// import the internal slab package directly.
type MemCache = slab.MemCache
type SlabInfo = slab.SlabInfo

// System is the live slab allocator: the registry of MemCaches plus
// the kmalloc facade over it. Construct one with Init.
type System struct {
	Registry *slab.Registry
	Kmalloc  *slab.Kmalloc
}

// Init brings up the whole allocator: the boot cache and the
// array-cache cache first, then the "malloc-8".."malloc-8388608" size
// classes. Call it once, before anything else.
func Init(src arena.FrameSource, cpuOracle arena.CPUIDOracle, cfg config.System) (*System, error) {
	reg, err := slab.Init(src, cpuOracle, cfg, obslog.Default())
	if err != nil {
		return nil, err
	}
	km, err := slab.InitKmalloc(reg)
	if err != nil {
		return nil, err
	}
	return &System{Registry: reg, Kmalloc: km}, nil
}

// CreateMemCache registers a new object-typed size class.
func (s *System) CreateMemCache(name string, objectSize, align uint32) (*MemCache, error) {
	return s.Registry.CreateMemCache(name, objectSize, align)
}

// AllocFromSlab routes a generic allocation request through the
// kmalloc size-class router.
func (s *System) AllocFromSlab(size, align uint32) (uint32, error) {
	return s.Kmalloc.AllocFromSlab(size, align)
}

// DeallocToSlab routes a generic free through the kmalloc facade.
func (s *System) DeallocToSlab(addr uint32) error {
	return s.Kmalloc.DeallocToSlab(addr)
}

// PrintSlabSystemInfo returns a snapshot row per registered cache,
// bootstrap caches included.
func (s *System) PrintSlabSystemInfo() []SlabInfo {
	return s.Registry.DumpAll()
}

// ReclaimFrames sweeps every cache's free slab list back to the frame
// source, the hook the external frame manager calls under memory
// pressure. Returns the number of frames released.
func (s *System) ReclaimFrames() uint32 {
	return s.Registry.ReclaimAll()
}
