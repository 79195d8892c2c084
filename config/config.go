// Package config centralizes the compile-time tunables of the slab
// allocator in one place rather than scattering them across packages.
package config

const (
	// CPUS bounds the number of per-CPU array caches each MemCache keeps.
	CPUS = 8

	// PerCPUObjects is the capacity of a per-CPU ArrayCache. Batch is
	// always half of this.
	PerCPUObjects = 16

	// Batch is the refill/drain granularity between tiers.
	Batch = PerCPUObjects / 2

	// FreeListMax is the number of empty slabs a CacheNode keeps on its
	// free list before check_and_reclaim returns the rest to the frame
	// source.
	FreeListMax = 16

	// MaxClassLog2 bounds the largest kmalloc size class at 2^23 (8 MiB).
	MaxClassLog2 = 23

	// CacheNameMax is the longest accepted cache name.
	CacheNameMax = 20

	// BootCacheName and ArrayCacheName name the two bootstrap caches.
	// kmalloc must never route a user request to either of them.
	BootCacheName  = "mem_cache_boot"
	ArrayCacheName = "array_cache"
	KmallocPrefix  = "malloc-"

	// MinClassLog2 is the smallest kmalloc size class, 2^3 = 8 bytes.
	MinClassLog2 = 3
)

// System bundles the two values init_slab_system fixes once at boot:
// the physical page size and the CPU cache-line size used for slab
// coloring. Mirrors the way HybridAllocator bundles its arena offsets.
type System struct {
	PageSize      uint32
	CacheLineSize uint32
}

// DefaultSystem is the common x86-64 configuration: 4 KiB pages,
// 64-byte cache lines.
func DefaultSystem() System {
	return System{PageSize: 4096, CacheLineSize: 64}
}
