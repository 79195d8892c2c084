// Package slab implements the three-tier SLAB object allocator: slab
// sizing and layout, the bounded array cache, the per-cache slab pool
// (partial/full/free lists), and the per-CPU-tiered MemCache that
// ties them together. This is the engine the root slabkit package and
// the kmalloc facade are both built on.
package slab

import (
	"fmt"

	"github.com/nmxmxh/slabkit/arena"
	"github.com/nmxmxh/slabkit/config"
	"github.com/nmxmxh/slabkit/internal/obslog"
	"github.com/nmxmxh/slabkit/intrusive"
)

// system bundles the collaborators Init fixes once: the frame
// source, the CPU-id oracle, and the configured page/cache-line
// sizes.
type system struct {
	frameSource   arena.FrameSource
	cpuOracle     arena.CPUIDOracle
	pageSize      uint32
	cacheLineSize uint32
	log           *obslog.Logger
}

// MemCache is a single size class: CPUS per-CPU array caches, one
// cacheNode, sizing parameters, and coloring state.
type MemCache struct {
	link intrusive.Link[*MemCache] // registry membership

	name       string
	objectSize uint32
	align      uint32

	perFrames  uint32
	perObjects uint32

	color     uint32
	colorOff  uint32
	colorNext uint32

	layout LayoutMode

	perCPU [config.CPUS]*arrayCache
	node   *cacheNode

	// Bookkeeping addresses the registry debited for this cache: the
	// MemCache object itself from the boot cache, and CPUS+1
	// ArrayCaches from the array-cache cache. Destroy returns them.
	selfAddr uint32
	acAddrs  []uint32

	system    *system
	destroyed bool
}

func (c *MemCache) GetLink() *intrusive.Link[*MemCache] { return &c.link }

func (c *MemCache) logger() *obslog.Logger { return c.system.log }

// FrameSource exposes the backing FrameSource so the typed object
// allocator facade can read/write real memory at addresses this cache
// hands out.
func (c *MemCache) FrameSource() arena.FrameSource { return c.system.frameSource }

func cacheField(c *MemCache) obslog.Field { return obslog.String("cache", c.name) }

// newMemCache constructs an un-registered MemCache for the given size
// class, with its cacheNode already attached. Callers
// (create_mem_cache, bootstrap) are responsible for wiring perCPU and
// registering it.
func newMemCache(sys *system, name string, objectSize, align uint32) *MemCache {
	// A non-power-of-two align falls back to the machine word; anything
	// smaller is promoted to 8.
	if align == 0 || align&(align-1) != 0 {
		align = 8
	} else if align < 8 {
		align = 8
	}
	if objectSize == 0 {
		objectSize = 1
	}
	objectSize = alignUp(objectSize, align)

	l := computeLayout(objectSize, align, sys.pageSize, sys.cacheLineSize)

	return &MemCache{
		name:       name,
		objectSize: objectSize,
		align:      align,
		perFrames:  l.perFrames,
		perObjects: l.perObjects,
		color:      l.color,
		colorOff:   sys.cacheLineSize,
		layout:     l.mode,
		system:     sys,
		node:       newCacheNode(),
	}
}

// nextColorOffset returns the next slab's coloring offset and
// advances the rotation (modulo color+1).
func (c *MemCache) nextColorOffset() uint32 {
	off := c.colorOff * c.colorNext
	c.colorNext = (c.colorNext + 1) % (c.color + 1)
	return off
}

// Alloc serves one object through the three-tier hot path: the
// per-CPU array cache first, refilling from the node (shared array or
// slab pool) on empty.
func (c *MemCache) Alloc() (uint32, error) {
	if c.destroyed {
		c.logger().Fatal("alloc on destroyed cache", cacheField(c))
	}

	cpu := c.system.cpuOracle.CurrentCPU()
	ac := c.perCPU[cpu]

	ac.lock.Lock()
	defer ac.lock.Unlock()

	if ac.empty() {
		buf := make([]uint32, ac.batch)
		if err := c.node.alloc(c, buf); err != nil {
			c.logger().Warn("slab refill failed", cacheField(c), obslog.Err(err))
			return arena.NullAddr, err
		}
		ac.push(buf)
	}
	return ac.get(), nil
}

// Dealloc returns addr to this cache's per-CPU tier, spilling a
// batch to the node when the tier is full.
func (c *MemCache) Dealloc(addr uint32) error {
	if c.destroyed {
		c.logger().Fatal("dealloc on destroyed cache", cacheField(c))
	}
	if !c.node.isInCache(addr) {
		return ErrNotInCache
	}

	cpu := c.system.cpuOracle.CurrentCPU()
	ac := c.perCPU[cpu]

	ac.lock.Lock()
	defer ac.lock.Unlock()

	if ac.full() {
		buf := make([]uint32, ac.batch)
		ac.pop(buf)
		if err := c.node.dealloc(c, buf); err != nil {
			return err
		}
	}
	ac.put(addr)
	return nil
}

// SlabInfo is the introspection row returned by GetCacheInfo and
// dumped by PrintSlabSystemInfo.
type SlabInfo struct {
	Name       string
	ObjectSize uint32
	Align      uint32
	PerFrames  uint32
	PerObjects uint32
	Total      uint64
	Used       uint64
	Limit      uint32
	Batch      uint32
	Local      uint64
	Shared     uint32
}

// GetCacheInfo snapshots the cache's occupancy. Used counts objects
// held by callers: objects parked in the array-cache tiers are not
// used, even though their slabs still account for them.
func (c *MemCache) GetCacheInfo() SlabInfo {
	if c.destroyed {
		c.logger().Fatal("info on destroyed cache", cacheField(c))
	}
	var local uint64
	for _, ac := range c.perCPU {
		if ac != nil {
			ac.lock.Lock()
			local += uint64(ac.avail)
			ac.lock.Unlock()
		}
	}

	totalSlabs, used := c.node.counts()
	shared := c.node.sharedAvail()

	return SlabInfo{
		Name:       c.name,
		ObjectSize: c.objectSize,
		Align:      c.align,
		PerFrames:  c.perFrames,
		PerObjects: c.perObjects,
		Total:      uint64(totalSlabs) * uint64(c.perObjects),
		Used:       used - uint64(shared) - local,
		Limit:      config.PerCPUObjects,
		Batch:      config.Batch,
		Local:      local,
		Shared:     shared,
	}
}

// ReclaimFrames returns every free-list slab's frames to the frame
// source and reports how many frames were released. The hook an
// external frame manager calls under memory pressure.
func (c *MemCache) ReclaimFrames() uint32 {
	if c.destroyed {
		c.logger().Fatal("reclaim on destroyed cache", cacheField(c))
	}
	return c.node.reclaimFree(c)
}

// Destroy reclaims every slab the cache holds and marks the cache
// destroyed; any later operation on it aborts. Callers go through
// Registry.Destroy, which also unlinks the cache and returns its
// bookkeeping objects to the bootstrap caches.
func (c *MemCache) Destroy() {
	c.node.destroy(c)
	c.destroyed = true
	c.logger().Debug("cache destroyed", cacheField(c))
}

func (c *MemCache) String() string {
	return fmt.Sprintf("MemCache{%s object_size=%d align=%d}", c.name, c.objectSize, c.align)
}
