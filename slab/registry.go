package slab

import (
	"unsafe"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/nmxmxh/slabkit/arena"
	"github.com/nmxmxh/slabkit/config"
	"github.com/nmxmxh/slabkit/internal/obslog"
	"github.com/nmxmxh/slabkit/intrusive"
)

// Registry is the global linked list of all MemCaches, anchoring the
// boot cache and the array-cache cache. It is append-only at
// CreateMemCache and remove-only at Destroy, with iteration and
// mutation serialized under a single spin lock.
type Registry struct {
	lock spinLock

	caches intrusive.List[*MemCache]

	// names is a bloom filter over registered cache names, so the
	// common non-duplicate case in CreateMemCache short-circuits
	// without a full list walk. It only ever yields a false positive
	// ("maybe a duplicate, go check"), never a false negative; the
	// exact list scan remains the source of truth.
	names *bloom.BloomFilter

	sys *system

	boot      *MemCache
	arrayMeta *MemCache
}

// Init performs the three-phase bootstrap and returns a ready
// Registry: statics, then the boot cache (the cache that allocates
// MemCaches), then the array-cache cache. It must be called exactly
// once before any other registry or cache operation.
func Init(src arena.FrameSource, cpuOracle arena.CPUIDOracle, cfg config.System, log *obslog.Logger) (*Registry, error) {
	if log == nil {
		log = obslog.Default()
	}
	sys := &system{frameSource: src, cpuOracle: cpuOracle, pageSize: cfg.PageSize, cacheLineSize: cfg.CacheLineSize, log: log}

	r := &Registry{
		sys:   sys,
		names: bloom.NewWithEstimates(1024, 0.01),
	}

	// Phase 1+2: the boot cache, sized for MemCache itself, wired to
	// freshly constructed per-CPU/shared array caches. A freestanding
	// kernel reserves these in BSS; a hosted runtime's GC owns the
	// same storage instead, with the bootstrap sequencing and
	// accounting unchanged.
	memCacheSize := uint32(unsafe.Sizeof(MemCache{}))
	r.boot = newMemCache(sys, config.BootCacheName, memCacheSize, 8)
	for i := range r.boot.perCPU {
		r.boot.perCPU[i] = newPerCPUArrayCache()
	}
	r.register(r.boot)

	// Phase 3: the array-cache cache. Its MemCache object is debited
	// from the boot cache like any later cache's would be; its
	// per-CPU/shared array caches are the second statically reserved
	// set, so nothing is debited from the cache being brought up.
	arrayMetaSelf, err := r.boot.Alloc()
	if err != nil {
		return nil, err
	}
	arrayCacheSize := uint32(unsafe.Sizeof(arrayCache{}))
	r.arrayMeta = newMemCache(sys, config.ArrayCacheName, arrayCacheSize, 8)
	r.arrayMeta.selfAddr = arrayMetaSelf
	for i := range r.arrayMeta.perCPU {
		r.arrayMeta.perCPU[i] = newPerCPUArrayCache()
	}
	r.register(r.arrayMeta)

	log.Info("slab system initialized",
		obslog.Uint32("page_size", cfg.PageSize),
		obslog.Uint32("cache_line", cfg.CacheLineSize))
	return r, nil
}

func (r *Registry) register(c *MemCache) {
	r.caches.PushBack(c)
	r.names.Add([]byte(c.name))
}

// CreateMemCache validates the name, allocates a MemCache object
// from the boot cache and its per-CPU/shared array caches from the
// array-cache cache, computes sizing, and registers the result.
func (r *Registry) CreateMemCache(name string, objectSize, align uint32) (*MemCache, error) {
	if len(name) > config.CacheNameMax {
		return nil, ErrNameTooLong
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if r.names.Test([]byte(name)) {
		dup := false
		r.caches.Each(func(c *MemCache) bool {
			if c.name == name {
				dup = true
				return false
			}
			return true
		})
		if dup {
			return nil, ErrNameDuplicate
		}
	}

	selfAddr, err := r.boot.Alloc()
	if err != nil {
		return nil, err
	}
	c := newMemCache(r.sys, name, objectSize, align)
	c.selfAddr = selfAddr

	// CPUS per-CPU array caches plus the node's shared one, each
	// debited from the array-cache cache.
	c.acAddrs = make([]uint32, 0, config.CPUS+1)
	for i := range c.perCPU {
		addr, err := r.arrayMeta.Alloc()
		if err != nil {
			return nil, ErrArrayCacheAllocError
		}
		c.acAddrs = append(c.acAddrs, addr)
		c.perCPU[i] = newPerCPUArrayCache()
	}
	addr, err := r.arrayMeta.Alloc()
	if err != nil {
		return nil, ErrArrayCacheAllocError
	}
	c.acAddrs = append(c.acAddrs, addr)

	r.register(c)
	r.sys.log.Debug("cache created", cacheField(c),
		obslog.Uint32("object_size", c.objectSize),
		obslog.Uint32("align", c.align),
		obslog.Uint32("per_objects", c.perObjects))
	return c, nil
}

// Destroy tears a cache down: returns its array-cache objects to the
// array-cache cache, reclaims its slabs, marks it destroyed, unlinks
// it, and finally returns the MemCache object itself to the boot
// cache.
func (r *Registry) Destroy(c *MemCache) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, addr := range c.acAddrs {
		r.arrayMeta.Dealloc(addr)
	}
	c.Destroy()
	r.caches.Remove(c)
	if c.selfAddr != arena.NullAddr {
		r.boot.Dealloc(c.selfAddr)
	}
}

// ReclaimAll sweeps every registered cache's free list back to the
// frame source, repeating until a pass releases nothing (a slab that a
// concurrent Dealloc moves onto a free list during one pass is caught
// by the next). Returns the total number of frames released.
func (r *Registry) ReclaimAll() uint32 {
	var total uint32
	for {
		var pass uint32
		r.Each(func(c *MemCache) bool {
			pass += c.ReclaimFrames()
			return true
		})
		if pass == 0 {
			return total
		}
		total += pass
	}
}

// DumpAll returns SlabInfo rows for every registered cache, including
// the two bootstrap caches: introspection sees them even though
// kmalloc routing deliberately skips them.
func (r *Registry) DumpAll() []SlabInfo {
	r.lock.Lock()
	defer r.lock.Unlock()

	var out []SlabInfo
	r.caches.Each(func(c *MemCache) bool {
		out = append(out, c.GetCacheInfo())
		return true
	})
	return out
}

// Each iterates every registered cache under the registry lock,
// stopping early if fn returns false. Used by the kmalloc facade to
// find a cache's size class and to route frees.
func (r *Registry) Each(fn func(*MemCache) bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.caches.Each(fn)
}

// BootCacheName and ArrayCacheName report the names of the two
// bootstrap caches, so callers (kmalloc) can exclude them from
// user-facing routing without importing config directly.
func (r *Registry) BootCacheName() string  { return r.boot.name }
func (r *Registry) ArrayCacheName() string { return r.arrayMeta.name }
