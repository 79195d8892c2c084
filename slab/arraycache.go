package slab

import "github.com/nmxmxh/slabkit/config"

// arrayCache is a bounded stack of object addresses interposed between
// callers and the slab pool. Two roles share this type:
// per-CPU (one per CPU, guarded by its own spinLock) and shared (one
// per CacheNode, the victim/refill buffer between per-CPU tiers and
// the slab pool).
//
// get/put are the hot path and stay strictly LIFO for cache locality;
// overflow spill (pop) drains the bottom (oldest) batch instead,
// evicting cold entries first. The asymmetry is deliberate.
type arrayCache struct {
	lock spinLock

	avail   uint32
	limit   uint32
	batch   uint32
	entries []uint32
}

func newArrayCache(limit, batch uint32) *arrayCache {
	return &arrayCache{
		limit:   limit,
		batch:   batch,
		entries: make([]uint32, limit),
	}
}

func newPerCPUArrayCache() *arrayCache {
	return newArrayCache(config.PerCPUObjects, config.Batch)
}

// push appends batch entries at the top. Caller holds the lock.
func (a *arrayCache) push(batch []uint32) {
	for _, v := range batch {
		a.entries[a.avail] = v
		a.avail++
	}
}

// popBack copies the top batch entries into out (LIFO) and shrinks
// avail accordingly. Caller holds the lock and has checked avail>=batch.
func (a *arrayCache) popBack(out []uint32) {
	n := uint32(len(out))
	start := a.avail - n
	copy(out, a.entries[start:a.avail])
	a.avail = start
}

// pop copies the bottom batch entries into out (FIFO over the whole
// cache's history of pushes) and shifts the remainder down. Used only
// when the cache is completely full, to spill the oldest batch.
func (a *arrayCache) pop(out []uint32) {
	n := uint32(len(out))
	copy(out, a.entries[:n])
	copy(a.entries, a.entries[n:a.avail])
	a.avail -= n
}

// get pops a single entry, LIFO. Caller holds the lock and has
// checked avail>0.
func (a *arrayCache) get() uint32 {
	a.avail--
	return a.entries[a.avail]
}

// put pushes a single entry. Caller holds the lock and has checked
// avail<limit.
func (a *arrayCache) put(addr uint32) {
	a.entries[a.avail] = addr
	a.avail++
}

func (a *arrayCache) full() bool  { return a.avail == a.limit }
func (a *arrayCache) empty() bool { return a.avail == 0 }
