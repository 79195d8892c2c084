package slab

import (
	"github.com/nmxmxh/slabkit/arena"
	"github.com/nmxmxh/slabkit/config"
	"github.com/nmxmxh/slabkit/internal/obslog"
	"github.com/nmxmxh/slabkit/intrusive"
)

// cacheNode is the pool for one size class: three intrusive lists of
// slabs, bucketed by occupancy, plus the one shared array cache that
// arbitrates between the per-CPU tiers and the slab lists. List links
// are exclusively owned by the node.
//
// Two locks live here, acquired in the fixed order
// shared → listLock → FrameSource (after any per-CPU lock the caller
// already holds). The shared array cache's lock serializes the tier
// hand-off; listLock guards the three lists and freeLen.
type cacheNode struct {
	listLock spinLock

	partial intrusive.List[*Slab]
	full    intrusive.List[*Slab]
	free    intrusive.List[*Slab]

	freeLen uint32

	shared *arrayCache
}

func newCacheNode() *cacheNode {
	return &cacheNode{shared: newArrayCache(config.PerCPUObjects, config.Batch)}
}

// allocInner picks (or creates) a slab with a free slot, pops one
// object from it, and re-buckets the slab. Caller holds listLock.
func (n *cacheNode) allocInner(cache *MemCache) (uint32, error) {
	var s *Slab
	if !n.partial.Empty() {
		s = n.partial.Front()
	} else {
		if n.free.Empty() {
			ns, err := newSlab(cache, cache.system.frameSource, cache.nextColorOffset())
			if err != nil {
				return arena.NullAddr, err
			}
			n.free.PushFront(ns)
			n.freeLen++
		}
		s = n.free.Front()
		n.free.Remove(s)
		n.freeLen--
		n.partial.PushFront(s)
	}

	addr := s.alloc()
	if s.full() {
		n.partial.Remove(s)
		n.full.PushFront(s)
	}
	return addr, nil
}

// alloc drains len(out) objects into out, preferring the shared
// array (LIFO, via popBack) over the slab lists.
func (n *cacheNode) alloc(cache *MemCache, out []uint32) error {
	n.shared.lock.Lock()
	defer n.shared.lock.Unlock()

	if n.shared.avail >= uint32(len(out)) {
		n.shared.popBack(out)
		return nil
	}
	n.listLock.Lock()
	defer n.listLock.Unlock()
	for i := range out {
		addr, err := n.allocInner(cache)
		if err != nil {
			// Give back the partial batch so a failed refill leaves
			// the accounting untouched.
			for j := 0; j < i; j++ {
				n.deallocInner(cache, out[j])
			}
			return err
		}
		out[i] = addr
	}
	return nil
}

// findSlab scans partial then full for the slab owning addr. Objects
// sitting in array caches are still counted in their slab's used, so
// a live address can never belong to a free-list slab. Caller holds
// listLock.
func (n *cacheNode) findSlab(addr uint32) *Slab {
	var found *Slab
	check := func(s *Slab) bool {
		if s.isInSlab(addr) {
			found = s
			return false
		}
		return true
	}
	n.partial.Each(check)
	if found == nil {
		n.full.Each(check)
	}
	return found
}

// deallocInner returns one object to its owning slab and re-buckets
// the slab. Caller holds listLock.
func (n *cacheNode) deallocInner(cache *MemCache, addr uint32) error {
	s := n.findSlab(addr)
	if s == nil {
		return ErrNotInCache
	}
	wasFull := s.full()
	s.dealloc(addr)

	if s.empty() {
		if wasFull {
			n.full.Remove(s)
		} else {
			n.partial.Remove(s)
		}
		n.free.PushFront(s)
		n.freeLen++
		n.checkAndReclaim(cache)
	} else if wasFull {
		n.full.Remove(s)
		n.partial.PushFront(s)
	}
	return nil
}

// dealloc spills the shared array's oldest batch to the slab lists
// (FIFO) if full, then pushes addrs onto it.
func (n *cacheNode) dealloc(cache *MemCache, addrs []uint32) error {
	n.shared.lock.Lock()
	defer n.shared.lock.Unlock()

	if n.shared.full() {
		tmp := make([]uint32, n.shared.batch)
		n.shared.pop(tmp)
		n.listLock.Lock()
		for _, addr := range tmp {
			if err := n.deallocInner(cache, addr); err != nil {
				n.listLock.Unlock()
				return err
			}
		}
		n.listLock.Unlock()
	}
	n.shared.push(addrs)
	return nil
}

// checkAndReclaim bounds the free list: whenever freeLen exceeds
// FreeListMax, the surplus slabs go back to the frame source. No
// caller retains a reference to a free-list slab across this point;
// slabs are only ever reached through partial/full scans. Caller
// holds listLock.
func (n *cacheNode) checkAndReclaim(cache *MemCache) {
	for n.freeLen > config.FreeListMax {
		s := n.free.Front()
		n.free.Remove(s)
		n.freeLen--
		s.reclaim(cache.system.frameSource)
		cache.logger().Debug("reclaimed slab",
			cacheField(cache), obslog.Uint32("addr", s.start))
	}
}

// reclaimFree returns every free-list slab's frames to the frame
// source and reports how many frames went back; this is the hook an
// external frame manager calls under memory pressure.
func (n *cacheNode) reclaimFree(cache *MemCache) uint32 {
	n.listLock.Lock()
	defer n.listLock.Unlock()

	var frames uint32
	for !n.free.Empty() {
		s := n.free.Front()
		n.free.Remove(s)
		n.freeLen--
		frames += s.frames
		s.reclaim(cache.system.frameSource)
	}
	return frames
}

// isInCache reports whether addr is owned by a slab of this node,
// scanning partial then full (an address with a live claim can never
// sit in a free slab).
func (n *cacheNode) isInCache(addr uint32) bool {
	n.listLock.Lock()
	defer n.listLock.Unlock()
	return n.findSlab(addr) != nil
}

// counts returns the slab total and the used-object sum across
// partial and full, one consistent snapshot for SlabInfo.
func (n *cacheNode) counts() (totalSlabs int, usedObjects uint64) {
	n.listLock.Lock()
	defer n.listLock.Unlock()

	totalSlabs = n.partial.Len() + n.full.Len() + n.free.Len()
	n.partial.Each(func(s *Slab) bool { usedObjects += uint64(s.used); return true })
	n.full.Each(func(s *Slab) bool { usedObjects += uint64(s.used); return true })
	return totalSlabs, usedObjects
}

// sharedAvail snapshots the shared array cache's depth.
func (n *cacheNode) sharedAvail() uint32 {
	n.shared.lock.Lock()
	defer n.shared.lock.Unlock()
	return n.shared.avail
}

// destroy reclaims every slab on all three lists; called only from
// MemCache.destroy.
func (n *cacheNode) destroy(cache *MemCache) {
	n.listLock.Lock()
	defer n.listLock.Unlock()

	for _, list := range []*intrusive.List[*Slab]{&n.partial, &n.full, &n.free} {
		for !list.Empty() {
			s := list.Front()
			list.Remove(s)
			s.reclaim(cache.system.frameSource)
		}
	}
	n.freeLen = 0
}
