package slab

import (
	"github.com/nmxmxh/slabkit/arena"
	"github.com/nmxmxh/slabkit/intrusive"
)

// LayoutMode selects whether a Slab's own descriptor and freelist live
// inside the slab's own page frames (LayoutOn, for small objects) or
// out of band (LayoutOff, for large objects, so the frames hold
// nothing but objects).
type LayoutMode int

const (
	LayoutOn LayoutMode = iota
	LayoutOff
)

// Slab is one contiguous run of page frames divided into equal-size
// object slots. The freelist is a stack of free slot indices with
// nextFree as its cursor, so alloc and dealloc are O(1) with no
// scanning.
//
// Slab metadata itself always lives on the Go heap regardless of
// LayoutMode: LayoutMode drives the sizing search and the
// first object's placement (LayoutOn reserves the descriptor block at
// the front of the frame run), but a hosted runtime with its own GC
// has no need to recursively carve its own bookkeeping out of the
// slab system the way a freestanding kernel would.
type Slab struct {
	link intrusive.Link[*Slab]

	cache *MemCache // non-owning back-reference; owner is the Registry

	used     uint32
	nextFree uint32 // cursor into freeList; also the count of allocated objects

	firstObjectAddr uint32 // already includes the coloring offset
	colorOffset     uint32

	start  uint32 // raw frame base address, before coloring
	frames uint32 // 2^PerFrames pages

	freeList []uint32 // stack of free object indices, len == PerObjects
}

func (s *Slab) GetLink() *intrusive.Link[*Slab] { return &s.link }

// slabHeaderSize is the in-band descriptor header a LayoutOn slab
// reserves at the start of its frames: two list-link words, the owner
// back-reference, the used/next_free/color cursors, the first-object
// address, and the freelist base, 56 bytes on a 64-bit machine. The
// Go Slab struct above is GC-owned and never actually written in-band,
// but the sizing arithmetic still reserves this header so LayoutOn
// object counts come out the same as they would with an embedded
// descriptor (a cache of 56-byte objects on 4 KiB pages packs 67 per slab, not
// 68).
const slabHeaderSize uint32 = 56

// descriptorBlockSize is the aligned byte count a LayoutOn slab
// reserves ahead of its first object: the header plus one u32
// freelist entry per object, rounded up to the cache's alignment.
func descriptorBlockSize(perObjects, align uint32) uint32 {
	return alignUp(perObjects*4+slabHeaderSize, align)
}

// layout is the sizing decision computed once per MemCache: how many
// objects fit per slab, at what order, with how much color slack.
type layout struct {
	mode       LayoutMode
	perFrames  uint32
	perObjects uint32
	color      uint32
}

func alignUp(x, align uint32) uint32 {
	return (x + align - 1) / align * align
}

// computeLayout runs the sizing search: find the smallest order
// whose internal fragmentation is below 12.5% of the slab.
func computeLayout(objectSize, align, pageSize, cacheLine uint32) layout {
	mode := LayoutOn
	if uint64(objectSize)*8 >= uint64(pageSize) {
		mode = LayoutOff
	}

	for order := uint32(0); ; order++ {
		total := pageSize << order

		var n uint32
		var leftOver uint32

		if mode == LayoutOff {
			n = total / objectSize
			leftOver = total - n*objectSize
		} else {
			if total <= slabHeaderSize {
				continue
			}
			n = (total - slabHeaderSize) / (objectSize + 4)
			for n > 0 {
				if descriptorBlockSize(n, align)+n*objectSize <= total {
					break
				}
				n--
			}
			leftOver = total - n*objectSize - descriptorBlockSize(n, align)
		}

		if n > 0 && uint64(leftOver)*8 < uint64(total) {
			return layout{
				mode:       mode,
				perFrames:  order,
				perObjects: n,
				color:      leftOver / cacheLine,
			}
		}
	}
}

// newSlab requests 2^perFrames frames from src and carves them into
// cache.perObjects equal slots. colorOffset is the caller-computed
// rotating offset (cache.nextColorOffset()).
func newSlab(cache *MemCache, src arena.FrameSource, colorOffset uint32) (*Slab, error) {
	pages := uint32(1) << cache.perFrames
	base, err := src.AllocFrames(pages)
	if err != nil {
		return nil, ErrCantAllocFrame
	}

	s := &Slab{
		cache:       cache,
		start:       base,
		frames:      pages,
		colorOffset: colorOffset,
		freeList:    make([]uint32, cache.perObjects),
	}
	// LayoutOn slabs reserve the descriptor block ahead of the first
	// object; LayoutOff slabs pack objects from the frame base.
	s.firstObjectAddr = base + colorOffset
	if cache.layout == LayoutOn {
		s.firstObjectAddr += descriptorBlockSize(cache.perObjects, cache.align)
	}

	for i := uint32(0); i < cache.perObjects; i++ {
		s.freeList[i] = i
	}
	return s, nil
}

// alloc pops the next free slot. Precondition: s.nextFree < len(freeList).
func (s *Slab) alloc() uint32 {
	idx := s.freeList[s.nextFree]
	s.nextFree++
	s.used++
	return s.firstObjectAddr + idx*s.cache.objectSize
}

// dealloc pushes addr's slot index back onto the freelist.
func (s *Slab) dealloc(addr uint32) {
	idx := (addr - s.firstObjectAddr) / s.cache.objectSize
	s.nextFree--
	s.freeList[s.nextFree] = idx
	s.used--
}

// isInSlab reports whether addr was served by this slab: inside the
// frame run, at or past the first object, and on an object boundary.
func (s *Slab) isInSlab(addr uint32) bool {
	end := s.start + s.frames*s.cache.system.pageSize
	return addr >= s.firstObjectAddr && addr < end &&
		(addr-s.firstObjectAddr)%s.cache.objectSize == 0
}

// full reports whether every slot is allocated.
func (s *Slab) full() bool { return s.used == uint32(len(s.freeList)) }

// empty reports whether every slot is free.
func (s *Slab) empty() bool { return s.used == 0 }

// reclaim returns the slab's backing frames to the frame source.
// A freestanding LayoutOff slab would return its descriptor and
// freelist to the slab system first; here they are plain Go heap
// values collected once unlinked, so only the frames need freeing.
func (s *Slab) reclaim(src arena.FrameSource) {
	src.FreeFrames(s.start, s.frames)
}
