package slab

import (
	"fmt"
	"math/bits"

	"github.com/nmxmxh/slabkit/arena"
	"github.com/nmxmxh/slabkit/config"
)

// Kmalloc is a general-purpose malloc-style facade over the
// power-of-two size classes pre-created by InitKmalloc.
type Kmalloc struct {
	reg *Registry
}

// InitKmalloc pre-creates the "malloc-8" through "malloc-8388608" size
// classes (powers of two, 8-byte aligned) and returns the router over
// them.
func InitKmalloc(reg *Registry) (*Kmalloc, error) {
	for k := config.MinClassLog2; k <= config.MaxClassLog2; k++ {
		size := uint32(1) << uint(k)
		name := fmt.Sprintf("%s%d", config.KmallocPrefix, size)
		if _, err := reg.CreateMemCache(name, size, 8); err != nil {
			return nil, err
		}
	}
	return &Kmalloc{reg: reg}, nil
}

// AllocFromSlab computes k = ceil(log2(size)), rejects sizes above
// the largest configured class, then routes to the first registered
// cache whose class covers k and that isn't one of the two bootstrap
// caches. The align parameter is only honored insofar as the chosen
// class's own alignment satisfies it; callers needing stricter
// alignment than their size class provides are not supported.
func (k *Kmalloc) AllocFromSlab(size, align uint32) (uint32, error) {
	if size == 0 {
		size = 1
	}
	classLog2 := uint(bits.Len32(size - 1))
	if classLog2 > config.MaxClassLog2 {
		return arena.NullAddr, ErrSizeTooLarge
	}
	_ = align // absorbed into the chosen class's own alignment

	var target *MemCache
	k.reg.Each(func(c *MemCache) bool {
		if c.name == k.reg.BootCacheName() || c.name == k.reg.ArrayCacheName() {
			return true
		}
		if uint(bits.TrailingZeros32(c.objectSize)) >= classLog2 {
			target = c
			return false
		}
		return true
	})
	if target == nil {
		return arena.NullAddr, ErrSizeTooLarge
	}
	return target.Alloc()
}

// DeallocToSlab tries every registered cache's Dealloc until one
// reports ownership.
func (k *Kmalloc) DeallocToSlab(addr uint32) error {
	found := false
	k.reg.Each(func(c *MemCache) bool {
		if c.destroyed {
			return true
		}
		if err := c.Dealloc(addr); err == nil {
			found = true
			return false
		}
		return true
	})
	if !found {
		return ErrNotInCache
	}
	return nil
}
