package slab

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmxmxh/slabkit/config"
)

func newTestKmalloc(t *testing.T) (*Kmalloc, *Registry) {
	t.Helper()
	reg, _ := newTestRegistry(t, 4096, 64, 1<<13)
	km, err := InitKmalloc(reg)
	require.NoError(t, err)
	return km, reg
}

func TestInitKmalloc_CreatesAllClasses(t *testing.T) {
	_, reg := newTestKmalloc(t)

	names := map[string]bool{}
	for _, info := range reg.DumpAll() {
		names[info.Name] = true
	}
	for k := config.MinClassLog2; k <= config.MaxClassLog2; k++ {
		name := fmt.Sprintf("%s%d", config.KmallocPrefix, uint32(1)<<uint(k))
		assert.Truef(t, names[name], "missing size class %s", name)
	}
}

func TestKmalloc_RoutesToSmallestFittingClass(t *testing.T) {
	km, reg := newTestKmalloc(t)

	// 100 bytes rounds up to the malloc-128 class.
	p, err := km.AllocFromSlab(100, 8)
	require.NoError(t, err)
	require.NotZero(t, p)

	var used uint64
	for _, info := range reg.DumpAll() {
		if info.Name == "malloc-128" {
			used = info.Used
		}
	}
	assert.Equal(t, uint64(1), used)

	require.NoError(t, km.DeallocToSlab(p))
}

func TestKmalloc_ExactPowerOfTwo(t *testing.T) {
	km, reg := newTestKmalloc(t)

	p, err := km.AllocFromSlab(256, 8)
	require.NoError(t, err)

	var used uint64
	for _, info := range reg.DumpAll() {
		if info.Name == "malloc-256" {
			used = info.Used
		}
	}
	assert.Equal(t, uint64(1), used)
	require.NoError(t, km.DeallocToSlab(p))
}

func TestKmalloc_SizeTooLarge(t *testing.T) {
	km, _ := newTestKmalloc(t)

	_, err := km.AllocFromSlab((1<<config.MaxClassLog2)+1, 8)
	assert.ErrorIs(t, err, ErrSizeTooLarge)
}

func TestKmalloc_DeallocUnknownAddress(t *testing.T) {
	km, _ := newTestKmalloc(t)

	assert.ErrorIs(t, km.DeallocToSlab(0xdead00), ErrNotInCache)
}

func TestKmalloc_SkipsBootstrapCaches(t *testing.T) {
	km, reg := newTestKmalloc(t)

	// Request a size the boot cache's class could technically serve;
	// the router must still land on a malloc-* cache.
	size := reg.boot.objectSize
	p, err := km.AllocFromSlab(size, 8)
	require.NoError(t, err)

	bootUsedBefore := reg.boot.GetCacheInfo().Used
	assert.False(t, reg.boot.node.isInCache(p), "boot cache must never serve user requests")
	assert.False(t, reg.arrayMeta.node.isInCache(p))
	require.NoError(t, km.DeallocToSlab(p))
	assert.Equal(t, bootUsedBefore, reg.boot.GetCacheInfo().Used)
}

func TestKmalloc_ManySizesRoundTrip(t *testing.T) {
	km, _ := newTestKmalloc(t)

	var addrs []uint32
	for _, size := range []uint32{1, 8, 9, 63, 64, 65, 500, 1000, 4096, 5000} {
		p, err := km.AllocFromSlab(size, 8)
		require.NoErrorf(t, err, "size %d", size)
		addrs = append(addrs, p)
	}
	for _, p := range addrs {
		require.NoError(t, km.DeallocToSlab(p))
	}
}
