package slab

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmxmxh/slabkit/arena"
	"github.com/nmxmxh/slabkit/config"
	"github.com/nmxmxh/slabkit/testutil"
)

// TestMemCache_ConcurrentUniqueness hammers one cache from CPUS
// goroutines and checks no address is served twice while live
// (Testable Property 3). Run with -race.
func TestMemCache_ConcurrentUniqueness(t *testing.T) {
	src := testutil.NewFakeFrameSource(4096, 4096)
	reg, err := Init(src, arena.NewRoundRobinCPUID(config.CPUS),
		config.System{PageSize: 4096, CacheLineSize: 64}, quietLogger())
	require.NoError(t, err)

	c, err := reg.CreateMemCache("hot", 56, 8)
	require.NoError(t, err)

	var mu sync.Mutex
	live := make(map[uint32]bool)
	var doubles int

	const workers = config.CPUS
	const rounds = 400

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			held := make([]uint32, 0, 8)
			for i := 0; i < rounds; i++ {
				p, err := c.Alloc()
				if err != nil {
					continue
				}
				mu.Lock()
				if live[p] {
					doubles++
				}
				live[p] = true
				mu.Unlock()
				held = append(held, p)

				// Free in bursts so addresses flow through every tier.
				if len(held) == cap(held) {
					for _, q := range held {
						mu.Lock()
						delete(live, q)
						mu.Unlock()
						assert.NoError(t, c.Dealloc(q))
					}
					held = held[:0]
				}
			}
			for _, q := range held {
				mu.Lock()
				delete(live, q)
				mu.Unlock()
				assert.NoError(t, c.Dealloc(q))
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, doubles, "an address was served twice while live")

	info := c.GetCacheInfo()
	assert.Equal(t, uint64(0), info.Used, "all objects returned")
}

// TestRegistry_ConcurrentCreate checks the registry survives parallel
// cache creation with one winner per name.
func TestRegistry_ConcurrentCreate(t *testing.T) {
	reg, _ := newTestRegistry(t, 4096, 64, 1024)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = reg.CreateMemCache("contested", 56, 8)
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch err {
		case nil:
			ok++
		case ErrNameDuplicate:
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one creation wins")
	assert.Equal(t, racers-1, dup)
}
