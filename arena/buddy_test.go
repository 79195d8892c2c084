package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuddyFrameSource_Allocate(t *testing.T) {
	// 16 pages of 4KiB; the first page is reserved so offset 0 can
	// mean "null".
	b := NewBuddyFrameSource(4096, 16)
	base := uint32(4096)

	off1, err := b.AllocFrames(1)
	require.NoError(t, err)
	assert.Equal(t, base, off1, "first allocation starts at the base")

	off2, err := b.AllocFrames(1)
	require.NoError(t, err)
	assert.Equal(t, base+4096, off2)

	off3, err := b.AllocFrames(2)
	require.NoError(t, err)
	assert.Equal(t, base+2*4096, off3)

	b.FreeFrames(off1, 1)
	b.FreeFrames(off2, 1)
	b.FreeFrames(off3, 2)

	// Everything coalesced: a max-order run fits again at the base.
	off4, err := b.AllocFrames(16)
	require.NoError(t, err)
	assert.Equal(t, base, off4)
}

func TestBuddyFrameSource_SplitAndCoalesce(t *testing.T) {
	b := NewBuddyFrameSource(4096, 16)
	base := uint32(4096)

	// One small allocation splits the max-order block all the way down.
	small, err := b.AllocFrames(1)
	require.NoError(t, err)
	assert.Equal(t, base, small)

	// The split buddies serve the next power-of-two requests.
	mid, err := b.AllocFrames(4)
	require.NoError(t, err)
	assert.Equal(t, base+4*4096, mid)

	big, err := b.AllocFrames(8)
	require.NoError(t, err)
	assert.Equal(t, base+8*4096, big)

	// Freeing in arbitrary order still coalesces back to one run.
	b.FreeFrames(mid, 4)
	b.FreeFrames(small, 1)
	b.FreeFrames(big, 8)

	all, err := b.AllocFrames(16)
	require.NoError(t, err)
	assert.Equal(t, base, all)
}

func TestBuddyFrameSource_Exhaustion(t *testing.T) {
	b := NewBuddyFrameSource(4096, 4)

	_, err := b.AllocFrames(4)
	require.NoError(t, err)

	_, err = b.AllocFrames(1)
	assert.ErrorIs(t, err, ErrOutOfFrames)

	// Requests beyond the arena size fail outright.
	_, err = b.AllocFrames(8)
	assert.ErrorIs(t, err, ErrOutOfFrames)
}

func TestBuddyFrameSource_NeverReturnsNull(t *testing.T) {
	b := NewBuddyFrameSource(4096, 8)
	for i := 0; i < 8; i++ {
		off, err := b.AllocFrames(1)
		require.NoError(t, err)
		assert.NotZero(t, off)
	}
}

type failingSource struct {
	pageSize uint32
	calls    int
}

func (f *failingSource) AllocFrames(n uint32) (uint32, error) {
	f.calls++
	return NullAddr, ErrOutOfFrames
}
func (f *failingSource) FreeFrames(addr uint32, n uint32) {}
func (f *failingSource) PageSize() uint32                 { return f.pageSize }
func (f *failingSource) Bytes() []byte                    { return nil }

func TestBreakerFrameSource_TripsOpen(t *testing.T) {
	inner := &failingSource{pageSize: 4096}
	b := NewBreakerFrameSource(inner, 2)

	// Failures pass through until the trip threshold, then the breaker
	// fails fast without consulting the inner source.
	for i := 0; i < 5; i++ {
		_, err := b.AllocFrames(1)
		assert.Error(t, err)
	}
	assert.Equal(t, 2, inner.calls, "inner source consulted only until the breaker tripped")
}

func TestBreakerFrameSource_Delegates(t *testing.T) {
	inner := NewBuddyFrameSource(4096, 8)
	b := NewBreakerFrameSource(inner, 3)

	assert.Equal(t, uint32(4096), b.PageSize())

	off, err := b.AllocFrames(2)
	require.NoError(t, err)
	assert.NotZero(t, off)
	b.FreeFrames(off, 2)

	again, err := b.AllocFrames(8)
	require.NoError(t, err)
	assert.Equal(t, off, again, "frames freed through the breaker coalesce in the inner source")
}
