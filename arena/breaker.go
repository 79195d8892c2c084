package arena

import (
	"github.com/sony/gobreaker"
)

// BreakerFrameSource wraps a FrameSource with a circuit breaker that
// trips open after a run of consecutive ErrOutOfFrames results,
// failing fast instead of letting every MemCache on the system
// hammer an already-exhausted physical allocator. It is an opt-in
// decorator: allocation failures never poison a cache, only the path
// to the physical allocator, and only when a caller chooses to wrap
// its source.
type BreakerFrameSource struct {
	inner FrameSource
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerFrameSource wraps inner, tripping open after
// consecutiveFailures back-to-back ErrOutOfFrames results and staying
// open for gobreaker's default timeout (60 seconds) before allowing a
// single probe request.
func NewBreakerFrameSource(inner FrameSource, consecutiveFailures uint32) *BreakerFrameSource {
	st := gobreaker.Settings{
		Name: "frame-source",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
	}
	return &BreakerFrameSource{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerFrameSource) PageSize() uint32 { return b.inner.PageSize() }
func (b *BreakerFrameSource) Bytes() []byte    { return b.inner.Bytes() }

func (b *BreakerFrameSource) AllocFrames(n uint32) (uint32, error) {
	addr, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.AllocFrames(n)
	})
	if err != nil {
		return NullAddr, err
	}
	return addr.(uint32), nil
}

func (b *BreakerFrameSource) FreeFrames(addr uint32, n uint32) {
	b.inner.FreeFrames(addr, n)
}
