package slabkit

import "unsafe"

// ObjectAllocator allocates values of a concrete Go type T from a
// MemCache sized for T, running a constructor hook over freshly
// handed-out memory instead of leaving it uninitialized. The
// constructor is a plain function rather than a method-set
// constraint: Go's type parameters can't express "any T with this
// constructor" without forcing every T to carry a matching method,
// which would leak allocator concerns into unrelated value types.
type ObjectAllocator[T any] struct {
	cache     *MemCache
	construct func() T
}

// NewObjectAllocator creates a MemCache sized/aligned for T (via
// unsafe.Sizeof/Alignof) and returns a typed wrapper over it. construct
// is invoked once per freshly allocated slot, never on a recycled one
// already holding a live T.
func NewObjectAllocator[T any](s *System, name string, construct func() T) (*ObjectAllocator[T], error) {
	var zero T
	size := uint32(unsafe.Sizeof(zero))
	if size == 0 {
		size = 1
	}
	align := uint32(unsafe.Alignof(zero))

	cache, err := s.CreateMemCache(name, size, align)
	if err != nil {
		return nil, err
	}
	return &ObjectAllocator[T]{cache: cache, construct: construct}, nil
}

// New allocates one T-sized slot, runs the constructor over it, and
// returns a pointer into the owning cache's backing frame storage.
// The pointer is valid until the corresponding Free (or the cache's
// own destruction); there is no address-stability guarantee beyond
// that.
func (o *ObjectAllocator[T]) New() (*T, error) {
	addr, err := o.cache.Alloc()
	if err != nil {
		return nil, err
	}
	buf := o.cache.FrameSource().Bytes()
	p := (*T)(unsafe.Pointer(&buf[addr]))
	*p = o.construct()
	return p, nil
}

// Free returns p's storage to the owning cache. p must have come from
// New on this same ObjectAllocator.
func (o *ObjectAllocator[T]) Free(p *T) error {
	buf := o.cache.FrameSource().Bytes()
	addr := uint32(uintptr(unsafe.Pointer(p)) - uintptr(unsafe.Pointer(&buf[0])))
	return o.cache.Dealloc(addr)
}

// Info returns the backing cache's introspection snapshot.
func (o *ObjectAllocator[T]) Info() SlabInfo { return o.cache.GetCacheInfo() }
