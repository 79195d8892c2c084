package slab

import "errors"

// Sentinel errors, compared with ==. The taxonomy is flat; nothing
// here wraps anything else.
var (
	ErrNameTooLong          = errors.New("slab: cache name too long")
	ErrNameDuplicate        = errors.New("slab: cache name already registered")
	ErrArrayCacheAllocError = errors.New("slab: could not allocate an array cache")
	ErrCantAllocFrame       = errors.New("slab: frame source returned no frames")
	ErrNotInCache           = errors.New("slab: address not owned by this cache")
	ErrSizeTooLarge         = errors.New("slab: requested size exceeds largest class")
)
