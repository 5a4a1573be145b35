package alloc

import "errors"

var (
	// ErrArenaUnavailable indicates the arena could not be acquired. The heap
	// is unusable.
	ErrArenaUnavailable = errors.New("alloc: arena unavailable")

	// ErrAlreadyInitialized indicates Init was called on a live heap.
	ErrAlreadyInitialized = errors.New("alloc: heap already initialized")

	// ErrNotInitialized indicates an operation ran before Init.
	ErrNotInitialized = errors.New("alloc: heap not initialized")

	// ErrOutOfMemory indicates no free region is large enough. The free list
	// is unchanged; the call may succeed after other blocks are released.
	ErrOutOfMemory = errors.New("alloc: no free region large enough")

	// ErrBadSize indicates a non-positive allocation request.
	ErrBadSize = errors.New("alloc: size must be positive")

	// ErrCorruptPointer indicates a pointer that does not lead to a live
	// allocation header. Nothing is reclaimed: a leak is preferred to a
	// corrupted free list.
	ErrCorruptPointer = errors.New("alloc: corrupt or foreign pointer")

	// ErrCorruptFreeList indicates a free-list node was overwritten, usually
	// by a write past the end of a payload.
	ErrCorruptFreeList = errors.New("alloc: free list corrupted")
)
