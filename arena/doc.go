// Package arena acquires the single fixed-size memory region a heap manages.
//
// # Overview
//
// An Arena is requested once, zero-filled, with read/write access. On unix
// systems the default source is an anonymous private mapping obtained with
// mmap(2); elsewhere, or when SourceHeap is requested, the region is an
// ordinary Go byte slice. Either way the caller sees a []byte of exactly the
// requested length.
//
// The region is never resized and never handed back to the operating system
// while the process runs. Memory released by a heap returns to its free list,
// not to the environment.
//
// # Usage
//
//	a, err := arena.Acquire(4096, arena.SourceAuto)
//	if err != nil {
//	    return err
//	}
//	data := a.Bytes() // len(data) == 4096
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/arena/alloc: worst-fit allocator over an Arena
//   - github.com/joshuapare/heapkit/arena/verify: invariant checks over raw arena bytes
package arena
