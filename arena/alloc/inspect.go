package alloc

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// Inspect walks the free list without modifying it and reports each node
// together with the allocated extents between nodes.
func (h *Heap) Inspect() (Report, error) {
	if h.data == nil {
		return Report{}, ErrNotInitialized
	}

	r := Report{Capacity: len(h.data)}
	cur, err := h.nodeAt(format.HeadOffset)
	if err != nil {
		return Report{}, err
	}
	for {
		r.Nodes = append(r.Nodes, FreeRegion{Offset: cur.off, End: cur.end(), Size: cur.size})
		r.FreeBytes += cur.size
		if cur.size > r.LargestFree {
			r.LargestFree = cur.size
		}

		gapEnd := uint64(len(h.data))
		if !cur.last() {
			gapEnd = uint64(cur.next)
		}
		if gapEnd > cur.end() {
			r.Allocated = append(r.Allocated, AllocatedExtent{
				Offset: cur.end(),
				End:    gapEnd,
				Size:   gapEnd - cur.end(),
			})
		}

		if cur.last() {
			break
		}
		if cur, err = h.follow(cur); err != nil {
			return Report{}, err
		}
	}

	if r.FreeBytes > 0 {
		r.Fragmentation = 1 - float64(r.LargestFree)/float64(r.FreeBytes)
	}
	return r, nil
}

// Stats returns a copy of the allocator counters. FreeBytes and Overhead are
// derived from the counters, not from a list walk.
func (h *Heap) Stats() Stats {
	s := h.stats
	if h.data == nil {
		return s
	}
	s.Overhead = uint64(s.LiveBlocks)*format.HeaderSize + uint64(s.FreeNodes)*format.DescriptorSize
	s.FreeBytes = uint64(len(h.data)) - s.Overhead - s.BytesInUse
	return s
}
