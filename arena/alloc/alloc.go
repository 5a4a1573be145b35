package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Alloc returns a pointer to n bytes, rounded up to a multiple of 8.
//
// The block is carved from the tail of the largest free node. Worst fit keeps
// small regions intact and lets the largest region absorb the fragmentation.
// The chosen node is never unlinked, even when it shrinks to zero.
func (h *Heap) Alloc(n int) (Ptr, error) {
	if h.data == nil {
		return 0, ErrNotInitialized
	}
	h.stats.AllocCalls++

	if n <= 0 {
		h.stats.BadSize++
		return 0, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	if n > len(h.data) {
		h.stats.OutOfMemory++
		return 0, fmt.Errorf("%w: need %d, arena is %d bytes", ErrOutOfMemory, n, len(h.data))
	}
	need := uint64(format.Align8(n))

	largest, err := h.worstFit()
	if err != nil {
		return 0, err
	}

	if largest.size < need+format.HeaderSize {
		h.stats.OutOfMemory++
		h.log.Debug("alloc failed",
			"request", n,
			"need", need+format.HeaderSize,
			"largest", largest.size,
		)
		return 0, fmt.Errorf("%w: need %d, largest free region %d",
			ErrOutOfMemory, need+format.HeaderSize, largest.size)
	}

	// Success is guaranteed from here on.
	largest.size -= need + format.HeaderSize
	h.putNode(largest)

	b := block{off: uint32(largest.end()), size: need}
	h.putBlock(b)

	h.stats.AllocOK++
	h.stats.LiveBlocks++
	h.stats.BytesInUse += need
	h.stats.BytesServed += need

	h.log.Debug("alloc",
		"request", n,
		"size", need,
		"ptr", b.payload(),
		"node", largest.off,
		"node_left", largest.size,
	)
	return Ptr(b.payload()), nil
}

// worstFit walks the whole list once and returns the node with the strictly
// largest size. The first node wins ties.
func (h *Heap) worstFit() (node, error) {
	cur, err := h.nodeAt(format.HeadOffset)
	if err != nil {
		return node{}, err
	}
	largest := cur
	for !cur.last() {
		next, err := h.follow(cur)
		if err != nil {
			return node{}, err
		}
		if next.size > largest.size {
			largest = next
		}
		cur = next
	}
	return largest, nil
}

// follow decodes cur's successor, insisting offsets strictly increase so a
// corrupted link cannot loop forever.
func (h *Heap) follow(cur node) (node, error) {
	if uint64(cur.next) < cur.end() {
		return node{}, fmt.Errorf("%w: node at 0x%X links back to 0x%X",
			ErrCorruptFreeList, cur.off, cur.next)
	}
	return h.nodeAt(cur.next)
}

// Bytes returns the payload of a live allocation. The slice aliases the arena
// and is valid until p is released.
func (h *Heap) Bytes(p Ptr) ([]byte, error) {
	if h.data == nil {
		return nil, ErrNotInitialized
	}
	b, err := h.lookup(p)
	if err != nil {
		return nil, err
	}
	start := uint64(b.payload())
	return h.data[start:b.end():b.end()], nil
}

// lookup validates that p points just past a tagged header that fits inside
// the arena. It does not consult the free list.
func (h *Heap) lookup(p Ptr) (block, error) {
	// The head descriptor always occupies the first slot, so the earliest
	// possible payload is two slots in.
	if uint64(p) < format.DescriptorSize+format.HeaderSize || uint64(p) > uint64(len(h.data)) {
		return block{}, fmt.Errorf("%w: 0x%X outside arena", ErrCorruptPointer, uint32(p))
	}
	return h.blockAt(uint32(p) - format.HeaderSize)
}
