package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Free returns the block at p to the free list, merging it with whichever
// neighboring free regions it touches.
//
// Every check runs before the first write: a rejected pointer leaves the
// arena byte-for-byte unchanged. After a successful Free, p is dead and must
// not be passed to Bytes or Free again; doing so is reported as
// ErrCorruptPointer.
func (h *Heap) Free(p Ptr) error {
	if h.data == nil {
		return ErrNotInitialized
	}
	h.stats.FreeCalls++

	b, err := h.lookup(p)
	if err != nil {
		return h.reject(p, err)
	}
	prev, next, hasNext, err := h.neighbors(b)
	if err != nil {
		return h.reject(p, err)
	}

	rule := h.coalesce(b, prev, next, hasNext)

	h.stats.FreeOK++
	h.stats.LiveBlocks--
	h.stats.BytesInUse -= b.size
	switch rule {
	case MergeIsolated:
		h.stats.MergeIsolated++
		h.stats.FreeNodes++
	case MergeLeft:
		h.stats.MergeLeft++
	case MergeBoth:
		h.stats.MergeBoth++
		h.stats.FreeNodes--
	case MergeRight:
		h.stats.MergeRight++
	}

	h.log.Debug("free",
		"ptr", uint32(p),
		"size", b.size,
		"merge", rule.String(),
		"prev", prev.off,
	)
	return nil
}

func (h *Heap) reject(p Ptr, err error) error {
	h.stats.FreeRejected++
	h.log.Warn("free rejected", "ptr", uint32(p), "error", err)
	return err
}

// neighbors finds the node P with the highest offset below b and P's
// successor. It also proves b lies wholly inside the allocated gap between
// them; a forged header inside a free region or overlapping a node fails here.
func (h *Heap) neighbors(b block) (prev, next node, hasNext bool, err error) {
	prev, err = h.nodeAt(format.HeadOffset)
	if err != nil {
		return node{}, node{}, false, err
	}
	for !prev.last() && prev.next < b.off {
		if prev, err = h.follow(prev); err != nil {
			return node{}, node{}, false, err
		}
	}

	if prev.end() > uint64(b.off) {
		return node{}, node{}, false, fmt.Errorf("%w: block at 0x%X lies inside free region 0x%X-0x%X",
			ErrCorruptPointer, b.off, prev.off, prev.end())
	}
	if prev.last() {
		return prev, node{}, false, nil
	}

	if next, err = h.follow(prev); err != nil {
		return node{}, node{}, false, err
	}
	if b.end() > uint64(next.off) {
		return node{}, node{}, false, fmt.Errorf("%w: block at 0x%X overlaps free node 0x%X",
			ErrCorruptPointer, b.off, next.off)
	}
	return prev, next, true, nil
}

// coalesce applies exactly one merge rule, checked in priority order.
func (h *Heap) coalesce(b block, prev, next node, hasNext bool) Merge {
	switch {
	case prev.end() == uint64(b.off):
		// Left-adjacent: grow prev over the header and payload.
		prev.size += format.HeaderSize + b.size
		h.retire(b.off)
		rule := MergeLeft

		// prev may now reach next as well.
		if hasNext && prev.end() == uint64(next.off) {
			prev.size += format.DescriptorSize + next.size
			prev.next = next.next
			h.retire(next.off)
			rule = MergeBoth
		}
		h.putNode(prev)
		return rule

	case hasNext && b.end() == uint64(next.off):
		// Right-adjacent: the header slot becomes a node covering the payload,
		// next's descriptor and next's free bytes.
		n := node{off: b.off, size: b.size + format.DescriptorSize + next.size, next: next.next}
		h.retire(next.off)
		h.putNode(n)
		prev.next = n.off
		h.putNode(prev)
		return MergeRight

	default:
		// Isolated: the header slot becomes a node of the payload's size.
		n := node{off: b.off, size: b.size, next: prev.next}
		h.putNode(n)
		prev.next = n.off
		h.putNode(prev)
		return MergeIsolated
	}
}
