package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// node is a decoded free-list descriptor.
type node struct {
	off  uint32
	size uint64
	next uint32
}

// end is one past the last free byte the node describes.
func (n node) end() uint64 { return uint64(n.off) + format.DescriptorSize + n.size }

func (n node) last() bool { return n.next == format.NilOffset }

// block is a decoded allocation header.
type block struct {
	off  uint32 // header position
	size uint64 // payload bytes
}

func (b block) payload() uint32 { return b.off + format.HeaderSize }

// end is one past the last payload byte.
func (b block) end() uint64 { return uint64(b.off) + format.HeaderSize + b.size }

// Every slot is read through nodeAt or blockAt, which refuse to decode a slot
// under the wrong kind. Writes go through putNode, putBlock and retire so the
// kind word always matches the last interpretation written.

func (h *Heap) nodeAt(off uint32) (node, error) {
	s, err := format.ReadSlot(h.data, off)
	if err != nil {
		return node{}, fmt.Errorf("%w: %w", ErrCorruptFreeList, err)
	}
	if s.Kind != format.KindFree {
		return node{}, fmt.Errorf("%w: slot at 0x%X is %v", ErrCorruptFreeList, off, s.Kind)
	}
	n := node{off: off, size: s.Size, next: s.Next}
	if n.end() > uint64(len(h.data)) {
		return node{}, fmt.Errorf("%w: node at 0x%X ends at 0x%X past arena end", ErrCorruptFreeList, off, n.end())
	}
	return n, nil
}

func (h *Heap) blockAt(off uint32) (block, error) {
	s, err := format.ReadSlot(h.data, off)
	if err != nil {
		return block{}, fmt.Errorf("%w: %w", ErrCorruptPointer, err)
	}
	if s.Kind != format.KindHeader {
		return block{}, fmt.Errorf("%w: header at 0x%X has tag 0x%08X", ErrCorruptPointer, off, uint32(s.Kind))
	}
	b := block{off: off, size: s.Size}
	if b.end() > uint64(len(h.data)) {
		return block{}, fmt.Errorf("%w: block at 0x%X ends at 0x%X past arena end", ErrCorruptPointer, off, b.end())
	}
	return b, nil
}

func (h *Heap) putNode(n node) {
	format.PutSlot(h.data, n.off, format.Slot{Size: n.size, Kind: format.KindFree, Next: n.next})
}

func (h *Heap) putBlock(b block) {
	format.PutSlot(h.data, b.off, format.Slot{Size: b.size, Kind: format.KindHeader})
}

// retire wipes a slot that has been merged into a neighbor, so a stale
// header can never pass the sentinel check a second time.
func (h *Heap) retire(off uint32) {
	format.ClearSlot(h.data, off)
}
