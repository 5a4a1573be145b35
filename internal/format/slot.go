package format

import "fmt"

// Kind tags what a slot currently describes. One slot's bytes are shared
// between a free node and an allocation header over its lifetime; the kind
// says which reading is valid right now.
type Kind uint32

const (
	// KindRetired marks a slot that was merged into a neighbor and no longer
	// describes anything.
	KindRetired Kind = 0

	// KindFree marks a free-list node ("free" in ASCII).
	KindFree Kind = 0x65657266

	// KindHeader marks a live allocation header. The value is the fixed
	// sentinel checked on release.
	KindHeader Kind = 123456789
)

// FreeMarker is the free-node sentinel as a raw word.
const FreeMarker = uint32(KindFree)

func (k Kind) String() string {
	switch k {
	case KindRetired:
		return "retired"
	case KindFree:
		return "free"
	case KindHeader:
		return "header"
	default:
		return fmt.Sprintf("kind(0x%08X)", uint32(k))
	}
}

// Slot is one decoded descriptor.
type Slot struct {
	Size uint64
	Kind Kind
	Next uint32
}

// End returns the offset one past the bytes the slot at off describes.
func (s Slot) End(off uint32) uint64 {
	return uint64(off) + SlotSize + s.Size
}

// HasSlot reports whether a full slot fits at off.
func HasSlot(b []byte, off uint32) bool {
	return uint64(off)+SlotSize <= uint64(len(b))
}

// ReadSlot decodes the slot at off.
func ReadSlot(b []byte, off uint32) (Slot, error) {
	if !HasSlot(b, off) {
		return Slot{}, fmt.Errorf("%w: offset 0x%X, arena %d bytes", ErrTruncated, off, len(b))
	}
	o := int(off)
	return Slot{
		Size: ReadU64(b, o+SlotSizeOffset),
		Kind: Kind(ReadU32(b, o+SlotKindOffset)),
		Next: ReadU32(b, o+SlotNextOffset),
	}, nil
}

// PutSlot encodes s at off. The caller guarantees HasSlot(b, off).
func PutSlot(b []byte, off uint32, s Slot) {
	o := int(off)
	PutU64(b, o+SlotSizeOffset, s.Size)
	PutU32(b, o+SlotKindOffset, uint32(s.Kind))
	PutU32(b, o+SlotNextOffset, s.Next)
}

// ClearSlot zeroes the slot at off, leaving it KindRetired.
func ClearSlot(b []byte, off uint32) {
	clear(b[off : off+SlotSize])
}
