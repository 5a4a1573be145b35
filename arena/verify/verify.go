package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates all heap invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte) error {
	if err := FreeList(data); err != nil {
		return err
	}
	if err := Layout(data); err != nil {
		return err
	}
	return Conservation(data)
}

// listNode is one node reached by following links from the head.
type listNode struct {
	off  uint32
	slot format.Slot
}

// walkList follows the free list from the head. It stops at the first
// malformed node.
func walkList(data []byte, check string) ([]listNode, error) {
	var nodes []listNode
	off := format.HeadOffset
	for {
		s, err := format.ReadSlot(data, off)
		if err != nil {
			return nil, &ValidationError{Type: check, Message: err.Error(), Offset: int(off)}
		}
		if s.Kind != format.KindFree {
			return nil, &ValidationError{
				Type:    check,
				Message: fmt.Sprintf("list reaches a %v slot", s.Kind),
				Offset:  int(off),
			}
		}
		if s.End(off) > uint64(len(data)) {
			return nil, &ValidationError{
				Type:    check,
				Message: fmt.Sprintf("node ends at 0x%X past arena end 0x%X", s.End(off), len(data)),
				Offset:  int(off),
				Details: map[string]any{"size": s.Size},
			}
		}
		nodes = append(nodes, listNode{off: off, slot: s})
		if s.Next == format.NilOffset {
			return nodes, nil
		}
		if uint64(s.Next) < s.End(off) {
			return nil, &ValidationError{
				Type:    check,
				Message: fmt.Sprintf("next 0x%X is not above node end 0x%X", s.Next, s.End(off)),
				Offset:  int(off),
			}
		}
		off = s.Next
	}
}

// FreeList checks that nodes ascend strictly and that no two consecutive
// nodes touch (they should have been merged).
func FreeList(data []byte) error {
	nodes, err := walkList(data, "FreeList")
	if err != nil {
		return err
	}
	for i := 1; i < len(nodes); i++ {
		prev, cur := nodes[i-1], nodes[i]
		if prev.slot.End(prev.off) == uint64(cur.off) {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("free regions at 0x%X and 0x%X are adjacent", prev.off, cur.off),
				Offset:  int(prev.off),
				Details: map[string]any{"prev_size": prev.slot.Size, "next_size": cur.slot.Size},
			}
		}
	}
	return nil
}

// Layout walks the arena slot by slot from offset 0. Free and header slots
// must tile it exactly, and the free slots met on the way must be exactly
// the list nodes, in the same order.
func Layout(data []byte) error {
	nodes, err := walkList(data, "Layout")
	if err != nil {
		return err
	}

	var (
		off  uint64
		seen int
	)
	for off < uint64(len(data)) {
		s, err := format.ReadSlot(data, uint32(off))
		if err != nil {
			return &ValidationError{Type: "Layout", Message: err.Error(), Offset: int(off)}
		}
		switch s.Kind {
		case format.KindFree:
			if seen >= len(nodes) || uint64(nodes[seen].off) != off {
				return &ValidationError{
					Type:    "Layout",
					Message: "free slot is not on the free list",
					Offset:  int(off),
				}
			}
			seen++
		case format.KindHeader:
		default:
			return &ValidationError{
				Type:    "Layout",
				Message: fmt.Sprintf("unexpected %v slot", s.Kind),
				Offset:  int(off),
			}
		}
		end := s.End(uint32(off))
		if end > uint64(len(data)) {
			return &ValidationError{
				Type:    "Layout",
				Message: fmt.Sprintf("%v slot overruns arena end: 0x%X > 0x%X", s.Kind, end, len(data)),
				Offset:  int(off),
			}
		}
		off = end
	}
	if seen != len(nodes) {
		return &ValidationError{
			Type:    "Layout",
			Message: fmt.Sprintf("list has %d nodes, walk found %d", len(nodes), seen),
			Offset:  -1,
		}
	}
	return nil
}

// Conservation checks that every byte is accounted for once:
// free + node overhead + payload + header overhead == arena size.
func Conservation(data []byte) error {
	nodes, err := walkList(data, "Conservation")
	if err != nil {
		return err
	}

	var free, payload, overhead uint64
	for _, n := range nodes {
		free += n.slot.Size
		overhead += format.DescriptorSize
	}
	var off uint64
	for off < uint64(len(data)) {
		s, err := format.ReadSlot(data, uint32(off))
		if err != nil {
			break
		}
		if s.Kind == format.KindHeader {
			payload += s.Size
			overhead += format.HeaderSize
		}
		if s.Size > uint64(len(data)) {
			break
		}
		off = s.End(uint32(off))
	}

	total := free + payload + overhead
	if total != uint64(len(data)) {
		return &ValidationError{
			Type:    "Conservation",
			Message: fmt.Sprintf("accounted %d bytes, arena has %d", total, len(data)),
			Offset:  -1,
			Details: map[string]any{"free": free, "payload": payload, "overhead": overhead},
		}
	}
	return nil
}
