package verify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// part is one region of a hand-built arena: a free node or a live block.
type part struct {
	free bool
	size uint64
}

func free(n uint64) part  { return part{free: true, size: n} }
func taken(n uint64) part { return part{size: n} }

// build lays parts out back to back and links the free ones in order. The
// first part must be free, since the head node always sits at offset 0.
func build(t testing.TB, parts ...part) []byte {
	t.Helper()
	require.NotEmpty(t, parts)
	require.True(t, parts[0].free, "first part must be the head node")

	var total uint64
	for _, p := range parts {
		total += format.SlotSize + p.size
	}
	data := make([]byte, total)

	var off uint64
	prevFree := uint64(0)
	for i, p := range parts {
		if p.free {
			format.PutSlot(data, uint32(off), format.Slot{Size: p.size, Kind: format.KindFree, Next: format.NilOffset})
			if i > 0 {
				s, err := format.ReadSlot(data, uint32(prevFree))
				require.NoError(t, err)
				s.Next = uint32(off)
				format.PutSlot(data, uint32(prevFree), s)
			}
			prevFree = off
		} else {
			format.PutSlot(data, uint32(off), format.Slot{Size: p.size, Kind: format.KindHeader})
		}
		off += format.SlotSize + p.size
	}
	return data
}

func requireValidation(t *testing.T, err error, typ, contains string) {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, typ, verr.Type)
	require.Contains(t, verr.Message, contains)
}

func TestAllInvariants_FreshArena(t *testing.T) {
	data := build(t, free(4080))
	require.Len(t, data, 4096)
	require.NoError(t, AllInvariants(data))
}

func TestAllInvariants_Mixed(t *testing.T) {
	data := build(t, free(20), taken(8), free(5), taken(8), free(500), taken(8), free(64), taken(16))
	require.NoError(t, AllInvariants(data))
}

func TestAllInvariants_ZeroSizeNode(t *testing.T) {
	data := build(t, free(0), taken(4064))
	require.NoError(t, AllInvariants(data))
}

func TestFreeList_Adjacent(t *testing.T) {
	data := build(t, free(8), free(8), taken(8))
	requireValidation(t, FreeList(data), "FreeList", "adjacent")
}

func TestFreeList_HeadNotFree(t *testing.T) {
	data := build(t, free(8), taken(8))
	format.PutU32(data, format.SlotKindOffset, 0xDEADBEEF)
	requireValidation(t, FreeList(data), "FreeList", "kind(0xDEADBEEF)")
}

func TestFreeList_BackwardLink(t *testing.T) {
	data := build(t, free(8), taken(8), free(8))
	// Point the second node back at the head.
	format.PutU32(data, 48+format.SlotNextOffset, 0)
	requireValidation(t, FreeList(data), "FreeList", "not above node end")
}

func TestFreeList_Overrun(t *testing.T) {
	data := build(t, free(8), taken(8))
	format.PutU64(data, format.SlotSizeOffset, 1000)
	requireValidation(t, FreeList(data), "FreeList", "past arena end")
}

func TestLayout_UnlinkedFreeSlot(t *testing.T) {
	data := build(t, free(8), taken(8), free(8))
	// Unlink the second node; its slot is still tagged free.
	format.PutU32(data, format.SlotNextOffset, format.NilOffset)
	requireValidation(t, Layout(data), "Layout", "not on the free list")
}

func TestLayout_RetiredSlot(t *testing.T) {
	data := build(t, free(8), taken(8), taken(8))
	format.ClearSlot(data, 48)
	requireValidation(t, Layout(data), "Layout", "retired")
}

func TestConservation_Mismatch(t *testing.T) {
	data := build(t, free(8), taken(8))
	// Inflate the head so it swallows most of the header: the list stays in
	// bounds but the bytes no longer add up.
	format.PutU64(data, format.SlotSizeOffset, 24)

	err := Conservation(data)
	requireValidation(t, err, "Conservation", "accounted 40 bytes, arena has 48")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, -1, verr.Offset)
	require.EqualValues(t, 24, verr.Details["free"])
}

func TestValidationError_Format(t *testing.T) {
	e := &ValidationError{Type: "Layout", Message: "boom", Offset: 0x30}
	require.Equal(t, "Layout at offset 0x30: boom", e.Error())
	e.Offset = -1
	require.Equal(t, "Layout: boom", e.Error())
}
