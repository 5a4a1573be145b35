package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestHeap opens a heap on the Go heap so tests don't depend on mmap.
func newTestHeap(t testing.TB, capacity int) *Heap {
	t.Helper()
	h, err := Open(capacity, &Options{Source: arena.SourceHeap})
	require.NoError(t, err)
	return h
}

// part is one region of a hand-built arena: a free node or a live block.
type part struct {
	free bool
	size uint64
}

func freePart(n uint64) part  { return part{free: true, size: n} }
func takenPart(n uint64) part { return part{size: n} }

// newLayoutHeap builds a heap whose arena holds exactly the given regions,
// back to back, with the free ones linked in order. It returns the payload
// pointer of every taken region, in order.
//
// This reaches states that are tedious to produce through Alloc alone, such
// as free regions of arbitrary, unaligned sizes.
func newLayoutHeap(t testing.TB, parts ...part) (*Heap, []Ptr) {
	t.Helper()
	require.NotEmpty(t, parts)
	require.True(t, parts[0].free, "first part must be the head node")

	var total uint64
	for _, p := range parts {
		total += format.SlotSize + p.size
	}
	h := newTestHeap(t, int(total))

	var (
		off      uint64
		prevFree node
		ptrs     []Ptr
		stats    = Stats{Capacity: int(total)}
	)
	for i, p := range parts {
		if p.free {
			n := node{off: uint32(off), size: p.size, next: format.NilOffset}
			h.putNode(n)
			if i > 0 {
				prevFree.next = n.off
				h.putNode(prevFree)
			}
			prevFree = n
			stats.FreeNodes++
		} else {
			b := block{off: uint32(off), size: p.size}
			h.putBlock(b)
			ptrs = append(ptrs, Ptr(b.payload()))
			stats.LiveBlocks++
			stats.BytesInUse += p.size
		}
		off += format.SlotSize + p.size
	}
	h.stats = stats

	requireInvariants(t, h)
	return h, ptrs
}

// requireInvariants checks the raw arena and that the derived counters agree
// with a list walk.
func requireInvariants(t testing.TB, h *Heap) {
	t.Helper()
	require.NoError(t, verify.AllInvariants(h.Arena().Bytes()))

	r, err := h.Inspect()
	require.NoError(t, err)
	s := h.Stats()
	require.Equal(t, len(r.Nodes), s.FreeNodes, "free node count")
	require.Equal(t, r.FreeBytes, s.FreeBytes, "free bytes")
}

// freeSizes returns the size of every free node in list order.
func freeSizes(t testing.TB, h *Heap) []uint64 {
	t.Helper()
	r, err := h.Inspect()
	require.NoError(t, err)
	sizes := make([]uint64, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		sizes = append(sizes, n.Size)
	}
	return sizes
}

// freeOffsets returns the offset of every free node in list order.
func freeOffsets(t testing.TB, h *Heap) []uint32 {
	t.Helper()
	r, err := h.Inspect()
	require.NoError(t, err)
	offs := make([]uint32, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		offs = append(offs, n.Offset)
	}
	return offs
}

// mustAlloc allocates n bytes and checks invariants afterwards.
func mustAlloc(t testing.TB, h *Heap, n int) Ptr {
	t.Helper()
	p, err := h.Alloc(n)
	require.NoError(t, err)
	requireInvariants(t, h)
	return p
}

// mustFree releases p and checks invariants afterwards.
func mustFree(t testing.TB, h *Heap, p Ptr) {
	t.Helper()
	require.NoError(t, h.Free(p))
	requireInvariants(t, h)
}
