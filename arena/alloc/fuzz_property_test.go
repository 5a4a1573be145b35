package alloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// live is an outstanding allocation and the byte its payload was filled with.
type live struct {
	p    Ptr
	n    int
	fill byte
}

func fill(t testing.TB, h *Heap, l live) {
	t.Helper()
	buf, err := h.Bytes(l.p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(buf), l.n)
	for i := range buf {
		buf[i] = l.fill
	}
}

func checkFill(t testing.TB, h *Heap, l live) {
	t.Helper()
	buf, err := h.Bytes(l.p)
	require.NoError(t, err)
	for i, c := range buf {
		if c != l.fill {
			require.Failf(t, "payload clobbered", "ptr 0x%X byte %d: got 0x%02X want 0x%02X", l.p, i, c, l.fill)
		}
	}
}

// Test_Fuzz_RandomAllocFree_GuardInvariants drives random alloc/free
// sequences and checks the arena after every step.
func Test_Fuzz_RandomAllocFree_GuardInvariants(t *testing.T) {
	for _, seed := range []int64{1, 42, 1337} {
		rng := rand.New(rand.NewSource(seed)) // Fixed seed for reproducibility
		h := newTestHeap(t, 16*1024)

		var outstanding []live
		for step := range 500 {
			if len(outstanding) == 0 || rng.Intn(3) != 0 {
				n := 1 + rng.Intn(600)
				p, err := h.Alloc(n)
				if err != nil {
					require.ErrorIs(t, err, ErrOutOfMemory, "seed %d step %d", seed, step)
				} else {
					l := live{p: p, n: n, fill: byte(step)}
					fill(t, h, l)
					outstanding = append(outstanding, l)
				}
			} else {
				i := rng.Intn(len(outstanding))
				l := outstanding[i]
				checkFill(t, h, l)
				require.NoError(t, h.Free(l.p), "seed %d step %d", seed, step)
				outstanding = append(outstanding[:i], outstanding[i+1:]...)
			}

			requireInvariants(t, h)
			require.Equal(t, len(outstanding), h.Stats().LiveBlocks)
		}

		// Neighboring payloads never bleed into each other.
		for _, l := range outstanding {
			checkFill(t, h, l)
		}

		rng.Shuffle(len(outstanding), func(i, j int) {
			outstanding[i], outstanding[j] = outstanding[j], outstanding[i]
		})
		for _, l := range outstanding {
			mustFree(t, h, l.p)
		}
		require.Equal(t, []uint64{16*1024 - format.DescriptorSize}, freeSizes(t, h),
			"seed %d: releasing everything must restore a single node", seed)
	}
}

// TestCoalesceOrderIndependence frees the same allocations in many orders;
// each must end with the arena back to one node.
func TestCoalesceOrderIndependence(t *testing.T) {
	sizes := []int{64, 128, 8, 256, 24, 512, 40, 8}
	rng := rand.New(rand.NewSource(7))

	for range 20 {
		h := newTestHeap(t, 4096)
		ptrs := make([]Ptr, 0, len(sizes))
		for _, n := range sizes {
			ptrs = append(ptrs, mustAlloc(t, h, n))
		}

		rng.Shuffle(len(ptrs), func(i, j int) { ptrs[i], ptrs[j] = ptrs[j], ptrs[i] })
		for _, p := range ptrs {
			mustFree(t, h, p)
		}
		require.Equal(t, []uint32{0}, freeOffsets(t, h))
		require.Equal(t, []uint64{4080}, freeSizes(t, h))
	}
}

// TestAllocationDeterminism verifies that the same sequence of requests
// produces identical pointers across runs.
func TestAllocationDeterminism(t *testing.T) {
	run := func() []Ptr {
		h := newTestHeap(t, 8192)
		var out []Ptr
		var keep []Ptr
		for i, n := range []int{64, 128, 256, 512, 128, 64, 1024, 16} {
			p := mustAlloc(t, h, n)
			out = append(out, p)
			if i%2 == 0 {
				keep = append(keep, p)
			} else {
				mustFree(t, h, p)
			}
		}
		for _, p := range keep {
			mustFree(t, h, p)
		}
		return out
	}

	require.Equal(t, run(), run(), "allocations must be deterministic")
}

// TestConservationUnderChurn checks the byte accounting at every step of a
// steady alloc/free churn.
func TestConservationUnderChurn(t *testing.T) {
	h := newTestHeap(t, 4096)
	var ring []Ptr

	for i := range 200 {
		p, err := h.Alloc(8 + (i%7)*16)
		if err == nil {
			ring = append(ring, p)
		}
		if len(ring) > 5 {
			mustFree(t, h, ring[0])
			ring = ring[1:]
		}

		s := h.Stats()
		require.Equal(t, uint64(4096), s.Overhead+s.BytesInUse+s.FreeBytes, "step %d", i)
	}
}
