package alloc

import (
	"testing"

	"github.com/joshuapare/heapkit/arena"
)

func newBenchHeap(b *testing.B, capacity int) *Heap {
	b.Helper()
	h, err := Open(capacity, &Options{Source: arena.SourceHeap})
	if err != nil {
		b.Fatal(err)
	}
	return h
}

// BenchmarkAllocFree_Reuse measures the alloc/free round trip on a one-node list.
func BenchmarkAllocFree_Reuse(b *testing.B) {
	h := newBenchHeap(b, 1<<20)

	b.ReportAllocs()
	for range b.N {
		p, err := h.Alloc(64)
		if err != nil {
			b.Fatal(err)
		}
		if err := h.Free(p); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAlloc_FragmentedList measures worst-fit selection when the list
// holds many nodes; every Alloc walks all of them.
func BenchmarkAlloc_FragmentedList(b *testing.B) {
	h := newBenchHeap(b, 1<<20)

	// Free every other block to leave ~1000 isolated nodes.
	var ptrs []Ptr
	for range 2000 {
		p, err := h.Alloc(64)
		if err != nil {
			b.Fatal(err)
		}
		ptrs = append(ptrs, p)
	}
	for i := 0; i < len(ptrs); i += 2 {
		if err := h.Free(ptrs[i]); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		p, err := h.Alloc(32)
		if err != nil {
			b.Fatal(err)
		}
		if err := h.Free(p); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLocked_Parallel measures contention on the locked wrapper.
func BenchmarkLocked_Parallel(b *testing.B) {
	l := NewLocked(newBenchHeap(b, 1<<22))

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			p, err := l.Alloc(48)
			if err != nil {
				b.Error(err)
				return
			}
			if err := l.Free(p); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
