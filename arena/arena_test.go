package arena

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func TestAcquireHeap(t *testing.T) {
	a, err := Acquire(4096, SourceHeap)
	require.NoError(t, err)
	require.Equal(t, 4096, a.Len())
	require.Equal(t, SourceHeap, a.Source())
	for i, b := range a.Bytes() {
		require.Zero(t, b, "byte %d not zeroed", i)
	}
}

func TestAcquireAuto(t *testing.T) {
	a, err := Acquire(4096, SourceAuto)
	require.NoError(t, err)
	require.Len(t, a.Bytes(), 4096)
	require.NotEqual(t, SourceAuto, a.Source(), "auto must resolve to a concrete source")

	// Region must be writable end to end.
	data := a.Bytes()
	data[0] = 0xAA
	data[len(data)-1] = 0xBB
	require.Equal(t, byte(0xAA), data[0])
	require.Equal(t, byte(0xBB), data[len(data)-1])
}

func TestAcquireBadCapacity(t *testing.T) {
	for _, n := range []int{-1, 0, format.SlotSize, format.MinCapacity - 1} {
		_, err := Acquire(n, SourceHeap)
		require.ErrorIs(t, err, ErrBadCapacity, "capacity %d", n)
	}
}

func TestParseSource(t *testing.T) {
	cases := map[string]Source{"": SourceAuto, "auto": SourceAuto, "MMAP": SourceMmap, "heap": SourceHeap, "go": SourceHeap}
	for in, want := range cases {
		got, err := ParseSource(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseSource("shm")
	require.Error(t, err)
	require.Equal(t, "mmap", SourceMmap.String())
}
