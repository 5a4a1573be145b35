package alloc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/heapkit/arena/verify"
)

func TestLocked_ConcurrentChurn(t *testing.T) {
	l := NewLocked(newTestHeap(t, 64*1024))

	var g errgroup.Group
	for w := range 8 {
		g.Go(func() error {
			for i := range 200 {
				n := 8 + (w*31+i)%120
				p, err := l.Alloc(n)
				if errors.Is(err, ErrOutOfMemory) {
					continue
				}
				if err != nil {
					return err
				}

				buf, err := l.Bytes(p)
				if err != nil {
					return err
				}
				pattern := bytes.Repeat([]byte{byte(w)}, len(buf))
				copy(buf, pattern)

				// Still ours: no other worker may have written here.
				if got, _ := l.Bytes(p); !bytes.Equal(got, pattern) {
					return errors.New("payload overwritten by another worker")
				}
				if err := l.Free(p); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	s := l.Stats()
	require.Zero(t, s.LiveBlocks)
	require.Equal(t, 1, s.FreeNodes)
	require.Equal(t, s.AllocOK, s.FreeOK)

	r, err := l.Inspect()
	require.NoError(t, err)
	require.Len(t, r.Nodes, 1)
}

func TestLocked_Do(t *testing.T) {
	l := NewLocked(newTestHeap(t, 4096))

	var a, b Ptr
	err := l.Do(func(h *Heap) error {
		var err error
		if a, err = h.Alloc(16); err != nil {
			return err
		}
		b, err = h.Alloc(16)
		if err != nil {
			return err
		}
		return verify.AllInvariants(h.Arena().Bytes())
	})
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.Equal(t, 2, l.Stats().LiveBlocks)
}
