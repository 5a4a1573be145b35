package alloc

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Runtime debug flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// Heap is a worst-fit allocator over one fixed arena. The free list is
// threaded through the arena itself, in ascending offset order, starting at
// format.HeadOffset.
//
// A Heap is not safe for concurrent use; wrap it in Locked.
type Heap struct {
	arena *arena.Arena
	data  []byte // arena.Bytes(), nil until Init
	opts  Options
	log   *slog.Logger

	stats Stats
}

// New returns an uninitialized heap. Call Init before anything else.
func New(opts *Options) *Heap {
	h := &Heap{}
	if opts != nil {
		h.opts = *opts
	}
	h.log = h.opts.Logger
	if h.log == nil {
		switch {
		case logAlloc:
			h.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		case logger.L != nil:
			h.log = logger.L
		default:
			h.log = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
	}
	return h
}

// Open is New followed by Init.
func Open(capacity int, opts *Options) (*Heap, error) {
	h := New(opts)
	if err := h.Init(capacity); err != nil {
		return nil, err
	}
	return h, nil
}

// Init acquires a capacity-byte arena and seeds the free list with one node
// spanning all of it. It may run only once per heap: re-initializing would
// silently invalidate every outstanding Ptr.
func (h *Heap) Init(capacity int) error {
	if h.data != nil {
		return ErrAlreadyInitialized
	}

	a, err := arena.Acquire(capacity, h.opts.Source)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArenaUnavailable, err)
	}

	h.arena = a
	h.data = a.Bytes()
	h.putNode(node{
		off:  format.HeadOffset,
		size: uint64(len(h.data)) - format.DescriptorSize,
		next: format.NilOffset,
	})
	h.stats = Stats{Capacity: len(h.data), FreeNodes: 1}

	h.log.Debug("heap initialized",
		"capacity", len(h.data),
		"source", a.Source().String(),
	)
	return nil
}

// Initialized reports whether Init has succeeded.
func (h *Heap) Initialized() bool {
	return h.data != nil
}

// Capacity returns the arena size, or 0 before Init.
func (h *Heap) Capacity() int {
	return len(h.data)
}

// Arena exposes the backing region for diagnostics such as verify.AllInvariants.
// Writing to it bypasses every check the heap makes.
func (h *Heap) Arena() *arena.Arena {
	return h.arena
}
