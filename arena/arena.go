package arena

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/internal/format"
)

var (
	// ErrBadCapacity indicates the requested size cannot back a heap.
	ErrBadCapacity = errors.New("arena: capacity out of range")

	// ErrMmapUnsupported indicates SourceMmap was requested on a platform
	// without anonymous mappings.
	ErrMmapUnsupported = errors.New("arena: mmap not supported on this platform")
)

// Source selects where the region comes from.
type Source uint8

const (
	// SourceAuto maps anonymous memory where supported and falls back to the Go heap.
	SourceAuto Source = iota
	// SourceMmap requires an anonymous private mapping.
	SourceMmap
	// SourceHeap allocates the region as a Go byte slice.
	SourceHeap
)

func (s Source) String() string {
	switch s {
	case SourceAuto:
		return "auto"
	case SourceMmap:
		return "mmap"
	case SourceHeap:
		return "heap"
	default:
		return fmt.Sprintf("source(%d)", uint8(s))
	}
}

// ParseSource maps a flag value to a Source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return SourceAuto, nil
	case "mmap":
		return SourceMmap, nil
	case "heap", "go":
		return SourceHeap, nil
	default:
		return SourceAuto, fmt.Errorf("arena: unknown source %q (want auto, mmap or heap)", s)
	}
}

// Arena is one fixed-size region. It is owned by exactly one heap.
type Arena struct {
	data   []byte
	source Source // resolved source, never SourceAuto
}

// Acquire requests capacity bytes of zeroed read/write memory.
func Acquire(capacity int, src Source) (*Arena, error) {
	if capacity < format.MinCapacity || capacity > format.MaxCapacity {
		return nil, fmt.Errorf("%w: %d (want %d..%d)",
			ErrBadCapacity, capacity, format.MinCapacity, format.MaxCapacity)
	}

	switch src {
	case SourceHeap:
		return &Arena{data: make([]byte, capacity), source: SourceHeap}, nil
	case SourceMmap:
		data, err := mapAnon(capacity)
		if err != nil {
			return nil, err
		}
		return &Arena{data: data, source: SourceMmap}, nil
	case SourceAuto:
		if mmapSupported {
			if data, err := mapAnon(capacity); err == nil {
				return &Arena{data: data, source: SourceMmap}, nil
			}
		}
		return &Arena{data: make([]byte, capacity), source: SourceHeap}, nil
	default:
		return nil, fmt.Errorf("arena: unknown source %v", src)
	}
}

// Bytes returns the whole region.
func (a *Arena) Bytes() []byte {
	return a.data
}

// Len returns the region size in bytes.
func (a *Arena) Len() int {
	return len(a.data)
}

// Source reports where the region actually came from.
func (a *Arena) Source() Source {
	return a.source
}
