package alloc

import (
	"log/slog"

	"github.com/joshuapare/heapkit/arena"
)

// Ptr is the arena offset of an allocation's payload. The zero Ptr is never
// returned by Alloc.
type Ptr uint32

// Merge records which coalescing rule a release applied.
type Merge uint8

const (
	// MergeIsolated: the block touched neither neighbor and became a new node.
	MergeIsolated Merge = iota
	// MergeLeft: the block was absorbed into the preceding node.
	MergeLeft
	// MergeBoth: absorbed into the preceding node, which then absorbed the following one.
	MergeBoth
	// MergeRight: the block became a node that absorbed the following one.
	MergeRight
)

func (m Merge) String() string {
	switch m {
	case MergeIsolated:
		return "isolated"
	case MergeLeft:
		return "left"
	case MergeBoth:
		return "both"
	case MergeRight:
		return "right"
	default:
		return "unknown"
	}
}

// Options configures a Heap. The zero value is valid.
type Options struct {
	// Source selects where the arena comes from.
	// Default: arena.SourceAuto
	Source arena.Source

	// Logger receives allocation events at debug level and rejected
	// releases at warn level.
	// Default: discard, or stderr at debug level when HEAPKIT_LOG_ALLOC is set.
	Logger *slog.Logger
}

// FreeRegion is one node of the free list as seen by Inspect.
type FreeRegion struct {
	Offset uint32 `json:"offset"` // descriptor position
	End    uint64 `json:"end"`    // one past the last free byte
	Size   uint64 `json:"size"`   // usable bytes after the descriptor
}

// AllocatedExtent is a run of header+payload bytes lying between two free
// regions (or after the last one).
type AllocatedExtent struct {
	Offset uint64 `json:"offset"`
	End    uint64 `json:"end"`
	Size   uint64 `json:"size"`
}

// Report is a read-only snapshot of the free list.
type Report struct {
	Capacity      int               `json:"capacity"`
	Nodes         []FreeRegion      `json:"nodes"`
	Allocated     []AllocatedExtent `json:"allocated"`
	FreeBytes     uint64            `json:"free_bytes"`
	LargestFree   uint64            `json:"largest_free"`
	Fragmentation float64           `json:"fragmentation"` // 1 - largest/total free
}

// Stats holds allocator counters.
type Stats struct {
	Capacity int `json:"capacity"`

	AllocCalls    int `json:"alloc_calls"`
	AllocOK       int `json:"alloc_ok"`
	OutOfMemory   int `json:"out_of_memory"`
	BadSize       int `json:"bad_size"`
	FreeCalls     int `json:"free_calls"`
	FreeOK        int `json:"free_ok"`
	FreeRejected  int `json:"free_rejected"`
	MergeIsolated int `json:"merge_isolated"`
	MergeLeft     int `json:"merge_left"`
	MergeBoth     int `json:"merge_both"`
	MergeRight    int `json:"merge_right"`

	LiveBlocks  int    `json:"live_blocks"`  // allocations not yet released
	BytesInUse  uint64 `json:"bytes_in_use"` // payload bytes of live allocations
	FreeNodes   int    `json:"free_nodes"`   // nodes on the free list
	FreeBytes   uint64 `json:"free_bytes"`   // usable bytes across all nodes
	Overhead    uint64 `json:"overhead"`     // descriptor bytes: headers plus nodes
	BytesServed uint64 `json:"bytes_served"` // cumulative payload bytes handed out
}

// Allocator is the surface shared by Heap and Locked.
type Allocator interface {
	// Alloc returns a pointer to at least n bytes.
	Alloc(n int) (Ptr, error)

	// Free releases a pointer returned by Alloc.
	Free(p Ptr) error

	// Bytes returns the payload behind a live pointer.
	Bytes(p Ptr) ([]byte, error)

	// Inspect reports the free list without changing it.
	Inspect() (Report, error)

	// Stats returns allocator counters.
	Stats() Stats
}

var (
	_ Allocator = (*Heap)(nil)
	_ Allocator = (*Locked)(nil)
)
