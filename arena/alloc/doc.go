// Package alloc implements a worst-fit heap over one fixed-size arena.
//
// # Overview
//
// The heap hands out blocks from a single region acquired once through
// package arena. Free space is tracked by an intrusive singly-linked list
// whose nodes live inside the free bytes they describe, kept in ascending
// offset order. Live allocations carry a header with their size and a fixed
// sentinel, which Free checks before touching the list.
//
// # Layout
//
// Every descriptor is one 16-byte slot (see internal/format):
//
//	+-------------+--------------------+-------------+---------+
//	| node (head) | free bytes         | header      | payload |
//	+-------------+--------------------+-------------+---------+
//	0            16              16+node.size
//
// A block is carved from the tail of a node, so the node only shrinks and
// never moves. On release the header slot is either merged into the node
// before it or rewritten in place as a new node. Header and node slots are
// the same size, which is what makes that rewrite possible.
//
// # Allocation
//
// Alloc rounds the request up to 8 bytes and scans the whole list for the
// largest node, the first one winning ties. If that node cannot hold the
// payload plus a header, Alloc returns ErrOutOfMemory and changes nothing.
// Otherwise the node shrinks by payload+header and the header is written at
// the new boundary. A node may shrink to zero bytes and stay on the list.
//
// # Release
//
// Free finds the node P immediately below the block and applies one rule:
//
//   - left-adjacent: P absorbs the block, then absorbs P.next if it now touches it
//   - right-adjacent: the block becomes a node that absorbs P.next
//   - isolated: the block becomes a node linked between P and P.next
//
// A pointer whose header is missing, overwritten, already released, or that
// overlaps a free region is rejected with ErrCorruptPointer before any write.
//
// # Usage Example
//
//	h, err := alloc.Open(4096, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := h.Alloc(100) // 104 bytes after rounding
//	if err != nil {
//	    return err
//	}
//	buf, _ := h.Bytes(p)
//	copy(buf, "hello")
//
//	if err := h.Free(p); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Heap is not safe for concurrent use. Locked wraps a Heap with a mutex held
// across each whole operation.
//
// # Complexity
//
// Alloc and Free are O(n) in the number of free-list nodes. Nothing about
// the list shape is cached between calls.
package alloc
