// Package verify checks the structural invariants of a heap arena.
//
// # Overview
//
// The checks read raw arena bytes and never go through package alloc, so
// they can catch bugs in the allocator itself. They are used by tests after
// every mutating step and by `heapctl run` for its `check` command.
//
// Checks:
//   - FreeList: nodes are tagged, in bounds, strictly ascending and never touching
//   - Layout: slots tile the arena exactly, and every free slot is on the list
//   - Conservation: node and header overhead plus free and payload bytes equal the arena size
//
// # Quick Start
//
//	if err := verify.AllInvariants(h.Arena().Bytes()); err != nil {
//	    fmt.Printf("heap corrupt: %v\n", err)
//	}
//
// # ValidationError
//
// All checks return *ValidationError on failure:
//
//	type ValidationError struct {
//	    Type    string         // check that failed, e.g. "FreeList"
//	    Message string         // human-readable description
//	    Offset  int            // arena offset of the offending slot (-1 if N/A)
//	    Details map[string]any // additional context
//	}
package verify
