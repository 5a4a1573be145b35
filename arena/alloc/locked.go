package alloc

import "sync"

// Locked serializes access to a Heap. Each method holds one mutex for the
// whole operation, since both Alloc and Free read and rewrite several list
// nodes in sequence.
type Locked struct {
	mu sync.Mutex
	h  *Heap
}

// NewLocked wraps h. The caller must stop using h directly.
func NewLocked(h *Heap) *Locked {
	return &Locked{h: h}
}

// Alloc is Heap.Alloc under the lock.
func (l *Locked) Alloc(n int) (Ptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Alloc(n)
}

// Free is Heap.Free under the lock.
func (l *Locked) Free(p Ptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Free(p)
}

// Bytes is Heap.Bytes under the lock. The returned slice is only safe to
// touch while the caller still owns p.
func (l *Locked) Bytes(p Ptr) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Bytes(p)
}

// Inspect is Heap.Inspect under the lock.
func (l *Locked) Inspect() (Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Inspect()
}

// Stats is Heap.Stats under the lock.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Stats()
}

// Do runs fn with exclusive access to the heap, for callers that need
// several operations to appear atomic.
func (l *Locked) Do(fn func(h *Heap) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.h)
}
