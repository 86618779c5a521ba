package malloc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/alloc"
)

// ErrShortBuffer indicates a Write larger than the block's current size.
var ErrShortBuffer = errors.New("malloc: data exceeds block size")

// Heap is a mutex-serialized allocator.
type Heap struct {
	mu sync.Mutex
	al *alloc.Allocator
}

// NewHeap creates a heap over an empty arena.
// cfg may be nil for alloc.DefaultConfig.
func NewHeap(a arena.Arena, cfg *alloc.Config) (*Heap, error) {
	al, err := alloc.New(a, nil, cfg)
	if err != nil {
		return nil, err
	}
	return &Heap{al: al}, nil
}

// Malloc allocates size bytes. The contents are unspecified.
func (h *Heap) Malloc(size int) (alloc.Ptr, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.al.Allocate(size)
}

// Calloc allocates count*size zeroed bytes.
func (h *Heap) Calloc(count, size int) (alloc.Ptr, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.al.ZeroAllocate(count, size)
}

// Realloc resizes p, moving it if needed. See alloc.Allocator.Resize.
func (h *Heap) Realloc(p alloc.Ptr, size int) (alloc.Ptr, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.al.Resize(p, size)
}

// Free releases p. Freeing alloc.Nil does nothing.
func (h *Heap) Free(p alloc.Ptr) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.al.Release(p)
}

// Bytes returns a view of p's payload. See the package doc for its lifetime.
func (h *Heap) Bytes(p alloc.Ptr) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.al.Bytes(p)
}

// Read returns a copy of p's payload.
func (h *Heap) Read(p alloc.Ptr) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf, err := h.al.Bytes(p)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// Write copies data to the start of p's payload.
func (h *Heap) Write(p alloc.Ptr, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf, err := h.al.Bytes(p)
	if err != nil {
		return err
	}
	if len(data) > len(buf) {
		return fmt.Errorf("%w: %d > %d", ErrShortBuffer, len(data), len(buf))
	}
	copy(buf, data)
	return h.al.Touch(p)
}

// Stats returns a snapshot of the allocator statistics.
func (h *Heap) Stats() alloc.Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.al.Stats()
}

// Verify checks the allocator's invariants.
func (h *Heap) Verify() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.al.Verify()
}
