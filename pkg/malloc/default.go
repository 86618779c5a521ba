package malloc

import (
	"sync"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/alloc"
)

var (
	defaultOnce sync.Once
	defaultHeap *Heap
)

// Default returns the process-wide heap, creating it on first use.
func Default() *Heap {
	defaultOnce.Do(func() {
		h, err := NewHeap(arena.NewMemory(0), nil)
		if err != nil {
			// A fresh arena is always empty and the default config is valid.
			panic(err)
		}
		defaultHeap = h
	})
	return defaultHeap
}

// Malloc allocates size bytes from the default heap.
func Malloc(size int) (alloc.Ptr, error) { return Default().Malloc(size) }

// Calloc allocates count*size zeroed bytes from the default heap.
func Calloc(count, size int) (alloc.Ptr, error) { return Default().Calloc(count, size) }

// Realloc resizes p on the default heap.
func Realloc(p alloc.Ptr, size int) (alloc.Ptr, error) { return Default().Realloc(p, size) }

// Free releases p to the default heap.
func Free(p alloc.Ptr) error { return Default().Free(p) }

// Bytes returns a view of p's payload on the default heap.
func Bytes(p alloc.Ptr) ([]byte, error) { return Default().Bytes(p) }

// Read returns a copy of p's payload on the default heap.
func Read(p alloc.Ptr) ([]byte, error) { return Default().Read(p) }

// Write copies data into p's payload on the default heap.
func Write(p alloc.Ptr, data []byte) error { return Default().Write(p, data) }
