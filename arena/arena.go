// Package arena provides the growth primitive the block allocator is built on:
// a single contiguous byte region that only ever gets longer.
//
// # Implementations
//
// Memory: heap-backed byte slice, bounded by a configurable limit.
//
// File: a file mapped read/write (mmap on unix). The mapping is reserved in
// whole pages and remapped as the logical size passes the reserved length.
//
// # Offsets, not slices
//
// Grow may move the backing storage (append reallocation, remap). Callers
// keep arena offsets and re-fetch Bytes() after every Grow.
//
// # Thread Safety
//
// Arenas are not thread-safe. The allocator that owns an arena serializes
// access to it.
package arena

import (
	"errors"
	"math"
)

// MaxSize is the largest arena either implementation will grow to.
// Headers store offsets as uint64; the limit keeps every offset and size
// representable as an int on 32-bit platforms too.
const MaxSize = math.MaxInt32

var (
	// ErrOutOfMemory indicates the arena cannot supply the requested bytes.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrNegativeGrow indicates a negative growth request.
	ErrNegativeGrow = errors.New("arena: negative growth")

	// ErrClosed indicates an operation on a closed arena.
	ErrClosed = errors.New("arena: closed")
)

// Arena is a monotonically growing, contiguous byte region.
type Arena interface {
	// Grow appends n previously unused bytes and returns the offset of the
	// first one. Grow(0) returns the current end. On failure the arena is
	// unchanged.
	Grow(n int) (off int, err error)

	// Bytes returns the current contents. The slice is only valid until the
	// next Grow.
	Bytes() []byte

	// Size returns the number of bytes handed out so far.
	Size() int
}

// effectiveLimit maps a non-positive limit to MaxSize.
func effectiveLimit(limit int) int {
	if limit <= 0 || limit > MaxSize {
		return MaxSize
	}
	return limit
}
