package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Allocator hands out blocks from an arena and recycles released blocks
// through a singly linked free list threaded through the block headers.
type Allocator struct {
	a   arena.Arena
	dt  DirtyTracker // Receives every range the allocator writes (may be nil)
	cfg Config

	// head is the header offset of the first free block, or format.NoLink.
	head uint64

	// Statistics for testing and instrumentation
	stats Stats

	// Test hook: called with the growth size before the arena grows (nil in production)
	onGrow func(int)
}

// New creates an allocator over an empty arena.
//
// Parameters:
//   - a: The arena to grow; it must not have been grown yet
//   - dt: Dirty tracker for file-backed arenas (can be nil)
//   - cfg: Free-list configuration (use nil for DefaultConfig)
func New(a arena.Arena, dt DirtyTracker, cfg *Config) (*Allocator, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if a.Size() != 0 {
		return nil, fmt.Errorf("%w: has %d bytes", ErrArenaNotEmpty, a.Size())
	}
	return &Allocator{
		a:    a,
		dt:   dt,
		cfg:  *cfg,
		head: format.NoLink,
	}, nil
}

// Config returns the configuration the allocator was built with.
func (fa *Allocator) Config() Config { return fa.cfg }

// Allocate returns a block with room for size bytes. The payload is not
// zeroed. size may be 0; every zero-size block is still a distinct pointer.
//
// The free list is searched first-fit in list order; the first block whose
// capacity covers size is detached and keeps its full capacity. Only when no
// block fits does the arena grow by exactly HeaderSize+size bytes.
func (fa *Allocator) Allocate(size int) (Ptr, error) {
	fa.stats.AllocCalls++

	if size < 0 {
		return Nil, fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}
	if size > arena.MaxSize-format.HeaderSize {
		return Nil, fmt.Errorf("%w: request of %d bytes exceeds arena limit", ErrOutOfMemory, size)
	}

	// Nothing has been carved yet, so the free list is provably empty.
	if fa.a.Size() == 0 {
		return fa.carve(size)
	}

	if off, ok := fa.takeFirstFit(uint64(size)); ok {
		fa.stats.AllocFastPath++
		return Ptr(off + format.HeaderSize), nil
	}

	logger.L.Debug("alloc.miss",
		"size", size,
		"freeBlocks", fa.stats.FreeBlocks,
		"freeBytes", fa.stats.FreeBytes,
	)
	return fa.carve(size)
}

// carve grows the arena by one block and formats its header.
// On failure nothing has changed.
func (fa *Allocator) carve(size int) (Ptr, error) {
	total := format.HeaderSize + size
	if fa.onGrow != nil {
		fa.onGrow(total)
	}

	off, err := fa.a.Grow(total)
	if err != nil {
		return Nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}

	fa.stats.GrowCalls++
	fa.stats.GrowBytes += int64(total)
	fa.stats.AllocSlowPath++

	fa.putHeader(off, format.Header{
		Capacity:  uint64(size),
		Requested: uint64(size),
		Next:      format.NoLink,
	})
	fa.stats.LiveBlocks++
	fa.stats.LiveBytes += int64(size)

	return Ptr(off + format.HeaderSize), nil
}

// ZeroAllocate allocates count*size bytes and zero-fills them.
// A product that does not fit in an int is rejected with ErrOverflow.
func (fa *Allocator) ZeroAllocate(count, size int) (Ptr, error) {
	fa.stats.ZeroAllocCalls++

	if count < 0 || size < 0 {
		return Nil, fmt.Errorf("%w: %d x %d", ErrNegativeSize, count, size)
	}
	total, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return Nil, fmt.Errorf("%w: %d x %d", ErrOverflow, count, size)
	}

	p, err := fa.Allocate(total)
	if err != nil {
		return Nil, err
	}

	start := int(p)
	clear(fa.a.Bytes()[start : start+total])
	fa.markDirty(start, total)
	return p, nil
}

// Release returns the block at p to the free list. Releasing Nil is a no-op.
//
// p must be live: releasing a pointer twice, or one not obtained from this
// allocator, is undefined behavior. Only pointers outside the arena are
// detected (ErrBadPtr).
func (fa *Allocator) Release(p Ptr) error {
	if p == Nil {
		return nil
	}
	fa.stats.FreeCalls++

	off, err := fa.headerOf(p)
	if err != nil {
		return err
	}

	h := fa.header(off)
	fa.stats.LiveBlocks--
	fa.stats.LiveBytes -= int64(h.Requested)

	// A free block has no logical size.
	h.Requested = 0

	switch fa.cfg.Policy {
	case PolicyAddressOrdered:
		fa.insertOrdered(off, h)
	default:
		fa.pushFront(off, h)
	}

	fa.stats.FreeBlocks++
	fa.stats.FreeBytes += int64(h.Capacity)
	return nil
}

// Resize changes the logical size of the block at p.
//
//   - p == Nil: same as Allocate(newSize), except Resize(Nil, 0) is a no-op
//     returning Nil
//   - newSize == 0: same as Release(p); returns Nil
//   - newSize <= capacity: the block is kept and only its size changes
//   - otherwise: a new block is allocated, min(old size, newSize) bytes are
//     copied, and p is released
//
// If the replacement cannot be allocated, p and its contents are untouched
// and the error is returned with Nil.
func (fa *Allocator) Resize(p Ptr, newSize int) (Ptr, error) {
	fa.stats.ResizeCalls++

	if newSize < 0 {
		return Nil, fmt.Errorf("%w: %d", ErrNegativeSize, newSize)
	}
	if p == Nil {
		if newSize == 0 {
			return Nil, nil
		}
		return fa.Allocate(newSize)
	}
	if newSize == 0 {
		return Nil, fa.Release(p)
	}

	off, err := fa.headerOf(p)
	if err != nil {
		return Nil, err
	}
	h := fa.header(off)

	if uint64(newSize) <= h.Capacity {
		fa.stats.LiveBytes += int64(newSize) - int64(h.Requested)
		fa.stats.ResizeInPlace++
		h.Requested = uint64(newSize)
		fa.putHeader(off, h)
		return p, nil
	}

	// Allocate before touching the original so a failure leaves it intact.
	np, err := fa.Allocate(newSize)
	if err != nil {
		return Nil, err
	}

	// Growth may have moved the arena; re-fetch the view.
	data := fa.a.Bytes()
	n := int(min(h.Requested, uint64(newSize)))
	copy(data[int(np):int(np)+n], data[int(p):int(p)+n])
	fa.markDirty(int(np), n)

	if err := fa.Release(p); err != nil {
		return Nil, err
	}
	fa.stats.ResizeMoved++
	return np, nil
}

// Bytes returns the payload of the live block at p, sized to the last
// requested size. The slice's capacity is the block capacity. It is only
// valid until the next call that grows the arena.
func (fa *Allocator) Bytes(p Ptr) ([]byte, error) {
	off, err := fa.headerOf(p)
	if err != nil {
		return nil, err
	}
	h := fa.header(off)
	start := int(p)
	return fa.a.Bytes()[start : start+int(h.Requested) : start+int(h.Capacity)], nil
}

// Size returns the last requested size of the block at p.
func (fa *Allocator) Size(p Ptr) (int, error) {
	off, err := fa.headerOf(p)
	if err != nil {
		return 0, err
	}
	return int(fa.header(off).Requested), nil
}

// Capacity returns the usable payload bytes of the block at p.
func (fa *Allocator) Capacity(p Ptr) (int, error) {
	off, err := fa.headerOf(p)
	if err != nil {
		return 0, err
	}
	return int(fa.header(off).Capacity), nil
}

// Touch reports the payload of p to the dirty tracker after the caller has
// written to it. It is a no-op without a tracker.
func (fa *Allocator) Touch(p Ptr) error {
	off, err := fa.headerOf(p)
	if err != nil {
		return err
	}
	fa.markDirty(int(p), int(fa.header(off).Requested))
	return nil
}

// headerOf maps a payload pointer to its header offset, checking that the
// whole block lies inside the arena.
func (fa *Allocator) headerOf(p Ptr) (int, error) {
	size := uint64(fa.a.Size())
	if uint64(p) < format.HeaderSize || uint64(p) > size {
		return 0, fmt.Errorf("%w: 0x%X outside arena of %d bytes", ErrBadPtr, uint64(p), size)
	}
	off := int(p) - format.HeaderSize
	if capacity := format.ReadU64(fa.a.Bytes(), off+format.CapacityOffset); capacity > size-uint64(p) {
		return 0, fmt.Errorf("%w: 0x%X capacity %d runs past arena end", ErrBadPtr, uint64(p), capacity)
	}
	return off, nil
}

// header decodes the header at off.
func (fa *Allocator) header(off int) format.Header {
	return format.ReadHeader(fa.a.Bytes(), off)
}

// putHeader encodes h at off and marks it dirty.
func (fa *Allocator) putHeader(off int, h format.Header) {
	format.PutHeader(fa.a.Bytes(), off, h)
	fa.markDirty(off, format.HeaderSize)
}

// setNext rewrites only the link field of the header at off.
func (fa *Allocator) setNext(off int, next uint64) {
	format.PutU64(fa.a.Bytes(), off+format.NextOffset, next)
	fa.markDirty(off+format.NextOffset, format.WordSize)
}

func (fa *Allocator) markDirty(off, n int) {
	if fa.dt != nil && n > 0 {
		fa.dt.Add(off, n)
	}
}
