// Package alloc implements a first-fit free-list allocator on top of a single
// growable arena.
//
// # Overview
//
// Every block carries a 24-byte header embedded in the arena directly before
// its payload: capacity, requested size, and a free-list link. The header is
// the only record of a block's size. Released blocks are threaded onto a
// singly linked free list through that link field; allocation searches the
// list first-fit and grows the arena only on a miss.
//
// # Operations
//
//   - Allocate(size): first-fit from the free list, else grow the arena
//   - ZeroAllocate(count, size): Allocate(count*size) and zero the payload
//   - Release(p): push the block back onto the free list
//   - Resize(p, size): in place when the capacity allows, else
//     allocate + copy + release (the original survives a failed allocation)
//
// # Pointers
//
// A Ptr is the arena offset of a payload. The header lives at
// p - format.HeaderSize. Offset 0 is never a payload, so Nil (0) is
// distinguishable from every real block, including zero-size ones.
//
// Payload slices come from Bytes(p) and are only valid until the next call
// that grows the arena; hold Ptr values, not slices.
//
// # Free-List Policies
//
//	PolicyLIFO            released blocks go to the head (O(1), default)
//	PolicyAddressOrdered  released blocks are spliced in by header offset
//
// Adjacent free blocks are never coalesced, and a reused block keeps its full
// capacity even when the new request is smaller.
//
// # Usage Example
//
//	al, err := alloc.New(arena.NewMemory(0), nil, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := al.Allocate(64)
//	if err != nil {
//	    return err // wraps ErrOutOfMemory
//	}
//	buf, _ := al.Bytes(p)
//	copy(buf, payload)
//
//	p, err = al.Resize(p, 256)
//	...
//	_ = al.Release(p)
//
// # Misuse
//
// Releasing a pointer twice, or one that did not come from this allocator, is
// undefined behavior. Pointers outside the arena are rejected with ErrBadPtr;
// anything else is not detected at the call site. Verify() walks the arena and
// the free list and usually reports the resulting corruption (a cycle or a
// header that is not on a block boundary).
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally; pkg/malloc provides a mutex-serialized wrapper.
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/arena: growth primitive (memory, mmap file)
//   - github.com/joshuapare/heapkit/arena/dirty: flushes modified ranges of file arenas
//   - github.com/joshuapare/heapkit/internal/format: header layout
package alloc
