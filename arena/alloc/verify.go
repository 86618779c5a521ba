package alloc

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// Verify checks the allocator's structural invariants:
//
//   - blocks tile the arena exactly, with capacity >= requested size
//   - the free list has no cycle and no duplicate header
//   - every free-list entry is a block boundary (not a live payload)
//   - with PolicyAddressOrdered, the list is sorted by offset
//   - block and byte counts agree with Stats
//
// It returns an *InvariantError describing the first problem found.
func (fa *Allocator) Verify() error {
	data := fa.a.Bytes()

	// Pass 1: tile the arena.
	boundaries := make(map[uint64]struct{})
	var blocks int
	if err := Walk(data, func(b BlockInfo) bool {
		boundaries[uint64(b.Off)] = struct{}{}
		blocks++
		return true
	}); err != nil {
		return err
	}

	// Pass 2: walk the free list.
	seen := make(map[uint64]struct{}, fa.stats.FreeBlocks)
	var freeBytes int64
	prev := uint64(format.NoLink)
	for cur := fa.head; cur != format.NoLink; {
		if _, dup := seen[cur]; dup {
			return &InvariantError{Off: cur, Msg: "free list revisits a header (cycle or double release)"}
		}
		if _, ok := boundaries[cur]; !ok {
			return &InvariantError{Off: cur, Msg: "free list entry is not a block header"}
		}
		if fa.cfg.Policy == PolicyAddressOrdered && prev != format.NoLink && cur < prev {
			return &InvariantError{Off: cur, Msg: "address-ordered free list out of order"}
		}
		seen[cur] = struct{}{}

		h := format.ReadHeader(data, int(cur))
		freeBytes += int64(h.Capacity)
		prev, cur = cur, h.Next
	}

	if len(seen) != fa.stats.FreeBlocks || freeBytes != fa.stats.FreeBytes {
		return &InvariantError{Off: fa.head, Msg: "free list does not match free block accounting"}
	}

	// Pass 3: everything not on the free list is live.
	var liveBytes int64
	for off := range boundaries {
		if _, free := seen[off]; free {
			continue
		}
		h := format.ReadHeader(data, int(off))
		if h.Linked() {
			return &InvariantError{Off: off, Msg: "live block carries a free-list link"}
		}
		liveBytes += int64(h.Requested)
	}
	if blocks-len(seen) != fa.stats.LiveBlocks || liveBytes != fa.stats.LiveBytes {
		return &InvariantError{Off: 0, Msg: "live blocks do not match live accounting"}
	}
	return nil
}
