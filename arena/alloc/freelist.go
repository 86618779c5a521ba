package alloc

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// Free-list walks are bounded by the number of blocks the allocator believes
// are free, so a list corrupted by a double release cannot hang a call.
func (fa *Allocator) walkLimit() int {
	return fa.stats.FreeBlocks + 1
}

// takeFirstFit detaches the first free block with capacity >= size.
// The block's capacity is kept; its requested size becomes size.
func (fa *Allocator) takeFirstFit(size uint64) (int, bool) {
	prev := uint64(format.NoLink)
	cur := fa.head

	for steps := 0; cur != format.NoLink && steps < fa.walkLimit(); steps++ {
		off := int(cur)
		h := fa.header(off)
		if h.Capacity >= size {
			if prev == format.NoLink {
				fa.head = h.Next
			} else {
				fa.setNext(int(prev), h.Next)
			}

			h.Next = format.NoLink
			h.Requested = size
			fa.putHeader(off, h)

			fa.stats.FreeBlocks--
			fa.stats.FreeBytes -= int64(h.Capacity)
			fa.stats.LiveBlocks++
			fa.stats.LiveBytes += int64(size)
			return off, true
		}
		prev, cur = cur, h.Next
	}
	return 0, false
}

// pushFront makes the block at off the new list head.
func (fa *Allocator) pushFront(off int, h format.Header) {
	h.Next = fa.head
	fa.putHeader(off, h)
	fa.head = uint64(off)
}

// insertOrdered splices the block at off between the last free header below
// it and the first one above it. Offsets all come from the same arena, so
// the comparison is well defined.
func (fa *Allocator) insertOrdered(off int, h format.Header) {
	prev := uint64(format.NoLink)
	cur := fa.head

	for steps := 0; cur != format.NoLink && cur < uint64(off) && steps < fa.walkLimit(); steps++ {
		prev = cur
		cur = format.ReadU64(fa.a.Bytes(), int(cur)+format.NextOffset)
	}

	h.Next = cur
	fa.putHeader(off, h)
	if prev == format.NoLink {
		fa.head = uint64(off)
		return
	}
	fa.setNext(int(prev), uint64(off))
}

// FreeList returns the free blocks in list order.
func (fa *Allocator) FreeList() []BlockInfo {
	out := make([]BlockInfo, 0, fa.stats.FreeBlocks)
	cur := fa.head
	for steps := 0; cur != format.NoLink && steps < fa.walkLimit(); steps++ {
		h := fa.header(int(cur))
		out = append(out, BlockInfo{
			Off:       int(cur),
			Ptr:       Ptr(cur + format.HeaderSize),
			Capacity:  int(h.Capacity),
			Requested: int(h.Requested),
			Free:      true,
			Linked:    h.Linked(),
		})
		cur = h.Next
	}
	return out
}

// Blocks returns every block in the arena in address order, marking the
// ones on the free list.
func (fa *Allocator) Blocks() []BlockInfo {
	free := make(map[int]struct{}, fa.stats.FreeBlocks)
	for _, b := range fa.FreeList() {
		free[b.Off] = struct{}{}
	}

	var out []BlockInfo
	// The arena only grows through carve, so it always tiles.
	_ = Walk(fa.a.Bytes(), func(b BlockInfo) bool {
		_, b.Free = free[b.Off]
		out = append(out, b)
		return true
	})
	return out
}
