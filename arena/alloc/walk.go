package alloc

import (
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Walk visits the blocks of an arena image in address order until fn
// returns false. data may come from a live allocator or from a saved arena
// file. Free is never set, since the free-list head is not stored in the
// arena; Linked is.
//
// A header that is truncated, runs past the end of data, or records a
// requested size above its capacity stops the walk with an *InvariantError.
func Walk(data []byte, fn func(BlockInfo) bool) error {
	for off := 0; off < len(data); {
		if !buf.Has(data, off, format.HeaderSize) {
			return &InvariantError{Off: uint64(off), Msg: "truncated header at arena end"}
		}
		h := format.ReadHeader(data, off)
		if h.Capacity < h.Requested {
			return &InvariantError{Off: uint64(off), Msg: "capacity below requested size"}
		}
		if h.Capacity > uint64(len(data)-off-format.HeaderSize) {
			return &InvariantError{Off: uint64(off), Msg: "block extends past arena end"}
		}

		if !fn(BlockInfo{
			Off:       off,
			Ptr:       Ptr(off + format.HeaderSize),
			Capacity:  int(h.Capacity),
			Requested: int(h.Requested),
			Linked:    h.Linked(),
		}) {
			return nil
		}
		off += format.HeaderSize + int(h.Capacity)
	}
	return nil
}
