package alloc

import (
	"github.com/joshuapare/heapkit/arena/dirty"
	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is the arena offset of a block payload.
type Ptr uint64

// Nil is the absent pointer. No payload ever starts at offset 0 because a
// header always precedes it.
const Nil Ptr = 0

// HeaderSize is the number of arena bytes preceding every payload.
const HeaderSize = format.HeaderSize

// DirtyTracker is a type alias for the canonical interface defined in arena/dirty.
type DirtyTracker = dirty.DirtyTracker

// BlockInfo describes one block in the arena.
type BlockInfo struct {
	Off       int  // Header offset in the arena
	Ptr       Ptr  // Payload pointer (Off + HeaderSize)
	Capacity  int  // Usable payload bytes
	Requested int  // Size last requested by the caller (0 while free)
	Free      bool // On the free list
	Linked    bool // Header carries a free-list link (only free blocks do)
}
