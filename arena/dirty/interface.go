package dirty

import "context"

// DirtyTracker is the minimal interface for tracking dirty (modified) byte ranges.
// Allocators only need to report ranges; they never flush.
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the arena offset, length is the number of bytes.
	Add(off, length int)
}

// FlushableTracker extends DirtyTracker with flushing, for components that
// decide when data becomes durable.
type FlushableTracker interface {
	DirtyTracker

	// Flush writes the dirty ranges out and syncs according to mode.
	Flush(ctx context.Context, mode FlushMode) error
}

// Mapping is the view of a file-backed arena the tracker flushes from.
// *arena.File satisfies it.
type Mapping interface {
	Bytes() []byte
	FD() int
}

// Syncer is implemented by mappings that can flush themselves without mmap.
type Syncer interface {
	Sync() error
}
