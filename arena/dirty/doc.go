// Package dirty tracks which byte ranges of a file-backed arena have been
// modified and flushes only those ranges to disk.
//
// # Overview
//
// The allocator reports every header it writes, and every payload range it
// fills, through the DirtyTracker interface. A Tracker accumulates those
// ranges cheaply and, at flush time, page-aligns, sorts and merges them
// before handing them to msync.
//
// # Usage
//
//	fa, err := arena.CreateFile(path, 0)
//	if err != nil {
//	    return err
//	}
//	dt := dirty.NewTracker(fa)
//	al, err := alloc.New(fa, dt, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, _ := al.Allocate(128)
//	// ... write the payload, then al.Touch(p)
//
//	err = dt.Flush(ctx, dirty.FlushAuto)
//
// # Page-Level Granularity
//
// Ranges are rounded out to 4KB page boundaries and merged when they touch:
//
//	Add(100, 200), Add(4096, 10) → [0x0-0x2000]
//
// # Thread Safety
//
// A Tracker is not thread-safe; it is driven by the same goroutine as the
// allocator that feeds it.
package dirty
