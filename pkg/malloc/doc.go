// Package malloc is the process-wide face of the block allocator.
//
// A Heap owns one arena/alloc.Allocator and serializes every call through a
// mutex, so any number of goroutines may share it. The package-level
// Malloc, Calloc, Realloc and Free functions use a default Heap over an
// unlimited in-memory arena that is created on first use.
//
// # Usage
//
//	p, err := malloc.Malloc(64)
//	if err != nil {
//	    return err
//	}
//	defer malloc.Free(p)
//
//	if err := malloc.Write(p, payload); err != nil {
//	    return err
//	}
//
// # Views and copies
//
// Bytes returns a view into the arena. The view is only valid until the
// heap next grows, which another goroutine may trigger at any time, so
// concurrent programs should use Read and Write instead.
package malloc
