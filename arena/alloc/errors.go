package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory indicates the arena could not grow to satisfy a request.
	// The allocator state is unchanged and the call may be retried.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrBadPtr indicates a pointer that cannot belong to this allocator.
	ErrBadPtr = errors.New("alloc: bad pointer")

	// ErrNegativeSize indicates a negative size or count.
	ErrNegativeSize = errors.New("alloc: negative size")

	// ErrOverflow indicates count*size does not fit in an int.
	ErrOverflow = errors.New("alloc: size overflow")

	// ErrArenaNotEmpty indicates New was given an arena that already holds data.
	ErrArenaNotEmpty = errors.New("alloc: arena must be empty")

	// ErrBadPolicy indicates an unknown free-list policy.
	ErrBadPolicy = errors.New("alloc: unknown free-list policy")
)

// InvariantError reports a structural problem found by Verify.
type InvariantError struct {
	Off uint64 // Header offset where the problem was found
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("alloc: invariant violated at header 0x%X: %s", e.Off, e.Msg)
}
