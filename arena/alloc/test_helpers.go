package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestAllocator creates an allocator over an unlimited in-memory arena.
func newTestAllocator(t testing.TB, cfg *Config) *Allocator {
	t.Helper()
	return newLimitedAllocator(t, 0, cfg)
}

// newLimitedAllocator creates an allocator whose arena refuses to grow past limit.
func newLimitedAllocator(t testing.TB, limit int, cfg *Config) *Allocator {
	t.Helper()
	fa, err := New(arena.NewMemory(limit), nil, cfg)
	require.NoError(t, err)
	return fa
}

// setupGrowCounter sets up a test hook to count arena growths.
// Returns a pointer to the counter.
func setupGrowCounter(fa *Allocator) *int {
	growCount := 0
	fa.onGrow = func(int) { growCount++ }
	return &growCount
}

// assertInvariants fails the test if Verify reports a problem.
func assertInvariants(t testing.TB, fa *Allocator) {
	t.Helper()
	require.NoError(t, fa.Verify())
}

// mustAlloc allocates size bytes or fails the test.
func mustAlloc(t testing.TB, fa *Allocator, size int) Ptr {
	t.Helper()
	p, err := fa.Allocate(size)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	return p
}

// fillPattern writes a recognizable pattern derived from seed into p's payload.
func fillPattern(t testing.TB, fa *Allocator, p Ptr, seed byte) []byte {
	t.Helper()
	buf, err := fa.Bytes(p)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = seed + byte(i*7)
	}
	return clone(buf)
}

// payload returns a copy of p's payload. A zero-length payload copies to an
// empty, non-nil slice.
func payload(t testing.TB, fa *Allocator, p Ptr) []byte {
	t.Helper()
	buf, err := fa.Bytes(p)
	require.NoError(t, err)
	return clone(buf)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// recordingTracker captures every dirty range reported by the allocator.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}

func (r *recordingTracker) covers(off, length int) bool {
	for _, rg := range r.ranges {
		if rg[0] <= off && off+length <= rg[0]+rg[1] {
			return true
		}
	}
	return false
}
