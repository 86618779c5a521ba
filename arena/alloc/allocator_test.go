package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
)

func TestNewRejectsNonEmptyArena(t *testing.T) {
	m := arena.NewMemory(0)
	_, err := m.Grow(8)
	require.NoError(t, err)

	_, err = New(m, nil, nil)
	require.ErrorIs(t, err, ErrArenaNotEmpty)
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := New(arena.NewMemory(0), nil, &Config{Name: "bogus", Policy: 9})
	require.ErrorIs(t, err, ErrBadPolicy)
}

func TestNewDefaultsToLIFO(t *testing.T) {
	fa := newTestAllocator(t, nil)
	assert.Equal(t, DefaultConfig, fa.Config())
	assert.Equal(t, PolicyLIFO, fa.Config().Policy)
}

// TestFirstAllocationCarvesExactly checks the first-call fast path: the arena
// grows by exactly header + size and the header is formatted.
func TestFirstAllocationCarvesExactly(t *testing.T) {
	fa := newTestAllocator(t, nil)

	p := mustAlloc(t, fa, 10)
	assert.Equal(t, Ptr(HeaderSize), p)

	st := fa.Stats()
	assert.EqualValues(t, HeaderSize+10, st.ArenaBytes)
	assert.Equal(t, 1, st.GrowCalls)
	assert.Equal(t, 1, st.AllocSlowPath)

	size, err := fa.Size(p)
	require.NoError(t, err)
	assert.Equal(t, 10, size)
	capacity, err := fa.Capacity(p)
	require.NoError(t, err)
	assert.Equal(t, 10, capacity)

	assertInvariants(t, fa)
}

// TestReleaseThenSmallerAllocReusesAddress: allocate(10) → release →
// allocate(5) returns the same address.
func TestReleaseThenSmallerAllocReusesAddress(t *testing.T) {
	fa := newTestAllocator(t, nil)

	p := mustAlloc(t, fa, 10)
	require.NoError(t, fa.Release(p))
	assertInvariants(t, fa)

	growCount := setupGrowCounter(fa)
	q := mustAlloc(t, fa, 5)

	assert.Equal(t, p, q)
	assert.Equal(t, 0, *growCount, "reuse must not grow the arena")

	// The block keeps its capacity; only the logical size changes.
	capacity, err := fa.Capacity(q)
	require.NoError(t, err)
	assert.Equal(t, 10, capacity)
	buf, err := fa.Bytes(q)
	require.NoError(t, err)
	assert.Len(t, buf, 5)
	assert.Equal(t, 10, cap(buf))

	assertInvariants(t, fa)
}

// TestTooSmallFreeBlockIsSkipped: allocate(10) → allocate(20) →
// release(first) → allocate(15) grows instead of reusing first.
func TestTooSmallFreeBlockIsSkipped(t *testing.T) {
	fa := newTestAllocator(t, nil)

	first := mustAlloc(t, fa, 10)
	second := mustAlloc(t, fa, 20)
	require.NoError(t, fa.Release(first))

	growCount := setupGrowCounter(fa)
	third := mustAlloc(t, fa, 15)

	assert.NotEqual(t, first, third)
	assert.NotEqual(t, second, third)
	assert.Equal(t, 1, *growCount)
	assert.Greater(t, third, second, "fresh block comes from the arena end")

	// first is still on the free list.
	free := fa.FreeList()
	require.Len(t, free, 1)
	assert.Equal(t, first, free[0].Ptr)

	assertInvariants(t, fa)
}

func TestZeroSizeAllocationsAreDistinct(t *testing.T) {
	fa := newTestAllocator(t, nil)

	a := mustAlloc(t, fa, 0)
	b := mustAlloc(t, fa, 0)
	assert.NotEqual(t, a, b)

	buf, err := fa.Bytes(a)
	require.NoError(t, err)
	assert.NotNil(t, buf)
	assert.Empty(t, buf)

	require.NoError(t, fa.Release(a))
	require.NoError(t, fa.Release(b))
	assertInvariants(t, fa)

	// A zero-size request fits any free block.
	c := mustAlloc(t, fa, 0)
	assert.Equal(t, b, c, "LIFO hands back the most recent release")
	assertInvariants(t, fa)
}

func TestAllocateNegativeSize(t *testing.T) {
	fa := newTestAllocator(t, nil)

	p, err := fa.Allocate(-1)
	require.ErrorIs(t, err, ErrNegativeSize)
	assert.Equal(t, Nil, p)
	assert.EqualValues(t, 0, fa.Stats().ArenaBytes)
}

func TestAllocateOutOfMemory(t *testing.T) {
	fa := newLimitedAllocator(t, 100, nil)

	p := mustAlloc(t, fa, 40) // 64 bytes used

	q, err := fa.Allocate(20) // needs 44
	require.Error(t, err)
	assert.Equal(t, Nil, q)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	assert.True(t, errors.Is(err, arena.ErrOutOfMemory), "arena cause is kept")
	assertInvariants(t, fa)

	// State is unchanged and retryable once memory is released.
	require.NoError(t, fa.Release(p))
	q, err = fa.Allocate(20)
	require.NoError(t, err)
	assert.Equal(t, p, q)
	assertInvariants(t, fa)
}

func TestAllocateHugeRequest(t *testing.T) {
	fa := newTestAllocator(t, nil)

	_, err := fa.Allocate(arena.MaxSize)
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.EqualValues(t, 0, fa.Stats().ArenaBytes)
}

func TestReleaseNilIsNoop(t *testing.T) {
	fa := newTestAllocator(t, nil)
	mustAlloc(t, fa, 8)
	before := fa.Stats()

	for range 3 {
		require.NoError(t, fa.Release(Nil))
	}

	assert.Equal(t, before, fa.Stats())
	assert.Empty(t, fa.FreeList())
}

func TestReleaseBadPointer(t *testing.T) {
	fa := newTestAllocator(t, nil)
	p := mustAlloc(t, fa, 8)

	tests := []struct {
		name string
		ptr  Ptr
	}{
		{"inside first header", Ptr(HeaderSize - 1)},
		{"past arena end", p + 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fa.Release(tt.ptr)
			require.ErrorIs(t, err, ErrBadPtr)
		})
	}
	assertInvariants(t, fa)
}

func TestBytesRejectsNil(t *testing.T) {
	fa := newTestAllocator(t, nil)
	_, err := fa.Bytes(Nil)
	require.ErrorIs(t, err, ErrBadPtr)
}

func TestBytesSurviveArenaGrowthByPointer(t *testing.T) {
	fa := newTestAllocator(t, nil)

	p := mustAlloc(t, fa, 32)
	want := fillPattern(t, fa, p, 0x40)

	// Grow the arena enough to reallocate the backing slice several times.
	for range 64 {
		mustAlloc(t, fa, 512)
	}

	assert.Equal(t, want, payload(t, fa, p))
	assertInvariants(t, fa)
}

func TestLiveBlocksNeverOverlap(t *testing.T) {
	fa := newTestAllocator(t, nil)

	var ptrs []Ptr
	for i := range 20 {
		ptrs = append(ptrs, mustAlloc(t, fa, i*3))
	}
	for i := 0; i < len(ptrs); i += 2 {
		require.NoError(t, fa.Release(ptrs[i]))
	}
	for i := 0; i < len(ptrs); i += 2 {
		ptrs[i] = mustAlloc(t, fa, i)
	}

	type span struct{ start, end int }
	var spans []span
	for _, p := range ptrs {
		c, err := fa.Capacity(p)
		require.NoError(t, err)
		spans = append(spans, span{int(p) - HeaderSize, int(p) + c})
	}
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			overlap := spans[i].start < spans[j].end && spans[j].start < spans[i].end
			assert.False(t, overlap, "blocks %d and %d overlap: %+v %+v", i, j, spans[i], spans[j])
		}
	}
	assertInvariants(t, fa)
}
