package dirty_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/dirty"
)

func newFileArena(t *testing.T, size int) *arena.File {
	t.Helper()
	fa, err := arena.CreateFile(filepath.Join(t.TempDir(), "test.heap"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fa.Close() })
	_, err = fa.Grow(size)
	require.NoError(t, err)
	return fa
}

func TestTracker_Flush_PreCancelled(t *testing.T) {
	fa := newFileArena(t, 8192)
	tracker := dirty.NewTracker(fa)
	tracker.Add(4096, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.Flush(ctx, dirty.FlushAuto)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, tracker.Pending(), "cancelled flush keeps ranges for retry")
}

func TestTracker_FlushDataOnly_Success(t *testing.T) {
	fa := newFileArena(t, 8192)
	tracker := dirty.NewTracker(fa)

	copy(fa.Bytes()[4096:], "dirty page")
	tracker.Add(4096, len("dirty page"))

	require.NoError(t, tracker.FlushDataOnly(context.Background()))
	require.False(t, tracker.Pending())

	raw, err := os.ReadFile(fa.Path())
	require.NoError(t, err)
	require.Equal(t, "dirty page", string(raw[4096:4096+len("dirty page")]))
}

func TestTracker_FlushAuto_PartialLastPage(t *testing.T) {
	// Logical size ends mid-page; the coalesced range must be clamped.
	fa := newFileArena(t, 5000)
	tracker := dirty.NewTracker(fa)

	copy(fa.Bytes()[4990:], "tail")
	tracker.Add(4990, 4)

	require.NoError(t, tracker.Flush(context.Background(), dirty.FlushAuto))

	raw, err := os.ReadFile(fa.Path())
	require.NoError(t, err)
	require.Equal(t, "tail", string(raw[4990:4994]))
}

func TestTracker_FlushFull_NoRanges(t *testing.T) {
	fa := newFileArena(t, 100)
	tracker := dirty.NewTracker(fa)

	require.NoError(t, tracker.Flush(context.Background(), dirty.FlushFull))
}

// Compile-time interface check
var _ dirty.FlushableTracker = (*dirty.Tracker)(nil)
