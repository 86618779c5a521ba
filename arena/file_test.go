package arena

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func newTestFile(t *testing.T, limit int) *File {
	t.Helper()
	a, err := CreateFile(filepath.Join(t.TempDir(), "arena.heap"), limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestFileGrowReservesPages(t *testing.T) {
	a := newTestFile(t, 0)
	assert.Equal(t, 0, a.Size())

	off, err := a.Grow(100)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
	assert.Equal(t, 100, a.Size())

	st, err := os.Stat(a.Path())
	require.NoError(t, err)
	assert.EqualValues(t, format.PageSize, st.Size(), "file is extended in whole pages")
}

func TestFileGrowAcrossPagesKeepsContents(t *testing.T) {
	a := newTestFile(t, 0)

	_, err := a.Grow(16)
	require.NoError(t, err)
	copy(a.Bytes(), "persisted-prefix")

	off, err := a.Grow(3 * format.PageSize)
	require.NoError(t, err)
	assert.Equal(t, 16, off)
	assert.Equal(t, "persisted-prefix", string(a.Bytes()[:16]))

	st, err := os.Stat(a.Path())
	require.NoError(t, err)
	assert.EqualValues(t, format.AlignPage(16+3*format.PageSize), st.Size())
}

func TestFileLimit(t *testing.T) {
	a := newTestFile(t, 64)

	_, err := a.Grow(64)
	require.NoError(t, err)

	_, err = a.Grow(1)
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 64, a.Size())
}

func TestFileSyncWritesContents(t *testing.T) {
	a := newTestFile(t, 0)

	_, err := a.Grow(5)
	require.NoError(t, err)
	copy(a.Bytes(), "hello")
	require.NoError(t, a.Sync())

	raw, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw[:5]))
}

func TestFileClose(t *testing.T) {
	a := newTestFile(t, 0)
	_, err := a.Grow(8)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "double close is a no-op")
	assert.Equal(t, -1, a.FD())
	assert.Nil(t, a.Bytes())

	_, err = a.Grow(8)
	require.ErrorIs(t, err, ErrClosed)
}

func TestFileCloseTrimsPadding(t *testing.T) {
	a := newTestFile(t, 0)
	_, err := a.Grow(100)
	require.NoError(t, err)
	copy(a.Bytes(), "tail")
	require.NoError(t, a.Sync())
	require.NoError(t, a.Close())

	raw, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	assert.Len(t, raw, 100)
	assert.Equal(t, "tail", string(raw[:4]))
}
