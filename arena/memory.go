package arena

import (
	"fmt"
	"slices"

	"github.com/joshuapare/heapkit/internal/logger"
)

// Memory is an Arena backed by a Go byte slice.
type Memory struct {
	buf   []byte
	limit int
}

// NewMemory creates an empty in-memory arena that refuses to grow past limit
// bytes. A limit <= 0 means MaxSize.
func NewMemory(limit int) *Memory {
	return &Memory{limit: effectiveLimit(limit)}
}

// Grow implements Arena.
func (m *Memory) Grow(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeGrow, n)
	}
	off := len(m.buf)
	if n > m.limit-off {
		return 0, fmt.Errorf("%w: grow %d bytes at %d (limit %d)", ErrOutOfMemory, n, off, m.limit)
	}
	m.buf = slices.Grow(m.buf, n)[:off+n]
	logger.L.Debug("arena.grow", "kind", "memory", "off", off, "n", n)
	return off, nil
}

// Bytes implements Arena.
func (m *Memory) Bytes() []byte { return m.buf }

// Size implements Arena.
func (m *Memory) Size() int { return len(m.buf) }

// Limit returns the maximum size this arena will grow to.
func (m *Memory) Limit() int { return m.limit }

// Compile-time interface check
var _ Arena = (*Memory)(nil)
