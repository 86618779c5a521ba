//go:build !unix

package arena

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// File is an Arena backed by a file. Without mmap the contents live in
// memory and are written through on Sync.
type File struct {
	f     *os.File
	path  string
	data  []byte
	size  int
	limit int
}

// CreateFile creates (or truncates) path and returns an empty arena over it.
// A limit <= 0 means MaxSize.
func CreateFile(path string, limit int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	return &File{f: f, path: path, limit: effectiveLimit(limit)}, nil
}

// Grow implements Arena.
func (a *File) Grow(n int) (int, error) {
	if a.f == nil {
		return 0, ErrClosed
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeGrow, n)
	}
	off := a.size
	if n > a.limit-off {
		return 0, fmt.Errorf("%w: grow %d bytes at %d (limit %d)", ErrOutOfMemory, n, off, a.limit)
	}

	need := off + n
	if need > len(a.data) {
		newLen := format.AlignPage(need)
		if err := a.f.Truncate(int64(newLen)); err != nil {
			return 0, fmt.Errorf("%w: arena: failed to extend file: %w", ErrOutOfMemory, err)
		}
		grown := make([]byte, newLen)
		copy(grown, a.data)
		a.data = grown
	}
	a.size = need
	logger.L.Debug("arena.grow", "kind", "file", "off", off, "n", n, "mapped", len(a.data))
	return off, nil
}

// Bytes implements Arena. A closed arena has no bytes.
func (a *File) Bytes() []byte {
	if a.data == nil {
		return nil
	}
	return a.data[:a.size]
}

// Size implements Arena.
func (a *File) Size() int { return a.size }

// FD returns the descriptor of the backing file, or -1 once closed.
func (a *File) FD() int {
	if a.f == nil {
		return -1
	}
	return int(a.f.Fd())
}

// Path returns the backing file path.
func (a *File) Path() string { return a.path }

// Sync writes the in-memory contents to the file.
func (a *File) Sync() error {
	if a.f == nil {
		return ErrClosed
	}
	if _, err := a.f.WriteAt(a.data, 0); err != nil {
		return err
	}
	return a.f.Sync()
}

// Close writes the contents out, trims the file to Size() bytes and closes
// it. It is safe to call twice.
func (a *File) Close() error {
	if a.f == nil {
		return nil
	}
	_, err := a.f.WriteAt(a.data, 0)
	if terr := a.f.Truncate(int64(a.size)); err == nil {
		err = terr
	}
	if cerr := a.f.Close(); err == nil {
		err = cerr
	}
	a.f = nil
	a.data = nil
	return err
}

// Compile-time interface check
var _ Arena = (*File)(nil)
