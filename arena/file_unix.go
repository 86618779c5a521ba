//go:build unix

package arena

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// File is an Arena backed by a memory-mapped file.
//
// The file length is always a whole number of pages; Size() is the logical
// end, which trails the mapped length by less than a page.
type File struct {
	f     *os.File
	path  string
	data  []byte // full mapping
	size  int    // logical end
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

// Grow implements Arena. Crossing the mapped length extends the file to the
// next page boundary and remaps it.
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
		if err := a.remap(format.AlignPage(need)); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		}
	}
	a.size = need
	logger.L.Debug("arena.grow", "kind", "file", "off", off, "n", n, "mapped", len(a.data))
	return off, nil
}

// mmapFile maps the backing file. Tests replace it to simulate failures.
var mmapFile = unix.Mmap

// remap extends the file to newLen bytes and maps all of it. The new mapping
// is created before the old one is dropped, so on failure the arena keeps
// its previous mapping, file length and contents.
func (a *File) remap(newLen int) error {
	oldLen := len(a.data)

	// Truncate file to new size (extends with zeros)
	if err := a.f.Truncate(int64(newLen)); err != nil {
		_ = a.f.Truncate(int64(oldLen))
		return fmt.Errorf("arena: failed to truncate file: %w", err)
	}

	data, err := mmapFile(int(a.f.Fd()), 0, newLen, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = a.f.Truncate(int64(oldLen))
		return fmt.Errorf("arena: failed to remap after grow: %w", err)
	}

	// Both mappings share the file pages; the old one can go.
	if a.data != nil {
		if uerr := unix.Munmap(a.data); uerr != nil {
			logger.L.Error("arena.unmap", "path", a.path, "err", uerr)
		}
	}
	a.data = data
	return nil
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

// Sync flushes the whole mapping to disk.
func (a *File) Sync() error {
	if a.f == nil {
		return ErrClosed
	}
	if len(a.data) == 0 {
		return nil
	}
	return unix.Msync(a.data, unix.MS_SYNC)
}

// Close unmaps the file, trims the page padding so the file holds exactly
// Size() bytes, and closes it. It is safe to call twice. Close does not
// flush; use a dirty tracker or Sync first.
func (a *File) Close() error {
	var err error
	if a.data != nil {
		if uerr := unix.Munmap(a.data); uerr != nil && !errors.Is(uerr, unix.EINVAL) {
			err = uerr
		}
		a.data = nil
	}
	if a.f != nil {
		if terr := a.f.Truncate(int64(a.size)); err == nil {
			err = terr
		}
		if cerr := a.f.Close(); err == nil {
			err = cerr
		}
		a.f = nil
	}
	return err
}

// Compile-time interface check
var _ Arena = (*File)(nil)
