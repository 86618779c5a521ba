//go:build !linux && !freebsd && !darwin

package dirty

import "context"

// flushRanges hands the flush to the mapping itself when it knows how to
// sync; otherwise there is nothing to do.
func (t *Tracker) flushRanges(ctx context.Context, _ []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s, ok := t.m.(Syncer); ok {
		return s.Sync()
	}
	return nil
}

// fdatasync is covered by Syncer on these platforms.
func fdatasync(int, bool) error {
	return nil
}
