package dirty

import (
	"context"
	"sort"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096
)

// FlushMode controls durability guarantees for a flush.
type FlushMode int

const (
	// FlushAuto msyncs dirty pages and then fdatasyncs the file.
	FlushAuto FlushMode = iota

	// FlushDataOnly only msyncs dirty pages. The caller is responsible for
	// syncing the descriptor later.
	FlushDataOnly

	// FlushFull behaves like FlushAuto and additionally asks the OS to flush
	// drive caches where supported (F_FULLFSYNC on macOS).
	FlushFull
)

// Range represents a dirty byte range (arena offsets).
type Range struct {
	Off int64 // Offset in the arena
	Len int64 // Length in bytes
}

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	m        Mapping
	ranges   []Range // Dirty ranges (coalesced at flush time)
	pageSize int64
}

// NewTracker creates a dirty tracker for the given mapping.
func NewTracker(m Mapping) *Tracker {
	return &Tracker{
		m:        m,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
	}
}

// Add records a dirty range. Empty ranges are ignored.
//
// This only appends to a slice; alignment and merging happen at flush time.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Flush writes every dirty range to disk and clears the tracker.
//
// With FlushAuto and FlushFull the file descriptor is synced afterwards.
// The context is checked before each range; a cancelled flush keeps the
// ranges so it can be retried.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := t.m.Bytes()
	if len(t.ranges) > 0 && len(data) > 0 {
		if err := t.flushRanges(ctx, data); err != nil {
			return err
		}
	}
	t.ranges = t.ranges[:0]

	if mode == FlushDataOnly {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fdatasync(t.m.FD(), mode == FlushFull)
}

// FlushDataOnly is shorthand for Flush(ctx, FlushDataOnly).
func (t *Tracker) FlushDataOnly(ctx context.Context) error {
	return t.Flush(ctx, FlushDataOnly)
}

// Reset clears all tracked ranges without flushing them.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Pending reports whether any dirty range is waiting to be flushed.
func (t *Tracker) Pending() bool {
	return len(t.ranges) > 0
}

// DebugRanges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the page-aligned, sorted, merged ranges that
// the next flush would write.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping/adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}

		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			end := max(current.Off+current.Len, next.Off+next.Len)
			current.Len = end - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// clamp bounds r to a buffer of length n. ok is false when nothing is left.
func clamp(r Range, n int) (start, end int, ok bool) {
	start = int(r.Off)
	end = int(r.Off + r.Len)
	if end > n {
		end = n
	}
	return start, end, start < end
}
