package alloc

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats holds allocator counters and the current memory picture.
type Stats struct {
	GrowCalls      int   // Number of arena growths
	GrowBytes      int64 // Total bytes added to the arena
	AllocCalls     int   // Total Allocate() calls (including those made by Resize/ZeroAllocate)
	AllocFastPath  int   // Allocations served from the free list
	AllocSlowPath  int   // Allocations that grew the arena
	ZeroAllocCalls int   // Total ZeroAllocate() calls
	FreeCalls      int   // Release() calls with a non-Nil pointer
	ResizeCalls    int   // Total Resize() calls
	ResizeInPlace  int   // Resizes that kept the block
	ResizeMoved    int   // Resizes that copied into a new block

	LiveBlocks int   // Blocks owned by callers
	LiveBytes  int64 // Sum of requested sizes of live blocks
	FreeBlocks int   // Blocks on the free list
	FreeBytes  int64 // Sum of capacities of free blocks
	ArenaBytes int64 // Arena size, headers included
}

// Stats returns a snapshot of the allocator statistics.
func (fa *Allocator) Stats() Stats {
	s := fa.stats
	s.ArenaBytes = int64(fa.a.Size())
	return s
}

// Utilization returns the share of the arena holding live payload bytes
// (0.0 to 1.0). Returns 0 for an empty arena.
func (s Stats) Utilization() float64 {
	if s.ArenaBytes == 0 {
		return 0
	}
	return float64(s.LiveBytes) / float64(s.ArenaBytes)
}

// PrintStats writes a human-readable summary of the allocator statistics.
func (fa *Allocator) PrintStats(w io.Writer) {
	s := fa.Stats()
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "=== Allocator Stats (%s) ===\n", fa.cfg.Name)
	p.Fprintf(w, "Arena:       %d bytes, %d grows\n", s.ArenaBytes, s.GrowCalls)
	p.Fprintf(w, "Live:        %d blocks, %d bytes (%.1f%% of arena)\n",
		s.LiveBlocks, s.LiveBytes, s.Utilization()*100)
	p.Fprintf(w, "Free list:   %d blocks, %d bytes\n", s.FreeBlocks, s.FreeBytes)
	p.Fprintf(w, "Allocate:    %d calls (%d reused, %d grew)\n",
		s.AllocCalls, s.AllocFastPath, s.AllocSlowPath)
	p.Fprintf(w, "ZeroAlloc:   %d calls\n", s.ZeroAllocCalls)
	p.Fprintf(w, "Resize:      %d calls (%d in place, %d moved)\n",
		s.ResizeCalls, s.ResizeInPlace, s.ResizeMoved)
	p.Fprintf(w, "Release:     %d calls\n", s.FreeCalls)
}
