package alloc

import (
	"fmt"
	"io"
)

// Stats counts allocator events since New or the last ResetStats.
type Stats struct {
	AllocCalls       int   // Total Alloc() calls, including Alloc(0)
	AllocFastPath    int   // Allocations served from a free list
	AllocSlowPath    int   // Allocations that required grow()
	FailedAllocs     int   // Allocations that hit ErrOutOfMemory
	FreeCalls        int   // Total Free() calls
	ReallocCalls     int   // Total Realloc() calls
	ReallocShrink    int   // Shrinks that split off a free tail
	ReallocInPlace   int   // Growths served by absorbing the successor
	ReallocMoved     int   // Growths that copied to a new block
	GrowCalls        int   // Successful heap extensions
	GrowBytes        int64 // Bytes added by extensions
	SplitCount       int   // Free-block splits
	CoalesceForward  int   // Merges with a free successor
	CoalesceBackward int   // Merges with a free predecessor
	BytesAllocated   int64 // Block bytes handed out (tags included)
	BytesFreed       int64 // Block bytes returned
}

// Stats returns a copy of the event counters.
func (a *Allocator) Stats() Stats { return a.stats }

// ResetStats zeroes the event counters.
func (a *Allocator) ResetStats() { a.stats = Stats{} }

// PrintStats writes the counters and a heap usage summary to w.
func (a *Allocator) PrintStats(w io.Writer) {
	fmt.Fprintf(w, "=== ALLOCATOR STATISTICS ===\n")
	a.stats.Print(w)
	a.Usage().Print(w)
}

// Print writes the counters, one per line.
func (s Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "Alloc calls:        %d (fast: %d, slow: %d, failed: %d)\n",
		s.AllocCalls, s.AllocFastPath, s.AllocSlowPath, s.FailedAllocs)
	fmt.Fprintf(w, "Free calls:         %d\n", s.FreeCalls)
	fmt.Fprintf(w, "Realloc calls:      %d (shrink: %d, in place: %d, moved: %d)\n",
		s.ReallocCalls, s.ReallocShrink, s.ReallocInPlace, s.ReallocMoved)
	fmt.Fprintf(w, "Grows:              %d (%d bytes)\n", s.GrowCalls, s.GrowBytes)
	fmt.Fprintf(w, "Splits:             %d\n", s.SplitCount)
	fmt.Fprintf(w, "Coalesce fwd:       %d\n", s.CoalesceForward)
	fmt.Fprintf(w, "Coalesce back:      %d\n", s.CoalesceBackward)
}
