package alloc

import "github.com/joshuapare/heapkit/internal/format"

// place allocates asize bytes out of the free block bp, which must already be
// off its list, and returns the payload offset of the allocated part.
//
//   - remainder < 16: the whole block is allocated
//   - asize >= 96:    free remainder at the front, allocation at the tail
//   - otherwise:      allocation at the front, free remainder at the tail
func (a *Allocator) place(bp, asize uint32) uint32 {
	rem := a.blockSize(bp) - asize

	switch {
	case rem < format.MinBlockSize:
		a.writeBlock(bp, a.blockSize(bp), true)
		return bp

	case asize >= format.LargeRequest:
		free, used := a.split(bp, rem, false)
		a.insert(free)
		a.stats.SplitCount++
		return used

	default:
		used, free := a.split(bp, asize, true)
		a.insert(free)
		a.stats.SplitCount++
		return used
	}
}
