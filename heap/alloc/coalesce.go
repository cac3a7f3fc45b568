package alloc

// coalesce merges the free block at bp with whichever physical neighbours are
// free, inserts the result into the registry and returns its payload offset.
// bp must not be on any list yet. The prologue and epilogue are allocated, so
// the neighbour checks never leave the heap.
func (a *Allocator) coalesce(bp uint32) uint32 {
	size := a.blockSize(bp)
	next := bp + size
	prevAlloc := a.prevAllocated(bp)
	nextAlloc := a.isAllocated(next)

	switch {
	case prevAlloc && nextAlloc:
		// nothing to merge

	case prevAlloc && !nextAlloc:
		a.remove(next)
		size += a.blockSize(next)
		a.writeBlock(bp, size, false)
		a.stats.CoalesceForward++

	case !prevAlloc && nextAlloc:
		prev := a.prevBlock(bp)
		a.remove(prev)
		size += a.blockSize(prev)
		bp = prev
		a.writeBlock(bp, size, false)
		a.stats.CoalesceBackward++

	default:
		prev := a.prevBlock(bp)
		a.remove(prev)
		a.remove(next)
		size += a.blockSize(prev) + a.blockSize(next)
		bp = prev
		a.writeBlock(bp, size, false)
		a.stats.CoalesceForward++
		a.stats.CoalesceBackward++
	}

	a.insert(bp)
	return bp
}
