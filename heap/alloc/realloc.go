package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Realloc resizes the block at p to hold at least n bytes.
//
//   - Realloc(Nil, n) is Alloc(n); Realloc(p, 0) frees p and returns Nil.
//   - Shrinking by less than 16 bytes returns p unchanged. A larger shrink
//     splits off the tail as a free block.
//   - Growing first tries to absorb a free successor in place. Otherwise a new
//     block is allocated, min(old payload, n) bytes are copied and p is freed.
//
// On ErrOutOfMemory the original block is untouched and still owned by the
// caller.
func (a *Allocator) Realloc(p Ptr, n int) (Ptr, error) {
	a.stats.ReallocCalls++
	if p == Nil {
		return a.Alloc(n)
	}
	if n == 0 {
		return Nil, a.Free(p)
	}

	bp, err := a.validate(p)
	if err != nil {
		a.log.Warn("realloc rejected", "ptr", uint32(p), "err", err)
		return Nil, err
	}
	asize, err := roundSize(n)
	if err != nil {
		return Nil, err
	}

	old := a.blockSize(bp)
	switch {
	case asize == old, old > asize && old-asize < format.MinBlockSize:
		return p, nil

	case old > asize:
		_, tail := a.split(bp, asize, true)
		// The old successor may be free.
		a.coalesce(tail)
		a.stats.ReallocShrink++
		a.afterOp("realloc")
		return p, nil
	}

	if a.absorbNext(bp, asize) {
		a.stats.ReallocInPlace++
		a.afterOp("realloc")
		return p, nil
	}

	np, err := a.Alloc(n)
	if err != nil {
		return Nil, err
	}
	copy(a.Payload(np), a.Payload(p)[:min(int(old-format.Overhead), n)])
	a.release(bp)
	a.stats.ReallocMoved++
	a.log.Debug("realloc moved", "from", uint32(p), "to", uint32(np), "request", n)
	a.afterOp("realloc")
	return np, nil
}

// absorbNext grows the allocated block bp to asize by taking over its free
// physical successor. It reports false, changing nothing, when the successor
// is allocated or too small.
func (a *Allocator) absorbNext(bp, asize uint32) bool {
	next := a.nextBlock(bp)
	if a.isAllocated(next) {
		return false
	}
	total := a.blockSize(bp) + a.blockSize(next)
	if total < asize {
		return false
	}

	a.remove(next)
	a.writeBlock(bp, total, true)
	if total-asize >= format.MinBlockSize {
		_, tail := a.split(bp, asize, true)
		// The successor's neighbour was allocated, so tail needs no merge.
		a.insert(tail)
		a.stats.SplitCount++
	}
	return true
}
