package alloc

import (
	"math/bits"

	"github.com/joshuapare/heapkit/internal/format"
)

// classOf maps a block size to its registry slot: floor(log2(size)) shifted
// so the minimum block size lands in slot 0.
func classOf(size uint32) int {
	c := bits.Len32(size) - format.MinClassBits
	switch {
	case c < 0:
		return 0
	case c >= format.NumClasses:
		return format.NumClasses - 1
	}
	return c
}

func (a *Allocator) head(class int) uint32 {
	return a.word(uint32(format.ClassSlot(class)))
}

func (a *Allocator) setHead(class int, bp uint32) {
	a.setWord(uint32(format.ClassSlot(class)), bp)
}

// insert splices a free block into its class list before the first entry
// whose size is >= its own, keeping the list ascending and stable.
func (a *Allocator) insert(bp uint32) {
	size := a.blockSize(bp)
	class := classOf(size)

	prev := uint32(format.NilOffset)
	cur := a.head(class)
	for cur != format.NilOffset && a.blockSize(cur) < size {
		prev = cur
		cur = a.nextFree(cur)
	}

	a.setNextFree(bp, cur)
	a.setPrevFree(bp, prev)
	if cur != format.NilOffset {
		a.setPrevFree(cur, bp)
	}
	if prev != format.NilOffset {
		a.setNextFree(prev, bp)
	} else {
		a.setHead(class, bp)
	}
}

// remove unlinks a free block in O(1). The block's header must still carry
// the size it was inserted with.
func (a *Allocator) remove(bp uint32) {
	next := a.nextFree(bp)
	prev := a.prevFree(bp)
	if next != format.NilOffset {
		a.setPrevFree(next, prev)
	}
	if prev != format.NilOffset {
		a.setNextFree(prev, next)
	} else {
		a.setHead(classOf(a.blockSize(bp)), next)
	}
}

// findFit scans classes upward from asize's own class and returns the first
// block of at least asize bytes, or 0. Within a class this is the best fit;
// across classes it is the first fit.
func (a *Allocator) findFit(asize uint32) uint32 {
	for class := classOf(asize); class < format.NumClasses; class++ {
		for bp := a.head(class); bp != format.NilOffset; bp = a.nextFree(bp) {
			if a.blockSize(bp) >= asize {
				return bp
			}
		}
	}
	return format.NilOffset
}

// NumClasses returns the number of registry slots.
func NumClasses() int { return format.NumClasses }

// ClassOf returns the registry slot a free block of size bytes belongs to.
func ClassOf(size uint32) int { return classOf(size) }

// FreeList returns the blocks of one registry slot in list order.
func (a *Allocator) FreeList(class int) []Block {
	if class < 0 || class >= format.NumClasses {
		return nil
	}
	var out []Block
	for bp := a.head(class); bp != format.NilOffset; bp = a.nextFree(bp) {
		out = append(out, Block{Off: Ptr(bp), Size: a.blockSize(bp)})
	}
	return out
}
