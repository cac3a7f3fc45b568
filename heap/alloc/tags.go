package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Tag and link accessors. Every block is addressed by its payload offset bp:
//
//	bp-4          header  pack(size, alloc)
//	bp            next free link (free blocks only)
//	bp+4          prev free link (free blocks only)
//	bp+size-8     footer  pack(size, alloc)
//	bp+size       payload offset of the physically next block

func (a *Allocator) word(off uint32) uint32 {
	return format.ReadU32(a.mem.Bytes(), int(off))
}

func (a *Allocator) setWord(off, v uint32) {
	format.PutU32(a.mem.Bytes(), int(off), v)
}

func (a *Allocator) header(bp uint32) uint32 { return a.word(bp - format.WordSize) }

func (a *Allocator) footer(bp uint32) uint32 {
	return a.word(bp + format.TagSize(a.header(bp)) - format.DWordSize)
}

func (a *Allocator) blockSize(bp uint32) uint32 { return format.TagSize(a.header(bp)) }

func (a *Allocator) isAllocated(bp uint32) bool { return format.TagAllocated(a.header(bp)) }

func (a *Allocator) nextBlock(bp uint32) uint32 { return bp + a.blockSize(bp) }

// prevBlock reads the predecessor's footer, which sits right before bp's header.
func (a *Allocator) prevBlock(bp uint32) uint32 {
	return bp - format.TagSize(a.word(bp-format.DWordSize))
}

func (a *Allocator) prevAllocated(bp uint32) bool {
	return format.TagAllocated(a.word(bp - format.DWordSize))
}

// writeBlock stamps matching header and footer tags for a block of size bytes
// at bp. It is the only place tags are written, so header/footer symmetry
// holds at every function boundary.
func (a *Allocator) writeBlock(bp, size uint32, allocated bool) {
	tag := format.Pack(size, allocated)
	a.setWord(bp-format.WordSize, tag)
	a.setWord(bp+size-format.DWordSize, tag)
}

// writeEpilogue stamps the size-0 allocated sentinel whose header sits just
// below the break at end.
func (a *Allocator) writeEpilogue(end uint32) {
	a.setWord(end-format.WordSize, format.Pack(0, true))
}

// split turns the block at bp into two adjacent blocks: the first of size
// first with allocation state firstAlloc, the second covering the rest with
// the opposite state. It returns both payload offsets. The caller owns
// registry membership of the results.
func (a *Allocator) split(bp, first uint32, firstAlloc bool) (lo, hi uint32) {
	total := a.blockSize(bp)
	hi = bp + first
	a.writeBlock(bp, first, firstAlloc)
	a.writeBlock(hi, total-first, !firstAlloc)
	return bp, hi
}

func (a *Allocator) nextFree(bp uint32) uint32 { return a.word(bp) }

func (a *Allocator) prevFree(bp uint32) uint32 { return a.word(bp + format.WordSize) }

func (a *Allocator) setNextFree(bp, v uint32) { a.setWord(bp, v) }

func (a *Allocator) setPrevFree(bp, v uint32) { a.setWord(bp+format.WordSize, v) }
