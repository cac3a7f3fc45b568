package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Check walks the whole heap and every registry list and returns the first
// broken invariant as an *InvariantError, or nil.
//
// Verified:
//   - prologue and epilogue sentinels are intact and the walk ends exactly at
//     the break
//   - every block is 8-aligned, at least 16 bytes and header == footer
//   - no two physically adjacent blocks are free
//   - every list node is a free block found by the walk
//   - every free block is on exactly the list of its class, lists are
//     ascending by size and their prev links mirror their next links
func (a *Allocator) Check() error {
	end := a.epilogue()
	if end < format.PrefixSize {
		return violation("heap-size", 0, "break %d below prefix %d", end, format.PrefixSize)
	}
	prologue := format.Pack(format.PrologueSize, true)
	if a.word(format.PrologueHeader) != prologue || a.word(format.PrologueFooter) != prologue {
		return violation("prologue", format.PrologueFooter, "tags 0x%X/0x%X",
			a.word(format.PrologueHeader), a.word(format.PrologueFooter))
	}

	freeAt := make(map[uint32]bool)
	prevFree := false
	bp := uint32(format.FirstPayload)
	for {
		if bp > end {
			return violation("overrun", bp, "block walk passed break 0x%X", end)
		}
		hdr := a.header(bp)
		size := format.TagSize(hdr)
		if size == 0 {
			if bp != end || !format.TagAllocated(hdr) {
				return violation("epilogue", bp, "tag 0x%X, break 0x%X", hdr, end)
			}
			break
		}
		if !format.IsAligned8(bp) {
			return violation("alignment", bp, "payload not 8-aligned")
		}
		if size < format.MinBlockSize || uint64(bp)+uint64(size) > uint64(end) {
			return violation("size", bp, "size %d with break 0x%X", size, end)
		}
		if ftr := a.footer(bp); ftr != hdr {
			return violation("boundary-tag", bp, "header 0x%X footer 0x%X", hdr, ftr)
		}
		free := !format.TagAllocated(hdr)
		if free {
			if prevFree {
				return violation("adjacent-free", bp, "predecessor 0x%X is also free", a.prevBlock(bp))
			}
			freeAt[bp] = true
		}
		prevFree = free
		bp += size
	}

	freeBlocks := len(freeAt)
	listed := 0
	for class := range format.NumClasses {
		prev := uint32(format.NilOffset)
		var last uint32
		for cur := a.head(class); cur != format.NilOffset; cur = a.nextFree(cur) {
			if listed++; listed > freeBlocks {
				return violation("list-cycle", cur, "class %d lists more blocks than the heap holds", class)
			}
			if cur < format.FirstPayload || cur >= end || !format.IsAligned8(cur) {
				return violation("list-link", cur, "class %d links outside the heap", class)
			}
			if a.isAllocated(cur) {
				return violation("list-allocated", cur, "allocated block on class %d list", class)
			}
			if !freeAt[cur] {
				return violation("list-stray", cur, "class %d lists an offset that is not a free block", class)
			}
			size := a.blockSize(cur)
			if got := classOf(size); got != class {
				return violation("list-class", cur, "size %d belongs to class %d, found on %d", size, got, class)
			}
			if size < last {
				return violation("list-order", cur, "size %d after %d on class %d", size, last, class)
			}
			if a.prevFree(cur) != prev {
				return violation("list-link", cur, "prev link 0x%X, expected 0x%X", a.prevFree(cur), prev)
			}
			last = size
			prev = cur
		}
	}
	if listed != freeBlocks {
		return violation("list-count", 0, "%d free blocks in heap, %d on lists", freeBlocks, listed)
	}
	return nil
}
