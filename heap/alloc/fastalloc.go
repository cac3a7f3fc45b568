package alloc

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// maxRequest is the largest payload whose adjusted size still fits the arena.
const maxRequest = format.MaxArena - format.Overhead

// roundSize converts a payload request into a block size: payload plus both
// tags, aligned to 8, never below the minimum block.
func roundSize(n int) (uint32, error) {
	if n < 0 || uint64(n) > maxRequest {
		return 0, errors.Wrapf(ErrInvalidSize, "request %d", n)
	}
	if n <= format.DWordSize {
		return format.MinBlockSize, nil
	}
	return uint32(format.Align8(n + format.Overhead)), nil
}

// Alloc returns a block with at least n payload bytes. Alloc(0) returns Nil
// without touching the heap. When no free block fits, the heap grows by
// max(adjusted size, ChunkSize); if that fails Alloc returns ErrOutOfMemory
// and the heap is exactly as it was.
func (a *Allocator) Alloc(n int) (Ptr, error) {
	a.stats.AllocCalls++
	if n == 0 {
		return Nil, nil
	}
	asize, err := roundSize(n)
	if err != nil {
		return Nil, err
	}

	bp := a.findFit(asize)
	if bp == format.NilOffset {
		grown, err := a.grow(asize)
		if err != nil {
			a.stats.FailedAllocs++
			a.log.Debug("alloc failed", "request", n, "asize", asize, "heap", a.mem.Len())
			return Nil, err
		}
		bp = grown
		a.stats.AllocSlowPath++
	} else {
		a.stats.AllocFastPath++
	}

	a.remove(bp)
	bp = a.place(bp, asize)
	a.stats.BytesAllocated += int64(a.blockSize(bp))

	a.afterOp("alloc")
	return Ptr(bp), nil
}

// Calloc allocates count*size bytes and zeroes the payload. The product is
// overflow-checked.
func (a *Allocator) Calloc(count, size int) (Ptr, error) {
	n, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return Nil, errors.Wrapf(ErrInvalidSize, "calloc %d x %d", count, size)
	}
	p, err := a.Alloc(n)
	if err != nil || p == Nil {
		return p, err
	}
	clear(a.Payload(p))
	return p, nil
}

// Free releases the block at p and merges it with free neighbours. Free(Nil)
// is a no-op. Pointers that do not name an allocated block are rejected with
// ErrInvalidPointer or ErrDoubleFree before any tag is rewritten.
func (a *Allocator) Free(p Ptr) error {
	a.stats.FreeCalls++
	if p == Nil {
		return nil
	}
	bp, err := a.validate(p)
	if err != nil {
		a.log.Warn("free rejected", "ptr", uint32(p), "err", err)
		return err
	}
	a.release(bp)
	a.afterOp("free")
	return nil
}

// release marks a validated allocated block free and coalesces it.
func (a *Allocator) release(bp uint32) {
	size := a.blockSize(bp)
	a.stats.BytesFreed += int64(size)
	a.writeBlock(bp, size, false)
	a.coalesce(bp)
}

// Payload returns the caller-owned bytes of the block at p, or nil when p is
// not a plausible allocated block. The slice is capped so appends cannot run
// into the footer.
func (a *Allocator) Payload(p Ptr) []byte {
	bp, err := a.inspect(p)
	if err != nil {
		return nil
	}
	out, _ := buf.Slice(a.mem.Bytes(), int(bp), int(a.blockSize(bp)-format.Overhead))
	return out
}

// UsableSize returns len(Payload(p)), or 0 for an invalid pointer.
func (a *Allocator) UsableSize(p Ptr) int {
	bp, err := a.inspect(p)
	if err != nil {
		return 0
	}
	return int(a.blockSize(bp) - format.Overhead)
}

// BlockSize returns the total size of the block at p including tags, or 0.
func (a *Allocator) BlockSize(p Ptr) uint32 {
	bp, err := a.inspect(p)
	if err != nil {
		return 0
	}
	return a.blockSize(bp)
}

// inspect performs the O(1) plausibility checks on p: range, alignment,
// sane header, matching footer, allocated.
func (a *Allocator) inspect(p Ptr) (uint32, error) {
	bp := uint32(p)
	end := a.epilogue()
	if bp < format.FirstPayload || bp >= end || !format.IsAligned8(bp) {
		return 0, errors.Wrapf(ErrInvalidPointer, "0x%X outside heap [0x%X, 0x%X)", bp, format.FirstPayload, end)
	}
	hdr := a.header(bp)
	size := format.TagSize(hdr)
	if size < format.MinBlockSize || uint64(bp)+uint64(size) > uint64(end) {
		return 0, errors.Wrapf(ErrInvalidPointer, "0x%X has implausible size %d", bp, size)
	}
	if ftr := a.footer(bp); ftr != hdr {
		return 0, errors.Wrapf(ErrInvalidPointer, "0x%X header 0x%X != footer 0x%X", bp, hdr, ftr)
	}
	if !format.TagAllocated(hdr) {
		return 0, errors.Wrapf(ErrDoubleFree, "0x%X", bp)
	}
	return bp, nil
}

// validate is inspect plus, with Options.Strict, a heap walk proving p is a
// block boundary.
func (a *Allocator) validate(p Ptr) (uint32, error) {
	bp, err := a.inspect(p)
	if err != nil || !a.opts.Strict {
		return bp, err
	}
	for cur := uint32(format.FirstPayload); a.blockSize(cur) != 0; cur = a.nextBlock(cur) {
		if cur == bp {
			return bp, nil
		}
		if cur > bp {
			break
		}
	}
	return 0, errors.Wrapf(ErrInvalidPointer, "0x%X is not a block boundary", bp)
}

// afterOp runs the heap checker in CheckEveryOp mode.
func (a *Allocator) afterOp(op string) {
	if !a.opts.CheckEveryOp {
		return
	}
	if err := a.Check(); err != nil {
		a.log.Error("heap check failed", "op", op, "err", err)
		panic(err)
	}
}
