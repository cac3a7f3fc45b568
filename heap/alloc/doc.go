// Package alloc implements a malloc-style allocator over a single contiguous,
// append-only heap arena.
//
// # Overview
//
// Every block carries a 4-byte header and a 4-byte footer holding the same
// tag: the block size (a multiple of 8, tags included) with the allocation
// flag in the low bit. Boundary tags let Free find and classify both physical
// neighbours in O(1) and merge them immediately, so the heap never holds two
// adjacent free blocks.
//
// Free blocks are threaded onto one of 28 segregated lists keyed by
// power-of-two size class. The list heads live in the arena itself, right
// after an alignment pad word, and each list is kept in ascending size order,
// which turns the first fit inside a class into the best fit for that class.
//
// # Arena Layout
//
//	0x00  pad word
//	0x04  28 list heads (uint32 offsets, 0 = empty)
//	0x74  prologue header  (size 8, allocated)
//	0x78  prologue footer  (size 8, allocated)
//	0x7C  epilogue header  (size 0, allocated), moves with every grow
//
// Links and pointers are uint32 offsets from the arena base rather than
// addresses, so several heaps can coexist and a heap image is position
// independent.
//
// # Placement
//
// Requests are rounded to size+8 bytes aligned to 8 (minimum 16). When a
// donor block is split, allocations of 96 bytes or more are carved from its
// tail and smaller ones from its front. Small fragments end up clustered at
// low addresses and large free space stays contiguous toward the break.
// Remainders under 16 bytes are left inside the allocated block.
//
// # Usage Example
//
//	mem, err := memlib.NewSlice(0)
//	if err != nil {
//	    return err
//	}
//	a, err := alloc.New(mem, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := a.Alloc(100)
//	if err != nil {
//	    return err // errors.Is(err, alloc.ErrOutOfMemory)
//	}
//	copy(a.Payload(p), "hello")
//
//	p, err = a.Realloc(p, 4000)
//	...
//	err = a.Free(p)
//
// # Contract Violations
//
// Freeing or resizing a pointer that Alloc did not return, or one that was
// already freed, is a caller bug. Free and Realloc reject what they can detect
// cheaply (nil-range, misaligned, torn tags, already free) with
// ErrInvalidPointer or ErrDoubleFree before touching the heap. With
// Options.Strict they also walk the heap to confirm the pointer is a block
// boundary. Anything that slips past these checks corrupts the heap.
//
// # Thread Safety
//
// Allocator instances are not thread-safe and not reentrant. Callers must
// serialize every call externally.
package alloc
