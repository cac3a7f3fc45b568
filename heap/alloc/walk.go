package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/internal/format"
)

// Walk calls fn for every block between the prologue and the epilogue in
// address order until fn returns false. fn must not mutate the heap.
func (a *Allocator) Walk(fn func(Block) bool) {
	for bp := uint32(format.FirstPayload); ; {
		hdr := a.header(bp)
		size := format.TagSize(hdr)
		if size == 0 {
			return
		}
		if !fn(Block{Off: Ptr(bp), Size: size, Allocated: format.TagAllocated(hdr)}) {
			return
		}
		bp += size
	}
}

// Blocks returns every block in address order.
func (a *Allocator) Blocks() []Block {
	var out []Block
	a.Walk(func(b Block) bool {
		out = append(out, b)
		return true
	})
	return out
}

// Usage summarises the current heap contents.
type Usage struct {
	HeapSize        int // committed arena bytes, prefix included
	AllocatedBlocks int
	AllocatedBytes  int64 // block bytes, tags included
	PayloadBytes    int64 // usable payload of allocated blocks
	FreeBlocks      int
	FreeBytes       int64
	LargestFree     uint32
}

// Fragmentation returns 1 - largest free block / total free bytes, or 0 when
// nothing is free.
func (u Usage) Fragmentation() float64 {
	if u.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(u.LargestFree)/float64(u.FreeBytes)
}

// Print writes the occupancy summary.
func (u Usage) Print(w io.Writer) {
	fmt.Fprintf(w, "Heap size:          %d bytes\n", u.HeapSize)
	fmt.Fprintf(w, "Allocated:          %d blocks, %d bytes (%d payload)\n",
		u.AllocatedBlocks, u.AllocatedBytes, u.PayloadBytes)
	fmt.Fprintf(w, "Free:               %d blocks, %d bytes (largest %d, fragmentation %.1f%%)\n",
		u.FreeBlocks, u.FreeBytes, u.LargestFree, 100*u.Fragmentation())
}

// Usage walks the heap and returns its occupancy.
func (a *Allocator) Usage() Usage {
	u := Usage{HeapSize: a.mem.Len()}
	a.Walk(func(b Block) bool {
		if b.Allocated {
			u.AllocatedBlocks++
			u.AllocatedBytes += int64(b.Size)
			u.PayloadBytes += int64(b.Size - format.Overhead)
		} else {
			u.FreeBlocks++
			u.FreeBytes += int64(b.Size)
			u.LargestFree = max(u.LargestFree, b.Size)
		}
		return true
	})
	return u
}
