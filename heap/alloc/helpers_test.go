package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/memlib"
	"github.com/joshuapare/heapkit/internal/format"
)

const (
	// initialFree is the payload offset of the single free block New creates.
	initialFree = format.FirstPayload
	// initialBreak is the break right after New with the default chunk.
	initialBreak = format.PrefixSize + format.DefaultChunkSize
)

// newTestAllocator builds an allocator over a fresh Slice of maxHeap bytes.
func newTestAllocator(t testing.TB, maxHeap int, opts *Options) (*Allocator, *memlib.Slice) {
	t.Helper()
	mem, err := memlib.NewSlice(maxHeap)
	require.NoError(t, err)
	a, err := New(mem, opts)
	require.NoError(t, err)
	requireHeapValid(t, a)
	return a, mem
}

// requireHeapValid fails the test when any heap invariant is broken.
func requireHeapValid(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, a.Check())
}

// snapshot copies the committed arena.
func snapshot(a *Allocator) []byte {
	return append([]byte(nil), a.mem.Bytes()...)
}

// fill writes a recognisable pattern derived from seed into b.
func fill(b []byte, seed byte) {
	for i := range b {
		b[i] = seed + byte(i*7)
	}
}

// carveSpec is one block in a hand-built heap layout.
type carveSpec struct {
	size      uint32
	allocated bool
}

// carve replaces the initial free block of a fresh allocator with the given
// layout (sizes must sum to the default chunk) and inserts the free blocks
// into the registry in layout order unless skipInsert is set. Returns payload
// offsets.
func carve(t testing.TB, a *Allocator, layout []carveSpec, skipInsert bool) []uint32 {
	t.Helper()
	var total uint32
	for _, s := range layout {
		total += s.size
	}
	require.Equal(t, uint32(format.DefaultChunkSize), total, "layout must cover the initial chunk")
	require.Equal(t, uint32(format.DefaultChunkSize), a.blockSize(initialFree))

	a.remove(initialFree)
	offs := make([]uint32, len(layout))
	bp := uint32(initialFree)
	for i, s := range layout {
		a.writeBlock(bp, s.size, s.allocated)
		offs[i] = bp
		bp += s.size
	}
	if !skipInsert {
		for i, s := range layout {
			if !s.allocated {
				a.insert(offs[i])
			}
		}
	}
	return offs
}

func freeSizes(a *Allocator, class int) []uint32 {
	var out []uint32
	for _, b := range a.FreeList(class) {
		out = append(out, b.Size)
	}
	return out
}
