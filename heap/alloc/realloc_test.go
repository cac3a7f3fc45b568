package alloc

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/memlib"
)

// Shrinking with enough slack keeps the pointer and leaves the
// slack as a free block right after it.
func TestRealloc_ShrinkSplits(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	p, err := a.Alloc(200) // 208-byte block at the tail of the chunk
	require.NoError(t, err)
	require.Equal(t, Ptr(initialBreak-208), p)

	q, err := a.Realloc(p, 100) // 112-byte block, 96 bytes of slack
	require.NoError(t, err)
	assert.Equal(t, p, q)
	assert.Equal(t, uint32(112), a.BlockSize(q))

	tail := Block{Off: p + 112, Size: 96}
	assert.Contains(t, a.Blocks(), tail)
	assert.Contains(t, a.FreeList(ClassOf(96)), tail)
	assert.Equal(t, 1, a.Stats().ReallocShrink)
	requireHeapValid(t, a)
}

func TestRealloc_ShrinkWithinSlackIsNoop(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	p, err := a.Alloc(100) // 112
	require.NoError(t, err)
	before := snapshot(a)

	q, err := a.Realloc(p, 104) // same adjusted size
	require.NoError(t, err)
	assert.Equal(t, p, q)

	q, err = a.Realloc(p, 96) // 104: only 8 bytes of slack
	require.NoError(t, err)
	assert.Equal(t, p, q)
	assert.Equal(t, uint32(112), a.BlockSize(q))
	assert.Equal(t, before, snapshot(a))
}

func TestRealloc_ShrinkMergesWithFreeSuccessor(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	p := allocN(t, a, 40, 40, 40) // 48-byte blocks at 128, 176, 224
	require.NoError(t, a.Free(p[1]))

	q, err := a.Realloc(p[0], 8)
	require.NoError(t, err)
	assert.Equal(t, p[0], q)
	assert.Equal(t, uint32(16), a.BlockSize(q))

	// The 32-byte tail and the freed 48-byte neighbour became one block.
	assert.Equal(t, []Block{{Off: p[0] + 16, Size: 80}}, a.FreeList(ClassOf(80)))
	requireHeapValid(t, a)
}

// Growing into a free successor keeps the pointer and does not
// extend the heap.
func TestRealloc_AbsorbsSuccessor(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	p := allocN(t, a, 40, 40, 40)
	require.NoError(t, a.Free(p[1]))
	heap := a.HeapSize()
	grows := a.Stats().GrowCalls

	q, err := a.Realloc(p[0], 80) // 88 bytes of 48+48: leftover 8 is absorbed
	require.NoError(t, err)
	assert.Equal(t, p[0], q)
	assert.Equal(t, uint32(96), a.BlockSize(q))
	assert.Equal(t, p[2], q+96)

	assert.Equal(t, heap, a.HeapSize())
	assert.Equal(t, grows, a.Stats().GrowCalls)
	assert.Equal(t, 1, a.Stats().ReallocInPlace)
	requireHeapValid(t, a)
}

func TestRealloc_AbsorbSplitsLeftover(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	p := allocN(t, a, 40, 40, 40)
	require.NoError(t, a.Free(p[1]))

	q, err := a.Realloc(p[0], 60) // 72 of 96: 24-byte leftover
	require.NoError(t, err)
	assert.Equal(t, p[0], q)
	assert.Equal(t, uint32(72), a.BlockSize(q))
	assert.Equal(t, []Block{{Off: q + 72, Size: 24}}, a.FreeList(0))
	requireHeapValid(t, a)
}

func TestRealloc_MovesAndPreservesContent(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	p, err := a.Alloc(100)
	require.NoError(t, err)
	want := make([]byte, 100)
	fill(want, 0x31)
	copy(a.Payload(p), want)

	for _, n := range []int{100, 101, 1000, 5000, 20000} {
		q, err := a.Realloc(p, n)
		require.NoError(t, err)
		require.GreaterOrEqual(t, a.UsableSize(q), n)
		require.Equal(t, want, a.Payload(q)[:len(want)], "content lost growing to %d", n)
		requireHeapValid(t, a)
		p = q
	}
	assert.Positive(t, a.Stats().ReallocMoved)
}

func TestRealloc_ShrinkThenGrowKeepsPrefix(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	p, err := a.Alloc(200)
	require.NoError(t, err)
	fill(a.Payload(p), 0x5A)
	want := append([]byte(nil), a.Payload(p)[:50]...)

	q, err := a.Realloc(p, 50)
	require.NoError(t, err)
	r, err := a.Realloc(q, 200)
	require.NoError(t, err)

	assert.Equal(t, p, r, "the split-off tail is reabsorbed in place")
	assert.Equal(t, want, a.Payload(r)[:50])
	requireHeapValid(t, a)
}

func TestRealloc_NilAndZero(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)

	p, err := a.Realloc(Nil, 30)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	assert.GreaterOrEqual(t, a.UsableSize(p), 30)

	q, err := a.Realloc(p, 0)
	require.NoError(t, err)
	assert.Equal(t, Nil, q)
	assert.Equal(t, []Block{{Off: initialFree, Size: 4096}}, a.Blocks())
}

func TestRealloc_Rejects(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	p, err := a.Alloc(30)
	require.NoError(t, err)
	before := snapshot(a)

	_, err = a.Realloc(Ptr(12), 50)
	assert.True(t, errors.Is(err, ErrInvalidPointer))

	_, err = a.Realloc(p, -1)
	assert.True(t, errors.Is(err, ErrInvalidSize))
	assert.Equal(t, before, snapshot(a))

	require.NoError(t, a.Free(p))
	_, err = a.Realloc(p, 50)
	assert.True(t, errors.Is(err, ErrDoubleFree))
}

func TestRealloc_OutOfMemoryKeepsOldBlock(t *testing.T) {
	inner, err := memlib.NewSlice(1 << 20)
	require.NoError(t, err)
	mem := memlib.NewFailing(inner, 2) // prefix + first chunk only
	a, err := New(mem, nil)
	require.NoError(t, err)

	p, err := a.Alloc(100)
	require.NoError(t, err)
	fill(a.Payload(p), 9)
	before := snapshot(a)

	q, err := a.Realloc(p, 8000)
	assert.Equal(t, Nil, q)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, before, snapshot(a))
	requireHeapValid(t, a)
}
