package alloc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_StopsEarly(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	allocN(t, a, 10, 10, 10)

	visited := 0
	a.Walk(func(Block) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
	assert.Len(t, a.Blocks(), 4)
}

func TestUsage(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	_, err := a.Alloc(100) // 112-byte block at the tail
	require.NoError(t, err)

	u := a.Usage()
	assert.Equal(t, initialBreak, u.HeapSize)
	assert.Equal(t, 1, u.AllocatedBlocks)
	assert.Equal(t, int64(112), u.AllocatedBytes)
	assert.Equal(t, int64(104), u.PayloadBytes)
	assert.Equal(t, 1, u.FreeBlocks)
	assert.Equal(t, int64(3984), u.FreeBytes)
	assert.Equal(t, uint32(3984), u.LargestFree)
	assert.Zero(t, u.Fragmentation())
}

func TestUsage_Fragmentation(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	p := allocN(t, a, 40, 40, 40, 40) // 48-byte blocks, remainder 3904
	require.NoError(t, a.Free(p[1]))

	u := a.Usage()
	assert.Equal(t, 2, u.FreeBlocks)
	assert.Equal(t, int64(48+3904), u.FreeBytes)
	assert.InDelta(t, 1-3904.0/3952.0, u.Fragmentation(), 1e-9)
	assert.Zero(t, Usage{}.Fragmentation())
}

func TestStats_PrintAndReset(t *testing.T) {
	a, _ := newTestAllocator(t, 0, nil)
	p := allocN(t, a, 10, 10)
	require.NoError(t, a.Free(p[0]))

	st := a.Stats()
	assert.Equal(t, 2, st.AllocCalls)
	assert.Equal(t, 2, st.AllocFastPath)
	assert.Equal(t, 1, st.FreeCalls)
	assert.Equal(t, int64(48), st.BytesAllocated)
	assert.Equal(t, int64(24), st.BytesFreed)

	var out bytes.Buffer
	a.PrintStats(&out)
	assert.Contains(t, out.String(), "ALLOCATOR STATISTICS")
	assert.Contains(t, out.String(), "Alloc calls:        2 (fast: 2, slow: 0, failed: 0)")
	assert.Contains(t, out.String(), "Grows:              1 (4096 bytes)")
	assert.Contains(t, out.String(), "Allocated:          1 blocks, 24 bytes (16 payload)")

	a.ResetStats()
	assert.Equal(t, Stats{}, a.Stats())
}
