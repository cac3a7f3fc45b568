package alloc

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/heap/memlib"
)

func newBenchAllocator(b *testing.B, maxHeap int) *Allocator {
	b.Helper()
	mem, err := memlib.NewSlice(maxHeap)
	if err != nil {
		b.Fatal(err)
	}
	a, err := New(mem, nil)
	if err != nil {
		b.Fatal(err)
	}
	return a
}

// Benchmark_Alloc_SmallBlocks measures the free-list hit path: each
// allocation is freed immediately so the heap never grows.
func Benchmark_Alloc_SmallBlocks(b *testing.B) {
	a := newBenchAllocator(b, 1<<20)

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		p, err := a.Alloc(16 + i%48)
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Free(p); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark_Alloc_Growth measures allocation when most requests extend the heap.
func Benchmark_Alloc_Growth(b *testing.B) {
	a := newBenchAllocator(b, 64<<20)

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		_, err := a.Alloc(4096 + i%64)
		if errors.Is(err, ErrOutOfMemory) {
			b.StopTimer()
			a = newBenchAllocator(b, 64<<20)
			b.StartTimer()
			continue
		}
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark_Mixed_Workload keeps a working set of 1024 blocks and replaces a
// random one per iteration, alternating between Free+Alloc and Realloc.
func Benchmark_Mixed_Workload(b *testing.B) {
	a := newBenchAllocator(b, 64<<20)
	rng := rand.New(rand.NewSource(42)) // Fixed seed for reproducibility
	live := make([]Ptr, 1024)
	for i := range live {
		p, err := a.Alloc(1 + rng.Intn(1024))
		if err != nil {
			b.Fatal(err)
		}
		live[i] = p
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		k := rng.Intn(len(live))
		n := 1 + rng.Intn(1024)
		if i%2 == 0 {
			if err := a.Free(live[k]); err != nil {
				b.Fatal(err)
			}
			p, err := a.Alloc(n)
			if err != nil {
				b.Fatal(err)
			}
			live[k] = p
			continue
		}
		p, err := a.Realloc(live[k], n)
		if err != nil {
			b.Fatal(err)
		}
		live[k] = p
	}
}
