package trace

import (
	"fmt"
	"math/rand"

	"github.com/cockroachdb/errors"
)

// Generate builds a random, well-formed trace of n requests with sizes in
// [1, maxSize]. Every id is allocated once; the tail of the trace frees
// whatever is still live so the trace ends with an empty heap. The same seed
// always yields the same trace.
func Generate(seed int64, n, maxSize int) (*Trace, error) {
	if n < 0 || maxSize < 1 {
		return nil, errors.Newf("trace: generate %d requests of at most %d bytes", n, maxSize)
	}
	rng := rand.New(rand.NewSource(seed))
	tr := &Trace{
		Name:   fmt.Sprintf("random-%d", seed),
		Weight: 1,
		Ops:    make([]Op, 0, n),
	}

	var live []int
	sizes := map[int]int{}
	var cur, peak int

	for remaining := n; remaining > 0; remaining-- {
		// Keep len(live) <= remaining so every live id can still be freed.
		canAlloc := len(live)+1 < remaining
		canRealloc := len(live) > 0 && len(live) < remaining
		r := rng.Intn(100)
		switch {
		case canAlloc && (len(live) == 0 || r < 50):
			id := tr.NumIDs
			tr.NumIDs++
			size := 1 + rng.Intn(maxSize)
			tr.Ops = append(tr.Ops, Op{Kind: Alloc, ID: id, Size: size})
			live = append(live, id)
			sizes[id] = size
			cur += size

		case canRealloc && r < 70:
			id := live[rng.Intn(len(live))]
			size := 1 + rng.Intn(maxSize)
			tr.Ops = append(tr.Ops, Op{Kind: Realloc, ID: id, Size: size})
			cur += size - sizes[id]
			sizes[id] = size

		case len(live) > 0:
			k := rng.Intn(len(live))
			id := live[k]
			live[k] = live[len(live)-1]
			live = live[:len(live)-1]
			tr.Ops = append(tr.Ops, Op{Kind: Free, ID: id})
			cur -= sizes[id]
			delete(sizes, id)

		default:
			// One request left and nothing live.
			tr.Ops = append(tr.Ops, Op{Kind: Alloc, ID: tr.NumIDs})
			tr.NumIDs++
		}
		peak = max(peak, cur)
	}
	tr.SuggestedHeap = peak
	return tr, nil
}
