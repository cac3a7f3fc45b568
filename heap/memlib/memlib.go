package memlib

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// DefaultMaxHeap is the arena reservation used when Config.MaxHeap is zero.
const DefaultMaxHeap = 20 << 20

// Grower is the heap-growth primitive.
type Grower interface {
	// Sbrk extends the break by incr bytes and returns the old break. The new
	// bytes are zero. On failure the break is unchanged.
	Sbrk(incr int) (uint32, error)

	// Bytes returns the committed region [0, break).
	Bytes() []byte

	// Len returns the current break.
	Len() int

	// Cap returns the reservation size; Sbrk fails beyond it.
	Cap() int

	// Reset moves the break back to zero and zeroes the released bytes.
	Reset()
}

// Config selects and sizes a Grower.
type Config struct {
	// MaxHeap is the reservation in bytes (DefaultMaxHeap when zero).
	MaxHeap int

	// Mapped requests an mmap-backed arena where the platform supports it.
	Mapped bool
}

// New builds the Grower described by cfg. The returned cleanup releases any
// mapping and is safe to call more than once.
func New(cfg Config) (Grower, func() error, error) {
	if cfg.Mapped {
		m, err := NewMapped(cfg.MaxHeap)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	}
	s, err := NewSlice(cfg.MaxHeap)
	if err != nil {
		return nil, nil, err
	}
	return s, func() error { return nil }, nil
}

func resolveLimit(maxHeap int) (int, error) {
	if maxHeap == 0 {
		return DefaultMaxHeap, nil
	}
	if maxHeap < 0 || uint64(maxHeap) > format.MaxArena {
		return 0, errors.Wrapf(ErrBadLimit, "max heap %d", maxHeap)
	}
	return maxHeap, nil
}

// advance is the shared break arithmetic of every Grower.
func advance(brk, limit, incr int) (int, error) {
	if incr < 0 {
		return brk, errors.Wrapf(ErrNegativeIncrement, "sbrk %d", incr)
	}
	end, ok := buf.AddOverflowSafe(brk, incr)
	if !ok || end > limit {
		return brk, errors.Wrapf(ErrExhausted, "sbrk %d: break %d, limit %d", incr, brk, limit)
	}
	return end, nil
}
