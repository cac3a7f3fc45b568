//go:build !linux && !darwin && !freebsd

package memlib

// Mapped falls back to a Slice where anonymous mappings are not wired up.
type Mapped struct {
	Slice
}

// NewMapped reserves maxHeap bytes (DefaultMaxHeap when zero).
func NewMapped(maxHeap int) (*Mapped, error) {
	s, err := NewSlice(maxHeap)
	if err != nil {
		return nil, err
	}
	return &Mapped{Slice: *s}, nil
}

// Close is a no-op for the slice fallback.
func (m *Mapped) Close() error { return nil }
