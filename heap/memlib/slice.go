package memlib

// Slice is a Grower over a Go byte slice allocated once at full capacity.
type Slice struct {
	data []byte
	brk  int
}

// NewSlice reserves maxHeap bytes (DefaultMaxHeap when zero).
func NewSlice(maxHeap int) (*Slice, error) {
	limit, err := resolveLimit(maxHeap)
	if err != nil {
		return nil, err
	}
	return &Slice{data: make([]byte, limit)}, nil
}

// Sbrk implements Grower.
func (s *Slice) Sbrk(incr int) (uint32, error) {
	next, err := advance(s.brk, len(s.data), incr)
	if err != nil {
		return 0, err
	}
	old := s.brk
	s.brk = next
	return uint32(old), nil
}

// Bytes implements Grower.
func (s *Slice) Bytes() []byte { return s.data[:s.brk:s.brk] }

// Len implements Grower.
func (s *Slice) Len() int { return s.brk }

// Cap implements Grower.
func (s *Slice) Cap() int { return len(s.data) }

// Reset implements Grower.
func (s *Slice) Reset() {
	clear(s.data[:s.brk])
	s.brk = 0
}
