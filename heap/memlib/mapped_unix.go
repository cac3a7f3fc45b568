//go:build linux || darwin || freebsd

package memlib

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Mapped is a Grower over an anonymous private mapping. The whole reservation
// is mapped at construction; the kernel only backs pages once touched.
type Mapped struct {
	data []byte
	brk  int
}

// NewMapped reserves maxHeap bytes (DefaultMaxHeap when zero) of address space.
func NewMapped(maxHeap int) (*Mapped, error) {
	limit, err := resolveLimit(maxHeap)
	if err != nil {
		return nil, err
	}
	data, err := unix.Mmap(-1, 0, limit, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "memlib: mmap %d bytes", limit)
	}
	return &Mapped{data: data}, nil
}

// Sbrk implements Grower.
func (m *Mapped) Sbrk(incr int) (uint32, error) {
	if m.data == nil {
		return 0, errors.Wrap(ErrExhausted, "memlib: mapping closed")
	}
	next, err := advance(m.brk, len(m.data), incr)
	if err != nil {
		return 0, err
	}
	old := m.brk
	m.brk = next
	return uint32(old), nil
}

// Bytes implements Grower.
func (m *Mapped) Bytes() []byte { return m.data[:m.brk:m.brk] }

// Len implements Grower.
func (m *Mapped) Len() int { return m.brk }

// Cap implements Grower.
func (m *Mapped) Cap() int { return len(m.data) }

// Reset implements Grower. The released range is zeroed and handed back to
// the kernel; the advice is best effort.
func (m *Mapped) Reset() {
	if m.data == nil {
		return
	}
	clear(m.data[:m.brk])
	_ = unix.Madvise(m.data, unix.MADV_DONTNEED)
	m.brk = 0
}

// Close unmaps the arena. Slices obtained from Bytes must not be used after.
func (m *Mapped) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		err = nil
	}
	m.data = nil
	m.brk = 0
	return err
}
