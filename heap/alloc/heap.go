package alloc

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/heap/memlib"
	"github.com/joshuapare/heapkit/internal/format"
)

// Allocator manages one heap arena obtained from a memlib.Grower.
type Allocator struct {
	mem   memlib.Grower
	opts  Options
	chunk uint32
	log   *slog.Logger

	stats Stats
}

// New lays out a fresh heap on mem and performs the first extension of
// ChunkSize bytes.
//
// Parameters:
//   - mem: growth primitive with its break at zero
//   - opts: tuning (use nil for DefaultOptions)
//
// If either Sbrk fails New returns ErrOutOfMemory, resets mem and returns no
// allocator, so a half-built heap is never usable.
func New(mem memlib.Grower, opts *Options) (*Allocator, error) {
	if opts == nil {
		opts = &DefaultOptions
	}
	o, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	if mem.Len() != 0 {
		return nil, errors.Wrapf(ErrArenaInUse, "break at %d", mem.Len())
	}

	a := &Allocator{
		mem:   mem,
		opts:  o,
		chunk: uint32(o.ChunkSize),
		log:   o.Logger,
	}

	if _, err := mem.Sbrk(format.PrefixSize); err != nil {
		return nil, outOfMemory(err, format.PrefixSize)
	}
	a.setWord(0, 0)
	for c := range format.NumClasses {
		a.setHead(c, format.NilOffset)
	}
	a.setWord(format.PrologueHeader, format.Pack(format.PrologueSize, true))
	a.setWord(format.PrologueFooter, format.Pack(format.PrologueSize, true))
	a.writeEpilogue(format.PrefixSize)

	if _, err := a.grow(a.chunk); err != nil {
		mem.Reset()
		return nil, err
	}

	a.log.Debug("heap initialized",
		"chunk", a.chunk,
		"heap", mem.Len(),
		"limit", mem.Cap())
	return a, nil
}

// grow extends the heap by max(need, chunk) bytes rounded up to 8. The new
// region becomes one free block whose header overwrites the old epilogue,
// followed by a fresh epilogue. The block is coalesced with a free
// predecessor and inserted into the registry; its payload offset is returned.
func (a *Allocator) grow(need uint32) (uint32, error) {
	size := format.Align8U32(max(need, a.chunk))
	bp, err := a.mem.Sbrk(int(size))
	if err != nil {
		a.log.Debug("grow failed", "need", need, "size", size, "heap", a.mem.Len(), "err", err)
		return 0, outOfMemory(err, size)
	}

	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)

	a.writeBlock(bp, size, false)
	a.writeEpilogue(bp + size)

	a.log.Debug("heap grown", "need", need, "size", size, "heap", a.mem.Len())
	return a.coalesce(bp), nil
}

// HeapSize returns the number of arena bytes committed so far.
func (a *Allocator) HeapSize() int { return a.mem.Len() }

// epilogue returns the payload offset of the epilogue sentinel (the break).
func (a *Allocator) epilogue() uint32 { return uint32(a.mem.Len()) }
