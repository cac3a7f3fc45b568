package trace

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/memlib"
)

// Factory builds a fresh allocator for one replay. release is called once the
// replay is over.
type Factory func() (a *alloc.Allocator, release func() error, err error)

// NewFactory returns a Factory that builds each allocator over its own
// memlib arena.
func NewFactory(cfg memlib.Config, opts *alloc.Options) Factory {
	return func() (*alloc.Allocator, func() error, error) {
		mem, release, err := memlib.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		a, err := alloc.New(mem, opts)
		if err != nil {
			_ = release()
			return nil, nil, err
		}
		return a, release, nil
	}
}

// Options tunes Replay.
type Options struct {
	// CheckHeap runs the allocator's full heap check after every request.
	CheckHeap bool

	// Logger receives per-trace events. Nil discards them.
	Logger *slog.Logger
}

// Result summarises one replay.
type Result struct {
	Name        string
	Ops         int
	PeakPayload int64 // largest sum of live requested bytes
	HeapSize    int   // arena size after the last request
	Elapsed     time.Duration
	Stats       alloc.Stats
	Usage       alloc.Usage // heap occupancy after the last request
}

// Utilization is the peak live payload divided by the final heap size.
func (r *Result) Utilization() float64 {
	if r.HeapSize == 0 {
		return 0
	}
	return float64(r.PeakPayload) / float64(r.HeapSize)
}

// OpsPerSec is the request throughput, validation included.
func (r *Result) OpsPerSec() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Ops) / secs
}

// Replay runs tr against an allocator from newAlloc and validates every
// result. It stops between requests when ctx is cancelled.
func Replay(ctx context.Context, tr *Trace, newAlloc Factory, opts *Options) (_ *Result, err error) {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	a, release, err := newAlloc()
	if err != nil {
		return nil, errors.Wrapf(err, "trace %s: new allocator", tr.Name)
	}
	defer func() {
		if rerr := release(); rerr != nil && err == nil {
			err = errors.Wrapf(rerr, "trace %s: release arena", tr.Name)
		}
	}()

	log.Debug("replay start", "trace", tr.Name, "ops", len(tr.Ops), "ids", tr.NumIDs)
	rp := &replayer{a: a, blocks: make([]liveBlock, tr.NumIDs), check: opts.CheckHeap}
	start := time.Now()
	for i, op := range tr.Ops {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "trace %s: stopped after %d of %d requests", tr.Name, i, len(tr.Ops))
		}
		if err := rp.step(i, op); err != nil {
			log.Warn("replay failed", "trace", tr.Name, "op", i, "err", err)
			return nil, errors.Wrapf(err, "trace %s", tr.Name)
		}
	}

	res := &Result{
		Name:        tr.Name,
		Ops:         len(tr.Ops),
		PeakPayload: rp.peak,
		HeapSize:    a.HeapSize(),
		Elapsed:     time.Since(start),
		Stats:       a.Stats(),
		Usage:       a.Usage(),
	}
	log.Info("replay done", "trace", tr.Name, "util", res.Utilization(), "elapsed", res.Elapsed)
	return res, nil
}

type liveBlock struct {
	p alloc.Ptr
	n int
}

type replayer struct {
	a      *alloc.Allocator
	blocks []liveBlock
	spans  spans
	cur    int64
	peak   int64
	check  bool
}

func (rp *replayer) step(i int, op Op) error {
	if op.ID < 0 || op.ID >= len(rp.blocks) {
		return errors.Wrapf(ErrMalformed, "op %d: id %d outside [0, %d)", i, op.ID, len(rp.blocks))
	}
	old := rp.blocks[op.ID]

	switch op.Kind {
	case Alloc:
		p, err := rp.a.Alloc(op.Size)
		if err != nil {
			return errors.Wrapf(err, "op %d: alloc id %d (%d bytes)", i, op.ID, op.Size)
		}
		if err := rp.admit(i, op.ID, p, op.Size, 0); err != nil {
			return err
		}

	case Realloc:
		if err := rp.verify(i, op.ID, old.p, old.n); err != nil {
			return err
		}
		rp.spans.remove(old.p)
		p, err := rp.a.Realloc(old.p, op.Size)
		if err != nil {
			return errors.Wrapf(err, "op %d: realloc id %d to %d bytes", i, op.ID, op.Size)
		}
		if err := rp.admit(i, op.ID, p, op.Size, min(old.n, op.Size)); err != nil {
			return err
		}

	case Free:
		if err := rp.verify(i, op.ID, old.p, old.n); err != nil {
			return err
		}
		rp.spans.remove(old.p)
		if err := rp.a.Free(old.p); err != nil {
			return errors.Wrapf(err, "op %d: free id %d", i, op.ID)
		}
		rp.blocks[op.ID] = liveBlock{}

	default:
		return errors.Wrapf(ErrMalformed, "op %d: unknown request %v", i, op.Kind)
	}

	rp.cur += int64(rp.blocks[op.ID].n - old.n)
	rp.peak = max(rp.peak, rp.cur)

	if rp.check {
		if err := rp.a.Check(); err != nil {
			return fmt.Errorf("op %d: heap check after %s: %w: %w", i, op.Kind, ErrCorrectness, err)
		}
	}
	return nil
}

// admit validates a pointer returned for n bytes, checks that the first kept
// bytes survived a realloc, and stamps the payload with the id pattern.
func (rp *replayer) admit(i, id int, p alloc.Ptr, n, kept int) error {
	if n == 0 {
		if p != alloc.Nil {
			return incorrect(i, "zero-byte request for id %d returned 0x%X", id, uint32(p))
		}
		rp.blocks[id] = liveBlock{}
		return nil
	}
	if p == alloc.Nil {
		return incorrect(i, "nil pointer for %d bytes", n)
	}
	if uint32(p)%8 != 0 {
		return incorrect(i, "payload 0x%X not 8-byte aligned", uint32(p))
	}
	if uint64(p)+uint64(n) > uint64(rp.a.HeapSize()) {
		return incorrect(i, "payload [0x%X, +%d) outside heap of %d bytes", uint32(p), n, rp.a.HeapSize())
	}
	payload := rp.a.Payload(p)
	if len(payload) < n {
		return incorrect(i, "payload 0x%X holds %d bytes, requested %d", uint32(p), len(payload), n)
	}
	if other, ok := rp.spans.insert(span{lo: uint32(p), hi: uint32(p) + uint32(n)}); !ok {
		return incorrect(i, "payload [0x%X, 0x%X) overlaps live [0x%X, 0x%X)",
			uint32(p), uint32(p)+uint32(n), other.lo, other.hi)
	}
	if err := checkPattern(i, id, payload[:kept]); err != nil {
		return err
	}
	fillPattern(id, payload[:n])
	rp.blocks[id] = liveBlock{p: p, n: n}
	return nil
}

// verify checks that a live payload still holds its id pattern.
func (rp *replayer) verify(i, id int, p alloc.Ptr, n int) error {
	if n == 0 {
		return nil
	}
	payload := rp.a.Payload(p)
	if len(payload) < n {
		return incorrect(i, "id %d: block 0x%X no longer holds %d bytes", id, uint32(p), n)
	}
	return checkPattern(i, id, payload[:n])
}

func patternByte(id, k int) byte { return byte(id) ^ byte(k*13+7) }

func fillPattern(id int, b []byte) {
	for k := range b {
		b[k] = patternByte(id, k)
	}
}

func checkPattern(i, id int, b []byte) error {
	for k, v := range b {
		if v != patternByte(id, k) {
			return incorrect(i, "id %d: payload byte %d is 0x%02X, want 0x%02X", id, k, v, patternByte(id, k))
		}
	}
	return nil
}

// span is a live payload range [lo, hi).
type span struct{ lo, hi uint32 }

// spans keeps live payload ranges sorted by start for overlap checks.
type spans []span

func (s *spans) find(lo uint32) (int, bool) {
	return slices.BinarySearchFunc(*s, lo, func(e span, t uint32) int { return cmp.Compare(e.lo, t) })
}

// insert adds sp unless it overlaps a neighbour, which is returned instead.
func (s *spans) insert(sp span) (span, bool) {
	i, found := s.find(sp.lo)
	if found {
		return (*s)[i], false
	}
	if i > 0 && (*s)[i-1].hi > sp.lo {
		return (*s)[i-1], false
	}
	if i < len(*s) && (*s)[i].lo < sp.hi {
		return (*s)[i], false
	}
	*s = slices.Insert(*s, i, sp)
	return span{}, true
}

func (s *spans) remove(p alloc.Ptr) {
	if i, found := s.find(uint32(p)); found && p != alloc.Nil {
		*s = slices.Delete(*s, i, i+1)
	}
}
