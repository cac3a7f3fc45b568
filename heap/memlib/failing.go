package memlib

import "github.com/cockroachdb/errors"

// Failing wraps a Grower and lets only the first Budget Sbrk calls through.
// Later calls fail with ErrExhausted without touching the inner Grower.
type Failing struct {
	Grower
	Budget int
	calls  int
}

// NewFailing returns a Failing around g that allows budget successful calls.
func NewFailing(g Grower, budget int) *Failing {
	return &Failing{Grower: g, Budget: budget}
}

// Sbrk implements Grower.
func (f *Failing) Sbrk(incr int) (uint32, error) {
	if f.calls >= f.Budget {
		return 0, errors.Wrapf(ErrExhausted, "injected failure after %d calls", f.calls)
	}
	f.calls++
	return f.Grower.Sbrk(incr)
}

// Calls returns the number of Sbrk calls let through so far.
func (f *Failing) Calls() int { return f.calls }
