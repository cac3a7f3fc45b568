package trace

import "github.com/cockroachdb/errors"

var (
	// ErrMalformed indicates a trace that cannot be parsed or whose requests
	// are inconsistent (freeing a dead id, reusing a live id, ...).
	ErrMalformed = errors.New("trace: malformed trace")

	// ErrCorrectness indicates the allocator returned a pointer or contents
	// that violate malloc semantics.
	ErrCorrectness = errors.New("trace: allocator correctness failure")
)

func malformed(line int, format string, args ...any) error {
	return errors.Wrapf(ErrMalformed, "line %d: "+format, append([]any{line}, args...)...)
}

func incorrect(op int, format string, args ...any) error {
	return errors.Wrapf(ErrCorrectness, "op %d: "+format, append([]any{op}, args...)...)
}
