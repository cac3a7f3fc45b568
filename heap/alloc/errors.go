package alloc

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrOutOfMemory indicates that no free block fits and the growth primitive
	// refused to extend the heap. The memlib cause stays in the chain.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrInvalidSize indicates a negative request or one too large for a
	// 32-bit arena.
	ErrInvalidSize = errors.New("alloc: invalid request size")

	// ErrInvalidPointer indicates a pointer that does not name an allocated block.
	ErrInvalidPointer = errors.New("alloc: invalid pointer")

	// ErrDoubleFree indicates a pointer whose block is already free.
	ErrDoubleFree = errors.New("alloc: block already free")

	// ErrArenaInUse indicates New was handed a Grower whose break is not zero.
	ErrArenaInUse = errors.New("alloc: arena already in use")

	// ErrBadOptions indicates an Options value that cannot be honoured.
	ErrBadOptions = errors.New("alloc: bad options")
)

// InvariantError describes the first structural violation found by Check.
type InvariantError struct {
	Kind   string // short machine-friendly name, e.g. "adjacent-free"
	Off    uint32 // payload offset of the offending block (0 if not block-specific)
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("alloc: invariant %s violated at 0x%X: %s", e.Kind, e.Off, e.Detail)
}

func violation(kind string, off uint32, format string, args ...any) error {
	return &InvariantError{Kind: kind, Off: off, Detail: fmt.Sprintf(format, args...)}
}

// oomError reports a growth failure. It matches ErrOutOfMemory and unwraps to
// the memlib cause, so both errors.Is checks hold with either errors package.
type oomError struct {
	cause error
}

func (e *oomError) Error() string { return ErrOutOfMemory.Error() + ": " + e.cause.Error() }

func (e *oomError) Unwrap() error { return e.cause }

func (e *oomError) Is(target error) bool { return target == ErrOutOfMemory }

func outOfMemory(cause error, need uint32) error {
	return &oomError{cause: errors.Wrapf(cause, "grow by %d bytes", need)}
}
