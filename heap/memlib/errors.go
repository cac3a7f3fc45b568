package memlib

import "github.com/cockroachdb/errors"

var (
	// ErrExhausted indicates the reserved arena cannot satisfy an Sbrk.
	ErrExhausted = errors.New("memlib: arena exhausted")

	// ErrNegativeIncrement indicates an attempt to move the break downwards.
	ErrNegativeIncrement = errors.New("memlib: negative sbrk increment")

	// ErrBadLimit indicates a maximum heap size outside (0, format.MaxArena].
	ErrBadLimit = errors.New("memlib: heap limit out of range")
)
