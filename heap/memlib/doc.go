// Package memlib provides the heap-growth primitive the allocator builds on.
//
// A Grower models a process break: Sbrk hands back the offset of a fresh,
// zero-filled extension that is physically contiguous with every earlier
// extension, or ErrExhausted once the reserved arena is used up. The arena
// never moves, so byte slices taken from Bytes stay valid as it grows.
//
// # Implementations
//
//   - Slice: a fixed-capacity Go byte slice. Portable, used by tests.
//   - Mapped: an anonymous private mapping reserved up front through
//     golang.org/x/sys/unix. Pages are committed lazily by the kernel as the
//     break moves over them. Falls back to Slice where mmap is unavailable.
//   - Failing: wraps another Grower and starts failing after a fixed number
//     of successful calls, for out-of-memory tests.
//
// # Thread Safety
//
// Growers are not thread-safe. The allocator that owns one serializes access.
package memlib
