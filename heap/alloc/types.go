package alloc

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is the payload offset of an allocated block relative to the arena base.
// Valid pointers are multiples of 8.
type Ptr uint32

// Nil is the null pointer. Offset 0 is the pad word, never a payload.
const Nil Ptr = format.NilOffset

// Block describes one block found while walking the heap.
type Block struct {
	Off       Ptr    // payload offset
	Size      uint32 // total size including both tags
	Allocated bool
}

// Options tunes an Allocator. The zero value of every field means "default".
type Options struct {
	// ChunkSize is the minimum number of bytes requested from the growth
	// primitive per extension. Rounded up to a multiple of 8.
	ChunkSize int

	// Strict makes Free and Realloc confirm by heap walk that the pointer is
	// a block boundary. O(blocks) per call.
	Strict bool

	// CheckEveryOp runs Check after every mutating call and panics with the
	// *InvariantError on failure. Debugging aid; O(heap) per call.
	CheckEveryOp bool

	// Logger receives debug events. Nil discards them unless HEAP_LOG_ALLOC
	// is set, in which case they go to stderr.
	Logger *slog.Logger
}

// DefaultOptions is used when New is given nil.
var DefaultOptions = Options{ChunkSize: format.DefaultChunkSize}

func (o Options) resolve() (Options, error) {
	if o.ChunkSize == 0 {
		o.ChunkSize = format.DefaultChunkSize
	}
	if o.ChunkSize < format.MinBlockSize || uint64(o.ChunkSize) > format.MaxArena {
		return o, errors.Wrapf(ErrBadOptions, "chunk size %d outside [%d, %d]",
			o.ChunkSize, format.MinBlockSize, uint64(format.MaxArena))
	}
	o.ChunkSize = format.Align8(o.ChunkSize)
	o.Logger = resolveLogger(o.Logger)
	return o, nil
}
