// Package format holds the on-arena layout of the heap: word sizes, tag bits,
// the registry prefix and the sentinel offsets. Everything here is a plain
// constant or a tiny helper so the allocator can inline it.
package format

const (
	// WordSize is the size of one boundary tag (header or footer) and of one
	// free-list link.
	WordSize = 4

	// DWordSize is the alignment unit. Block sizes and payload offsets are
	// multiples of it.
	DWordSize = 8

	// AlignmentMask masks the low bits that must be zero in an aligned size.
	AlignmentMask = DWordSize - 1

	// Overhead is the number of bytes a block spends on its tags.
	Overhead = 2 * WordSize

	// MinBlockSize holds a header, a footer and the two links of a free block.
	MinBlockSize = 16

	// DefaultChunkSize is the minimum amount the heap grows by.
	DefaultChunkSize = 1 << 12

	// LargeRequest is the adjusted size at or above which a split places the
	// allocated part at the tail of the donor block.
	LargeRequest = 96
)

// Tag bits.
const (
	AllocBit uint32 = 0x1
	SizeMask uint32 = ^uint32(AlignmentMask)
)

// Registry geometry. Class i holds blocks whose size has bit length
// i+MinClassBits, so 16..31 is class 0 and the last class takes everything up
// to the 32-bit size limit.
const (
	NumClasses   = 28
	MinClassBits = 5
)

// Arena prefix layout. Offsets are from the arena base.
//
//	0x00  pad word (offset 0 doubles as the nil link)
//	0x04  NumClasses registry head slots
//	0x74  prologue header
//	0x78  prologue footer
//	0x7C  epilogue header
//	0x80  first payload
const (
	RegistryOffset  = WordSize
	PrologueHeader  = RegistryOffset + NumClasses*WordSize
	PrologueFooter  = PrologueHeader + WordSize
	InitialEpilogue = PrologueFooter + WordSize
	PrefixSize      = InitialEpilogue + WordSize
	PrologueSize    = DWordSize
	FirstPayload    = PrefixSize
	NilOffset       = 0
)

// MaxArena is the largest arena addressable with 32-bit offsets while keeping
// sizes 8-aligned.
const MaxArena = 1<<32 - DWordSize
