package format

import "encoding/binary"

// Tags and links are stored little-endian regardless of host order so a
// heap image reads the same everywhere.

// PutU32 writes v at off.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+WordSize], v)
}

// ReadU32 reads the word at off.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+WordSize])
}

// Pack combines a block size and allocation flag into a tag word.
func Pack(size uint32, allocated bool) uint32 {
	if allocated {
		return size | AllocBit
	}
	return size
}

// TagSize extracts the block size from a tag word.
func TagSize(tag uint32) uint32 {
	return tag & SizeMask
}

// TagAllocated extracts the allocation flag from a tag word.
func TagAllocated(tag uint32) bool {
	return tag&AllocBit != 0
}
