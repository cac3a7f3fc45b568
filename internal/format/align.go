package format

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + AlignmentMask) &^ AlignmentMask
}

// Align8U32 is the uint32 flavour of Align8 used on tag values.
func Align8U32(n uint32) uint32 {
	return (n + AlignmentMask) &^ AlignmentMask
}

// IsAligned8 reports whether n sits on an 8-byte boundary.
func IsAligned8(n uint32) bool {
	return n&AlignmentMask == 0
}

// ClassSlot returns the arena offset of the registry head for class.
func ClassSlot(class int) int {
	return RegistryOffset + class*WordSize
}
