package format

// AlignPage returns n aligned up to the next 4KB (4096-byte) boundary.
// Used when reserving mapped arena space.
//
// Example:
//
//	AlignPage(1)    = 4096
//	AlignPage(4096) = 4096
//	AlignPage(4097) = 8192
func AlignPage(n int) int {
	return (n + PageMask) & ^PageMask
}
