// Package format describes the on-arena layout of allocator block headers.
// Everything the allocator persists inside the arena goes through the helpers
// here so the layout is defined in exactly one place.
package format

// Block header layout (little-endian, 24 bytes):
//
//	0x00  capacity   uint64  usable payload bytes in this block
//	0x08  requested  uint64  size last requested by the caller
//	0x10  next       uint64  arena offset of the next free header, or NoLink
//
// The payload begins immediately after the header.
const (
	// WordSize is the natural pointer-sized word the header is built from.
	WordSize = 8

	// HeaderSize is the number of bytes preceding every payload.
	HeaderSize = 3 * WordSize

	// CapacityOffset is the header offset of the capacity field.
	CapacityOffset = 0x00

	// RequestedOffset is the header offset of the requested-size field.
	RequestedOffset = 0x08

	// NextOffset is the header offset of the free-list link.
	NextOffset = 0x10

	// NoLink marks an absent free-list link (live block or list tail).
	NoLink = 0xFFFFFFFFFFFFFFFF

	// PageSize is the growth granularity of mapped arenas.
	PageSize = 0x1000

	// PageMask is the bitmask used for aligning to page boundaries (PageSize - 1).
	PageMask = PageSize - 1
)
