package format

import "encoding/binary"

// Binary encoding utilities for little-endian integers.
//
// Implementation: Uses encoding/binary.LittleEndian. The compiler inlines
// these calls well enough that an unsafe variant buys nothing.

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// Header is the decoded form of a block header.
type Header struct {
	Capacity  uint64
	Requested uint64
	Next      uint64
}

// Linked reports whether the header carries a free-list successor.
func (h Header) Linked() bool {
	return h.Next != NoLink
}

// PutHeader encodes h at offset off.
func PutHeader(b []byte, off int, h Header) {
	PutU64(b, off+CapacityOffset, h.Capacity)
	PutU64(b, off+RequestedOffset, h.Requested)
	PutU64(b, off+NextOffset, h.Next)
}

// ReadHeader decodes the header at offset off.
// The caller must ensure off+HeaderSize <= len(b).
func ReadHeader(b []byte, off int) Header {
	return Header{
		Capacity:  ReadU64(b, off+CapacityOffset),
		Requested: ReadU64(b, off+RequestedOffset),
		Next:      ReadU64(b, off+NextOffset),
	}
}
