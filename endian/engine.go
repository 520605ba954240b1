// Package endian provides byte order utilities for tile binary decoding.
//
// The instanced-model tile format is little-endian throughout, but the header
// and feature table readers take their byte order through the EndianEngine
// interface so decoding code stays free of hard-coded binary.LittleEndian
// references. The interface combines ByteOrder and AppendByteOrder from
// encoding/binary; both standard engines satisfy it.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Little returns the little-endian engine, the byte order of the tile format.
func Little() EndianEngine {
	return binary.LittleEndian
}

// Native uses a fixed integer value to determine the host's byte order.
func Native() EndianEngine {
	var i uint16 = 0x0100

	// Only the byte at the lowest address matters: 0x01 means big-endian.
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittle reports whether the host byte order matches the tile format.
func IsNativeLittle() bool {
	return Native() == EndianEngine(binary.LittleEndian)
}
