// Package varint implements the LEB128-style variable-length integer
// encoding used throughout the Minecraft protocol for lengths, packet ids,
// and a handful of payload fields.
package varint

import (
	"errors"

	"mcproto/mcio"
)

// ErrInvalidEndOfVarInt is returned when the source runs out of bytes
// before a continuation-terminated varint is complete.
var ErrInvalidEndOfVarInt = errors.New("varint: source ended before varint terminated")

// ErrVarTypeTooLong is returned when a varint exceeds its maximum encoded
// length (5 bytes for VarInt, 10 for VarLong) without its continuation bit
// clearing.
var ErrVarTypeTooLong = errors.New("varint: too many bytes for type")

const (
	continueBit = 0x80
	segmentMask = 0x7f

	maxVarIntBytes  = 5
	maxVarLongBytes = 10
)

// EncodeVarInt writes v to dst using the standard 7-bit-per-byte scheme.
func EncodeVarInt(v int32, dst *mcio.Sink) {
	u := uint32(v)
	for {
		b := byte(u & segmentMask)
		u >>= 7
		if u != 0 {
			dst.WriteByte(b | continueBit)
		} else {
			dst.WriteByte(b)
			return
		}
	}
}

// DecodeVarInt reads a VarInt from src, consuming 1 to 5 bytes.
func DecodeVarInt(src *mcio.Source) (int32, error) {
	var result uint32
	for i := 0; i < maxVarIntBytes; i++ {
		b, ok := src.PopByte()
		if !ok {
			return 0, ErrInvalidEndOfVarInt
		}
		result |= uint32(b&segmentMask) << (7 * uint(i))
		if b&continueBit == 0 {
			return int32(result), nil
		}
	}
	return 0, ErrVarTypeTooLong
}

// EncodeVarLong writes v to dst using the standard 7-bit-per-byte scheme.
func EncodeVarLong(v int64, dst *mcio.Sink) {
	u := uint64(v)
	for {
		b := byte(u & segmentMask)
		u >>= 7
		if u != 0 {
			dst.WriteByte(b | continueBit)
		} else {
			dst.WriteByte(b)
			return
		}
	}
}

// DecodeVarLong reads a VarLong from src, consuming 1 to 10 bytes.
func DecodeVarLong(src *mcio.Source) (int64, error) {
	var result uint64
	for i := 0; i < maxVarLongBytes; i++ {
		b, ok := src.PopByte()
		if !ok {
			return 0, ErrInvalidEndOfVarInt
		}
		result |= uint64(b&segmentMask) << (7 * uint(i))
		if b&continueBit == 0 {
			return int64(result), nil
		}
	}
	return 0, ErrVarTypeTooLong
}

// Size returns the number of bytes EncodeVarInt would write for v.
func Size(v int32) int {
	u := uint32(v)
	n := 1
	for u >= continueBit {
		u >>= 7
		n++
	}
	return n
}
