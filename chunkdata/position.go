package chunkdata

import (
	"mcproto/mcio"
	"mcproto/mctypes"
)

// Position is a block position packed into a single int64 on the wire:
// x in the top 26 bits, z in the middle 26, y in the bottom 12, each a
// two's-complement signed field.
type Position struct {
	X int32
	Y int32
	Z int32
}

const (
	posXBits = 26
	posZBits = 26
	posYBits = 12
)

// Pack returns the packed int64 form.
func (p Position) Pack() int64 {
	x := uint64(p.X) & (1<<posXBits - 1)
	z := uint64(p.Z) & (1<<posZBits - 1)
	y := uint64(p.Y) & (1<<posYBits - 1)
	return int64(x<<(posZBits+posYBits) | z<<posYBits | y)
}

// UnpackPosition decodes a packed int64, sign-extending each field.
func UnpackPosition(v int64) Position {
	u := uint64(v)
	return Position{
		X: signExtend(int32(u>>(posZBits+posYBits)&(1<<posXBits-1)), posXBits),
		Z: signExtend(int32(u>>posYBits&(1<<posZBits-1)), posZBits),
		Y: signExtend(int32(u&(1<<posYBits-1)), posYBits),
	}
}

func signExtend(v int32, bits uint) int32 {
	shift := 32 - bits
	return v << shift >> shift
}

// Encode writes the packed big-endian int64.
func (p Position) Encode(dst *mcio.Sink) {
	mctypes.WriteInt64(p.Pack(), dst)
}

// DecodePosition reads a packed big-endian int64.
func DecodePosition(src *mcio.Source) (Position, error) {
	v, err := mctypes.ReadInt64(src)
	if err != nil {
		return Position{}, err
	}
	return UnpackPosition(v), nil
}
