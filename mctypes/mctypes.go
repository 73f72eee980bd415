// Package mctypes implements the fixed-width and length-prefixed primitive
// data types shared by every packet body: integers, booleans, strings,
// prefixed arrays and optionals, and the 128-bit UUID type.
package mctypes

import (
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"

	"mcproto/mcio"
	"mcproto/varint"
)

// ErrInvalidBool is returned when a Bool byte is neither 0 nor 1.
var ErrInvalidBool = errors.New("mctypes: invalid bool byte")

// ErrInvalidUTF8 is returned when a McString's bytes are not valid UTF-8.
var ErrInvalidUTF8 = errors.New("mctypes: invalid utf-8 in string")

// ErrOutOfBounds is re-exported for callers that only import mctypes.
var ErrOutOfBounds = mcio.ErrOutOfBounds

// WriteBool writes a single 0x00/0x01 byte.
func WriteBool(v bool, dst *mcio.Sink) {
	if v {
		dst.WriteByte(1)
	} else {
		dst.WriteByte(0)
	}
}

// ReadBool reads a single 0x00/0x01 byte.
func ReadBool(src *mcio.Source) (bool, error) {
	b, ok := src.PopByte()
	if !ok {
		return false, mcio.ErrOutOfBounds
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrInvalidBool
	}
}

// WriteUint8/ReadUint8 and friends implement the fixed-width big-endian
// integer types. Minecraft's "Byte"/"UnsignedByte" etc. map directly onto
// Go's sized integer types.

func WriteUint8(v uint8, dst *mcio.Sink) { dst.WriteByte(v) }

func ReadUint8(src *mcio.Source) (uint8, error) {
	b, ok := src.PopByte()
	if !ok {
		return 0, mcio.ErrOutOfBounds
	}
	return b, nil
}

func WriteInt16(v int16, dst *mcio.Sink) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	dst.Write(buf[:])
}

func ReadInt16(src *mcio.Source) (int16, error) {
	b, err := src.Take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func WriteUint16(v uint16, dst *mcio.Sink) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	dst.Write(buf[:])
}

func ReadUint16(src *mcio.Source) (uint16, error) {
	b, err := src.Take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func WriteInt32(v int32, dst *mcio.Sink) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	dst.Write(buf[:])
}

func ReadInt32(src *mcio.Source) (int32, error) {
	b, err := src.Take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func WriteInt64(v int64, dst *mcio.Sink) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	dst.Write(buf[:])
}

func ReadInt64(src *mcio.Source) (int64, error) {
	b, err := src.Take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func WriteUint64(v uint64, dst *mcio.Sink) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	dst.Write(buf[:])
}

func ReadUint64(src *mcio.Source) (uint64, error) {
	b, err := src.Take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func WriteFloat32(v float32, dst *mcio.Sink) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(v))
	dst.Write(buf[:])
}

func ReadFloat32(src *mcio.Source) (float32, error) {
	b, err := src.Take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

func WriteFloat64(v float64, dst *mcio.Sink) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	dst.Write(buf[:])
}

func ReadFloat64(src *mcio.Source) (float64, error) {
	b, err := src.Take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// McString is a VarInt-length-prefixed UTF-8 string, distinct from NBT's
// own u16-prefixed TagString.
func WriteMcString(s string, dst *mcio.Sink) {
	varint.EncodeVarInt(int32(len(s)), dst)
	dst.Write([]byte(s))
}

func ReadMcString(src *mcio.Source) (string, error) {
	n, err := varint.DecodeVarInt(src)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", mcio.ErrOutOfBounds
	}
	b, err := src.Take(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// WriteUUID writes the 16-byte big-endian representation.
func WriteUUID(id uuid.UUID, dst *mcio.Sink) {
	dst.Write(id[:])
}

// ReadUUID reads the 16-byte big-endian representation.
func ReadUUID(src *mcio.Source) (uuid.UUID, error) {
	b, err := src.Take(16)
	if err != nil {
		return uuid.UUID{}, err
	}
	var id uuid.UUID
	copy(id[:], b)
	return id, nil
}

// WritePrefixedArray writes a VarInt count followed by each element encoded
// with enc.
func WritePrefixedArray[T any](items []T, dst *mcio.Sink, enc func(T, *mcio.Sink)) {
	varint.EncodeVarInt(int32(len(items)), dst)
	for _, item := range items {
		enc(item, dst)
	}
}

// ReadPrefixedArray reads a VarInt count followed by that many elements
// decoded with dec.
func ReadPrefixedArray[T any](src *mcio.Source, dec func(*mcio.Source) (T, error)) ([]T, error) {
	n, err := varint.DecodeVarInt(src)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, mcio.ErrOutOfBounds
	}
	out := make([]T, 0, n)
	for i := int32(0); i < n; i++ {
		v, err := dec(src)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// WritePrefixedOptional writes a bool guard followed by the value iff
// present.
func WritePrefixedOptional[T any](v *T, dst *mcio.Sink, enc func(T, *mcio.Sink)) {
	WriteBool(v != nil, dst)
	if v != nil {
		enc(*v, dst)
	}
}

// ReadPrefixedOptional reads a bool guard and, iff true, a value.
func ReadPrefixedOptional[T any](src *mcio.Source, dec func(*mcio.Source) (T, error)) (*T, error) {
	present, err := ReadBool(src)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	v, err := dec(src)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ReadRest returns every byte left in the source, consuming it. Used for
// fields whose count is implied by the enclosing packet's declared length
// rather than by a prefix (e.g. plugin message payloads).
func ReadRest(src *mcio.Source) ([]byte, error) {
	return src.Take(src.Remaining())
}
