package chunkdata

import (
	"mcproto/mcio"
	"mcproto/mctypes"
	"mcproto/varint"
)

// BitSet is a growable bit field backed by 64-bit words, used for the
// sky/block light masks sent alongside chunk data. On the wire it is a
// VarInt word count followed by that many big-endian int64 words.
type BitSet struct {
	words []int64
}

// NewBitSet returns a BitSet sized to hold at least n bits.
func NewBitSet(n int) *BitSet {
	return &BitSet{words: make([]int64, (n+63)/64)}
}

// Set sets bit i, growing the backing words if needed.
func (b *BitSet) Set(i int) {
	word := i / 64
	for word >= len(b.words) {
		b.words = append(b.words, 0)
	}
	b.words[word] |= 1 << uint(i%64)
}

// Clear clears bit i. Clearing past the end is a no-op.
func (b *BitSet) Clear(i int) {
	word := i / 64
	if word < len(b.words) {
		b.words[word] &^= 1 << uint(i%64)
	}
}

// Get reports whether bit i is set. Bits past the end read as false.
func (b *BitSet) Get(i int) bool {
	word := i / 64
	if word >= len(b.words) {
		return false
	}
	return b.words[word]&(1<<uint(i%64)) != 0
}

// Len returns the bit capacity of the backing words.
func (b *BitSet) Len() int {
	return len(b.words) * 64
}

// Encode writes the VarInt-prefixed word array.
func (b *BitSet) Encode(dst *mcio.Sink) {
	varint.EncodeVarInt(int32(len(b.words)), dst)
	for _, w := range b.words {
		mctypes.WriteInt64(w, dst)
	}
}

// DecodeBitSet reads a VarInt-prefixed word array.
func DecodeBitSet(src *mcio.Source) (*BitSet, error) {
	n, err := varint.DecodeVarInt(src)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, mcio.ErrOutOfBounds
	}
	words := make([]int64, n)
	for i := range words {
		w, err := mctypes.ReadInt64(src)
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	return &BitSet{words: words}, nil
}

// FixedBitSet is a fixed-width bit field backed by bytes, used where the
// bit count is known from context and no length prefix is sent (e.g. the
// acknowledged-messages field in chat packets). Its wire form is exactly
// ceil(n/8) raw bytes.
type FixedBitSet struct {
	bits  int
	bytes []byte
}

// NewFixedBitSet returns a FixedBitSet holding exactly n bits.
func NewFixedBitSet(n int) *FixedBitSet {
	return &FixedBitSet{bits: n, bytes: make([]byte, (n+7)/8)}
}

// Set sets bit i. Out-of-range indices are ignored.
func (b *FixedBitSet) Set(i int) {
	if i < 0 || i >= b.bits {
		return
	}
	b.bytes[i/8] |= 1 << uint(i%8)
}

// Get reports whether bit i is set.
func (b *FixedBitSet) Get(i int) bool {
	if i < 0 || i >= b.bits {
		return false
	}
	return b.bytes[i/8]&(1<<uint(i%8)) != 0
}

// Encode writes the raw bytes, no prefix.
func (b *FixedBitSet) Encode(dst *mcio.Sink) {
	dst.Write(b.bytes)
}

// DecodeFixedBitSet reads exactly ceil(n/8) bytes for an n-bit set.
func DecodeFixedBitSet(src *mcio.Source, n int) (*FixedBitSet, error) {
	raw, err := src.Take((n + 7) / 8)
	if err != nil {
		return nil, err
	}
	b := NewFixedBitSet(n)
	copy(b.bytes, raw)
	return b, nil
}
