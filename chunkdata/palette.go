// Package chunkdata implements the bit-packed paletted containers used to
// store block and biome data inside chunk sections.
package chunkdata

import (
	"errors"

	"mcproto/mcio"
	"mcproto/mctypes"
	"mcproto/varint"
)

// ErrIndexOutOfRange is returned when an entry index exceeds NumEntries.
var ErrIndexOutOfRange = errors.New("chunkdata: entry index out of range")

// Kind distinguishes the three on-wire palette representations.
type Kind int

const (
	// KindSingleValued: every entry shares one value, no packed data.
	KindSingleValued Kind = iota
	// KindIndirect: entries are small indices into an explicit palette
	// table of global ids.
	KindIndirect
	// KindDirect: entries are global ids themselves, no palette table.
	KindDirect
)

// PalettedContainer holds NumEntries fixed-width values packed into 64-bit
// words, in one of the three Kind representations.
type PalettedContainer struct {
	NumEntries   int
	BitsPerEntry int
	Kind         Kind
	SingleValue  int32   // valid when Kind == KindSingleValued
	Palette      []int32 // valid when Kind == KindIndirect
	Data         []int64 // packed entries; valid for Indirect and Direct
}

// entriesPerWord returns how many BitsPerEntry-wide entries fit in one
// 64-bit word without crossing a word boundary.
func entriesPerWord(bitsPerEntry int) int {
	if bitsPerEntry == 0 {
		return 0
	}
	return 64 / bitsPerEntry
}

// NewDirect builds a direct-kind container from raw global ids.
func NewDirect(ids []int32, bitsPerEntry int) *PalettedContainer {
	c := &PalettedContainer{
		NumEntries:   len(ids),
		BitsPerEntry: bitsPerEntry,
		Kind:         KindDirect,
	}
	c.pack(ids)
	return c
}

// NewIndirect builds an indirect-kind container, building the palette table
// from the distinct values encountered in ids, in first-seen order.
func NewIndirect(ids []int32, bitsPerEntry int) *PalettedContainer {
	c := &PalettedContainer{
		NumEntries:   len(ids),
		BitsPerEntry: bitsPerEntry,
		Kind:         KindIndirect,
	}
	indexOf := make(map[int32]int32)
	indices := make([]int32, len(ids))
	for i, id := range ids {
		idx, ok := indexOf[id]
		if !ok {
			idx = int32(len(c.Palette))
			indexOf[id] = idx
			c.Palette = append(c.Palette, id)
		}
		indices[i] = idx
	}
	c.pack(indices)
	return c
}

// NewSingleValued builds a single-valued container: every logical entry is
// value, with no packed data at all.
func NewSingleValued(value int32, numEntries int) *PalettedContainer {
	return &PalettedContainer{
		NumEntries:  numEntries,
		Kind:        KindSingleValued,
		SingleValue: value,
	}
}

func (c *PalettedContainer) pack(values []int32) {
	epw := entriesPerWord(c.BitsPerEntry)
	if epw == 0 {
		return
	}
	wordCount := (len(values) + epw - 1) / epw
	c.Data = make([]int64, wordCount)
	mask := int64(1)<<uint(c.BitsPerEntry) - 1
	for i, v := range values {
		word := i / epw
		offset := uint(i%epw) * uint(c.BitsPerEntry)
		c.Data[word] |= (int64(v) & mask) << offset
	}
}

// Get returns the global id (or, for Indirect containers, the
// palette-resolved global id) stored at index i.
func (c *PalettedContainer) Get(i int) (int32, error) {
	if i < 0 || i >= c.NumEntries {
		return 0, ErrIndexOutOfRange
	}
	switch c.Kind {
	case KindSingleValued:
		return c.SingleValue, nil
	case KindDirect:
		return c.extract(i), nil
	case KindIndirect:
		idx := c.extract(i)
		if int(idx) >= len(c.Palette) {
			return 0, ErrIndexOutOfRange
		}
		return c.Palette[idx], nil
	default:
		return 0, ErrIndexOutOfRange
	}
}

func (c *PalettedContainer) extract(i int) int32 {
	epw := entriesPerWord(c.BitsPerEntry)
	word := i / epw
	offset := uint(i%epw) * uint(c.BitsPerEntry)
	mask := int64(1)<<uint(c.BitsPerEntry) - 1
	return int32((c.Data[word] >> offset) & mask)
}

// Encode writes the container in the wire shape: the BitsPerEntry byte,
// then for SingleValued the single VarInt value and nothing more; for
// Indirect the VarInt-counted palette followed by the VarInt data array
// length and the packed int64 words; for Direct just the data array length
// and the words.
func (c *PalettedContainer) Encode(dst *mcio.Sink) {
	dst.WriteByte(byte(c.BitsPerEntry))
	switch c.Kind {
	case KindSingleValued:
		varint.EncodeVarInt(c.SingleValue, dst)
	case KindIndirect:
		varint.EncodeVarInt(int32(len(c.Palette)), dst)
		for _, v := range c.Palette {
			varint.EncodeVarInt(v, dst)
		}
	}
	if c.Kind != KindSingleValued {
		varint.EncodeVarInt(int32(len(c.Data)), dst)
		for _, word := range c.Data {
			mctypes.WriteInt64(word, dst)
		}
	}
}

// Decode reads a palette container back, given the caller-supplied entry
// count (4096 for a block section, 64 for a biome section) and the
// single/indirect/direct threshold table used to classify BitsPerEntry.
func Decode(src *mcio.Source, numEntries int, classify func(bitsPerEntry int) Kind) (*PalettedContainer, error) {
	bpeByte, err := mctypes.ReadUint8(src)
	if err != nil {
		return nil, err
	}
	bitsPerEntry := int(bpeByte)
	kind := classify(bitsPerEntry)
	c := &PalettedContainer{NumEntries: numEntries, BitsPerEntry: bitsPerEntry, Kind: kind}
	switch kind {
	case KindSingleValued:
		v, err := varint.DecodeVarInt(src)
		if err != nil {
			return nil, err
		}
		c.SingleValue = v
	case KindIndirect:
		palette, err := mctypes.ReadPrefixedArray(src, varint.DecodeVarInt)
		if err != nil {
			return nil, err
		}
		c.Palette = palette
	}
	if kind != KindSingleValued {
		n, err := varint.DecodeVarInt(src)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, mcio.ErrOutOfBounds
		}
		data := make([]int64, n)
		for i := range data {
			v, err := mctypes.ReadInt64(src)
			if err != nil {
				return nil, err
			}
			data[i] = v
		}
		c.Data = data
	}
	return c, nil
}
