package chunkdata

import (
	"mcproto/mcio"
	"mcproto/mctypes"
)

// Entry counts a chunk section's containers hold: 16x16x16 block states
// and 4x4x4 biome cells. Neither is carried on the wire; decoders must be
// told which one applies.
const (
	BlockEntries = 4096
	BiomeEntries = 64
)

// ClassifyBlockBits maps a block container's bits-per-entry byte to its
// representation: 0 is single-valued, up to 8 is an indirect palette, and
// anything larger is direct global ids (the client always sends 15).
func ClassifyBlockBits(bitsPerEntry int) Kind {
	switch {
	case bitsPerEntry == 0:
		return KindSingleValued
	case bitsPerEntry <= 8:
		return KindIndirect
	default:
		return KindDirect
	}
}

// ClassifyBiomeBits is the biome analogue: the indirect range tops out at
// 3 bits, and direct biome ids use 6.
func ClassifyBiomeBits(bitsPerEntry int) Kind {
	switch {
	case bitsPerEntry == 0:
		return KindSingleValued
	case bitsPerEntry <= 3:
		return KindIndirect
	default:
		return KindDirect
	}
}

// ChunkSection is one 16-block-tall slice of a chunk column: a non-air
// block count followed by the block-state and biome containers.
type ChunkSection struct {
	BlockCount  int16
	BlockStates *PalettedContainer
	Biomes      *PalettedContainer
}

// Encode writes the section in wire order.
func (s *ChunkSection) Encode(dst *mcio.Sink) {
	mctypes.WriteInt16(s.BlockCount, dst)
	s.BlockStates.Encode(dst)
	s.Biomes.Encode(dst)
}

// DecodeChunkSection reads one section, classifying each container with
// the block and biome threshold tables.
func DecodeChunkSection(src *mcio.Source) (*ChunkSection, error) {
	count, err := mctypes.ReadInt16(src)
	if err != nil {
		return nil, err
	}
	blocks, err := Decode(src, BlockEntries, ClassifyBlockBits)
	if err != nil {
		return nil, err
	}
	biomes, err := Decode(src, BiomeEntries, ClassifyBiomeBits)
	if err != nil {
		return nil, err
	}
	return &ChunkSection{BlockCount: count, BlockStates: blocks, Biomes: biomes}, nil
}
