package chunkdata

import (
	"testing"

	"mcproto/mcio"
)

// TestFiveBitWordExtraction checks LSB-first extraction from a known
// packed word: 5 bits per entry, 12 entries per 64-bit word.
func TestFiveBitWordExtraction(t *testing.T) {
	c := &PalettedContainer{
		NumEntries:   11,
		BitsPerEntry: 5,
		Kind:         KindDirect,
		Data:         []int64{0x0020863148418841},
	}
	want := []int32{1, 2, 2, 3, 4, 4, 5, 6, 6, 4, 8}
	for i, w := range want {
		got, err := c.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got != w {
			t.Fatalf("Get(%d) = %d, want %d", i, got, w)
		}
	}
}

// TestFiveBitPackedRoundTrip packs and re-extracts: five bits per entry,
// LSB-first within the word.
func TestFiveBitPackedRoundTrip(t *testing.T) {
	ids := []int32{1, 2, 2, 3, 4, 4}
	c := NewDirect(ids, 5)
	for i, want := range ids {
		got, err := c.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("Get(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestIndirectPaletteRoundTrip(t *testing.T) {
	ids := []int32{100, 100, 200, 300, 100}
	c := NewIndirect(ids, 4)
	if len(c.Palette) != 3 {
		t.Fatalf("palette size = %d, want 3", len(c.Palette))
	}
	for i, want := range ids {
		got, err := c.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("Get(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestSingleValued(t *testing.T) {
	c := NewSingleValued(42, 4096)
	got, err := c.Get(4095)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if _, err := c.Get(4096); err != ErrIndexOutOfRange {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func classifyBlocks(bpe int) Kind {
	switch {
	case bpe == 0:
		return KindSingleValued
	case bpe <= 8:
		return KindIndirect
	default:
		return KindDirect
	}
}

func TestEncodeDecodeIndirectRoundTrip(t *testing.T) {
	ids := make([]int32, 4096)
	for i := range ids {
		ids[i] = int32(i % 7)
	}
	c := NewIndirect(ids, 4)
	dst := mcio.NewSink()
	c.Encode(dst)

	got, err := Decode(mcio.NewSource(dst.Bytes()), 4096, classifyBlocks)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := range ids {
		v, err := got.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if v != ids[i] {
			t.Fatalf("Get(%d) = %d, want %d", i, v, ids[i])
		}
	}
}
