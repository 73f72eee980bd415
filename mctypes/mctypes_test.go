package mctypes

import (
	"testing"

	"github.com/google/uuid"

	"mcproto/mcio"
)

func TestMcStringRoundTrip(t *testing.T) {
	dst := mcio.NewSink()
	WriteMcString("localhost", dst)
	got, err := ReadMcString(mcio.NewSource(dst.Bytes()))
	if err != nil {
		t.Fatalf("ReadMcString: %v", err)
	}
	if got != "localhost" {
		t.Fatalf("got %q", got)
	}
}

func TestMcStringInvalidUTF8(t *testing.T) {
	dst := mcio.NewSink()
	dst.WriteByte(2) // VarInt length = 2
	dst.Write([]byte{0xff, 0xfe})
	if _, err := ReadMcString(mcio.NewSource(dst.Bytes())); err != ErrInvalidUTF8 {
		t.Fatalf("err = %v, want ErrInvalidUTF8", err)
	}
}

func TestBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		dst := mcio.NewSink()
		WriteBool(v, dst)
		got, err := ReadBool(mcio.NewSource(dst.Bytes()))
		if err != nil {
			t.Fatalf("ReadBool: %v", err)
		}
		if got != v {
			t.Fatalf("got %v, want %v", got, v)
		}
	}
}

func TestBoolInvalid(t *testing.T) {
	if _, err := ReadBool(mcio.NewSource([]byte{2})); err != ErrInvalidBool {
		t.Fatalf("err = %v, want ErrInvalidBool", err)
	}
}

func TestUUIDRoundTrip(t *testing.T) {
	id := uuid.New()
	dst := mcio.NewSink()
	WriteUUID(id, dst)
	got, err := ReadUUID(mcio.NewSource(dst.Bytes()))
	if err != nil {
		t.Fatalf("ReadUUID: %v", err)
	}
	if got != id {
		t.Fatalf("got %v, want %v", got, id)
	}
}

func TestPrefixedArrayRoundTrip(t *testing.T) {
	items := []int32{1, 2, 3, 4}
	dst := mcio.NewSink()
	WritePrefixedArray(items, dst, WriteInt32)
	got, err := ReadPrefixedArray(mcio.NewSource(dst.Bytes()), ReadInt32)
	if err != nil {
		t.Fatalf("ReadPrefixedArray: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("got %v, want %v", got, items)
	}
	for i := range items {
		if got[i] != items[i] {
			t.Fatalf("got %v, want %v", got, items)
		}
	}
}

func TestPrefixedOptionalRoundTrip(t *testing.T) {
	dst := mcio.NewSink()
	var present *int32
	v := int32(42)
	present = &v
	WritePrefixedOptional(present, dst, WriteInt32)
	got, err := ReadPrefixedOptional(mcio.NewSource(dst.Bytes()), ReadInt32)
	if err != nil {
		t.Fatalf("ReadPrefixedOptional: %v", err)
	}
	if got == nil || *got != 42 {
		t.Fatalf("got %v, want 42", got)
	}

	dst2 := mcio.NewSink()
	WritePrefixedOptional[int32](nil, dst2, WriteInt32)
	got2, err := ReadPrefixedOptional(mcio.NewSource(dst2.Bytes()), ReadInt32)
	if err != nil {
		t.Fatalf("ReadPrefixedOptional: %v", err)
	}
	if got2 != nil {
		t.Fatalf("got %v, want nil", got2)
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	dst := mcio.NewSink()
	WriteInt64(-123456789, dst)
	WriteFloat64(3.14159, dst)
	WriteUint16(65000, dst)
	src := mcio.NewSource(dst.Bytes())
	i, err := ReadInt64(src)
	if err != nil || i != -123456789 {
		t.Fatalf("ReadInt64 = %d, %v", i, err)
	}
	f, err := ReadFloat64(src)
	if err != nil || f != 3.14159 {
		t.Fatalf("ReadFloat64 = %v, %v", f, err)
	}
	u, err := ReadUint16(src)
	if err != nil || u != 65000 {
		t.Fatalf("ReadUint16 = %d, %v", u, err)
	}
}
