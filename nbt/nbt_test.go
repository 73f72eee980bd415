package nbt

import (
	"testing"

	"mcproto/mcio"
)

func TestNamedRoundTrip(t *testing.T) {
	c := NewTagCompound()
	c.Set("name", &TagString{Value: "Bananrama"})
	c.Set("count", &TagInt{Value: 42})

	dst := mcio.NewSink()
	EncodeNamed("hello world", c, dst)

	name, got, err := DecodeNamed(mcio.NewSource(dst.Bytes()))
	if err != nil {
		t.Fatalf("DecodeNamed: %v", err)
	}
	if name != "hello world" {
		t.Fatalf("name = %q", name)
	}
	str, ok := got.Get("name")
	if !ok {
		t.Fatalf("missing name field")
	}
	if str.(*TagString).Value != "Bananrama" {
		t.Fatalf("got %v", str)
	}
}

func TestNetworkCompoundRoundTrip(t *testing.T) {
	c := NewTagCompound()
	c.Set("x", &TagDouble{Value: 1.5})
	inner := NewTagCompound()
	inner.Set("y", &TagLong{Value: -7})
	c.Set("nested", inner)

	dst := mcio.NewSink()
	EncodeNetwork(c, dst)

	got, err := DecodeNetwork(mcio.NewSource(dst.Bytes()))
	if err != nil {
		t.Fatalf("DecodeNetwork: %v", err)
	}
	x, ok := got.Get("x")
	if !ok || x.(*TagDouble).Value != 1.5 {
		t.Fatalf("x = %v", x)
	}
	nested, ok := got.Get("nested")
	if !ok {
		t.Fatalf("missing nested")
	}
	y, ok := nested.(*TagCompound).Get("y")
	if !ok || y.(*TagLong).Value != -7 {
		t.Fatalf("y = %v", y)
	}
}

func TestNetworkFramingLeadsWithCompoundTypeByte(t *testing.T) {
	c := NewTagCompound()
	c.Set("i8", &TagByte{Value: 123})
	c.Set("i16", &TagShort{Value: 1234})
	c.Set("str", &TagString{Value: "hello"})

	dst := mcio.NewSink()
	EncodeNetwork(c, dst)
	raw := dst.Bytes()
	if raw[0] != TagCompoundID {
		t.Fatalf("first byte = %#x, want %#x", raw[0], TagCompoundID)
	}
	// The second byte is already the first entry's type, not a root name.
	if raw[1] != TagByteID {
		t.Fatalf("second byte = %#x, want first entry type %#x", raw[1], TagByteID)
	}

	got, err := DecodeNetwork(mcio.NewSource(raw))
	if err != nil {
		t.Fatalf("DecodeNetwork: %v", err)
	}
	i8, _ := got.Get("i8")
	i16, _ := got.Get("i16")
	str, _ := got.Get("str")
	if i8.(*TagByte).Value != 123 || i16.(*TagShort).Value != 1234 || str.(*TagString).Value != "hello" {
		t.Fatalf("round trip mismatch: %v %v %v", i8, i16, str)
	}
}

func TestListHomogeneity(t *testing.T) {
	l := &TagList{}
	if err := l.Add(&TagInt{Value: 1}); err != nil {
		t.Fatalf("Add int: %v", err)
	}
	if err := l.Add(&TagString{Value: "oops"}); err != ErrMismatchedTypes {
		t.Fatalf("err = %v, want ErrMismatchedTypes", err)
	}
}

func TestListRoundTrip(t *testing.T) {
	l := &TagList{}
	l.Add(&TagInt{Value: 1})
	l.Add(&TagInt{Value: 2})
	l.Add(&TagInt{Value: 3})
	c := NewTagCompound()
	c.Set("nums", l)

	dst := mcio.NewSink()
	EncodeNetwork(c, dst)
	got, err := DecodeNetwork(mcio.NewSource(dst.Bytes()))
	if err != nil {
		t.Fatalf("DecodeNetwork: %v", err)
	}
	numsTag, _ := got.Get("nums")
	nums := numsTag.(*TagList)
	if len(nums.Items) != 3 {
		t.Fatalf("len = %d", len(nums.Items))
	}
	if nums.Items[1].(*TagInt).Value != 2 {
		t.Fatalf("got %v", nums.Items[1])
	}
}

func TestEmptyListEndTagAllowed(t *testing.T) {
	l := &TagList{}
	c := NewTagCompound()
	c.Set("empty", l)
	dst := mcio.NewSink()
	EncodeNetwork(c, dst)
	got, err := DecodeNetwork(mcio.NewSource(dst.Bytes()))
	if err != nil {
		t.Fatalf("DecodeNetwork: %v", err)
	}
	emptyTag, _ := got.Get("empty")
	if len(emptyTag.(*TagList).Items) != 0 {
		t.Fatalf("expected empty list")
	}
}

type bridgeSample struct {
	Name   string
	Level  int32
	Health float32
	Parent *bridgeSample
}

func TestStructBridgeRoundTrip(t *testing.T) {
	v := bridgeSample{Name: "steve", Level: 5, Health: 20}
	c, err := Marshal(&v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out bridgeSample
	if err := Unmarshal(c, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Name != "steve" || out.Level != 5 || out.Health != 20 {
		t.Fatalf("got %+v", out)
	}
	if out.Parent != nil {
		t.Fatalf("expected nil Parent, got %+v", out.Parent)
	}
}

func TestStructBridgeMissingField(t *testing.T) {
	c := NewTagCompound()
	c.Set("Name", &TagString{Value: "x"})
	var out bridgeSample
	err := Unmarshal(c, &out)
	if _, ok := err.(ErrMissingField); !ok {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
}
