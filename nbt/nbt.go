// Package nbt implements the Named Binary Tag tree used by registry data,
// entity metadata, and other structured payloads embedded in packets.
//
// Two framings exist and are never unified behind a shared flag: named
// framing (a type byte, a u16-prefixed root name, then the payload) and
// network framing (a type byte followed directly by the payload, the root
// name omitted — the form compounds take inside packets since the
// configuration/play handshake rework). Call the entry point that matches
// the call site; do not infer which one to use from the data.
package nbt

import (
	"encoding/binary"
	"errors"
	"math"

	"mcproto/mcio"
)

func float32bits(f float32) uint32     { return math.Float32bits(f) }
func float32frombits(b uint32) float32 { return math.Float32frombits(b) }
func float64bits(f float64) uint64     { return math.Float64bits(f) }
func float64frombits(b uint64) float64 { return math.Float64frombits(b) }

// Tag type IDs.
const (
	TagEndID       byte = 0
	TagByteID      byte = 1
	TagShortID     byte = 2
	TagIntID       byte = 3
	TagLongID      byte = 4
	TagFloatID     byte = 5
	TagDoubleID    byte = 6
	TagByteArrayID byte = 7
	TagStringID    byte = 8
	TagListID      byte = 9
	TagCompoundID  byte = 10
	TagIntArrayID  byte = 11
	TagLongArrayID byte = 12
)

// ErrMismatchedTypes is returned when a TagList.Add receives a tag whose
// type does not match the list's established element type.
var ErrMismatchedTypes = errors.New("nbt: mismatched types in list")

// ErrEndTagNotAllowedInList is returned when a decoded list declares
// TagEndID as its element type but a nonzero length.
var ErrEndTagNotAllowedInList = errors.New("nbt: end tag not allowed in nonempty list")

// ErrMissingField is returned by the struct bridge when a required field is
// absent from a compound.
type ErrMissingField struct{ Field string }

func (e ErrMissingField) Error() string { return "nbt: missing field " + e.Field }

// ErrUnknownTagID is returned when decoding encounters an undefined tag id.
var ErrUnknownTagID = errors.New("nbt: unknown tag id")

// Tag is implemented by every concrete tag payload type.
type Tag interface {
	TypeID() byte
	encodePayload(dst *mcio.Sink)
	decodePayload(src *mcio.Source) error
}

type TagEnd struct{}

func (TagEnd) TypeID() byte                      { return TagEndID }
func (TagEnd) encodePayload(*mcio.Sink)          {}
func (*TagEnd) decodePayload(*mcio.Source) error { return nil }

type TagByte struct{ Value int8 }

func (*TagByte) TypeID() byte { return TagByteID }
func (t *TagByte) encodePayload(dst *mcio.Sink) {
	dst.WriteByte(byte(t.Value))
}
func (t *TagByte) decodePayload(src *mcio.Source) error {
	b, err := src.Take(1)
	if err != nil {
		return err
	}
	t.Value = int8(b[0])
	return nil
}

type TagShort struct{ Value int16 }

func (*TagShort) TypeID() byte { return TagShortID }
func (t *TagShort) encodePayload(dst *mcio.Sink) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(t.Value))
	dst.Write(buf[:])
}
func (t *TagShort) decodePayload(src *mcio.Source) error {
	b, err := src.Take(2)
	if err != nil {
		return err
	}
	t.Value = int16(binary.BigEndian.Uint16(b))
	return nil
}

type TagInt struct{ Value int32 }

func (*TagInt) TypeID() byte { return TagIntID }
func (t *TagInt) encodePayload(dst *mcio.Sink) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(t.Value))
	dst.Write(buf[:])
}
func (t *TagInt) decodePayload(src *mcio.Source) error {
	b, err := src.Take(4)
	if err != nil {
		return err
	}
	t.Value = int32(binary.BigEndian.Uint32(b))
	return nil
}

type TagLong struct{ Value int64 }

func (*TagLong) TypeID() byte { return TagLongID }
func (t *TagLong) encodePayload(dst *mcio.Sink) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(t.Value))
	dst.Write(buf[:])
}
func (t *TagLong) decodePayload(src *mcio.Source) error {
	b, err := src.Take(8)
	if err != nil {
		return err
	}
	t.Value = int64(binary.BigEndian.Uint64(b))
	return nil
}

type TagFloat struct{ Value float32 }

func (*TagFloat) TypeID() byte { return TagFloatID }
func (t *TagFloat) encodePayload(dst *mcio.Sink) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], float32bits(t.Value))
	dst.Write(buf[:])
}
func (t *TagFloat) decodePayload(src *mcio.Source) error {
	b, err := src.Take(4)
	if err != nil {
		return err
	}
	t.Value = float32frombits(binary.BigEndian.Uint32(b))
	return nil
}

type TagDouble struct{ Value float64 }

func (*TagDouble) TypeID() byte { return TagDoubleID }
func (t *TagDouble) encodePayload(dst *mcio.Sink) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], float64bits(t.Value))
	dst.Write(buf[:])
}
func (t *TagDouble) decodePayload(src *mcio.Source) error {
	b, err := src.Take(8)
	if err != nil {
		return err
	}
	t.Value = float64frombits(binary.BigEndian.Uint64(b))
	return nil
}

type TagByteArray struct{ Value []int8 }

func (*TagByteArray) TypeID() byte { return TagByteArrayID }
func (t *TagByteArray) encodePayload(dst *mcio.Sink) {
	var lbuf [4]byte
	binary.BigEndian.PutUint32(lbuf[:], uint32(len(t.Value)))
	dst.Write(lbuf[:])
	for _, b := range t.Value {
		dst.WriteByte(byte(b))
	}
}
func (t *TagByteArray) decodePayload(src *mcio.Source) error {
	lb, err := src.Take(4)
	if err != nil {
		return err
	}
	n := int32(binary.BigEndian.Uint32(lb))
	if n < 0 {
		return mcio.ErrOutOfBounds
	}
	raw, err := src.Take(int(n))
	if err != nil {
		return err
	}
	out := make([]int8, n)
	for i, b := range raw {
		out[i] = int8(b)
	}
	t.Value = out
	return nil
}

// TagString uses its own u16-big-endian length prefix, distinct from
// mctypes.McString's VarInt prefix — the two must never be unified.
type TagString struct{ Value string }

func (*TagString) TypeID() byte { return TagStringID }
func (t *TagString) encodePayload(dst *mcio.Sink) {
	var lbuf [2]byte
	binary.BigEndian.PutUint16(lbuf[:], uint16(len(t.Value)))
	dst.Write(lbuf[:])
	dst.Write([]byte(t.Value))
}
func (t *TagString) decodePayload(src *mcio.Source) error {
	lb, err := src.Take(2)
	if err != nil {
		return err
	}
	n := binary.BigEndian.Uint16(lb)
	raw, err := src.Take(int(n))
	if err != nil {
		return err
	}
	t.Value = string(raw)
	return nil
}

type TagIntArray struct{ Value []int32 }

func (*TagIntArray) TypeID() byte { return TagIntArrayID }
func (t *TagIntArray) encodePayload(dst *mcio.Sink) {
	var lbuf [4]byte
	binary.BigEndian.PutUint32(lbuf[:], uint32(len(t.Value)))
	dst.Write(lbuf[:])
	for _, v := range t.Value {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(v))
		dst.Write(buf[:])
	}
}
func (t *TagIntArray) decodePayload(src *mcio.Source) error {
	lb, err := src.Take(4)
	if err != nil {
		return err
	}
	n := int32(binary.BigEndian.Uint32(lb))
	if n < 0 {
		return mcio.ErrOutOfBounds
	}
	out := make([]int32, n)
	for i := range out {
		b, err := src.Take(4)
		if err != nil {
			return err
		}
		out[i] = int32(binary.BigEndian.Uint32(b))
	}
	t.Value = out
	return nil
}

type TagLongArray struct{ Value []int64 }

func (*TagLongArray) TypeID() byte { return TagLongArrayID }
func (t *TagLongArray) encodePayload(dst *mcio.Sink) {
	var lbuf [4]byte
	binary.BigEndian.PutUint32(lbuf[:], uint32(len(t.Value)))
	dst.Write(lbuf[:])
	for _, v := range t.Value {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		dst.Write(buf[:])
	}
}
func (t *TagLongArray) decodePayload(src *mcio.Source) error {
	lb, err := src.Take(4)
	if err != nil {
		return err
	}
	n := int32(binary.BigEndian.Uint32(lb))
	if n < 0 {
		return mcio.ErrOutOfBounds
	}
	out := make([]int64, n)
	for i := range out {
		b, err := src.Take(8)
		if err != nil {
			return err
		}
		out[i] = int64(binary.BigEndian.Uint64(b))
	}
	t.Value = out
	return nil
}

// TagList is a homogeneous sequence of tags. ElementTypeID is TagEndID
// (unset) until the first element is added or decoded.
type TagList struct {
	ElementTypeID byte
	Items         []Tag
}

func (*TagList) TypeID() byte { return TagListID }

// Add appends t, fixing the list's element type on the first call and
// rejecting any later tag of a different type.
func (l *TagList) Add(t Tag) error {
	if l.ElementTypeID == TagEndID && len(l.Items) == 0 {
		l.ElementTypeID = t.TypeID()
	} else if t.TypeID() != l.ElementTypeID {
		return ErrMismatchedTypes
	}
	l.Items = append(l.Items, t)
	return nil
}

func (l *TagList) encodePayload(dst *mcio.Sink) {
	dst.WriteByte(l.ElementTypeID)
	var lbuf [4]byte
	binary.BigEndian.PutUint32(lbuf[:], uint32(len(l.Items)))
	dst.Write(lbuf[:])
	for _, item := range l.Items {
		item.encodePayload(dst)
	}
}

func (l *TagList) decodePayload(src *mcio.Source) error {
	elemType, err := src.Take(1)
	if err != nil {
		return err
	}
	l.ElementTypeID = elemType[0]
	lb, err := src.Take(4)
	if err != nil {
		return err
	}
	n := int32(binary.BigEndian.Uint32(lb))
	if n < 0 {
		return mcio.ErrOutOfBounds
	}
	if l.ElementTypeID == TagEndID && n > 0 {
		return ErrEndTagNotAllowedInList
	}
	items := make([]Tag, n)
	for i := range items {
		item, err := newEmptyTag(l.ElementTypeID)
		if err != nil {
			return err
		}
		if err := item.decodePayload(src); err != nil {
			return err
		}
		items[i] = item
	}
	l.Items = items
	return nil
}

// TagCompound is an ordered name-to-tag map. keys records each name the
// first time Set stores it (decoding goes through Set too), preserving
// insertion/decode order for deterministic re-encoding.
type TagCompound struct {
	keys   []string
	values map[string]Tag
}

func NewTagCompound() *TagCompound {
	return &TagCompound{values: make(map[string]Tag)}
}

func (*TagCompound) TypeID() byte { return TagCompoundID }

// Set inserts or replaces the tag named name.
func (c *TagCompound) Set(name string, t Tag) {
	if c.values == nil {
		c.values = make(map[string]Tag)
	}
	if _, exists := c.values[name]; !exists {
		c.keys = append(c.keys, name)
	}
	c.values[name] = t
}

// Get returns the tag named name, if present.
func (c *TagCompound) Get(name string) (Tag, bool) {
	t, ok := c.values[name]
	return t, ok
}

// Keys returns field names in insertion/decode order.
func (c *TagCompound) Keys() []string {
	return c.keys
}

func (c *TagCompound) encodePayload(dst *mcio.Sink) {
	for _, name := range c.keys {
		tag := c.values[name]
		dst.WriteByte(tag.TypeID())
		writeModifiedUTF8(name, dst)
		tag.encodePayload(dst)
	}
	dst.WriteByte(TagEndID)
}

func (c *TagCompound) decodePayload(src *mcio.Source) error {
	c.values = make(map[string]Tag)
	c.keys = nil
	for {
		idb, err := src.Take(1)
		if err != nil {
			return err
		}
		id := idb[0]
		if id == TagEndID {
			return nil
		}
		name, err := readModifiedUTF8(src)
		if err != nil {
			return err
		}
		tag, err := newEmptyTag(id)
		if err != nil {
			return err
		}
		if err := tag.decodePayload(src); err != nil {
			return err
		}
		c.Set(name, tag)
	}
}

func writeModifiedUTF8(s string, dst *mcio.Sink) {
	var lbuf [2]byte
	binary.BigEndian.PutUint16(lbuf[:], uint16(len(s)))
	dst.Write(lbuf[:])
	dst.Write([]byte(s))
}

func readModifiedUTF8(src *mcio.Source) (string, error) {
	lb, err := src.Take(2)
	if err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(lb)
	raw, err := src.Take(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func newEmptyTag(id byte) (Tag, error) {
	switch id {
	case TagEndID:
		return &TagEnd{}, nil
	case TagByteID:
		return &TagByte{}, nil
	case TagShortID:
		return &TagShort{}, nil
	case TagIntID:
		return &TagInt{}, nil
	case TagLongID:
		return &TagLong{}, nil
	case TagFloatID:
		return &TagFloat{}, nil
	case TagDoubleID:
		return &TagDouble{}, nil
	case TagByteArrayID:
		return &TagByteArray{}, nil
	case TagStringID:
		return &TagString{}, nil
	case TagListID:
		return &TagList{}, nil
	case TagCompoundID:
		return NewTagCompound(), nil
	case TagIntArrayID:
		return &TagIntArray{}, nil
	case TagLongArrayID:
		return &TagLongArray{}, nil
	default:
		return nil, ErrUnknownTagID
	}
}

// EncodeNamed writes the named framing: type byte, u16-prefixed name, then
// the compound payload.
func EncodeNamed(name string, c *TagCompound, dst *mcio.Sink) {
	dst.WriteByte(TagCompoundID)
	writeModifiedUTF8(name, dst)
	c.encodePayload(dst)
}

// DecodeNamed reads the named framing and returns the root name and
// compound.
func DecodeNamed(src *mcio.Source) (string, *TagCompound, error) {
	idb, err := src.Take(1)
	if err != nil {
		return "", nil, err
	}
	if idb[0] != TagCompoundID {
		return "", nil, ErrUnknownTagID
	}
	name, err := readModifiedUTF8(src)
	if err != nil {
		return "", nil, err
	}
	c := NewTagCompound()
	if err := c.decodePayload(src); err != nil {
		return "", nil, err
	}
	return name, c, nil
}

// EncodeNetwork writes the network framing: the compound type byte, then
// the payload, with the root name omitted.
func EncodeNetwork(c *TagCompound, dst *mcio.Sink) {
	dst.WriteByte(TagCompoundID)
	c.encodePayload(dst)
}

// DecodeNetwork reads the network framing.
func DecodeNetwork(src *mcio.Source) (*TagCompound, error) {
	idb, err := src.Take(1)
	if err != nil {
		return nil, err
	}
	if idb[0] != TagCompoundID {
		return nil, ErrUnknownTagID
	}
	c := NewTagCompound()
	if err := c.decodePayload(src); err != nil {
		return nil, err
	}
	return c, nil
}
