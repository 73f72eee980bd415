// Package protover catalogs the Java Edition protocol version numbers this
// module recognizes, mapping each to its human-readable release name.
package protover

import "fmt"

// ProtocolVersion identifies a named protocol revision.
type ProtocolVersion int16

const (
	V1_8 ProtocolVersion = iota
	V1_9
	V1_10
	V1_11
	V1_12
	V1_13
	V1_14
	V1_15
	V1_16
	V1_17
	V1_18
	V1_19
	V1_20
	V1_21
)

type entry struct {
	number int16
	name   string
}

var table = map[ProtocolVersion]entry{
	V1_8:  {47, "1.8.9"},
	V1_9:  {110, "1.9.4"},
	V1_10: {210, "1.10.2"},
	V1_11: {316, "1.11.2"},
	V1_12: {340, "1.12.2"},
	V1_13: {404, "1.13.2"},
	V1_14: {498, "1.14.4"},
	V1_15: {578, "1.15.2"},
	V1_16: {754, "1.16.5"},
	V1_17: {756, "1.17.1"},
	V1_18: {758, "1.18.2"},
	V1_19: {762, "1.19.4"},
	V1_20: {766, "1.20.6"},
	V1_21: {772, "1.21.8"},
}

var byNumber = func() map[int16]ProtocolVersion {
	m := make(map[int16]ProtocolVersion, len(table))
	for v, e := range table {
		m[e.number] = v
	}
	return m
}()

// ErrUnknownProtocolVersion is returned by FromNumber for an unmapped wire
// protocol number.
type ErrUnknownProtocolVersion struct{ Number int16 }

func (e ErrUnknownProtocolVersion) Error() string {
	return fmt.Sprintf("protover: unknown protocol number %d", e.Number)
}

// Number returns the wire protocol number for v.
func (v ProtocolVersion) Number() int16 {
	return table[v].number
}

// FancyName returns the human-readable release name for v, e.g. "1.20.6".
func (v ProtocolVersion) FancyName() string {
	return table[v].name
}

// FromNumber resolves a wire protocol number to a ProtocolVersion.
func FromNumber(n int16) (ProtocolVersion, error) {
	v, ok := byNumber[n]
	if !ok {
		return 0, ErrUnknownProtocolVersion{Number: n}
	}
	return v, nil
}
