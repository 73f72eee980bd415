// Package packets defines the closed set of packet body types and their
// wire encodings. Every body implements Packet; the registry package binds
// each to a (phase, direction, id) key.
package packets

import "mcproto/mcio"

// Packet is implemented by every packet body struct.
type Packet interface {
	Encode(dst *mcio.Sink) error
	Decode(src *mcio.Source) error
}
