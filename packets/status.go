package packets

import (
	"mcproto/mcio"
	"mcproto/mctypes"
)

// StatusRequest is the serverbound status-phase packet, id 0x00, with an
// empty body.
type StatusRequest struct{}

func (p *StatusRequest) Encode(dst *mcio.Sink) error { return nil }
func (p *StatusRequest) Decode(src *mcio.Source) error {
	if !src.AtEnd() {
		return ErrLeftoverInput
	}
	return nil
}

// PingRequest is the serverbound status-phase packet, id 0x01.
type PingRequest struct {
	Payload int64
}

func (p *PingRequest) Encode(dst *mcio.Sink) error {
	mctypes.WriteInt64(p.Payload, dst)
	return nil
}

func (p *PingRequest) Decode(src *mcio.Source) error {
	v, err := mctypes.ReadInt64(src)
	if err != nil {
		return err
	}
	p.Payload = v
	return nil
}

// StatusResponsePacket is the clientbound status-phase packet, id 0x00: a
// single McString carrying the JSON status document. The JSON shape itself
// lives in package statuspb.
type StatusResponsePacket struct {
	JSON string
}

func (p *StatusResponsePacket) Encode(dst *mcio.Sink) error {
	mctypes.WriteMcString(p.JSON, dst)
	return nil
}

func (p *StatusResponsePacket) Decode(src *mcio.Source) error {
	s, err := mctypes.ReadMcString(src)
	if err != nil {
		return err
	}
	p.JSON = s
	return nil
}

// PingResponsePacket is the clientbound status-phase packet, id 0x01. Its
// payload is the request's payload reinterpreted as an unsigned 64-bit
// value — a bit-pattern cast, not a numeric conversion, so every request
// payload (including negative ones) round-trips exactly.
type PingResponsePacket struct {
	Payload uint64
}

func (p *PingResponsePacket) Encode(dst *mcio.Sink) error {
	mctypes.WriteUint64(p.Payload, dst)
	return nil
}

func (p *PingResponsePacket) Decode(src *mcio.Source) error {
	v, err := mctypes.ReadUint64(src)
	if err != nil {
		return err
	}
	p.Payload = v
	return nil
}
