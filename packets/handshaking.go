package packets

import (
	"mcproto/mcio"
	"mcproto/mctypes"
	"mcproto/varint"
)

// Handshake is the single serverbound handshaking packet, id 0x00. It
// carries the client's advertised protocol version and declares whether the
// connection intends to move to Status or Login next.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	Port            uint16
	NextState       int32
}

func (p *Handshake) Encode(dst *mcio.Sink) error {
	varint.EncodeVarInt(p.ProtocolVersion, dst)
	mctypes.WriteMcString(p.ServerAddress, dst)
	mctypes.WriteUint16(p.Port, dst)
	varint.EncodeVarInt(p.NextState, dst)
	return nil
}

func (p *Handshake) Decode(src *mcio.Source) error {
	v, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.ProtocolVersion = v
	addr, err := mctypes.ReadMcString(src)
	if err != nil {
		return err
	}
	p.ServerAddress = addr
	port, err := mctypes.ReadUint16(src)
	if err != nil {
		return err
	}
	p.Port = port
	next, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.NextState = next
	return nil
}

// NextStateStatus and NextStateLogin are the only valid values of
// Handshake.NextState.
const (
	NextStateStatus = 1
	NextStateLogin  = 2
)
