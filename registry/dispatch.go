package registry

import (
	"fmt"
	"reflect"

	"mcproto/mcio"
	"mcproto/packetid"
	"mcproto/packets"
	"mcproto/varint"
)

type decodeFunc func(*mcio.Source) (packets.Packet, error)

var decodeTable = make(map[packetid.Key]decodeFunc)
var encodeTable = make(map[reflect.Type]packetid.Key)

// register binds a packet body constructor to a dispatch key. Called only
// from this package's init(); a duplicate key is a programmer error and
// panics immediately rather than silently shadowing the earlier entry.
func register(key packetid.Key, newBody func() packets.Packet) {
	if _, exists := decodeTable[key]; exists {
		panic(fmt.Sprintf("registry: duplicate packet registration for %+v", key))
	}
	decodeTable[key] = func(src *mcio.Source) (packets.Packet, error) {
		p := newBody()
		if err := p.Decode(src); err != nil {
			return nil, err
		}
		return p, nil
	}
	encodeTable[reflect.TypeOf(newBody())] = key
}

func init() {
	register(packetid.Key{Phase: packetid.Handshaking, Direction: packetid.ServerBound, ID: 0x00},
		func() packets.Packet { return &packets.Handshake{} })

	register(packetid.Key{Phase: packetid.Status, Direction: packetid.ServerBound, ID: 0x00},
		func() packets.Packet { return &packets.StatusRequest{} })
	register(packetid.Key{Phase: packetid.Status, Direction: packetid.ServerBound, ID: 0x01},
		func() packets.Packet { return &packets.PingRequest{} })
	register(packetid.Key{Phase: packetid.Status, Direction: packetid.ClientBound, ID: 0x00},
		func() packets.Packet { return &packets.StatusResponsePacket{} })
	register(packetid.Key{Phase: packetid.Status, Direction: packetid.ClientBound, ID: 0x01},
		func() packets.Packet { return &packets.PingResponsePacket{} })

	register(packetid.Key{Phase: packetid.Login, Direction: packetid.ServerBound, ID: 0x00},
		func() packets.Packet { return &packets.LoginStart{} })
	register(packetid.Key{Phase: packetid.Login, Direction: packetid.ServerBound, ID: 0x01},
		func() packets.Packet { return &packets.EncryptionResponse{} })
	register(packetid.Key{Phase: packetid.Login, Direction: packetid.ServerBound, ID: 0x02},
		func() packets.Packet { return &packets.LoginPluginResponse{} })
	register(packetid.Key{Phase: packetid.Login, Direction: packetid.ServerBound, ID: 0x03},
		func() packets.Packet { return &packets.LoginAcknowledged{} })
	register(packetid.Key{Phase: packetid.Login, Direction: packetid.ClientBound, ID: 0x00},
		func() packets.Packet { return &packets.LoginDisconnect{} })
	register(packetid.Key{Phase: packetid.Login, Direction: packetid.ClientBound, ID: 0x01},
		func() packets.Packet { return &packets.EncryptionRequest{} })
	register(packetid.Key{Phase: packetid.Login, Direction: packetid.ClientBound, ID: 0x02},
		func() packets.Packet { return &packets.LoginSuccess{} })
	register(packetid.Key{Phase: packetid.Login, Direction: packetid.ClientBound, ID: 0x03},
		func() packets.Packet { return &packets.SetCompression{} })
	register(packetid.Key{Phase: packetid.Login, Direction: packetid.ClientBound, ID: 0x04},
		func() packets.Packet { return &packets.LoginPluginRequest{} })

	register(packetid.Key{Phase: packetid.Configuration, Direction: packetid.ServerBound, ID: 0x00},
		func() packets.Packet { return &packets.ClientInformation{} })
	register(packetid.Key{Phase: packetid.Configuration, Direction: packetid.ServerBound, ID: 0x02},
		func() packets.Packet { return &packets.ServerboundPluginMessage{} })
	register(packetid.Key{Phase: packetid.Configuration, Direction: packetid.ServerBound, ID: 0x03},
		func() packets.Packet { return &packets.AcknowledgeFinishConfiguration{} })
	register(packetid.Key{Phase: packetid.Configuration, Direction: packetid.ServerBound, ID: 0x07},
		func() packets.Packet { return &packets.ServerboundKnownPacks{} })
	register(packetid.Key{Phase: packetid.Configuration, Direction: packetid.ClientBound, ID: 0x01},
		func() packets.Packet { return &packets.ClientboundPluginMessage{} })
	register(packetid.Key{Phase: packetid.Configuration, Direction: packetid.ClientBound, ID: 0x03},
		func() packets.Packet { return &packets.FinishConfiguration{} })
	register(packetid.Key{Phase: packetid.Configuration, Direction: packetid.ClientBound, ID: 0x07},
		func() packets.Packet { return &packets.RegistryData{} })
	register(packetid.Key{Phase: packetid.Configuration, Direction: packetid.ClientBound, ID: 0x0E},
		func() packets.Packet { return &packets.ClientboundKnownPacks{} })

	register(packetid.Key{Phase: packetid.Play, Direction: packetid.ServerBound, ID: 0x00},
		func() packets.Packet { return &packets.KeepAliveServerbound{} })
	register(packetid.Key{Phase: packetid.Play, Direction: packetid.ServerBound, ID: 0x01},
		func() packets.Packet { return &packets.PlayerPosition{} })
	register(packetid.Key{Phase: packetid.Play, Direction: packetid.ServerBound, ID: 0x02},
		func() packets.Packet { return &packets.PlayerAction{} })
	register(packetid.Key{Phase: packetid.Play, Direction: packetid.ClientBound, ID: 0x00},
		func() packets.Packet { return &packets.KeepAliveClientbound{} })
	register(packetid.Key{Phase: packetid.Play, Direction: packetid.ClientBound, ID: 0x01},
		func() packets.Packet { return &packets.Disconnect{} })
	register(packetid.Key{Phase: packetid.Play, Direction: packetid.ClientBound, ID: 0x02},
		func() packets.Packet { return &packets.SetDefaultSpawnPosition{} })
	register(packetid.Key{Phase: packetid.Play, Direction: packetid.ClientBound, ID: 0x03},
		func() packets.Packet { return &packets.UpdateLight{} })
	register(packetid.Key{Phase: packetid.Play, Direction: packetid.ClientBound, ID: 0x04},
		func() packets.Packet { return &packets.ChunkData{} })
}

// ErrUniqueFailure is returned by Decode when no packet body is registered
// for the given dispatch key.
type ErrUniqueFailure struct {
	Key packetid.Key
}

func (e ErrUniqueFailure) Error() string {
	return fmt.Sprintf("registry: no packet registered for %+v", e.Key)
}

// KeyOf returns the registered dispatch key for a packet body's concrete
// type.
func KeyOf(p packets.Packet) (packetid.Key, error) {
	key, ok := encodeTable[reflect.TypeOf(p)]
	if !ok {
		return packetid.Key{}, fmt.Errorf("registry: packet type %T is not registered", p)
	}
	return key, nil
}

// Encode frames p using its registered id, writing
// VarInt(len(id)+len(body)) || id || body to dst.
func Encode(p packets.Packet, dst *mcio.Sink) error {
	key, err := KeyOf(p)
	if err != nil {
		return err
	}
	body := mcio.NewSink()
	if err := p.Encode(body); err != nil {
		return err
	}
	idSink := mcio.NewSink()
	varint.EncodeVarInt(int32(key.ID), idSink)

	varint.EncodeVarInt(int32(idSink.Len()+body.Len()), dst)
	dst.Merge(idSink)
	dst.Merge(body)
	return nil
}

// Decode reads one frame from src: a length VarInt, a sub-cursor scoped to
// that length, an id VarInt, then dispatches to the registered body.
func Decode(phase packetid.Phase, direction packetid.Direction, src *mcio.Source) (packets.Packet, error) {
	length, err := varint.DecodeVarInt(src)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, mcio.ErrOutOfBounds
	}
	body, err := src.Subcursor(int(length))
	if err != nil {
		return nil, err
	}
	return DecodeBody(phase, direction, body)
}

// DecodeBody dispatches against a source already scoped to exactly one
// frame's id+body bytes (the length prefix already consumed by the
// caller). conn.Conn.Receive uses this directly since it reads the length
// prefix itself to size its read buffer.
func DecodeBody(phase packetid.Phase, direction packetid.Direction, body *mcio.Source) (packets.Packet, error) {
	id, err := varint.DecodeVarInt(body)
	if err != nil {
		return nil, err
	}
	key := packetid.Key{Phase: phase, Direction: direction, ID: packetid.ID(id)}
	dec, ok := decodeTable[key]
	if !ok {
		return nil, ErrUniqueFailure{Key: key}
	}
	return dec(body)
}
