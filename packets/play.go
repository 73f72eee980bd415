package packets

import (
	"mcproto/chunkdata"
	"mcproto/mcio"
	"mcproto/mctypes"
	"mcproto/nbt"
	"mcproto/varint"
)

// KeepAliveClientbound is the clientbound play-phase keep-alive ping.
type KeepAliveClientbound struct {
	KeepAliveID int64
}

func (p *KeepAliveClientbound) Encode(dst *mcio.Sink) error {
	mctypes.WriteInt64(p.KeepAliveID, dst)
	return nil
}

func (p *KeepAliveClientbound) Decode(src *mcio.Source) error {
	v, err := mctypes.ReadInt64(src)
	if err != nil {
		return err
	}
	p.KeepAliveID = v
	return nil
}

// KeepAliveServerbound is the serverbound play-phase keep-alive echo.
type KeepAliveServerbound struct {
	KeepAliveID int64
}

func (p *KeepAliveServerbound) Encode(dst *mcio.Sink) error {
	mctypes.WriteInt64(p.KeepAliveID, dst)
	return nil
}

func (p *KeepAliveServerbound) Decode(src *mcio.Source) error {
	v, err := mctypes.ReadInt64(src)
	if err != nil {
		return err
	}
	p.KeepAliveID = v
	return nil
}

// PlayerPosition is the serverbound play-phase movement packet.
type PlayerPosition struct {
	X, Y, Z  float64
	OnGround bool
}

func (p *PlayerPosition) Encode(dst *mcio.Sink) error {
	mctypes.WriteFloat64(p.X, dst)
	mctypes.WriteFloat64(p.Y, dst)
	mctypes.WriteFloat64(p.Z, dst)
	mctypes.WriteBool(p.OnGround, dst)
	return nil
}

func (p *PlayerPosition) Decode(src *mcio.Source) error {
	x, err := mctypes.ReadFloat64(src)
	if err != nil {
		return err
	}
	p.X = x
	y, err := mctypes.ReadFloat64(src)
	if err != nil {
		return err
	}
	p.Y = y
	z, err := mctypes.ReadFloat64(src)
	if err != nil {
		return err
	}
	p.Z = z
	onGround, err := mctypes.ReadBool(src)
	if err != nil {
		return err
	}
	p.OnGround = onGround
	return nil
}

// SetDefaultSpawnPosition is the clientbound play-phase packet telling the
// client where the world spawn (and compass target) is.
type SetDefaultSpawnPosition struct {
	Location chunkdata.Position
	Angle    float32
}

func (p *SetDefaultSpawnPosition) Encode(dst *mcio.Sink) error {
	p.Location.Encode(dst)
	mctypes.WriteFloat32(p.Angle, dst)
	return nil
}

func (p *SetDefaultSpawnPosition) Decode(src *mcio.Source) error {
	loc, err := chunkdata.DecodePosition(src)
	if err != nil {
		return err
	}
	p.Location = loc
	angle, err := mctypes.ReadFloat32(src)
	if err != nil {
		return err
	}
	p.Angle = angle
	return nil
}

// PlayerAction is the serverbound play-phase digging/interaction packet:
// the action status, the targeted block, the face dug, and the client's
// action sequence number.
type PlayerAction struct {
	Status   int32
	Location chunkdata.Position
	Face     int8
	Sequence int32
}

func (p *PlayerAction) Encode(dst *mcio.Sink) error {
	varint.EncodeVarInt(p.Status, dst)
	p.Location.Encode(dst)
	dst.WriteByte(byte(p.Face))
	varint.EncodeVarInt(p.Sequence, dst)
	return nil
}

func (p *PlayerAction) Decode(src *mcio.Source) error {
	status, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.Status = status
	loc, err := chunkdata.DecodePosition(src)
	if err != nil {
		return err
	}
	p.Location = loc
	face, err := src.Take(1)
	if err != nil {
		return err
	}
	p.Face = int8(face[0])
	seq, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.Sequence = seq
	return nil
}

// UpdateLight is the clientbound play-phase light update for one chunk
// column: four bit-set masks naming which sections each light array
// covers, then the sky and block light arrays themselves (2048 bytes of
// packed nibbles per lit section).
type UpdateLight struct {
	ChunkX              int32
	ChunkZ              int32
	SkyLightMask        *chunkdata.BitSet
	BlockLightMask      *chunkdata.BitSet
	EmptySkyLightMask   *chunkdata.BitSet
	EmptyBlockLightMask *chunkdata.BitSet
	SkyLight            [][]byte
	BlockLight          [][]byte
}

func writeLightSection(section []byte, dst *mcio.Sink) {
	varint.EncodeVarInt(int32(len(section)), dst)
	dst.Write(section)
}

func readLightSection(src *mcio.Source) ([]byte, error) {
	n, err := varint.DecodeVarInt(src)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, mcio.ErrOutOfBounds
	}
	return src.Take(int(n))
}

func (p *UpdateLight) Encode(dst *mcio.Sink) error {
	varint.EncodeVarInt(p.ChunkX, dst)
	varint.EncodeVarInt(p.ChunkZ, dst)
	p.SkyLightMask.Encode(dst)
	p.BlockLightMask.Encode(dst)
	p.EmptySkyLightMask.Encode(dst)
	p.EmptyBlockLightMask.Encode(dst)
	mctypes.WritePrefixedArray(p.SkyLight, dst, writeLightSection)
	mctypes.WritePrefixedArray(p.BlockLight, dst, writeLightSection)
	return nil
}

func (p *UpdateLight) Decode(src *mcio.Source) error {
	x, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.ChunkX = x
	z, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.ChunkZ = z
	if p.SkyLightMask, err = chunkdata.DecodeBitSet(src); err != nil {
		return err
	}
	if p.BlockLightMask, err = chunkdata.DecodeBitSet(src); err != nil {
		return err
	}
	if p.EmptySkyLightMask, err = chunkdata.DecodeBitSet(src); err != nil {
		return err
	}
	if p.EmptyBlockLightMask, err = chunkdata.DecodeBitSet(src); err != nil {
		return err
	}
	if p.SkyLight, err = mctypes.ReadPrefixedArray(src, readLightSection); err != nil {
		return err
	}
	if p.BlockLight, err = mctypes.ReadPrefixedArray(src, readLightSection); err != nil {
		return err
	}
	return nil
}

// ChunkData is the clientbound play-phase chunk column payload: the
// column coordinates, a network-framed heightmaps compound, and the
// concatenated chunk-section bytes. The section data is opaque at this
// layer; chunkdata.DecodeChunkSection parses it out given the column's
// section count, which the receiver knows from the dimension height.
type ChunkData struct {
	ChunkX     int32
	ChunkZ     int32
	Heightmaps *nbt.TagCompound
	Data       []byte
}

func (p *ChunkData) Encode(dst *mcio.Sink) error {
	mctypes.WriteInt32(p.ChunkX, dst)
	mctypes.WriteInt32(p.ChunkZ, dst)
	nbt.EncodeNetwork(p.Heightmaps, dst)
	varint.EncodeVarInt(int32(len(p.Data)), dst)
	dst.Write(p.Data)
	return nil
}

func (p *ChunkData) Decode(src *mcio.Source) error {
	x, err := mctypes.ReadInt32(src)
	if err != nil {
		return err
	}
	p.ChunkX = x
	z, err := mctypes.ReadInt32(src)
	if err != nil {
		return err
	}
	p.ChunkZ = z
	heightmaps, err := nbt.DecodeNetwork(src)
	if err != nil {
		return err
	}
	p.Heightmaps = heightmaps
	n, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	if n < 0 {
		return mcio.ErrOutOfBounds
	}
	data, err := src.Take(int(n))
	if err != nil {
		return err
	}
	p.Data = data
	return nil
}

// Disconnect is the clientbound play-phase disconnect packet.
type Disconnect struct {
	Reason string
}

func (p *Disconnect) Encode(dst *mcio.Sink) error {
	mctypes.WriteMcString(p.Reason, dst)
	return nil
}

func (p *Disconnect) Decode(src *mcio.Source) error {
	r, err := mctypes.ReadMcString(src)
	if err != nil {
		return err
	}
	p.Reason = r
	return nil
}
