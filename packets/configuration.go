package packets

import (
	"mcproto/mcio"
	"mcproto/mctypes"
	"mcproto/varint"
)

// ClientInformation is the serverbound configuration-phase packet, id 0x00.
type ClientInformation struct {
	Locale              string
	ViewDistance        int8
	ChatMode            int32
	ChatColors          bool
	DisplayedSkinParts  uint8
	MainHand            int32
	EnableTextFiltering bool
	AllowServerListings bool
	ParticleStatus      int32
}

func (p *ClientInformation) Encode(dst *mcio.Sink) error {
	mctypes.WriteMcString(p.Locale, dst)
	dst.WriteByte(byte(p.ViewDistance))
	varint.EncodeVarInt(p.ChatMode, dst)
	mctypes.WriteBool(p.ChatColors, dst)
	mctypes.WriteUint8(p.DisplayedSkinParts, dst)
	varint.EncodeVarInt(p.MainHand, dst)
	mctypes.WriteBool(p.EnableTextFiltering, dst)
	mctypes.WriteBool(p.AllowServerListings, dst)
	varint.EncodeVarInt(p.ParticleStatus, dst)
	return nil
}

func (p *ClientInformation) Decode(src *mcio.Source) error {
	locale, err := mctypes.ReadMcString(src)
	if err != nil {
		return err
	}
	p.Locale = locale
	vd, err := src.Take(1)
	if err != nil {
		return err
	}
	p.ViewDistance = int8(vd[0])
	cm, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.ChatMode = cm
	cc, err := mctypes.ReadBool(src)
	if err != nil {
		return err
	}
	p.ChatColors = cc
	dsp, err := mctypes.ReadUint8(src)
	if err != nil {
		return err
	}
	p.DisplayedSkinParts = dsp
	mh, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.MainHand = mh
	etf, err := mctypes.ReadBool(src)
	if err != nil {
		return err
	}
	p.EnableTextFiltering = etf
	asl, err := mctypes.ReadBool(src)
	if err != nil {
		return err
	}
	p.AllowServerListings = asl
	ps, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.ParticleStatus = ps
	return nil
}

// ServerboundPluginMessage is the serverbound configuration-phase packet,
// id 0x02. Its Data length is implied by the enclosing packet length.
type ServerboundPluginMessage struct {
	Channel string
	Data    []byte
}

func (p *ServerboundPluginMessage) Encode(dst *mcio.Sink) error {
	mctypes.WriteMcString(p.Channel, dst)
	dst.Write(p.Data)
	return nil
}

func (p *ServerboundPluginMessage) Decode(src *mcio.Source) error {
	ch, err := mctypes.ReadMcString(src)
	if err != nil {
		return err
	}
	p.Channel = ch
	rest, err := mctypes.ReadRest(src)
	if err != nil {
		return err
	}
	p.Data = rest
	return nil
}

// AcknowledgeFinishConfiguration is the serverbound configuration-phase
// packet, id 0x03, with an empty body. Receiving it transitions the
// connection to Play.
type AcknowledgeFinishConfiguration struct{}

func (p *AcknowledgeFinishConfiguration) Encode(dst *mcio.Sink) error { return nil }
func (p *AcknowledgeFinishConfiguration) Decode(src *mcio.Source) error {
	if !src.AtEnd() {
		return ErrLeftoverInput
	}
	return nil
}

// KnownPack identifies one data pack version both sides agree is known.
type KnownPack struct {
	Namespace string
	ID        string
	Version   string
}

func encodeKnownPack(p KnownPack, dst *mcio.Sink) {
	mctypes.WriteMcString(p.Namespace, dst)
	mctypes.WriteMcString(p.ID, dst)
	mctypes.WriteMcString(p.Version, dst)
}

func decodeKnownPack(src *mcio.Source) (KnownPack, error) {
	var p KnownPack
	ns, err := mctypes.ReadMcString(src)
	if err != nil {
		return p, err
	}
	p.Namespace = ns
	id, err := mctypes.ReadMcString(src)
	if err != nil {
		return p, err
	}
	p.ID = id
	v, err := mctypes.ReadMcString(src)
	if err != nil {
		return p, err
	}
	p.Version = v
	return p, nil
}

// ServerboundKnownPacks is the serverbound configuration-phase packet, id
// 0x07.
type ServerboundKnownPacks struct {
	Packs []KnownPack
}

func (p *ServerboundKnownPacks) Encode(dst *mcio.Sink) error {
	mctypes.WritePrefixedArray(p.Packs, dst, encodeKnownPack)
	return nil
}

func (p *ServerboundKnownPacks) Decode(src *mcio.Source) error {
	packs, err := mctypes.ReadPrefixedArray(src, decodeKnownPack)
	if err != nil {
		return err
	}
	p.Packs = packs
	return nil
}

// ClientboundPluginMessage is the clientbound configuration-phase packet,
// id 0x01.
type ClientboundPluginMessage struct {
	Channel string
	Data    []byte
}

func (p *ClientboundPluginMessage) Encode(dst *mcio.Sink) error {
	mctypes.WriteMcString(p.Channel, dst)
	dst.Write(p.Data)
	return nil
}

func (p *ClientboundPluginMessage) Decode(src *mcio.Source) error {
	ch, err := mctypes.ReadMcString(src)
	if err != nil {
		return err
	}
	p.Channel = ch
	rest, err := mctypes.ReadRest(src)
	if err != nil {
		return err
	}
	p.Data = rest
	return nil
}

// FinishConfiguration is the clientbound configuration-phase packet, id
// 0x03, with an empty body.
type FinishConfiguration struct{}

func (p *FinishConfiguration) Encode(dst *mcio.Sink) error { return nil }
func (p *FinishConfiguration) Decode(src *mcio.Source) error {
	if !src.AtEnd() {
		return ErrLeftoverInput
	}
	return nil
}

// RegistryEntry is one entry of a RegistryData packet: an identifier and
// an optional NBT payload (absent entries fall back to vanilla defaults on
// the client).
type RegistryEntry struct {
	ID      string
	Payload []byte // pre-encoded network-framed NBT compound, or nil
}

func encodeRegistryEntry(e RegistryEntry, dst *mcio.Sink) {
	mctypes.WriteMcString(e.ID, dst)
	mctypes.WriteBool(e.Payload != nil, dst)
	if e.Payload != nil {
		dst.Write(e.Payload)
	}
}

// RegistryData is the clientbound configuration-phase packet, id 0x07.
type RegistryData struct {
	RegistryID string
	Entries    []RegistryEntry
}

func (p *RegistryData) Encode(dst *mcio.Sink) error {
	mctypes.WriteMcString(p.RegistryID, dst)
	mctypes.WritePrefixedArray(p.Entries, dst, encodeRegistryEntry)
	return nil
}

func (p *RegistryData) Decode(src *mcio.Source) error {
	// RegistryData entries carry raw, variable-length NBT payloads whose
	// extent is not independently length-prefixed; decoding them back out
	// requires an NBT-aware reader rather than a fixed-shape array
	// decoder, so only encode is exercised by this module's server role.
	return errUnsupportedDecode
}

// ClientboundKnownPacks is the clientbound configuration-phase packet, id
// 0x0E.
type ClientboundKnownPacks struct {
	Packs []KnownPack
}

func (p *ClientboundKnownPacks) Encode(dst *mcio.Sink) error {
	mctypes.WritePrefixedArray(p.Packs, dst, encodeKnownPack)
	return nil
}

func (p *ClientboundKnownPacks) Decode(src *mcio.Source) error {
	packs, err := mctypes.ReadPrefixedArray(src, decodeKnownPack)
	if err != nil {
		return err
	}
	p.Packs = packs
	return nil
}
