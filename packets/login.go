package packets

import (
	"github.com/google/uuid"

	"mcproto/mcio"
	"mcproto/mctypes"
	"mcproto/varint"
)

// LoginStart is the serverbound login-phase packet, id 0x00.
type LoginStart struct {
	Name       string
	PlayerUUID uuid.UUID
}

func (p *LoginStart) Encode(dst *mcio.Sink) error {
	mctypes.WriteMcString(p.Name, dst)
	mctypes.WriteUUID(p.PlayerUUID, dst)
	return nil
}

func (p *LoginStart) Decode(src *mcio.Source) error {
	name, err := mctypes.ReadMcString(src)
	if err != nil {
		return err
	}
	p.Name = name
	id, err := mctypes.ReadUUID(src)
	if err != nil {
		return err
	}
	p.PlayerUUID = id
	return nil
}

// EncryptionResponse is the serverbound login-phase packet, id 0x01. The
// live path never drives encryption negotiation; this body exists as the
// wire-shape extension point for it.
type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

func (p *EncryptionResponse) Encode(dst *mcio.Sink) error {
	mctypes.WritePrefixedArray(p.SharedSecret, dst, mctypes.WriteUint8)
	mctypes.WritePrefixedArray(p.VerifyToken, dst, mctypes.WriteUint8)
	return nil
}

func (p *EncryptionResponse) Decode(src *mcio.Source) error {
	secret, err := mctypes.ReadPrefixedArray(src, mctypes.ReadUint8)
	if err != nil {
		return err
	}
	p.SharedSecret = secret
	token, err := mctypes.ReadPrefixedArray(src, mctypes.ReadUint8)
	if err != nil {
		return err
	}
	p.VerifyToken = token
	return nil
}

// LoginPluginResponse is the serverbound login-phase packet, id 0x02. Data
// is a GuardedOptional: present iff Successful.
type LoginPluginResponse struct {
	MessageID  int32
	Successful bool
	Data       []byte
}

func (p *LoginPluginResponse) Encode(dst *mcio.Sink) error {
	varint.EncodeVarInt(p.MessageID, dst)
	mctypes.WriteBool(p.Successful, dst)
	if p.Successful {
		dst.Write(p.Data)
	}
	return nil
}

func (p *LoginPluginResponse) Decode(src *mcio.Source) error {
	id, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.MessageID = id
	ok, err := mctypes.ReadBool(src)
	if err != nil {
		return err
	}
	p.Successful = ok
	if ok {
		rest, err := mctypes.ReadRest(src)
		if err != nil {
			return err
		}
		p.Data = rest
	}
	return nil
}

// LoginAcknowledged is the serverbound login-phase packet, id 0x03, with an
// empty body. Receiving it transitions the connection to Configuration.
type LoginAcknowledged struct{}

func (p *LoginAcknowledged) Encode(dst *mcio.Sink) error { return nil }
func (p *LoginAcknowledged) Decode(src *mcio.Source) error {
	if !src.AtEnd() {
		return ErrLeftoverInput
	}
	return nil
}

// LoginDisconnect is the clientbound login-phase packet, id 0x00.
type LoginDisconnect struct {
	Reason string
}

func (p *LoginDisconnect) Encode(dst *mcio.Sink) error {
	mctypes.WriteMcString(p.Reason, dst)
	return nil
}

func (p *LoginDisconnect) Decode(src *mcio.Source) error {
	r, err := mctypes.ReadMcString(src)
	if err != nil {
		return err
	}
	p.Reason = r
	return nil
}

// EncryptionRequest is the clientbound login-phase packet, id 0x01 — an
// unexercised extension-point stub, see EncryptionResponse.
type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
}

func (p *EncryptionRequest) Encode(dst *mcio.Sink) error {
	mctypes.WriteMcString(p.ServerID, dst)
	mctypes.WritePrefixedArray(p.PublicKey, dst, mctypes.WriteUint8)
	mctypes.WritePrefixedArray(p.VerifyToken, dst, mctypes.WriteUint8)
	return nil
}

func (p *EncryptionRequest) Decode(src *mcio.Source) error {
	id, err := mctypes.ReadMcString(src)
	if err != nil {
		return err
	}
	p.ServerID = id
	key, err := mctypes.ReadPrefixedArray(src, mctypes.ReadUint8)
	if err != nil {
		return err
	}
	p.PublicKey = key
	token, err := mctypes.ReadPrefixedArray(src, mctypes.ReadUint8)
	if err != nil {
		return err
	}
	p.VerifyToken = token
	return nil
}

// LoginProperty is one entry of LoginSuccess.Properties (e.g. a signed
// textures property).
type LoginProperty struct {
	Name      string
	Value     string
	Signature *string
}

func encodeLoginProperty(p LoginProperty, dst *mcio.Sink) {
	mctypes.WriteMcString(p.Name, dst)
	mctypes.WriteMcString(p.Value, dst)
	mctypes.WritePrefixedOptional(p.Signature, dst, mctypes.WriteMcString)
}

func decodeLoginProperty(src *mcio.Source) (LoginProperty, error) {
	var p LoginProperty
	name, err := mctypes.ReadMcString(src)
	if err != nil {
		return p, err
	}
	p.Name = name
	value, err := mctypes.ReadMcString(src)
	if err != nil {
		return p, err
	}
	p.Value = value
	sig, err := mctypes.ReadPrefixedOptional(src, mctypes.ReadMcString)
	if err != nil {
		return p, err
	}
	p.Signature = sig
	return p, nil
}

// LoginSuccess is the clientbound login-phase packet, id 0x02.
type LoginSuccess struct {
	PlayerUUID uuid.UUID
	Username   string
	Properties []LoginProperty
}

func (p *LoginSuccess) Encode(dst *mcio.Sink) error {
	mctypes.WriteUUID(p.PlayerUUID, dst)
	mctypes.WriteMcString(p.Username, dst)
	mctypes.WritePrefixedArray(p.Properties, dst, encodeLoginProperty)
	return nil
}

func (p *LoginSuccess) Decode(src *mcio.Source) error {
	id, err := mctypes.ReadUUID(src)
	if err != nil {
		return err
	}
	p.PlayerUUID = id
	name, err := mctypes.ReadMcString(src)
	if err != nil {
		return err
	}
	p.Username = name
	props, err := mctypes.ReadPrefixedArray(src, decodeLoginProperty)
	if err != nil {
		return err
	}
	p.Properties = props
	return nil
}

// SetCompression is the clientbound login-phase packet, id 0x03.
type SetCompression struct {
	Threshold int32
}

func (p *SetCompression) Encode(dst *mcio.Sink) error {
	varint.EncodeVarInt(p.Threshold, dst)
	return nil
}

func (p *SetCompression) Decode(src *mcio.Source) error {
	v, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.Threshold = v
	return nil
}

// LoginPluginRequest is the clientbound login-phase packet, id 0x04.
type LoginPluginRequest struct {
	MessageID int32
	Channel   string
	Data      []byte
}

func (p *LoginPluginRequest) Encode(dst *mcio.Sink) error {
	varint.EncodeVarInt(p.MessageID, dst)
	mctypes.WriteMcString(p.Channel, dst)
	dst.Write(p.Data)
	return nil
}

func (p *LoginPluginRequest) Decode(src *mcio.Source) error {
	id, err := varint.DecodeVarInt(src)
	if err != nil {
		return err
	}
	p.MessageID = id
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
