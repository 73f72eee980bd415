package packets

import (
	"testing"

	"mcproto/chunkdata"
	"mcproto/mcio"
	"mcproto/mctypes"
	"mcproto/nbt"
	"mcproto/varint"
)

func TestHandshakeDecodeExample(t *testing.T) {
	dst := mcio.NewSink()
	varint.EncodeVarInt(766, dst)
	mctypes.WriteMcString("localhost", dst)
	mctypes.WriteUint16(25565, dst)
	varint.EncodeVarInt(1, dst)

	var hs Handshake
	if err := hs.Decode(mcio.NewSource(dst.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if hs.ProtocolVersion != 766 || hs.ServerAddress != "localhost" ||
		hs.Port != 25565 || hs.NextState != 1 {
		t.Fatalf("got %+v", hs)
	}
}

func TestPingRoundTripExample(t *testing.T) {
	raw := []byte{0, 0, 0, 0, 0, 26, 36, 46}
	var req PingRequest
	if err := req.Decode(mcio.NewSource(raw)); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if req.Payload != 0x1A242E {
		t.Fatalf("got %x, want %x", req.Payload, 0x1A242E)
	}

	resp := PingResponsePacket{Payload: uint64(req.Payload)}
	dst := mcio.NewSink()
	if err := resp.Encode(dst); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var back PingResponsePacket
	if err := back.Decode(mcio.NewSource(dst.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Payload != uint64(req.Payload) {
		t.Fatalf("got %x, want %x", back.Payload, req.Payload)
	}
}

func TestLoginSuccessRoundTrip(t *testing.T) {
	sig := "abc123"
	ls := LoginSuccess{
		Username: "Notch",
		Properties: []LoginProperty{
			{Name: "textures", Value: "base64data", Signature: &sig},
		},
	}
	dst := mcio.NewSink()
	if err := ls.Encode(dst); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var back LoginSuccess
	if err := back.Decode(mcio.NewSource(dst.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Username != "Notch" || len(back.Properties) != 1 {
		t.Fatalf("got %+v", back)
	}
	if back.Properties[0].Signature == nil || *back.Properties[0].Signature != "abc123" {
		t.Fatalf("signature mismatch: %+v", back.Properties[0])
	}
}

func TestLoginPluginResponseGuardedOptional(t *testing.T) {
	p := LoginPluginResponse{MessageID: 7, Successful: true, Data: []byte{1, 2, 3}}
	dst := mcio.NewSink()
	p.Encode(dst)
	var back LoginPluginResponse
	if err := back.Decode(mcio.NewSource(dst.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(back.Data) != 3 {
		t.Fatalf("got %+v", back)
	}

	p2 := LoginPluginResponse{MessageID: 8, Successful: false}
	dst2 := mcio.NewSink()
	p2.Encode(dst2)
	var back2 LoginPluginResponse
	if err := back2.Decode(mcio.NewSource(dst2.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back2.Data != nil {
		t.Fatalf("expected nil data, got %v", back2.Data)
	}
}

func TestPlayerActionRoundTrip(t *testing.T) {
	p := PlayerAction{
		Status:   2,
		Location: chunkdata.Position{X: 100, Y: -60, Z: -2048},
		Face:     1,
		Sequence: 17,
	}
	dst := mcio.NewSink()
	if err := p.Encode(dst); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var back PlayerAction
	if err := back.Decode(mcio.NewSource(dst.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back != p {
		t.Fatalf("got %+v, want %+v", back, p)
	}
}

func TestUpdateLightRoundTrip(t *testing.T) {
	sky := chunkdata.NewBitSet(26)
	sky.Set(0)
	sky.Set(25)
	empty := chunkdata.NewBitSet(26)
	section := make([]byte, 2048)
	section[0] = 0xff
	section[2047] = 0x0f

	p := UpdateLight{
		ChunkX:              -3,
		ChunkZ:              12,
		SkyLightMask:        sky,
		BlockLightMask:      chunkdata.NewBitSet(26),
		EmptySkyLightMask:   empty,
		EmptyBlockLightMask: chunkdata.NewBitSet(26),
		SkyLight:            [][]byte{section, section},
		BlockLight:          [][]byte{},
	}
	dst := mcio.NewSink()
	if err := p.Encode(dst); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var back UpdateLight
	if err := back.Decode(mcio.NewSource(dst.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.ChunkX != -3 || back.ChunkZ != 12 {
		t.Fatalf("chunk coords = %d,%d", back.ChunkX, back.ChunkZ)
	}
	if !back.SkyLightMask.Get(0) || !back.SkyLightMask.Get(25) || back.SkyLightMask.Get(1) {
		t.Fatalf("sky light mask mismatch")
	}
	if len(back.SkyLight) != 2 || len(back.SkyLight[0]) != 2048 || back.SkyLight[0][0] != 0xff {
		t.Fatalf("sky light sections mismatch")
	}
	if len(back.BlockLight) != 0 {
		t.Fatalf("expected no block light sections")
	}
}

func TestChunkDataRoundTrip(t *testing.T) {
	heightmaps := nbt.NewTagCompound()
	heightmaps.Set("MOTION_BLOCKING", &nbt.TagLongArray{Value: []int64{1, 2, 3}})

	blocks := make([]int32, chunkdata.BlockEntries)
	section := &chunkdata.ChunkSection{
		BlockCount:  100,
		BlockStates: chunkdata.NewIndirect(blocks, 4),
		Biomes:      chunkdata.NewSingleValued(1, chunkdata.BiomeEntries),
	}
	sectionSink := mcio.NewSink()
	section.Encode(sectionSink)

	p := ChunkData{
		ChunkX:     7,
		ChunkZ:     -4,
		Heightmaps: heightmaps,
		Data:       sectionSink.Bytes(),
	}
	dst := mcio.NewSink()
	if err := p.Encode(dst); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var back ChunkData
	if err := back.Decode(mcio.NewSource(dst.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.ChunkX != 7 || back.ChunkZ != -4 {
		t.Fatalf("chunk coords = %d,%d", back.ChunkX, back.ChunkZ)
	}
	hm, ok := back.Heightmaps.Get("MOTION_BLOCKING")
	if !ok || len(hm.(*nbt.TagLongArray).Value) != 3 {
		t.Fatalf("heightmaps = %v", hm)
	}

	// The opaque data bytes must parse back as the section they carry.
	got, err := chunkdata.DecodeChunkSection(mcio.NewSource(back.Data))
	if err != nil {
		t.Fatalf("DecodeChunkSection: %v", err)
	}
	if got.BlockCount != 100 {
		t.Fatalf("block count = %d", got.BlockCount)
	}
}

func TestKnownPacksRoundTrip(t *testing.T) {
	p := ServerboundKnownPacks{Packs: []KnownPack{
		{Namespace: "minecraft", ID: "core", Version: "1.21.8"},
	}}
	dst := mcio.NewSink()
	p.Encode(dst)
	var back ServerboundKnownPacks
	if err := back.Decode(mcio.NewSource(dst.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(back.Packs) != 1 || back.Packs[0].ID != "core" {
		t.Fatalf("got %+v", back)
	}
}
