package test

import (
	"testing"
	"time"

	"mcproto/client"
	"mcproto/conn"
	"mcproto/loadbalance"
	"mcproto/mcio"
	"mcproto/nbt"
	"mcproto/packetid"
	"mcproto/packets"
	"mcproto/registry"
	"mcproto/server"
	"mcproto/statuspb"
	"mcproto/varint"
)

// BenchmarkVarIntEncodeDecode measures the cost of the wire format every
// other codec in this module builds on: a five-byte-max LEB128 round trip.
func BenchmarkVarIntEncodeDecode(b *testing.B) {
	sink := mcio.NewSink()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink.Reset()
		varint.EncodeVarInt(25565, sink)
		src := mcio.NewSource(sink.Bytes())
		if _, err := varint.DecodeVarInt(src); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRegistryEncodeDecodeHandshake measures one full packet-body
// encode/decode through the dispatch table, the path every received frame
// takes.
func BenchmarkRegistryEncodeDecodeHandshake(b *testing.B) {
	hs := &packets.Handshake{ProtocolVersion: 772, ServerAddress: "127.0.0.1", Port: 25565, NextState: packets.NextStateLogin}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst := mcio.NewSink()
		if err := registry.Encode(hs, dst); err != nil {
			b.Fatal(err)
		}
		if _, err := registry.Decode(packetid.Handshaking, packetid.ServerBound, mcio.NewSource(dst.Bytes())); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNbtEncodeNetwork measures building and network-encoding a small
// registry-entry-shaped compound via the struct bridge, the path
// regdata.BuildRegistryDataPackets runs once per configuration handshake.
func BenchmarkNbtEncodeNetwork(b *testing.B) {
	type entry struct {
		AssetID string `nbt:"asset_id"`
		Height  int32  `nbt:"height"`
	}
	e := entry{AssetID: "minecraft:entity/cat/black", Height: 384}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		compound, err := nbt.Marshal(e)
		if err != nil {
			b.Fatal(err)
		}
		sink := mcio.NewSink()
		nbt.EncodeNetwork(compound, sink)
	}
}

// BenchmarkStatusRoundTrip measures a full Handshake+StatusRequest+
// PingRequest exchange over a real TCP loopback connection, the same path
// TestFullIntegrationStatusPing exercises functionally.
func BenchmarkStatusRoundTrip(b *testing.B) {
	status := statuspb.New("mcproto bench", 772, 20, 0, "bench")
	svr := server.NewServer(status, nil)
	go svr.Serve("tcp", "127.0.0.1:29190", "", nil)
	time.Sleep(100 * time.Millisecond)
	b.Cleanup(func() { svr.Shutdown(3 * time.Second) })

	reg := registry.NewMockRegistry()
	reg.Register("minecraft", registry.ServiceInstance{Addr: "127.0.0.1:29190", Capacity: 100, Protocol: 772}, 10)
	cl := client.NewClient(reg, &loadbalance.RoundRobinBalancer{}, 8)
	b.Cleanup(func() { cl.Close() })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pc, err := cl.Dial("minecraft")
		if err != nil {
			b.Fatal(err)
		}
		c := conn.New(pc)
		if err := c.Send(&packets.Handshake{ProtocolVersion: 772, ServerAddress: "127.0.0.1", Port: 29190, NextState: packets.NextStateStatus}); err != nil {
			b.Fatal(err)
		}
		c.ChangeState(packetid.Status)
		if err := c.Send(&packets.PingRequest{Payload: int64(i)}); err != nil {
			b.Fatal(err)
		}
		if _, err := c.Receive(packetid.ClientBound); err != nil {
			b.Fatal(err)
		}
		pc.Close()
	}
}
