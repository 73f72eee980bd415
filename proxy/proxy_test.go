package proxy

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"

	"mcproto/conn"
	"mcproto/packetid"
	"mcproto/packets"
	"mcproto/registry"
	"mcproto/statuspb"
)

// fakeBackend stands in for a real Minecraft server: it accepts a
// connection, drains whatever the proxy relays (the replayed handshake
// plus the forwarded LoginStart bytes), and writes back a single marker
// byte so the test can tell which backend a player landed on.
func fakeBackend(t *testing.T, marker byte) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen fake backend: %v", err)
	}
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 4096)
				c.Read(buf)
				c.Write([]byte{marker})
			}(c)
		}
	}()
	return ln
}

// dialLoginAndReadMarker drives a real Handshake+LoginStart through the
// proxy and returns the marker byte the backend it landed on wrote back.
func dialLoginAndReadMarker(t *testing.T, proxyAddr, username string) byte {
	t.Helper()
	netConn, err := net.Dial("tcp", proxyAddr)
	if err != nil {
		t.Fatalf("dial proxy: %v", err)
	}
	defer netConn.Close()

	c := conn.New(netConn)
	if err := c.Send(&packets.Handshake{ProtocolVersion: 772, ServerAddress: "127.0.0.1", Port: 25565, NextState: packets.NextStateLogin}); err != nil {
		t.Fatalf("send handshake: %v", err)
	}
	c.ChangeState(packetid.Login)
	if err := c.Send(&packets.LoginStart{Name: username, PlayerUUID: uuid.New()}); err != nil {
		t.Fatalf("send login start: %v", err)
	}

	buf := make([]byte, 1)
	netConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := netConn.Read(buf); err != nil {
		t.Fatalf("read marker: %v", err)
	}
	return buf[0]
}

func TestProxyStickyRoutingByUsername(t *testing.T) {
	backendA := fakeBackend(t, 'A')
	defer backendA.Close()
	backendB := fakeBackend(t, 'B')
	defer backendB.Close()

	reg := registry.NewMockRegistry()
	reg.Register("minecraft", registry.ServiceInstance{Addr: backendA.Addr().String(), Capacity: 100, Protocol: 772}, 10)
	reg.Register("minecraft", registry.ServiceInstance{Addr: backendB.Addr().String(), Capacity: 100, Protocol: 772}, 10)

	status := statuspb.New("mcproto proxy", 772, 0, 0, "proxy test")
	p := New(status, reg)
	go p.Serve("tcp", "127.0.0.1:29280")
	time.Sleep(100 * time.Millisecond)
	defer p.Shutdown(time.Second)

	first := dialLoginAndReadMarker(t, "127.0.0.1:29280", "steve")
	for i := 0; i < 5; i++ {
		got := dialLoginAndReadMarker(t, "127.0.0.1:29280", "steve")
		if got != first {
			t.Fatalf("expected steve to stick to backend %c, got %c on attempt %d", first, got, i)
		}
	}

	// A different username may land elsewhere, but must itself be sticky.
	otherFirst := dialLoginAndReadMarker(t, "127.0.0.1:29280", "alex")
	otherSecond := dialLoginAndReadMarker(t, "127.0.0.1:29280", "alex")
	if otherFirst != otherSecond {
		t.Fatalf("expected alex to stick to backend %c, got %c", otherFirst, otherSecond)
	}
}

func TestProxyDialBackendNoInstances(t *testing.T) {
	reg := registry.NewMockRegistry()
	status := statuspb.New("mcproto proxy", 772, 0, 0, "proxy test")
	p := New(status, reg)

	if _, err := p.dialBackend("steve", 772); err != ErrNoBackends {
		t.Fatalf("expect ErrNoBackends, got %v", err)
	}
}

func TestProxyDialBackendProtocolMismatch(t *testing.T) {
	reg := registry.NewMockRegistry()
	reg.Register("minecraft", registry.ServiceInstance{Addr: "127.0.0.1:25599", Capacity: 20, Protocol: 766}, 10)
	status := statuspb.New("mcproto proxy", 772, 0, 0, "proxy test")
	p := New(status, reg)

	// The only backend speaks 766; a 772 client has nowhere to go.
	if _, err := p.dialBackend("steve", 772); !errors.Is(err, ErrNoBackends) {
		t.Fatalf("expect wrapped ErrNoBackends for protocol mismatch, got %v", err)
	}
}

func TestProxyAnswersStatusLocally(t *testing.T) {
	reg := registry.NewMockRegistry()
	status := statuspb.New("mcproto proxy", 772, 0, 0, "proxy status test")
	p := New(status, reg)
	go p.Serve("tcp", "127.0.0.1:29281")
	time.Sleep(100 * time.Millisecond)
	defer p.Shutdown(time.Second)

	netConn, err := net.Dial("tcp", "127.0.0.1:29281")
	if err != nil {
		t.Fatalf("dial proxy: %v", err)
	}
	defer netConn.Close()
	c := conn.New(netConn)

	if err := c.Send(&packets.Handshake{ProtocolVersion: 772, ServerAddress: "127.0.0.1", Port: 29281, NextState: packets.NextStateStatus}); err != nil {
		t.Fatalf("send handshake: %v", err)
	}
	c.ChangeState(packetid.Status)

	if err := c.Send(&packets.StatusRequest{}); err != nil {
		t.Fatalf("send status request: %v", err)
	}
	resp, err := c.Receive(packetid.ClientBound)
	if err != nil {
		t.Fatalf("receive status response: %v", err)
	}
	sr, ok := resp.(*packets.StatusResponsePacket)
	if !ok {
		t.Fatalf("expect *packets.StatusResponsePacket, got %T", resp)
	}
	doc, err := statuspb.Unmarshal(sr.JSON)
	if err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if doc.Version.Name != "mcproto proxy" {
		t.Fatalf("expect version name %q, got %q", "mcproto proxy", doc.Version.Name)
	}
}
