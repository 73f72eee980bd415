package handlers

import (
	"errors"
	"net"
	"testing"

	"github.com/google/uuid"

	"mcproto/conn"
	"mcproto/packetid"
	"mcproto/packets"
	"mcproto/statuspb"
)

// pipePair returns a connected client/server conn pair over an in-memory
// pipe.
func pipePair(t *testing.T) (*conn.Conn, *conn.Conn) {
	t.Helper()
	clientEnd, serverEnd := net.Pipe()
	t.Cleanup(func() {
		clientEnd.Close()
		serverEnd.Close()
	})
	return conn.New(clientEnd), conn.New(serverEnd)
}

func TestHandshakeTransitionsToStatus(t *testing.T) {
	client, server := pipePair(t)

	go client.Send(&packets.Handshake{ProtocolVersion: 766, ServerAddress: "localhost", Port: 25565, NextState: packets.NextStateStatus})

	hs, err := Handshake(server)
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if hs.ProtocolVersion != 766 {
		t.Fatalf("protocol version = %d", hs.ProtocolVersion)
	}
	if server.Phase != packetid.Status {
		t.Fatalf("phase = %v, want status", server.Phase)
	}
}

func TestHandshakeTransitionsToLogin(t *testing.T) {
	client, server := pipePair(t)

	go client.Send(&packets.Handshake{ProtocolVersion: 772, ServerAddress: "play.example.com", Port: 25565, NextState: packets.NextStateLogin})

	if _, err := Handshake(server); err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if server.Phase != packetid.Login {
		t.Fatalf("phase = %v, want login", server.Phase)
	}
}

func TestHandshakeInvalidNextState(t *testing.T) {
	client, server := pipePair(t)

	go client.Send(&packets.Handshake{ProtocolVersion: 766, ServerAddress: "localhost", Port: 25565, NextState: 9})

	if _, err := Handshake(server); !errors.Is(err, ErrInvalidNextState) {
		t.Fatalf("err = %v, want ErrInvalidNextState", err)
	}
}

// TestStatusFlow walks the full server-list exchange: Handshake(status),
// StatusRequest → StatusResponse, PingRequest → PingResponse echoing the
// payload, then close.
func TestStatusFlow(t *testing.T) {
	client, server := pipePair(t)

	doc := statuspb.New("mcproto", 766, 20, 3, "&6Welcome")

	serverErr := make(chan error, 1)
	go func() {
		if _, err := Handshake(server); err != nil {
			serverErr <- err
			return
		}
		serverErr <- Status(server, doc)
	}()

	if err := client.Send(&packets.Handshake{ProtocolVersion: 766, ServerAddress: "localhost", Port: 25565, NextState: packets.NextStateStatus}); err != nil {
		t.Fatalf("send handshake: %v", err)
	}
	client.ChangeState(packetid.Status)

	if err := client.Send(&packets.StatusRequest{}); err != nil {
		t.Fatalf("send status request: %v", err)
	}
	resp, err := client.Receive(packetid.ClientBound)
	if err != nil {
		t.Fatalf("receive status response: %v", err)
	}
	sr, ok := resp.(*packets.StatusResponsePacket)
	if !ok {
		t.Fatalf("first response = %T, want StatusResponsePacket", resp)
	}
	got, err := statuspb.Unmarshal(sr.JSON)
	if err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if got.Description.Text != "§6Welcome" {
		t.Fatalf("description = %q", got.Description.Text)
	}

	if err := client.Send(&packets.PingRequest{Payload: 0x1A242E}); err != nil {
		t.Fatalf("send ping: %v", err)
	}
	pong, err := client.Receive(packetid.ClientBound)
	if err != nil {
		t.Fatalf("receive pong: %v", err)
	}
	pr, ok := pong.(*packets.PingResponsePacket)
	if !ok {
		t.Fatalf("second response = %T, want PingResponsePacket", pong)
	}
	if pr.Payload != 0x1A242E {
		t.Fatalf("pong payload = %#x, want 0x1A242E", pr.Payload)
	}

	if err := <-serverErr; err != nil {
		t.Fatalf("server flow: %v", err)
	}

	// The server closed after the pong; the next read must fail.
	if _, err := client.Receive(packetid.ClientBound); err == nil {
		t.Fatal("expected closed connection after ping response")
	}
}

// TestStatusDirectPing covers clients that skip StatusRequest and ping
// immediately: the payload comes straight back and the connection closes.
func TestStatusDirectPing(t *testing.T) {
	client, server := pipePair(t)
	server.ChangeState(packetid.Status)
	client.ChangeState(packetid.Status)

	go Status(server, statuspb.New("mcproto", 766, 20, 0, "motd"))

	// Negative payload: the bit pattern must survive the signed-to-
	// unsigned reinterpretation.
	if err := client.Send(&packets.PingRequest{Payload: -1}); err != nil {
		t.Fatalf("send ping: %v", err)
	}
	pong, err := client.Receive(packetid.ClientBound)
	if err != nil {
		t.Fatalf("receive pong: %v", err)
	}
	pr, ok := pong.(*packets.PingResponsePacket)
	if !ok {
		t.Fatalf("got %T", pong)
	}
	if pr.Payload != ^uint64(0) {
		t.Fatalf("payload = %#x, want all ones", pr.Payload)
	}
}

func TestStatusRejectsWrongPacket(t *testing.T) {
	client, server := pipePair(t)
	server.ChangeState(packetid.Login)
	client.ChangeState(packetid.Login)

	go client.Send(&packets.LoginStart{Name: "steve", PlayerUUID: uuid.New()})

	// A login packet handed to the status handler is a phase violation.
	if err := Status(server, statuspb.StatusResponse{}); !errors.Is(err, ErrExpectedDifferentPacket) {
		t.Fatalf("err = %v, want ErrExpectedDifferentPacket", err)
	}
}

// TestLoginAndConfigurationFlow drives the full LOGIN → CONFIGURATION →
// PLAY walk from the client side.
func TestLoginAndConfigurationFlow(t *testing.T) {
	client, server := pipePair(t)
	server.ChangeState(packetid.Login)
	client.ChangeState(packetid.Login)

	knownPacks := []packets.KnownPack{{Namespace: "minecraft", ID: "core", Version: "1.21.8"}}

	serverErr := make(chan error, 1)
	go func() {
		start, err := LoginFlow(server)
		if err != nil {
			serverErr <- err
			return
		}
		if start.Name != "steve" {
			serverErr <- errors.New("unexpected username")
			return
		}
		serverErr <- ConfigurationFlow(server, knownPacks)
	}()

	playerID := uuid.New()
	if err := client.Send(&packets.LoginStart{Name: "steve", PlayerUUID: playerID}); err != nil {
		t.Fatalf("send login start: %v", err)
	}
	resp, err := client.Receive(packetid.ClientBound)
	if err != nil {
		t.Fatalf("receive login success: %v", err)
	}
	success, ok := resp.(*packets.LoginSuccess)
	if !ok {
		t.Fatalf("got %T, want LoginSuccess", resp)
	}
	if success.PlayerUUID != playerID || success.Username != "steve" {
		t.Fatalf("got %+v", success)
	}

	if err := client.Send(&packets.LoginAcknowledged{}); err != nil {
		t.Fatalf("send login acknowledged: %v", err)
	}
	client.ChangeState(packetid.Configuration)

	known, err := client.Receive(packetid.ClientBound)
	if err != nil {
		t.Fatalf("receive known packs: %v", err)
	}
	if _, ok := known.(*packets.ClientboundKnownPacks); !ok {
		t.Fatalf("got %T, want ClientboundKnownPacks", known)
	}
	if err := client.Send(&packets.ServerboundKnownPacks{Packs: knownPacks}); err != nil {
		t.Fatalf("send serverbound known packs: %v", err)
	}

	// Registry-data frames are encode-only on the client side; skip
	// decode failures until FinishConfiguration arrives.
	for attempts := 0; ; attempts++ {
		if attempts > 50 {
			t.Fatal("did not see FinishConfiguration")
		}
		p, err := client.Receive(packetid.ClientBound)
		if err != nil {
			continue
		}
		if _, ok := p.(*packets.FinishConfiguration); ok {
			break
		}
	}
	if err := client.Send(&packets.AcknowledgeFinishConfiguration{}); err != nil {
		t.Fatalf("send acknowledge: %v", err)
	}

	if err := <-serverErr; err != nil {
		t.Fatalf("server flow: %v", err)
	}
	if server.Phase != packetid.Play {
		t.Fatalf("server phase = %v, want play", server.Phase)
	}
}
