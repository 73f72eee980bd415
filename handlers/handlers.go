// Package handlers implements the default server-side flows for each
// connection phase: Handshake, Status, Ping, and a concrete Login and
// Configuration orchestration. Each flow receives exactly the packets its
// phase permits and performs the phase transition the relevant packet
// triggers; none of them change phase mid-decode.
package handlers

import (
	"errors"
	"fmt"

	"mcproto/conn"
	"mcproto/packetid"
	"mcproto/packets"
	"mcproto/regdata"
	"mcproto/statuspb"
)

// ErrInvalidNextState is returned when a Handshake packet's NextState is
// neither NextStateStatus nor NextStateLogin.
var ErrInvalidNextState = errors.New("handlers: invalid next state")

// ErrExpectedDifferentPacket is returned when a phase handler receives a
// packet type its phase does not expect.
var ErrExpectedDifferentPacket = errors.New("handlers: unexpected packet for phase")

// Handshake receives the single HANDSHAKING-phase packet and transitions
// the connection to Status or Login per its NextState field. It does not
// itself send anything — handshake has no clientbound packets.
func Handshake(c *conn.Conn) (*packets.Handshake, error) {
	p, err := c.Receive(packetid.ServerBound)
	if err != nil {
		return nil, err
	}
	hs, ok := p.(*packets.Handshake)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrExpectedDifferentPacket, p)
	}
	switch hs.NextState {
	case packets.NextStateStatus:
		c.ChangeState(packetid.Status)
	case packets.NextStateLogin:
		c.ChangeState(packetid.Login)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidNextState, hs.NextState)
	}
	return hs, nil
}

// Status receives one STATUS-phase packet. A StatusRequest gets the
// configured document in reply, followed by delegating to Ping for the
// client's follow-up PingRequest. A PingRequest received directly (some
// clients skip StatusRequest, e.g. pingers) is answered immediately,
// echoing its payload, and the connection closes.
func Status(c *conn.Conn, resp statuspb.StatusResponse) error {
	p, err := c.Receive(packetid.ServerBound)
	if err != nil {
		return err
	}
	switch req := p.(type) {
	case *packets.StatusRequest:
		json, err := statuspb.Marshal(resp)
		if err != nil {
			return err
		}
		if err := c.Send(&packets.StatusResponsePacket{JSON: json}); err != nil {
			return err
		}
		return Ping(c)
	case *packets.PingRequest:
		if err := c.Send(&packets.PingResponsePacket{Payload: uint64(req.Payload)}); err != nil {
			return err
		}
		return c.Close()
	default:
		return fmt.Errorf("%w: expected status request or ping request, got %T", ErrExpectedDifferentPacket, p)
	}
}

// Ping receives a PingRequest, answers by echoing its payload (preserving
// the bit pattern exactly), and closes. A client measures latency from the
// echo, so the payload it sent must come back untouched.
func Ping(c *conn.Conn) error {
	p, err := c.Receive(packetid.ServerBound)
	if err != nil {
		return err
	}
	req, ok := p.(*packets.PingRequest)
	if !ok {
		return fmt.Errorf("%w: expected ping request, got %T", ErrExpectedDifferentPacket, p)
	}
	if err := c.Send(&packets.PingResponsePacket{Payload: uint64(req.Payload)}); err != nil {
		return err
	}
	return c.Close()
}

// LoginFlow runs the LOGIN phase for a connection with no encryption or
// compression negotiated. It receives LoginStart, answers with
// LoginSuccess, awaits LoginAcknowledged, and transitions to
// Configuration.
func LoginFlow(c *conn.Conn) (*packets.LoginStart, error) {
	p, err := c.Receive(packetid.ServerBound)
	if err != nil {
		return nil, err
	}
	start, ok := p.(*packets.LoginStart)
	if !ok {
		return nil, fmt.Errorf("%w: expected login start, got %T", ErrExpectedDifferentPacket, p)
	}
	success := &packets.LoginSuccess{PlayerUUID: start.PlayerUUID, Username: start.Name}
	if err := c.Send(success); err != nil {
		return nil, err
	}
	ack, err := c.Receive(packetid.ServerBound)
	if err != nil {
		return nil, err
	}
	if _, ok := ack.(*packets.LoginAcknowledged); !ok {
		return nil, fmt.Errorf("%w: expected login acknowledged, got %T", ErrExpectedDifferentPacket, ack)
	}
	c.ChangeState(packetid.Configuration)
	return start, nil
}

// ConfigurationFlow runs the CONFIGURATION phase: exchanges the known-packs
// catalog, emits the default registry-data catalog, signals the client may
// finish, and awaits its acknowledgement before transitioning to Play.
func ConfigurationFlow(c *conn.Conn, knownPacks []packets.KnownPack) error {
	if err := c.Send(&packets.ClientboundKnownPacks{Packs: knownPacks}); err != nil {
		return err
	}
	p, err := c.Receive(packetid.ServerBound)
	if err != nil {
		return err
	}
	if _, ok := p.(*packets.ServerboundKnownPacks); !ok {
		return fmt.Errorf("%w: expected serverbound known packs, got %T", ErrExpectedDifferentPacket, p)
	}

	regPackets, err := regdata.BuildRegistryDataPackets()
	if err != nil {
		return err
	}
	for _, rp := range regPackets {
		if err := c.Send(&rp); err != nil {
			return err
		}
	}

	if err := c.Send(&packets.FinishConfiguration{}); err != nil {
		return err
	}
	ack, err := c.Receive(packetid.ServerBound)
	if err != nil {
		return err
	}
	if _, ok := ack.(*packets.AcknowledgeFinishConfiguration); !ok {
		return fmt.Errorf("%w: expected acknowledge finish configuration, got %T", ErrExpectedDifferentPacket, ack)
	}
	c.ChangeState(packetid.Play)
	return nil
}
