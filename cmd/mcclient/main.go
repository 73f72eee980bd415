// Command mcclient performs a server-list ping against a running server or
// proxy: handshake, status request, and a latency-measuring ping, printing
// the returned status document.
package main

import (
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mcproto/conn"
	"mcproto/packetid"
	"mcproto/packets"
	"mcproto/statuspb"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:25565", "server address to ping")
	flag.Parse()

	logger := zap.Must(zap.NewProduction()).Sugar()

	host, portStr, err := net.SplitHostPort(*addr)
	if err != nil {
		logger.Fatalw("parsing address", "addr", *addr, "error", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		logger.Fatalw("parsing port", "port", portStr, "error", err)
	}

	netConn, err := net.Dial("tcp", *addr)
	if err != nil {
		logger.Fatalw("dialing server", "addr", *addr, "error", err)
	}
	defer netConn.Close()

	c := conn.New(netConn)
	if err := c.Send(&packets.Handshake{
		ProtocolVersion: 772,
		ServerAddress:   host,
		Port:            uint16(port),
		NextState:       packets.NextStateStatus,
	}); err != nil {
		logger.Fatalw("sending handshake", "error", err)
	}
	c.ChangeState(packetid.Status)

	if err := c.Send(&packets.StatusRequest{}); err != nil {
		logger.Fatalw("sending status request", "error", err)
	}
	resp, err := c.Receive(packetid.ClientBound)
	if err != nil {
		logger.Fatalw("receiving status response", "error", err)
	}
	sr, ok := resp.(*packets.StatusResponsePacket)
	if !ok {
		logger.Fatalw("unexpected packet", "type", fmt.Sprintf("%T", resp))
	}
	doc, err := statuspb.Unmarshal(sr.JSON)
	if err != nil {
		logger.Fatalw("parsing status document", "error", err)
	}

	start := time.Now()
	if err := c.Send(&packets.PingRequest{Payload: start.UnixMilli()}); err != nil {
		logger.Fatalw("sending ping", "error", err)
	}
	pong, err := c.Receive(packetid.ClientBound)
	if err != nil {
		logger.Fatalw("receiving pong", "error", err)
	}
	if _, ok := pong.(*packets.PingResponsePacket); !ok {
		logger.Fatalw("unexpected packet", "type", fmt.Sprintf("%T", pong))
	}
	latency := time.Since(start)

	fmt.Printf("%s (protocol %d)\n", doc.Version.Name, doc.Version.Protocol)
	fmt.Printf("%s\n", doc.Description.Text)
	fmt.Printf("players: %d/%d\n", doc.Players.Online, doc.Players.Max)
	fmt.Printf("latency: %s\n", latency)
}
