// Package conn implements the per-connection framing and phase state
// machine: reading and writing length-prefixed packet frames over a
// net.Conn, and tracking which of the five protocol phases the connection
// is currently in.
package conn

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mcproto/mcio"
	"mcproto/packetid"
	"mcproto/packets"
	"mcproto/registry"
	"mcproto/varint"
)

// MaxPacketSize is the largest declared frame length this module accepts,
// matching the vanilla client/server's own limit.
const MaxPacketSize = 2_097_151

// ErrPacketTooLarge is returned when a frame's declared length exceeds
// MaxPacketSize.
var ErrPacketTooLarge = errors.New("conn: packet exceeds maximum size")

// ErrNoDataReceived is returned when the stream ends (a read yields no
// bytes, io.EOF) before the requested bytes arrive; the connection is
// closed before it is returned.
var ErrNoDataReceived = errors.New("conn: no data received")

// ErrConnectionAbortedLocally is returned when the local OS reports the
// connection was aborted by local networking software.
var ErrConnectionAbortedLocally = errors.New("conn: connection aborted locally")

// ErrWouldBlock is returned by TryReceive when no byte of a new frame
// arrives within its short readiness wait.
var ErrWouldBlock = errors.New("conn: would block")

var logger = zap.Must(zap.NewProduction()).Sugar()

// Conn wraps a net.Conn with Minecraft's framing and phase tracking.
type Conn struct {
	netConn               net.Conn
	br                    *bufio.Reader
	Phase                 packetid.Phase
	CompressionThreshold  *int32
	ClientProtocolVersion *int32

	closeOnce sync.Once
}

// New wraps netConn, starting in the Handshaking phase.
func New(netConn net.Conn) *Conn {
	return &Conn{netConn: netConn, br: bufio.NewReader(netConn), Phase: packetid.Handshaking}
}

// ChangeState transitions the connection to a new phase.
func (c *Conn) ChangeState(p packetid.Phase) {
	logger.Infow("phase transition", "remote", c.netConn.RemoteAddr(), "from", c.Phase, "to", p)
	c.Phase = p
}

// Send frames and writes p as a serverbound-or-clientbound packet
// (direction is determined by the packet's own registration).
func (c *Conn) Send(p packets.Packet) error {
	dst := mcio.NewSink()
	if err := registry.Encode(p, dst); err != nil {
		return err
	}
	_, err := c.netConn.Write(dst.Bytes())
	return err
}

// maxLengthPrefixBytes is the cap on the length VarInt's own encoded size:
// three base-128 groups cover every value up to MaxPacketSize (2^21-1). A
// continue bit still set past the third byte is a malformed varint
// (varint.ErrVarTypeTooLong), distinct from a well-formed length that
// exceeds MaxPacketSize (ErrPacketTooLarge).
const maxLengthPrefixBytes = 3

// Receive blocks until one full frame is read and decoded against the
// connection's current phase and the given direction (the direction a
// listener expects to receive, typically ServerBound for a server and
// ClientBound for a client).
//
// The length prefix is re-handed to the dispatcher along with the body
// rather than stripped: readLengthVarInt captures the prefix's own raw
// bytes, and registry.Decode re-parses that length itself. The redundant
// re-parse is intentional; the decoder is framing-aware.
func (c *Conn) Receive(direction packetid.Direction) (packets.Packet, error) {
	lengthBytes, length, err := c.readLengthVarInt()
	if err != nil {
		return nil, err
	}
	// A 3-byte prefix can't actually encode past MaxPacketSize, but check
	// the decoded value anyway.
	if length < 0 || length > MaxPacketSize {
		return nil, ErrPacketTooLarge
	}
	buf := make([]byte, len(lengthBytes)+int(length))
	copy(buf, lengthBytes)
	if err := c.readFull(buf[len(lengthBytes):]); err != nil {
		return nil, err
	}
	return registry.Decode(c.Phase, direction, mcio.NewSource(buf))
}

// readLengthVarInt reads the frame's length prefix, one byte at a time, so
// a garbage or truncated prefix is detected before any bulk read. It
// returns the raw prefix bytes (needed to rebuild the frame for
// registry.Decode) alongside the decoded value.
func (c *Conn) readLengthVarInt() ([]byte, int32, error) {
	var result uint32
	var raw []byte
	buf := make([]byte, 1)
	for i := 0; i < maxLengthPrefixBytes; i++ {
		if err := c.readFull(buf); err != nil {
			return nil, 0, err
		}
		b := buf[0]
		raw = append(raw, b)
		result |= uint32(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			return raw, int32(result), nil
		}
	}
	return nil, 0, varint.ErrVarTypeTooLong
}

// readFull reads exactly len(buf) bytes, using io.ReadFull rather than a
// single Read call so a short read from the kernel never gets mistaken for
// a complete (but truncated) frame.
func (c *Conn) readFull(buf []byte) error {
	_, err := io.ReadFull(c.br, buf)
	if err == nil {
		return nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		c.Close()
		return ErrNoDataReceived
	}
	if strings.Contains(err.Error(), "An established connection was aborted by the software in your host machine") {
		c.Close()
		return ErrConnectionAbortedLocally
	}
	return err
}

// Peek decodes the next frame without consuming it: a subsequent Receive
// observes the same packet. It grows its look-ahead window one length-
// prefix byte at a time via the buffered reader's own Peek, which is
// non-destructive by construction, then peeks the full id+body span once
// the declared length is known.
func (c *Conn) Peek(direction packetid.Direction) (packets.Packet, error) {
	var raw []byte
	for i := 0; i < maxLengthPrefixBytes; i++ {
		buf, err := c.br.Peek(i + 1)
		if err != nil {
			return nil, c.peekErr(err)
		}
		raw = buf
		if buf[i]&0x80 == 0 {
			break
		}
		if i == maxLengthPrefixBytes-1 {
			return nil, varint.ErrVarTypeTooLong
		}
	}
	length, err := varint.DecodeVarInt(mcio.NewSource(append([]byte(nil), raw...)))
	if err != nil {
		return nil, err
	}
	if length < 0 || length > MaxPacketSize {
		return nil, ErrPacketTooLarge
	}
	full, err := c.br.Peek(len(raw) + int(length))
	if err != nil {
		return nil, c.peekErr(err)
	}
	return registry.Decode(c.Phase, direction, mcio.NewSource(append([]byte(nil), full...)))
}

func (c *Conn) peekErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		c.Close()
		return ErrNoDataReceived
	}
	return err
}

// TryReceive returns ErrWouldBlock instead of blocking when no byte of a
// new frame is buffered or arrives within a one-millisecond read deadline;
// the probe consumes nothing. Once a byte is available it reads the rest of
// the frame exactly like Receive, blocking until the frame is complete.
func (c *Conn) TryReceive(direction packetid.Direction) (packets.Packet, error) {
	if c.br.Buffered() == 0 {
		if err := c.netConn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
			return nil, err
		}
		_, err := c.br.Peek(1)
		c.netConn.SetReadDeadline(time.Time{})
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, ErrWouldBlock
			}
			return nil, c.peekErr(err)
		}
	}
	return c.Receive(direction)
}

// Close closes the underlying connection. Safe to call multiple times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.netConn.Close()
	})
	return err
}

// NetConn returns the underlying net.Conn, for callers (like the proxy
// edge) that need to write raw bytes or inspect the remote address after
// the handshake.
func (c *Conn) NetConn() net.Conn {
	return c.netConn
}

// Reader returns the buffered reader wrapping the underlying net.Conn.
// Callers that relay raw bytes after framed reads (Receive/Peek/TryReceive)
// must read through this instead of NetConn directly, or they silently
// drop whatever bytes a prior Peek already pulled into the buffer.
func (c *Conn) Reader() io.Reader {
	return c.br
}
