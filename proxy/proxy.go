// Package proxy implements a Minecraft-protocol-aware edge listener: it
// answers STATUS locally and relays LOGIN connections to a backend chosen
// through the service registry and a load-balancing strategy.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"mcproto/conn"
	"mcproto/handlers"
	"mcproto/loadbalance"
	"mcproto/middleware"
	"mcproto/packetid"
	"mcproto/packets"
	"mcproto/registry"
	"mcproto/statuspb"
)

var logger = zap.Must(zap.NewProduction()).Sugar()

// backendService is the registry key-prefix backend Minecraft servers
// register themselves under, matching server.serviceName.
const backendService = "minecraft"

// ErrNoBackends is returned when a LOGIN connection arrives but the
// registry has no backend instances to route it to.
var ErrNoBackends = errors.New("proxy: no backend instances registered")

// Proxy is a Minecraft-protocol-aware reverse proxy: it answers STATUS
// pings itself (so the edge's own status document is what shows in a
// server list) and relays LOGIN connections to a backend picked from reg
// by consistent-hashing the connecting player's username, so repeated
// logins from the same player land on the same backend.
type Proxy struct {
	status   statuspb.StatusResponse
	registry registry.Registry

	listener net.Listener
	wg       sync.WaitGroup
	shutdown atomic.Bool

	statusChain middleware.Middleware
	dialChain   middleware.Middleware
	dialTimeout time.Duration
}

// New creates a proxy that answers status locally with status and routes
// LOGIN connections to backends discovered through reg.
func New(status statuspb.StatusResponse, reg registry.Registry) *Proxy {
	return &Proxy{
		status:      status,
		registry:    reg,
		dialTimeout: 5 * time.Second,
		statusChain: middleware.Chain(
			middleware.LoggingMiddleware(),
			middleware.RateLimitMiddleware(2000, 200),
		),
		dialChain: middleware.Chain(
			middleware.LoggingMiddleware(),
			middleware.RetryMiddleware(2, 100*time.Millisecond),
			middleware.TimeoutMiddleware(5*time.Second),
		),
	}
}

// Serve listens on address and relays connections until Shutdown closes
// the listener.
func (p *Proxy) Serve(network, address string) error {
	listener, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	p.listener = listener

	for {
		netConn, err := listener.Accept()
		if err != nil {
			if p.shutdown.Load() {
				return nil
			}
			return err
		}
		p.wg.Add(1)
		go p.handleConn(netConn)
	}
}

// Shutdown stops accepting new connections and waits up to timeout for
// in-flight relays to finish.
func (p *Proxy) Shutdown(timeout time.Duration) error {
	p.shutdown.Store(true)
	if p.listener != nil {
		p.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("proxy: timeout waiting for relays to finish")
	}
}

// handleConn answers a STATUS handshake locally or relays a LOGIN
// handshake to a backend, routed through the middleware chain as a single
// PhaseEvent.
func (p *Proxy) handleConn(netConn net.Conn) {
	defer p.wg.Done()

	c := conn.New(netConn)
	hs, err := handlers.Handshake(c)
	if err != nil {
		netConn.Close()
		logger.Infow("proxy handshake failed", "remote", netConn.RemoteAddr(), "error", err)
		return
	}

	if hs.NextState == packets.NextStateStatus {
		defer netConn.Close()
		evt := &middleware.PhaseEvent{RemoteAddr: netConn.RemoteAddr().String(), Phase: c.Phase, PacketName: "StatusRequest"}
		handler := func(ctx context.Context, evt *middleware.PhaseEvent) *middleware.PhaseEvent {
			return &middleware.PhaseEvent{RemoteAddr: evt.RemoteAddr, Phase: evt.Phase, PacketName: evt.PacketName, Err: handlers.Status(c, p.status)}
		}
		if result := p.statusChain(handler)(context.Background(), evt); result.Err != nil {
			logger.Infow("proxy status exchange failed", "remote", netConn.RemoteAddr(), "error", result.Err)
		}
		return
	}

	p.relayLogin(c, hs)
}

// relayLogin peeks the LOGIN connection's username without consuming the
// frame, picks a backend by consistent-hashing that username, dials it,
// replays the handshake and the peeked LoginStart frame, and then relays
// bytes bidirectionally until either side closes.
func (p *Proxy) relayLogin(c *conn.Conn, hs *packets.Handshake) {
	netConn := c.NetConn()
	defer netConn.Close()

	loginStart, err := c.Peek(packetid.ServerBound)
	if err != nil {
		logger.Infow("proxy peek login start failed", "remote", netConn.RemoteAddr(), "error", err)
		return
	}
	ls, ok := loginStart.(*packets.LoginStart)
	if !ok {
		logger.Infow("proxy expected LoginStart", "remote", netConn.RemoteAddr(), "got", fmt.Sprintf("%T", loginStart))
		return
	}

	var backend net.Conn
	dial := func(ctx context.Context, evt *middleware.PhaseEvent) *middleware.PhaseEvent {
		var dialErr error
		backend, dialErr = p.dialBackend(ls.Name, int16(hs.ProtocolVersion))
		return &middleware.PhaseEvent{RemoteAddr: evt.RemoteAddr, Phase: evt.Phase, PacketName: evt.PacketName, Err: dialErr}
	}
	evt := &middleware.PhaseEvent{RemoteAddr: netConn.RemoteAddr().String(), Phase: c.Phase, PacketName: "LoginStart"}
	if result := p.dialChain(dial)(context.Background(), evt); result.Err != nil {
		logger.Infow("proxy dial backend failed", "remote", netConn.RemoteAddr(), "username", ls.Name, "error", result.Err)
		return
	}
	defer backend.Close()

	relayHandshake := &packets.Handshake{
		ProtocolVersion: hs.ProtocolVersion,
		ServerAddress:   hs.ServerAddress,
		Port:            hs.Port,
		NextState:       hs.NextState,
	}
	backendConn := conn.New(backend)
	if err := backendConn.Send(relayHandshake); err != nil {
		logger.Infow("proxy relay handshake failed", "remote", netConn.RemoteAddr(), "error", err)
		return
	}
	backendConn.ChangeState(c.Phase)

	p.relayBytes(c, backend, ls.Name)
}

// dialBackend discovers backend instances for the Minecraft service,
// keeps only the ones speaking the connecting client's protocol, and
// dials the one consistent-hashing picks for username, giving repeated
// logins from the same player session affinity to the same backend. The
// ring is rebuilt from each discovery, so full backends are spilled past
// using the load they published moments ago.
func (p *Proxy) dialBackend(username string, protocol int16) (net.Conn, error) {
	instances, err := p.registry.Discover(backendService)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, ErrNoBackends
	}
	compatible := registry.CompatibleWith(instances, protocol)
	if len(compatible) == 0 {
		return nil, fmt.Errorf("%w speaking protocol %d", ErrNoBackends, protocol)
	}

	ring := loadbalance.NewConsistentHashBalancer()
	ring.Rebuild(compatible)
	instance, err := ring.Pick(username)
	if err != nil {
		return nil, err
	}

	dialer := net.Dialer{Timeout: p.dialTimeout}
	return dialer.Dial("tcp", instance.Addr)
}

// relayBytes copies raw bytes bidirectionally between the player and the
// backend until either side closes, at which point the other is closed to
// unblock its copy. Framing is not reinterpreted past this point: the
// proxy already consumed and replayed the handshake and LoginStart, and
// everything after is opaque bytes from the proxy's perspective.
//
// The player→backend direction reads through player.Reader(), the buffered
// reader Peek already pulled bytes into, rather than player.NetConn()
// directly — reading the raw conn here would silently drop whatever bytes
// a prior Peek/Receive already buffered.
func (p *Proxy) relayBytes(player *conn.Conn, backend net.Conn, username string) {
	playerConn := player.NetConn()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		io.Copy(backend, player.Reader())
		backend.Close()
	}()
	go func() {
		defer wg.Done()
		io.Copy(playerConn, backend)
		playerConn.Close()
	}()

	wg.Wait()
	logger.Infow("proxy relay closed", "username", username, "remote", playerConn.RemoteAddr())
}
