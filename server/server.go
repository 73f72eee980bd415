// Package server implements the Minecraft server role: an accept loop that
// answers STATUS/PING locally and drives new connections through the
// handshake, login, and configuration phases before handing them off to a
// minimal play loop.
//
// Connection pipeline:
//
//	Accept conn → handleConn (one goroutine per connection)
//	  → handlers.Handshake → dispatch on NextState
//	    → Status: handlers.Status (answers + closes)
//	    → Login: handlers.LoginFlow → handlers.ConfigurationFlow → playLoop
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"mcproto/conn"
	"mcproto/handlers"
	"mcproto/middleware"
	"mcproto/packetid"
	"mcproto/packets"
	"mcproto/registry"
	"mcproto/statuspb"
)

var logger = zap.Must(zap.NewProduction()).Sugar()

// serviceName is the etcd key-prefix this server registers itself under.
const serviceName = "minecraft"

// Server is the Minecraft server: it answers status pings with a configured
// document and, for players that log in, plays through configuration.
type Server struct {
	status     statuspb.StatusResponse // Document served in reply to StatusRequest
	knownPacks []packets.KnownPack     // Exchanged during the configuration phase

	listener      net.Listener
	wg            sync.WaitGroup // Tracks in-flight connections for graceful shutdown
	shutdown      atomic.Bool    // Set during shutdown to suppress spurious Accept errors
	online        atomic.Int32   // Players currently in the play phase
	registry      registry.Registry
	advertiseAddr string
	chain         middleware.Middleware // Wraps every connection's handshake→business-logic dispatch
}

// NewServer creates a server that answers status with the given document
// and advertises knownPacks during configuration. Every accepted connection
// is routed through a middleware chain (logging, rate limiting shared by
// STATUS and LOGIN connections alike, and a per-connection timeout) before
// its business handler runs.
func NewServer(status statuspb.StatusResponse, knownPacks []packets.KnownPack) *Server {
	return &Server{
		status:     status,
		knownPacks: knownPacks,
		chain: middleware.Chain(
			middleware.LoggingMiddleware(),
			middleware.RateLimitMiddleware(50000, 2000),
			middleware.TimeoutMiddleware(30*time.Second),
		),
	}
}

// Serve listens on address, optionally registers with the backend registry
// under advertiseAddr, and runs the Accept loop. It blocks until the
// listener is closed by Shutdown.
func (svr *Server) Serve(network, address, advertiseAddr string, reg registry.Registry) error {
	listener, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	svr.listener = listener

	svr.advertiseAddr = advertiseAddr
	if reg != nil {
		svr.registry = reg
		instance := registry.ServiceInstance{
			Addr:     advertiseAddr,
			Capacity: svr.status.Players.Max,
			Protocol: svr.status.Version.Protocol,
			Version:  svr.status.Version.Name,
		}
		if err := svr.registry.Register(serviceName, instance, 10); err != nil {
			return fmt.Errorf("server: registering with backend registry: %w", err)
		}
	}

	for {
		netConn, err := listener.Accept()
		if err != nil {
			if svr.shutdown.Load() {
				return nil
			}
			return err
		}
		svr.wg.Add(1)
		go svr.handleConn(netConn)
	}
}

// handleConn drives one connection through handshake, then routes the
// status or login+configuration+play dispatch through the middleware chain
// as a single PhaseEvent, until the client disconnects or a protocol error
// occurs.
func (svr *Server) handleConn(netConn net.Conn) {
	defer svr.wg.Done()
	defer netConn.Close()

	c := conn.New(netConn)
	hs, err := handlers.Handshake(c)
	if err != nil {
		logger.Infow("handshake failed", "remote", netConn.RemoteAddr(), "error", err)
		return
	}

	phase := packetid.Status
	if hs.NextState == packets.NextStateLogin {
		phase = packetid.Login
	}

	// Only the bounded handshake work (status exchange, or login+
	// configuration) runs through the chain's timeout; the play loop runs
	// for the life of the session and is started separately below.
	var start *packets.LoginStart
	dispatch := func(ctx context.Context, evt *middleware.PhaseEvent) *middleware.PhaseEvent {
		var dispatchErr error
		switch hs.NextState {
		case packets.NextStateStatus:
			// Report the live player count, not the count at startup.
			doc := svr.status
			doc.Players.Online = svr.online.Load()
			dispatchErr = handlers.Status(c, doc)
		case packets.NextStateLogin:
			start, dispatchErr = svr.loginAndConfigure(c)
		}
		return &middleware.PhaseEvent{RemoteAddr: evt.RemoteAddr, Phase: evt.Phase, PacketName: evt.PacketName, Err: dispatchErr}
	}

	evt := &middleware.PhaseEvent{RemoteAddr: netConn.RemoteAddr().String(), Phase: phase, PacketName: "Handshake"}
	result := svr.chain(dispatch)(context.Background(), evt)
	if result.Err != nil {
		logger.Infow("connection dispatch failed", "remote", netConn.RemoteAddr(), "phase", phase, "error", result.Err)
		return
	}
	if hs.NextState == packets.NextStateLogin && start != nil {
		svr.playLoop(c, start)
	}
}

// loginAndConfigure runs the login and configuration handshakes, the
// bounded portion of a login connection the chain's timeout middleware is
// sized for.
func (svr *Server) loginAndConfigure(c *conn.Conn) (*packets.LoginStart, error) {
	start, err := handlers.LoginFlow(c)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := handlers.ConfigurationFlow(c, svr.knownPacks); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	return start, nil
}

// playLoop is a minimal PLAY-phase loop: it answers serverbound keep-alives
// and otherwise discards packets, since this module implements the
// connection lifecycle rather than full gameplay. It returns when the
// client disconnects. The player is counted against this backend's
// published load for exactly the duration of the loop.
func (svr *Server) playLoop(c *conn.Conn, start *packets.LoginStart) {
	logger.Infow("player entered play", "remote", c.NetConn().RemoteAddr(), "username", start.Name)
	svr.publishLoad(svr.online.Add(1))
	defer func() {
		svr.publishLoad(svr.online.Add(-1))
	}()
	for {
		p, err := c.Receive(packetid.ServerBound)
		if err != nil {
			return
		}
		if ka, ok := p.(*packets.KeepAliveServerbound); ok {
			if err := c.Send(&packets.KeepAliveClientbound{KeepAliveID: ka.KeepAliveID}); err != nil {
				return
			}
		}
	}
}

// publishLoad pushes the current player count to the backend registry so
// the proxy's balancers route against fresh numbers. Registry hiccups are
// logged, not fatal: a stale count degrades balancing, not gameplay.
func (svr *Server) publishLoad(online int32) {
	if svr.registry == nil {
		return
	}
	if err := svr.registry.UpdateLoad(serviceName, svr.advertiseAddr, online); err != nil {
		logger.Warnw("publishing player count", "online", online, "error", err)
	}
}

// Shutdown performs graceful shutdown: deregister from the backend
// registry, stop accepting new connections, then wait up to timeout for
// in-flight connections to finish.
func (svr *Server) Shutdown(timeout time.Duration) error {
	if svr.registry != nil {
		if err := svr.registry.Deregister(serviceName, svr.advertiseAddr); err != nil {
			logger.Warnw("deregistering from backend registry", "error", err)
		}
	}

	svr.shutdown.Store(true)
	svr.listener.Close()

	done := make(chan struct{})
	go func() {
		svr.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("server: timeout waiting for connections to finish")
	}
}
