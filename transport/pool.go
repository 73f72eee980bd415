// Package transport provides the TCP connection pool client.Client
// borrows backend connections from. A borrowed connection
// carries exactly one player's relayed session (it is never multiplexed),
// which shapes the pool's behavior: a connection coming back after a
// session may have been sitting in a half-closed or desynchronized state,
// so the pool health-checks on borrow and evicts connections that have
// idled past their deadline rather than handing them straight back out.
package transport

import (
	"fmt"
	"net"
	"sync"
	"time"
)

// ConnPool manages reusable TCP connections to a single backend address.
// Connections are created lazily up to maxConns; returned connections wait
// in an idle queue until re-borrowed, evicted for idling too long, or
// found dead by the borrow-time liveness probe.
type ConnPool struct {
	mu          sync.Mutex
	idle        chan *PoolConn // Idle queue — FIFO, goroutine-safe
	addr        string
	maxConns    int
	curConns    int // Live connections, borrowed or idle
	idleTimeout time.Duration
	closed      bool
	factory     func() (net.Conn, error)
}

// PoolConn wraps a net.Conn borrowed from a ConnPool. Closing it returns
// it to the pool unless it was marked unusable; MarkUnusable is how the
// relay signals that a session ended with the backend in an unknown state.
type PoolConn struct {
	net.Conn
	pool      *ConnPool
	unusable  bool
	idleSince time.Time // Set when returned to the idle queue
}

// MarkUnusable flags the connection so Close discards it instead of
// returning it to the pool. Call it whenever the session over this
// connection ended abnormally: the backend may still consider the old
// session live, and the next borrower would inherit its half-finished
// protocol state.
func (pc *PoolConn) MarkUnusable() {
	pc.unusable = true
}

// Close returns the connection to its pool, or really closes it when it
// is unusable, the pool is full, or the pool has shut down.
func (pc *PoolConn) Close() error {
	return pc.pool.put(pc)
}

// NewConnPool creates a pool of at most maxConns connections to addr.
// Idle connections older than idleTimeout are closed at borrow time: a
// backend connection that has sat unused that long has likely been
// dropped by a NAT table or the backend's own idle reaper, and handing it
// to a player would fail their login.
func NewConnPool(addr string, maxConns int, idleTimeout time.Duration, factory func() (net.Conn, error)) *ConnPool {
	return &ConnPool{
		idle:        make(chan *PoolConn, maxConns),
		addr:        addr,
		maxConns:    maxConns,
		idleTimeout: idleTimeout,
		factory:     factory,
	}
}

// Get borrows a connection.
// Strategy:
//  1. Drain the idle queue, retiring stale or dead connections, and hand
//     out the first healthy one.
//  2. If the queue is empty and the pool is under its cap, dial fresh.
//  3. At capacity, block until a connection is returned, re-checking its
//     health before handing it out.
func (p *ConnPool) Get() (*PoolConn, error) {
	for {
		select {
		case pc := <-p.idle:
			if p.retire(pc) {
				continue
			}
			return pc, nil
		default:
		}
		break
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("transport: pool for %s is closed", p.addr)
	}
	if p.curConns < p.maxConns {
		p.curConns++
		p.mu.Unlock()
		netConn, err := p.factory()
		if err != nil {
			p.mu.Lock()
			p.curConns--
			p.mu.Unlock()
			return nil, err
		}
		return &PoolConn{Conn: netConn, pool: p}, nil
	}
	p.mu.Unlock()

	// At capacity — wait for a session to end and its connection to come
	// back, then health-check it like any other idle connection.
	pc := <-p.idle
	if p.retire(pc) {
		return p.Get()
	}
	return pc, nil
}

// put returns a borrowed connection to the idle queue, or discards it.
func (p *ConnPool) put(pc *PoolConn) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if pc.unusable || closed {
		return p.discard(pc)
	}
	pc.idleSince = time.Now()
	select {
	case p.idle <- pc:
		return nil
	default:
		// Queue full (more returns than slots — possible after Close
		// raced a return); drop the extra connection.
		return p.discard(pc)
	}
}

// retire reports whether an idle connection should be thrown away instead
// of handed to a borrower, closing it if so.
func (p *ConnPool) retire(pc *PoolConn) bool {
	if p.idleTimeout > 0 && time.Since(pc.idleSince) > p.idleTimeout {
		p.discard(pc)
		return true
	}
	if !pc.aliveProbe() {
		p.discard(pc)
		return true
	}
	return false
}

// aliveProbe does a one-millisecond read on the idle connection. An idle
// backend connection must have nothing to say: a timeout means the peer
// is simply quiet (healthy), while EOF, a transport error, or unsolicited
// bytes all mean the connection cannot carry a fresh session.
func (pc *PoolConn) aliveProbe() bool {
	if err := pc.Conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return false
	}
	var one [1]byte
	n, err := pc.Conn.Read(one[:])
	pc.Conn.SetReadDeadline(time.Time{})
	if n > 0 {
		return false
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return true
	}
	return false
}

func (p *ConnPool) discard(pc *PoolConn) error {
	err := pc.Conn.Close()
	p.mu.Lock()
	p.curConns--
	p.mu.Unlock()
	return err
}

// Close shuts down the pool: no new borrows, idle connections closed now,
// borrowed connections closed as their sessions end and they come back.
func (p *ConnPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	for {
		select {
		case pc := <-p.idle:
			p.discard(pc)
		default:
			return nil
		}
	}
}
