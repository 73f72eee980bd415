// Package client implements backend selection and dialing: service discovery, load balancing, and a pooled TCP connection per
// backend address.
//
// Dial flow:
//
//	Dial("minecraft")
//	  → Registry.Discover("minecraft")  → get instance list from etcd
//	  → Balancer.Pick(instances)        → select one address
//	  → pool(addr).Get()                → borrow a pooled connection
package client

import (
	"fmt"
	"net"
	"sync"
	"time"

	"mcproto/loadbalance"
	"mcproto/registry"
	"mcproto/transport"
)

// backendIdleTimeout is how long a pooled backend connection may sit
// unused before the pool retires it instead of handing it to a player.
const backendIdleTimeout = 2 * time.Minute

// ErrNoInstances is returned when a service name has no registered backend
// instances to pick among.
var ErrNoInstances = fmt.Errorf("client: no registered instances")

// Client discovers backend Minecraft server instances, picks one via a
// load-balancing strategy, and hands out raw net.Conn connections to it
// from a per-address pool. A borrowed connection carries one session until
// it is closed back into the pool; it is not multiplexed across many calls.
type Client struct {
	registry registry.Registry
	balancer loadbalance.Balancer
	mu       sync.Mutex                     // Protects pools
	pools    map[string]*transport.ConnPool // Per-address connection pool
	poolSize int
}

// NewClient creates a client that discovers instances via reg and picks
// among them with bal. poolSize bounds how many connections are kept open
// per backend address.
func NewClient(reg registry.Registry, bal loadbalance.Balancer, poolSize int) *Client {
	return &Client{
		registry: reg,
		balancer: bal,
		pools:    make(map[string]*transport.ConnPool),
		poolSize: poolSize,
	}
}

// Dial discovers instances for serviceName, picks one with the configured
// balancer, and returns a pooled connection to it.
func (c *Client) Dial(serviceName string) (*transport.PoolConn, error) {
	instances, err := c.registry.Discover(serviceName)
	if err != nil {
		return nil, err
	}
	instance, err := c.balancer.Pick(instances)
	if err != nil {
		return nil, err
	}
	return c.DialAddr(instance.Addr)
}

// DialForUsername discovers instances for serviceName and picks one by
// consistent-hashing username rather than going through the client's
// configured Balancer, so repeated logins from the same player land on the
// same backend (session affinity) instead of wherever the general-purpose
// strategy sends the next call.
func (c *Client) DialForUsername(serviceName, username string) (*transport.PoolConn, error) {
	instances, err := c.registry.Discover(serviceName)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}
	ring := loadbalance.NewConsistentHashBalancer()
	ring.Rebuild(instances)
	instance, err := ring.Pick(username)
	if err != nil {
		return nil, err
	}
	return c.DialAddr(instance.Addr)
}

// DialAddr returns a pooled connection to addr directly, bypassing
// discovery and balancing. Dial and DialForUsername call it once they have
// picked an address.
func (c *Client) DialAddr(addr string) (*transport.PoolConn, error) {
	return c.pool(addr).Get()
}

// pool returns the connection pool for addr, creating it on first use.
func (c *Client) pool(addr string) *transport.ConnPool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pools[addr]; ok {
		return p
	}
	p := transport.NewConnPool(addr, c.poolSize, backendIdleTimeout, func() (net.Conn, error) {
		return net.Dial("tcp", addr)
	})
	c.pools[addr] = p
	return p
}

// Close closes every backend connection pool.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, p := range c.pools {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("client: closing pool: %w", err)
		}
	}
	return firstErr
}
