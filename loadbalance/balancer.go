// Package loadbalance provides the strategies the proxy edge uses to
// spread player connections across registered backend server instances.
// Every strategy reads the live load the backends publish through the
// registry (current player count vs. capacity), not static weights: a
// full backend is never picked, and a draining one attracts fewer logins.
//
// Three strategies are implemented:
//   - RoundRobin:      interchangeable backends, skipping full ones
//   - FreeSlot:        probabilistic, weighted by open player slots
//   - ConsistentHash:  session affinity by username, spilling past full
//     backends to the next on the ring
package loadbalance

import "mcproto/registry"

// Balancer is the interface for instance-list-driven strategies. The proxy
// edge calls Pick once per incoming player connection with the freshest
// instance list discovery returned, so the load each instance reports is
// at most one discovery interval stale.
type Balancer interface {
	// Pick selects one backend with open player slots from the available
	// list. Called on every incoming connection, so it must be
	// goroutine-safe. It fails when the list is empty or every backend
	// is full.
	Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}
