package loadbalance

import (
	"fmt"
	"sync/atomic"

	"mcproto/registry"
)

// RoundRobinBalancer cycles through backends in order, one per incoming
// connection, skipping any backend whose published player count has
// reached its capacity. An atomic counter keeps it lock-free and
// goroutine-safe.
//
// Best for: interchangeable backends where any instance can host any
// player.
type RoundRobinBalancer struct {
	counter int64 // Atomic counter, incremented on each Pick()
}

// Pick selects the next non-full backend in round-robin order. Full
// backends consume a counter slot but are passed over, so the rotation
// picks up where it left off once they drain.
func (b *RoundRobinBalancer) Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no backend instances available")
	}
	for range instances {
		index := atomic.AddInt64(&b.counter, 1) % int64(len(instances))
		if !instances[index].Full() {
			return &instances[index], nil
		}
	}
	return nil, fmt.Errorf("all %d backend instances are full", len(instances))
}

func (b *RoundRobinBalancer) Name() string {
	return "RoundRobin"
}
