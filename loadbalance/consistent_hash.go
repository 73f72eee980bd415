package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"

	"mcproto/registry"
)

// ConsistentHashBalancer maps a player's username to a backend using a
// hash ring, so a reconnecting player lands where their session state
// already lives. Affinity bends to load: when the preferred backend is
// full, Pick walks clockwise to the nearest backend with open slots
// instead of failing the login, and the player returns to their usual
// backend once it drains (the ring itself never moves).
//
// Virtual nodes: each backend is mapped to N virtual nodes on the ring.
// Without them, three backends might cluster together on the ring and
// absorb wildly uneven player counts; 100 virtual nodes per backend gives
// statistical uniformity.
//
//	Hash Ring:
//	                  0
//	                ╱   ╲
//	              ╱       ╲
//	         B ●               ● A (full → keep walking)
//	           │  username ◆─► │
//	         C ●               ● A' (virtual node of A)
//	              ╲       ╱
//	                ╲   ╱
type ConsistentHashBalancer struct {
	replicas int                                  // Virtual nodes per backend
	ring     []uint32                             // Sorted hash values on the ring
	nodes    map[uint32]*registry.ServiceInstance // Hash value → backend mapping
}

// NewConsistentHashBalancer creates a hash ring with 100 virtual nodes per
// backend.
func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{
		replicas: 100,
		ring:     []uint32{},
		nodes:    make(map[uint32]*registry.ServiceInstance),
	}
}

// Rebuild replaces the ring with the given backend set. Callers that
// discover instances per login (the proxy, the client) rebuild right
// before picking, so ring membership and published load both track the
// registry; because every backend's virtual nodes are derived from its
// address alone, an unchanged backend keeps its ring positions and its
// players keep their affinity across rebuilds.
func (b *ConsistentHashBalancer) Rebuild(instances []registry.ServiceInstance) {
	b.ring = b.ring[:0]
	b.nodes = make(map[uint32]*registry.ServiceInstance, len(instances)*b.replicas)
	for i := range instances {
		b.add(&instances[i])
	}
	sort.Slice(b.ring, func(i, j int) bool {
		return b.ring[i] < b.ring[j]
	})
}

// add places a backend onto the hash ring with N virtual nodes, each
// hashed from "{addr}#{i}". The ring is left unsorted; Rebuild sorts once
// after all backends are placed.
func (b *ConsistentHashBalancer) add(instance *registry.ServiceInstance) {
	for i := 0; i < b.replicas; i++ {
		key := fmt.Sprintf("%s#%d", instance.Addr, i)
		hash := crc32.ChecksumIEEE([]byte(key))
		b.ring = append(b.ring, hash)
		b.nodes[hash] = instance
	}
}

// Pick finds the backend responsible for key (typically a username). It
// hashes the key, binary-searches for the first ring node at or past that
// hash, then walks clockwise past any full backends, wrapping around the
// ring as needed. It fails only when every backend is full.
//
// Note: Pick takes a string key rather than an instance list, so this
// type does not implement the Balancer interface directly — callers that
// want affinity Rebuild the ring from each discovery result and key it
// themselves.
func (b *ConsistentHashBalancer) Pick(key string) (*registry.ServiceInstance, error) {
	if len(b.ring) == 0 {
		return nil, fmt.Errorf("no backend instances on the ring")
	}
	hash := crc32.ChecksumIEEE([]byte(key))

	start := sort.Search(len(b.ring), func(i int) bool {
		return b.ring[i] >= hash
	})

	for j := 0; j < len(b.ring); j++ {
		idx := (start + j) % len(b.ring)
		inst := b.nodes[b.ring[idx]]
		if !inst.Full() {
			return inst, nil
		}
	}
	return nil, fmt.Errorf("all backend instances on the ring are full")
}

func (b *ConsistentHashBalancer) Name() string {
	return "ConsistentHash"
}
