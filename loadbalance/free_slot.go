package loadbalance

import (
	"fmt"
	"math/rand"

	"mcproto/registry"
)

// FreeSlotBalancer selects backends probabilistically by how many open
// player slots each one currently reports: a backend with 15 of 20 slots
// free attracts three times the logins of one with 5 free. Because the
// weights come from the live Online counts the backends publish, the
// distribution shifts automatically as players join and leave — no static
// tuning.
//
// Best for: heterogeneous backends, or fleets where sessions are long and
// a join-time snapshot would otherwise go stale.
//
// Algorithm:
//  1. Sum every backend's FreeSlots() → totalFree
//  2. Draw r in [0, totalFree)
//  3. Subtract each backend's free slots from r until r < 0
//  4. The backend that makes r negative is selected
type FreeSlotBalancer struct{}

func (b *FreeSlotBalancer) Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no backend instances available")
	}

	totalFree := int32(0)
	for _, v := range instances {
		totalFree += v.FreeSlots()
	}
	if totalFree == 0 {
		return nil, fmt.Errorf("all %d backend instances are full", len(instances))
	}

	r := rand.Int31n(totalFree)
	for i := range instances {
		r -= instances[i].FreeSlots()
		if r < 0 {
			return &instances[i], nil
		}
	}

	return nil, fmt.Errorf("unexpected error in free-slot selection")
}

func (b *FreeSlotBalancer) Name() string {
	return "FreeSlot"
}
