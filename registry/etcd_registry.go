// Package registry provides the etcd-based implementation of the Registry
// interface, used by the proxy edge to track live backend Minecraft server
// processes and their current player load.
//
// Layout in etcd:
//
//	Key:   /mcproto/{ServiceName}/{Addr}
//	Value: JSON-encoded ServiceInstance (capacity, online count, protocol)
//
// Registration uses TTL-based leases: if a backend crashes, its lease
// expires and the entry is automatically removed, preventing the proxy
// from routing new players to a dead process. Load updates re-put the same
// key under the same lease, so a backend that keeps playing also keeps its
// registration alive, and its published Online count tracks reality
// between keep-alives.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdRegistry implements the Registry interface using etcd v3. It
// remembers the lease and instance for every backend this process
// registered, so UpdateLoad can republish under the original lease and
// Deregister can revoke it eagerly instead of waiting for expiry.
type EtcdRegistry struct {
	client *clientv3.Client

	mu    sync.Mutex
	owned map[string]*registration // key() → this process's registrations
}

type registration struct {
	leaseID  clientv3.LeaseID
	instance ServiceInstance
}

// NewEtcdRegistry creates a new registry connected to the given etcd
// endpoints.
func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints: endpoints,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c, owned: make(map[string]*registration)}, nil
}

func key(serviceName, addr string) string {
	return "/mcproto/" + serviceName + "/" + addr
}

// Register adds a backend instance to etcd with a TTL lease.
//
// Flow:
//  1. Create a lease with the given TTL (e.g. 10 seconds).
//  2. Put the instance JSON with the lease attached.
//  3. Start KeepAlive to automatically renew the lease.
//  4. Remember the lease so UpdateLoad and Deregister can act on it.
func (r *EtcdRegistry) Register(serviceName string, instance ServiceInstance, ttl int64) error {
	ctx := context.TODO()

	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}

	if err := r.put(ctx, serviceName, instance, lease.ID); err != nil {
		return err
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
		}
	}()

	r.mu.Lock()
	r.owned[key(serviceName, instance.Addr)] = &registration{leaseID: lease.ID, instance: instance}
	r.mu.Unlock()
	return nil
}

// UpdateLoad republishes a backend's current player count under its
// original lease. Only registrations made through this EtcdRegistry can be
// updated; a backend cannot rewrite another's entry.
func (r *EtcdRegistry) UpdateLoad(serviceName string, addr string, online int32) error {
	r.mu.Lock()
	reg, ok := r.owned[key(serviceName, addr)]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("registry: %s/%s was not registered by this process", serviceName, addr)
	}
	reg.instance.Online = online
	instance := reg.instance
	leaseID := reg.leaseID
	r.mu.Unlock()

	return r.put(context.TODO(), serviceName, instance, leaseID)
}

func (r *EtcdRegistry) put(ctx context.Context, serviceName string, instance ServiceInstance, leaseID clientv3.LeaseID) error {
	val, err := json.Marshal(instance)
	if err != nil {
		return err
	}
	_, err = r.client.Put(ctx, key(serviceName, instance.Addr), string(val), clientv3.WithLease(leaseID))
	return err
}

// Deregister removes a backend instance from etcd, revoking its lease so
// the entry disappears immediately rather than at TTL expiry. Called
// during graceful shutdown before the backend's listener closes.
func (r *EtcdRegistry) Deregister(serviceName string, addr string) error {
	ctx := context.TODO()

	r.mu.Lock()
	reg, ok := r.owned[key(serviceName, addr)]
	delete(r.owned, key(serviceName, addr))
	r.mu.Unlock()

	if ok {
		// Revoking the lease also deletes the key; the explicit Delete
		// below covers entries whose lease this process doesn't hold.
		r.client.Revoke(ctx, reg.leaseID)
	}
	_, err := r.client.Delete(ctx, key(serviceName, addr))
	return err
}

// Watch monitors a service prefix in etcd and emits updated instance lists
// whenever changes occur: registrations, deregistrations, lease expiry,
// and load updates alike, since all three mutate keys under the prefix.
func (r *EtcdRegistry) Watch(serviceName string) <-chan []ServiceInstance {
	ctx := context.TODO()
	ch := make(chan []ServiceInstance, 1)
	prefix := "/mcproto/" + serviceName + "/"

	go func() {
		// Seed subscribers with the current backend set before the first
		// change arrives.
		if instances, err := r.Discover(serviceName); err == nil {
			ch <- instances
		}
		watchChan := r.client.Watch(ctx, prefix, clientv3.WithPrefix())
		for range watchChan {
			instances, err := r.Discover(serviceName)
			if err != nil {
				continue
			}
			ch <- instances
		}
	}()

	return ch
}

// Discover returns all currently registered instances for a service.
func (r *EtcdRegistry) Discover(serviceName string) ([]ServiceInstance, error) {
	ctx := context.TODO()
	prefix := "/mcproto/" + serviceName + "/"

	resp, err := r.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	instances := make([]ServiceInstance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var instance ServiceInstance
		if err := json.Unmarshal(kv.Value, &instance); err != nil {
			continue
		}
		instances = append(instances, instance)
	}

	return instances, nil
}
