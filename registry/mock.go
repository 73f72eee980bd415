package registry

import (
	"fmt"
	"sync"
)

// MockRegistry is an in-memory Registry used by tests that need backend
// discovery and load publishing without a live etcd instance.
type MockRegistry struct {
	mu        sync.Mutex
	instances map[string][]ServiceInstance
}

// NewMockRegistry returns an empty MockRegistry.
func NewMockRegistry() *MockRegistry {
	return &MockRegistry{instances: make(map[string][]ServiceInstance)}
}

func (m *MockRegistry) Register(serviceName string, inst ServiceInstance, ttl int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[serviceName] = append(m.instances[serviceName], inst)
	return nil
}

func (m *MockRegistry) UpdateLoad(serviceName string, addr string, online int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	insts := m.instances[serviceName]
	for i := range insts {
		if insts[i].Addr == addr {
			insts[i].Online = online
			return nil
		}
	}
	return fmt.Errorf("registry: %s/%s is not registered", serviceName, addr)
}

func (m *MockRegistry) Deregister(serviceName string, addr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	insts := m.instances[serviceName]
	for i, inst := range insts {
		if inst.Addr == addr {
			m.instances[serviceName] = append(insts[:i], insts[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockRegistry) Discover(serviceName string) ([]ServiceInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ServiceInstance, len(m.instances[serviceName]))
	copy(out, m.instances[serviceName])
	return out, nil
}

func (m *MockRegistry) Watch(serviceName string) <-chan []ServiceInstance {
	return nil
}
