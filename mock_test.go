package main

import (
	"context"
	"errors"
	"sync"

	"github.com/Financial-Times/go-logger"
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	logger.InitLogger("coherence-test-server", "debug")
}

type mockCache struct {
	sync.Mutex
	entries     map[int]string
	clearCount  int
	putAllSizes []int
	clearErr    error
	putAllErr   error
	sizeErr     error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[int]string)}
}

func (c *mockCache) Clear(_ context.Context) error {
	c.Lock()
	defer c.Unlock()
	if c.clearErr != nil {
		return c.clearErr
	}
	c.clearCount++
	c.entries = make(map[int]string)
	return nil
}

func (c *mockCache) PutAll(_ context.Context, entries map[int]string) error {
	c.Lock()
	defer c.Unlock()
	if c.putAllErr != nil {
		return c.putAllErr
	}
	c.putAllSizes = append(c.putAllSizes, len(entries))
	for k, v := range entries {
		c.entries[k] = v
	}
	return nil
}

func (c *mockCache) Size(_ context.Context) (int, error) {
	c.Lock()
	defer c.Unlock()
	if c.sizeErr != nil {
		return 0, c.sizeErr
	}
	return len(c.entries), nil
}

type mockCluster struct {
	sync.Mutex
	caches          map[string]*mockCache
	views           map[string]*mockCache
	getCacheErr     error
	edition         string
	editionErr      error
	version         string
	versionErr      error
	statusHA        map[string]string
	statusHAErr     map[string]error
	queriedServices []string
	federation      bool
	suspended       []string
	resumed         []string
	suspendErr      error
	disconnected    bool
}

func newMockCluster() *mockCluster {
	return &mockCluster{
		caches:      make(map[string]*mockCache),
		views:       make(map[string]*mockCache),
		edition:     "CE",
		version:     "22.06.10",
		statusHA:    make(map[string]string),
		statusHAErr: make(map[string]error),
	}
}

func (m *mockCluster) cache(name string) *mockCache {
	m.Lock()
	defer m.Unlock()
	if _, ok := m.caches[name]; !ok {
		m.caches[name] = newMockCache()
	}
	return m.caches[name]
}

func (m *mockCluster) getCache(name string) (namedCache, error) {
	if m.getCacheErr != nil {
		return nil, m.getCacheErr
	}
	return m.cache(name), nil
}

func (m *mockCluster) getView(name string) (namedCache, error) {
	m.Lock()
	defer m.Unlock()
	if _, ok := m.views[name]; !ok {
		m.views[name] = newMockCache()
	}
	return m.views[name], nil
}

func (m *mockCluster) suspendService(_ context.Context, serviceName string) error {
	if m.suspendErr != nil {
		return m.suspendErr
	}
	m.suspended = append(m.suspended, serviceName)
	return nil
}

func (m *mockCluster) resumeService(_ context.Context, serviceName string) error {
	m.resumed = append(m.resumed, serviceName)
	return nil
}

func (m *mockCluster) getServiceStatusHA(_ context.Context, serviceName string) (string, error) {
	m.queriedServices = append(m.queriedServices, serviceName)
	if err := m.statusHAErr[serviceName]; err != nil {
		return "", err
	}
	if status, ok := m.statusHA[serviceName]; ok {
		return status, nil
	}
	return "NODE-SAFE", nil
}

func (m *mockCluster) isServiceConfigured(_ context.Context, serviceName string) bool {
	return serviceName == federatedService && m.federation
}

func (m *mockCluster) getEdition(_ context.Context) (string, error) {
	return m.edition, m.editionErr
}

func (m *mockCluster) getVersion(_ context.Context) (string, error) {
	return m.version, m.versionErr
}

func (m *mockCluster) isConnected() bool {
	return !m.disconnected
}

var errBroken = errors.New("broken")

func newTestMetrics() *probeMetrics {
	return newProbeMetrics(prometheus.NewRegistry())
}
