package cache

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Manager is a TTL store whose entries expire after a period without access.
// The proxy keeps per-client rate limiters here; responses are never cached.
type Manager struct {
	cache *cache.Cache
	ttl   time.Duration
	mu    sync.Mutex
}

func NewManager(idleTTL time.Duration) *Manager {
	cleanup := idleTTL
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &Manager{
		cache: cache.New(idleTTL, cleanup),
		ttl:   idleTTL,
	}
}

func (m *Manager) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touch(key)
}

// GetOrCreate returns the entry for key, creating it with create when it is
// absent or expired. Every access extends the entry's lifetime.
func (m *Manager) GetOrCreate(key string, create func() interface{}) interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	if value, found := m.touch(key); found {
		return value
	}
	value := create()
	m.cache.Set(key, value, cache.DefaultExpiration)
	return value
}

func (m *Manager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(key)
}

func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Flush()
}

// ItemCount includes expired entries not yet swept
func (m *Manager) ItemCount() int {
	return m.cache.ItemCount()
}

func (m *Manager) touch(key string) (interface{}, bool) {
	value, found := m.cache.Get(key)
	if found {
		m.cache.Set(key, value, cache.DefaultExpiration)
	}
	return value, found
}
