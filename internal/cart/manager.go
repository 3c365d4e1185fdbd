package cart

import (
	"context"
	"sync"

	"quickkart/internal/repository"

	"github.com/rs/zerolog"
)

// Manager hands out one Store per device/session, restoring the persisted
// guest cart the first time a device is seen.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	limits  Limits
	repo    repository.CartRepository
	backend Backend
	logger  zerolog.Logger
}

// NewManager creates a store manager.
func NewManager(limits Limits, repo repository.CartRepository, backend Backend, logger zerolog.Logger) *Manager {
	return &Manager{
		stores:  make(map[string]*Store),
		limits:  limits,
		repo:    repo,
		backend: backend,
		logger:  logger,
	}
}

// ForDevice returns the store for a device, creating and restoring it on
// first use.
func (m *Manager) ForDevice(ctx context.Context, deviceID string) (*Store, error) {
	m.mu.Lock()
	store, ok := m.stores[deviceID]
	m.mu.Unlock()
	if ok {
		return store, nil
	}

	store = NewStore(deviceID, m.limits, m.repo, m.backend, m.logger)
	if err := store.Restore(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have restored the same device concurrently.
	if existing, ok := m.stores[deviceID]; ok {
		return existing, nil
	}
	m.stores[deviceID] = store
	return store, nil
}

// Drop forgets the in-memory store for a device. Persisted state is not
// touched.
func (m *Manager) Drop(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, deviceID)
}
