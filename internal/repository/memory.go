package repository

import (
	"context"
	"sync"

	"quickkart/internal/model"
)

// memoryCartRepository implements CartRepository in process memory. It backs
// tests and deployments that do not persist guest carts across restarts.
type memoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string][]model.LineItem
}

// NewMemoryCartRepository creates an in-memory cart repository.
func NewMemoryCartRepository() CartRepository {
	return &memoryCartRepository{
		carts: make(map[string][]model.LineItem),
	}
}

// Load returns the persisted lines for a device.
func (r *memoryCartRepository) Load(ctx context.Context, deviceID string) ([]model.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.carts[deviceID]
	if !ok {
		return []model.LineItem{}, nil
	}

	items := make([]model.LineItem, len(stored))
	copy(items, stored)
	return items, nil
}

// Save replaces the persisted lines for a device.
func (r *memoryCartRepository) Save(ctx context.Context, deviceID string, items []model.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]model.LineItem, len(items))
	copy(stored, items)
	r.carts[deviceID] = stored
	return nil
}

// Delete discards the persisted cart for a device.
func (r *memoryCartRepository) Delete(ctx context.Context, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, deviceID)
	return nil
}
