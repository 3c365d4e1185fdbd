// Package cart holds the mutable line-item collection behind both cart
// session families: guest mutations are local, synchronous and clamped;
// authenticated mutations defer to the upstream backend and keep whatever
// it confirms.
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quickkart/internal/identity"
	"quickkart/internal/model"
	"quickkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Limits are the guest-mode quantity budgets: per variant and aggregated
// per product across its variants.
type Limits struct {
	VariantLimit int
	ProductLimit int
}

// DefaultLimits returns the standard retail budgets.
func DefaultLimits() Limits {
	return Limits{VariantLimit: 5, ProductLimit: 5}
}

// Store owns one session's cart state. All mutations go through its
// methods; snapshots handed out are value copies.
type Store struct {
	mu       sync.Mutex
	deviceID string
	items    []model.LineItem
	mode     model.CartMode
	open     bool
	limits   Limits
	repo     repository.CartRepository
	backend  Backend
	logger   zerolog.Logger
}

// NewStore creates a cart store for one device/session.
func NewStore(deviceID string, limits Limits, repo repository.CartRepository, backend Backend, logger zerolog.Logger) *Store {
	return &Store{
		deviceID: deviceID,
		mode:     model.ModeGuest,
		limits:   limits,
		repo:     repo,
		backend:  backend,
		logger:   logger.With().Str("component", "cart-store").Str("device_id", deviceID).Logger(),
	}
}

// Restore loads the persisted guest cart for this device.
func (s *Store) Restore(ctx context.Context) error {
	items, err := s.repo.Load(ctx, s.deviceID)
	if err != nil {
		return fmt.Errorf("failed to restore cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.logger.Debug().Int("item_count", len(items)).Msg("guest cart restored")
	return nil
}

// Snapshot returns a value copy of the current cart state.
func (s *Store) Snapshot() model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.LineItem, len(s.items))
	copy(items, s.items)
	return model.CartState{Items: items, Mode: s.mode, Open: s.open}
}

// Mode returns the current session mode.
func (s *Store) Mode() model.CartMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Open marks the cart drawer visible. Pure visibility; no inventory effect.
func (s *Store) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
}

// Close marks the cart drawer hidden.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

// findLocked returns the index of the line matching the given identity, or -1.
func (s *Store) findLocked(product identity.ProductKey, variant identity.VariantDescriptor) int {
	for i, item := range s.items {
		if identity.MatchesProduct(item.Product, product) && identity.MatchesVariant(item.Variant, variant) {
			return i
		}
	}
	return -1
}

// productTotalLocked sums quantities across every line of the product,
// excluding the line at skipIdx (pass -1 to include all lines).
func (s *Store) productTotalLocked(product identity.ProductKey, skipIdx int) int {
	total := 0
	for i, item := range s.items {
		if i == skipIdx {
			continue
		}
		if identity.MatchesProduct(item.Product, product) {
			total += item.Quantity
		}
	}
	return total
}

// persistLocked writes the current guest lines through the repository.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.deviceID, s.items); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

// AddGuest inserts the item or folds it into the matching line, clamped to
// the variant and product budgets. Requests beyond a budget are clamped
// silently; the add is rejected only when the clamped quantity would be
// zero, meaning sibling variants already hold the whole product budget.
func (s *Store) AddGuest(ctx context.Context, item model.LineItem) (model.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(item.Product, item.Variant)
	if idx >= 0 {
		otherVariants := s.productTotalLocked(item.Product, idx)
		newQty := s.items[idx].Quantity + item.Quantity
		newQty = min3(newQty, s.limits.VariantLimit, s.limits.ProductLimit-otherVariants)
		if newQty < 1 {
			newQty = 1
		}
		s.items[idx].Quantity = newQty
		if err := s.persistLocked(ctx); err != nil {
			return model.LineItem{}, err
		}
		s.logger.Debug().
			Int("quantity", newQty).
			Msg("guest line merged")
		return s.items[idx], nil
	}

	existingTotal := s.productTotalLocked(item.Product, -1)
	requested := item.Quantity
	if requested < 1 {
		requested = 1
	}
	qty := min3(requested, s.limits.VariantLimit, s.limits.ProductLimit-existingTotal)
	if qty <= 0 {
		s.logger.Debug().
			Int("existing_product_total", existingTotal).
			Msg("guest add rejected, product budget exhausted")
		return model.LineItem{}, model.ErrProductLimitReached(s.limits.ProductLimit)
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.Quantity = qty
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	s.items = append(s.items, item)

	if err := s.persistLocked(ctx); err != nil {
		return model.LineItem{}, err
	}
	s.logger.Debug().Int("quantity", qty).Msg("guest line added")
	return item, nil
}

// UpdateGuest adjusts the matching line's quantity by a signed delta.
// Positive deltas clamp against the budgets; negative deltas always succeed
// and floor at 1. Reaching the floor is reported through the returned line;
// the caller removes at the floor instead of storing zero.
func (s *Store) UpdateGuest(ctx context.Context, product identity.ProductKey, variant identity.VariantDescriptor, delta int) (model.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(product, variant)
	if idx < 0 {
		return model.LineItem{}, model.ErrLineNotFound
	}

	current := s.items[idx].Quantity
	var newQty int
	if delta >= 0 {
		otherVariants := s.productTotalLocked(product, idx)
		newQty = min3(current+delta, s.limits.VariantLimit, s.limits.ProductLimit-otherVariants)
		if newQty < 1 {
			newQty = 1
		}
	} else {
		newQty = current + delta
		if newQty < 1 {
			newQty = 1
		}
	}

	s.items[idx].Quantity = newQty
	if err := s.persistLocked(ctx); err != nil {
		return model.LineItem{}, err
	}
	return s.items[idx], nil
}

// RemoveGuest drops the line matching the given identity.
func (s *Store) RemoveGuest(ctx context.Context, product identity.ProductKey, variant identity.VariantDescriptor) (model.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(product, variant)
	if idx < 0 {
		return model.LineItem{}, model.ErrLineNotFound
	}

	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	if err := s.persistLocked(ctx); err != nil {
		return model.LineItem{}, err
	}
	s.logger.Debug().Msg("guest line removed")
	return removed, nil
}

// Clear empties the cart and discards the persisted copy. Used after
// checkout and for buy-now teardown.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if s.mode == model.ModeGuest {
		if err := s.repo.Delete(ctx, s.deviceID); err != nil {
			return fmt.Errorf("failed to clear persisted cart: %w", err)
		}
	}
	return nil
}

// Refresh replaces the cart with the server-held lines. Authenticated mode
// only.
func (s *Store) Refresh(ctx context.Context) error {
	items, err := s.backend.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.mode = model.ModeAuthenticated
	return nil
}

// UpsertAuthenticated applies the mutation optimistically, submits it to
// the backend, then replaces the pending line with the server echo or rolls
// back when the request fails.
func (s *Store) UpsertAuthenticated(ctx context.Context, item model.LineItem) (*model.LineItem, error) {
	s.mu.Lock()
	idx := s.findLocked(item.Product, item.Variant)
	var previous *model.LineItem
	if idx >= 0 {
		prev := s.items[idx]
		previous = &prev
		item.ID = prev.ID
		item.Pending = true
		s.items[idx] = item
	} else {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.Pending = true
		s.items = append(s.items, item)
		idx = len(s.items) - 1
	}
	s.mu.Unlock()

	confirmed, err := s.backend.Upsert(ctx, item)

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-locate: the slice may have shifted while the request was in flight.
	cur := s.findLocked(item.Product, item.Variant)
	if err != nil {
		s.logger.Warn().Err(err).Msg("authenticated upsert failed, rolling back")
		if cur >= 0 {
			if previous != nil {
				s.items[cur] = *previous
			} else {
				s.items = append(s.items[:cur], s.items[cur+1:]...)
			}
		}
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	// The server echo is authoritative: quantity, stock and status are
	// stored exactly as returned.
	confirmed.Pending = false
	if cur >= 0 {
		s.items[cur] = *confirmed
	} else {
		s.items = append(s.items, *confirmed)
	}
	return confirmed, nil
}

// RemoveAuthenticated drops the line locally, then confirms with the
// backend. A failed remove re-inserts the original line so the visible cart
// stays consistent with the last known-good server state.
func (s *Store) RemoveAuthenticated(ctx context.Context, product identity.ProductKey, variant identity.VariantDescriptor) error {
	s.mu.Lock()
	idx := s.findLocked(product, variant)
	if idx < 0 {
		s.mu.Unlock()
		return model.ErrLineNotFound
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	if err := s.backend.Remove(ctx, product, variant); err != nil {
		s.mu.Lock()
		s.items = append(s.items, removed)
		s.mu.Unlock()
		s.logger.Warn().Err(err).Msg("authenticated remove failed, line re-inserted")
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	return nil
}

// MergeOnLogin submits every guest line to the server cart, refetches the
// authenticated cart as the new truth, and discards the guest copy. After a
// successful merge the store is in authenticated mode.
func (s *Store) MergeOnLogin(ctx context.Context) error {
	if s.backend == nil {
		return model.NewDomainError(model.ErrCodeUpstreamFailure, "no authenticated cart backend configured")
	}

	s.mu.Lock()
	guestItems := make([]model.LineItem, len(s.items))
	copy(guestItems, s.items)
	s.mu.Unlock()

	if len(guestItems) > 0 {
		if err := s.backend.SyncGuest(ctx, guestItems); err != nil {
			return fmt.Errorf("failed to sync guest cart: %w", err)
		}
	}

	merged, err := s.backend.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch merged cart: %w", err)
	}

	s.mu.Lock()
	s.items = merged
	s.mode = model.ModeAuthenticated
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, s.deviceID); err != nil {
		// The merge itself succeeded; a stale guest record is logged, not fatal.
		s.logger.Warn().Err(err).Msg("failed to discard guest cart after merge")
	}

	s.logger.Info().
		Int("guest_lines", len(guestItems)).
		Int("merged_lines", len(merged)).
		Msg("guest cart merged into authenticated cart")
	return nil
}

// Logout drops the authenticated lines and returns the store to guest mode.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	s.mode = model.ModeGuest
	s.mu.Unlock()
	return s.Restore(ctx)
}

// min3 returns the smallest of three values.
func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
