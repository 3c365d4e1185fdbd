package cart

import (
	"context"

	"quickkart/internal/identity"
	"quickkart/internal/model"
)

// Backend is the upstream cart service contract for authenticated sessions.
// The server is authoritative: every successful mutation echoes the line as
// the server now holds it (quantity, stock, status), and the store keeps
// that echo without re-clamping.
type Backend interface {
	// Fetch returns the authenticated cart as the server holds it.
	Fetch(ctx context.Context) ([]model.LineItem, error)

	// Upsert adds the line or replaces its quantity, returning the
	// server-confirmed line.
	Upsert(ctx context.Context, item model.LineItem) (*model.LineItem, error)

	// Remove drops the line matching the given identity from the server cart.
	Remove(ctx context.Context, product identity.ProductKey, variant identity.VariantDescriptor) error

	// SyncGuest submits guest lines to the server cart during login-time
	// merge. The caller refetches afterwards; the response body is not
	// trusted as the merged state.
	SyncGuest(ctx context.Context, items []model.LineItem) error
}
