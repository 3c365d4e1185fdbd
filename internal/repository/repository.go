package repository

import (
	"context"

	"quickkart/internal/model"
)

// CartRepository persists guest cart lines keyed by device id. The payload
// is the serialized line array itself; the schema is unversioned, so a
// decode failure is surfaced rather than migrated.
type CartRepository interface {
	// Load returns the persisted lines for a device, or an empty slice when
	// no cart has been saved yet.
	Load(ctx context.Context, deviceID string) ([]model.LineItem, error)

	// Save replaces the persisted lines for a device.
	Save(ctx context.Context, deviceID string, items []model.LineItem) error

	// Delete discards the persisted cart for a device.
	Delete(ctx context.Context, deviceID string) error
}

// CatalogRepository is the read-only catalog/stock source. It supplies the
// pricing, category and live stock attributes that bound cart mutations.
type CatalogRepository interface {
	// Lookup returns the catalog entry for a (product, variant) pair.
	// A product with no variants is addressed with an empty variantID.
	// Returns nil when the pair is unknown.
	Lookup(ctx context.Context, productID, variantID string) (*model.CatalogEntry, error)

	// AvailableStock returns the live stock for a (product, variant) pair.
	AvailableStock(ctx context.Context, productID, variantID string) (int, error)
}
