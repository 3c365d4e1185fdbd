package repository

import (
	"context"
	"fmt"

	"quickkart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogRepository implements CatalogRepository using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

// Lookup returns the catalog entry for a (product, variant) pair.
func (r *catalogRepository) Lookup(ctx context.Context, productID, variantID string) (*model.CatalogEntry, error) {
	query := `
		SELECT product_id, canonical_id, retailer_id, slug, name,
		       variant_id, variant_name, unit_price, available_stock,
		       sub_category_id, category_id, seller_id, updated_at
		FROM catalog_entries
		WHERE (product_id = $1 OR canonical_id = $1 OR retailer_id = $1)
		  AND variant_id = $2
	`

	var e model.CatalogEntry
	err := r.pool.QueryRow(ctx, query, productID, variantID).Scan(
		&e.ProductID, &e.CanonicalID, &e.RetailerID, &e.Slug, &e.Name,
		&e.VariantID, &e.VariantName, &e.UnitPrice, &e.AvailableStock,
		&e.SubCategoryID, &e.CategoryID, &e.SellerID, &e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().
				Str("product_id", productID).
				Str("variant_id", variantID).
				Msg("catalog entry not found")
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Str("variant_id", variantID).
			Msg("failed to query catalog entry")
		return nil, fmt.Errorf("failed to query catalog entry: %w", err)
	}

	return &e, nil
}

// AvailableStock returns the live stock for a (product, variant) pair.
func (r *catalogRepository) AvailableStock(ctx context.Context, productID, variantID string) (int, error) {
	query := `
		SELECT available_stock
		FROM catalog_entries
		WHERE (product_id = $1 OR canonical_id = $1 OR retailer_id = $1)
		  AND variant_id = $2
	`

	var stock int
	err := r.pool.QueryRow(ctx, query, productID, variantID).Scan(&stock)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, model.ErrProductNotFound
		}
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Str("variant_id", variantID).
			Msg("failed to query stock")
		return 0, fmt.Errorf("failed to query stock: %w", err)
	}

	return stock, nil
}
