package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"quickkart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements CartRepository using PostgreSQL. Each device's
// cart is one row holding the serialized line array.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed guest cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Load returns the persisted lines for a device.
func (r *cartRepository) Load(ctx context.Context, deviceID string) ([]model.LineItem, error) {
	query := `
		SELECT items
		FROM guest_carts
		WHERE device_id = $1
	`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, deviceID).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("device_id", deviceID).Msg("no persisted cart")
			return []model.LineItem{}, nil
		}
		r.logger.Error().Err(err).Str("device_id", deviceID).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []model.LineItem
	if err := json.Unmarshal(payload, &items); err != nil {
		r.logger.Error().Err(err).Str("device_id", deviceID).Msg("failed to decode persisted cart")
		return nil, fmt.Errorf("failed to decode persisted cart: %w", err)
	}

	return items, nil
}

// Save replaces the persisted lines for a device.
func (r *cartRepository) Save(ctx context.Context, deviceID string, items []model.LineItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	query := `
		INSERT INTO guest_carts (device_id, items, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (device_id)
		DO UPDATE SET items = EXCLUDED.items, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, deviceID, payload); err != nil {
		r.logger.Error().Err(err).Str("device_id", deviceID).Int("item_count", len(items)).Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}

	r.logger.Debug().Str("device_id", deviceID).Int("item_count", len(items)).Msg("cart saved")
	return nil
}

// Delete discards the persisted cart for a device.
func (r *cartRepository) Delete(ctx context.Context, deviceID string) error {
	query := `DELETE FROM guest_carts WHERE device_id = $1`

	if _, err := r.pool.Exec(ctx, query, deviceID); err != nil {
		r.logger.Error().Err(err).Str("device_id", deviceID).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}
