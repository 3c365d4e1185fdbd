package repository

import (
	"context"
	"testing"

	"quickkart/internal/identity"
	"quickkart/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLine(productID string, qty int) model.LineItem {
	return model.LineItem{
		ID:       uuid.New(),
		Product:  identity.ResolveProductKeys(identity.ProductRef{CatalogID: productID}),
		Variant:  identity.ResolveVariant(identity.VariantRef{ID: productID + "-v1"}),
		Quantity: qty,
	}
}

func TestMemoryCartRepository(t *testing.T) {
	repo := NewMemoryCartRepository()
	ctx := context.Background()

	t.Run("Load of unknown device returns empty cart", func(t *testing.T) {
		items, err := repo.Load(ctx, "unknown-device")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("Save then Load round-trips", func(t *testing.T) {
		saved := []model.LineItem{testLine("P1", 2), testLine("P2", 1)}
		require.NoError(t, repo.Save(ctx, "device-1", saved))

		loaded, err := repo.Load(ctx, "device-1")
		require.NoError(t, err)
		assert.Equal(t, saved, loaded)
	})

	t.Run("Load returns a copy, not the stored slice", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "device-2", []model.LineItem{testLine("P1", 2)}))

		loaded, err := repo.Load(ctx, "device-2")
		require.NoError(t, err)
		loaded[0].Quantity = 99

		again, err := repo.Load(ctx, "device-2")
		require.NoError(t, err)
		assert.Equal(t, 2, again[0].Quantity)
	})

	t.Run("Delete discards the cart", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "device-3", []model.LineItem{testLine("P1", 1)}))
		require.NoError(t, repo.Delete(ctx, "device-3"))

		items, err := repo.Load(ctx, "device-3")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
