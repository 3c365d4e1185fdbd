package integration

import (
	"context"
	"testing"

	"quickkart/internal/identity"
	"quickkart/internal/model"
	"quickkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLine(productID, variantID string, quantity int) model.LineItem {
	return model.LineItem{
		ID:        uuid.New(),
		Product:   identity.ResolveProductKeys(identity.ProductRef{CatalogID: productID}),
		Variant:   identity.ResolveVariant(identity.VariantRef{ID: variantID}),
		Name:      "Product " + productID,
		Quantity:  quantity,
		UnitPrice: 100,
		Status:    model.LineStatusActive,
	}
}

func TestCartRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewCartRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("Load returns empty for an unknown device", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		items, err := repo.Load(ctx, "unknown-device")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("Save then Load round-trips the cart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		saved := []model.LineItem{
			seedLine("P001", "V-S", 2),
			seedLine("P002", "", 1),
		}
		require.NoError(t, repo.Save(ctx, "device-1", saved))

		loaded, err := repo.Load(ctx, "device-1")
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, saved[0].ID, loaded[0].ID)
		assert.Equal(t, 2, loaded[0].Quantity)
		assert.True(t, loaded[0].Product.IDs.Contains("P001"))
		assert.True(t, loaded[1].Variant.IsEmpty)
	})

	t.Run("Save replaces the previous cart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		require.NoError(t, repo.Save(ctx, "device-1", []model.LineItem{seedLine("P001", "V-S", 2)}))
		require.NoError(t, repo.Save(ctx, "device-1", []model.LineItem{seedLine("P002", "", 1)}))

		loaded, err := repo.Load(ctx, "device-1")
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.True(t, loaded[0].Product.IDs.Contains("P002"))
	})

	t.Run("Carts are isolated per device", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		require.NoError(t, repo.Save(ctx, "device-1", []model.LineItem{seedLine("P001", "V-S", 2)}))
		require.NoError(t, repo.Save(ctx, "device-2", []model.LineItem{seedLine("P002", "", 5)}))

		loaded, err := repo.Load(ctx, "device-1")
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, 2, loaded[0].Quantity)
	})

	t.Run("Delete discards the persisted cart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		require.NoError(t, repo.Save(ctx, "device-1", []model.LineItem{seedLine("P001", "V-S", 2)}))
		require.NoError(t, repo.Delete(ctx, "device-1"))

		loaded, err := repo.Load(ctx, "device-1")
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("Delete of a missing cart is not an error", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		assert.NoError(t, repo.Delete(ctx, "never-seen"))
	})
}

func TestCatalogRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewCatalogRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("Lookup by product id", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		entry, err := repo.Lookup(ctx, "P001", "V-S")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "Blue Shirt", entry.Name)
		assert.Equal(t, 499.00, entry.UnitPrice)
		assert.Equal(t, 10, entry.AvailableStock)
	})

	t.Run("Lookup by canonical and retailer ids finds the same entry", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		byCanonical, err := repo.Lookup(ctx, "C001", "V-S")
		require.NoError(t, err)
		require.NotNil(t, byCanonical)

		byRetailer, err := repo.Lookup(ctx, "R001", "V-S")
		require.NoError(t, err)
		require.NotNil(t, byRetailer)

		assert.Equal(t, byCanonical.ProductID, byRetailer.ProductID)
		assert.Equal(t, "P001", byCanonical.ProductID)
	})

	t.Run("Lookup with empty variant id", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		entry, err := repo.Lookup(ctx, "P002", "")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "Red Mug", entry.Name)
	})

	t.Run("Lookup miss returns nil without error", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		entry, err := repo.Lookup(ctx, "P999", "V-S")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("AvailableStock reflects the seeded value", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		stock, err := repo.AvailableStock(ctx, "P001", "V-L")
		require.NoError(t, err)
		assert.Equal(t, 3, stock)

		stock, err = repo.AvailableStock(ctx, "P003", "V-A5")
		require.NoError(t, err)
		assert.Equal(t, 0, stock)
	})

	t.Run("AvailableStock for an unknown product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		_, err := repo.AvailableStock(ctx, "P999", "V-S")
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}
