package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS guest_carts (
			device_id VARCHAR(100) PRIMARY KEY,
			items JSONB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS catalog_entries (
			product_id VARCHAR(50) NOT NULL,
			canonical_id VARCHAR(50) NOT NULL DEFAULT '',
			retailer_id VARCHAR(50) NOT NULL DEFAULT '',
			slug VARCHAR(255) NOT NULL DEFAULT '',
			name VARCHAR(255) NOT NULL,
			variant_id VARCHAR(50) NOT NULL DEFAULT '',
			variant_name VARCHAR(100) NOT NULL DEFAULT '',
			unit_price DECIMAL(10, 2) NOT NULL,
			available_stock INTEGER NOT NULL DEFAULT 0,
			sub_category_id VARCHAR(50) NOT NULL DEFAULT '',
			category_id VARCHAR(50) NOT NULL DEFAULT '',
			seller_id VARCHAR(50) NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (product_id, variant_id)
		);

		CREATE INDEX IF NOT EXISTS idx_catalog_entries_canonical_id ON catalog_entries(canonical_id);
		CREATE INDEX IF NOT EXISTS idx_catalog_entries_retailer_id ON catalog_entries(retailer_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedCatalog inserts test catalog data into the database.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	entries := []struct {
		productID   string
		canonicalID string
		retailerID  string
		slug        string
		name        string
		variantID   string
		variantName string
		unitPrice   float64
		stock       int
		subCategory string
		category    string
		seller      string
	}{
		{"P001", "C001", "R001", "blue-shirt", "Blue Shirt", "V-S", "small", 499.00, 10, "shirts", "apparel", "S1"},
		{"P001", "C001", "R001", "blue-shirt", "Blue Shirt", "V-L", "large", 499.00, 3, "shirts", "apparel", "S1"},
		{"P002", "C002", "R002", "red-mug", "Red Mug", "", "", 149.00, 25, "mugs", "kitchen", "S2"},
		{"P003", "C003", "R003", "notebook", "Notebook", "V-A5", "a5", 89.00, 0, "stationery", "office", "S1"},
	}

	for _, e := range entries {
		_, err := pool.Exec(ctx,
			`INSERT INTO catalog_entries
				(product_id, canonical_id, retailer_id, slug, name, variant_id, variant_name,
				 unit_price, available_stock, sub_category_id, category_id, seller_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			e.productID, e.canonicalID, e.retailerID, e.slug, e.name, e.variantID, e.variantName,
			e.unitPrice, e.stock, e.subCategory, e.category, e.seller,
		)
		if err != nil {
			t.Fatalf("failed to seed catalog entry %s/%s: %v", e.productID, e.variantID, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"guest_carts", "catalog_entries"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
