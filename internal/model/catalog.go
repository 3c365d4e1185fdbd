package model

import "time"

// CatalogEntry is one sellable variant as known to the catalog/stock source.
// It is the read-only input that prices and bounds cart mutations.
type CatalogEntry struct {
	ProductID      string    `json:"productId" db:"product_id"`
	CanonicalID    string    `json:"canonicalId,omitempty" db:"canonical_id"`
	RetailerID     string    `json:"retailerId,omitempty" db:"retailer_id"`
	Slug           string    `json:"slug,omitempty" db:"slug"`
	Name           string    `json:"name" db:"name"`
	VariantID      string    `json:"variantId,omitempty" db:"variant_id"`
	VariantName    string    `json:"variantName,omitempty" db:"variant_name"`
	UnitPrice      float64   `json:"unitPrice" db:"unit_price"`
	AvailableStock int       `json:"availableStock" db:"available_stock"`
	SubCategoryID  string    `json:"subCategoryId,omitempty" db:"sub_category_id"`
	CategoryID     string    `json:"categoryId,omitempty" db:"category_id"`
	SellerID       string    `json:"sellerId,omitempty" db:"seller_id"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
