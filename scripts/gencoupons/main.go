package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"quickkart/internal/model"
)

// Generates a sample coupon catalog for local development. Each file is
// gzip-compressed JSON lines, one coupon per line, matching what the
// coupon loader expects.
func main() {
	dataDir := "data/coupons"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	coupons := []model.Coupon{
		{
			Code:          "WELCOME50",
			Description:   "Flat 50 off your first order",
			DiscountType:  model.DiscountFixed,
			DiscountValue: 50,
			Criteria:      model.CriteriaAll,
		},
		{
			Code:          "SAVE10PCT",
			Description:   "10% off everything",
			DiscountType:  model.DiscountPercentage,
			DiscountValue: 10,
			Criteria:      model.CriteriaAll,
		},
		{
			Code:          "BIGSPENDER",
			Description:   "Flat 200 off orders above 1000",
			DiscountType:  model.DiscountFixed,
			DiscountValue: 200,
			Criteria:      model.CriteriaAll,
			MinOrder:      floatPtr(1000),
		},
		{
			Code:              "GROCERY15",
			Description:       "15% off groceries",
			DiscountType:      model.DiscountPercentage,
			DiscountValue:     15,
			Criteria:          model.CriteriaCategories,
			TargetCategoryIDs: []string{"grocery", "fresh-produce"},
		},
		{
			Code:             "COMBODEAL",
			Description:      "Flat 75 off selected products",
			DiscountType:     model.DiscountFixed,
			DiscountValue:    75,
			Criteria:         model.CriteriaProducts,
			TargetProductIDs: []string{"P1001", "P1002", "P1003"},
			MinOrder:         floatPtr(300),
		},
		{
			Code:          "SMALLCART",
			Description:   "Flat 25 off small orders",
			DiscountType:  model.DiscountFixed,
			DiscountValue: 25,
			Criteria:      model.CriteriaAll,
			MaxOrder:      floatPtr(500),
		},
	}

	filePath := filepath.Join(dataDir, "catalog.jsonl.gz")
	if err := writeCatalogFile(filePath, coupons); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d coupons\n", filePath, len(coupons))
}

func writeCatalogFile(filePath string, coupons []model.Coupon) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	enc := json.NewEncoder(gz)
	for _, c := range coupons {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to encode coupon %s: %w", c.Code, err)
		}
	}

	return nil
}

func floatPtr(v float64) *float64 { return &v }
