package discount

import (
	"testing"

	"quickkart/internal/identity"
	"quickkart/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartLine(productID, subCategoryID string, qty int, price float64) model.LineItem {
	return model.LineItem{
		ID:            uuid.New(),
		Product:       identity.ResolveProductKeys(identity.ProductRef{CatalogID: productID}),
		Variant:       identity.ResolveVariant(identity.VariantRef{ID: productID + "-v"}),
		Quantity:      qty,
		UnitPrice:     price,
		SubCategoryID: subCategoryID,
	}
}

// Fixed discount of 100 over lines worth 40 and 200: the naive equal split
// of 50 clamps on the cheap line, so 40 + 50 = 90 is applied, not 100, and
// the shortfall is not redistributed.
func TestAllocate_FixedClampsWithoutRedistribution(t *testing.T) {
	cheap := cartLine("P1", "SC1", 1, 40)
	pricey := cartLine("P2", "SC1", 1, 200)
	c := &model.Coupon{Code: "FLAT100", DiscountType: model.DiscountFixed, DiscountValue: 100, Criteria: model.CriteriaAll}

	alloc := Allocate(c, []model.LineItem{cheap, pricey})

	assert.Equal(t, 50.0, alloc.PerLineDiscount)
	assert.Equal(t, 40.0, alloc.AppliedPerLine[cheap.ID])
	assert.Equal(t, 50.0, alloc.AppliedPerLine[pricey.ID])
	assert.Equal(t, 90.0, alloc.TotalApplied)

	assert.Equal(t, 0.0, FinalPrice(cheap, alloc))
	assert.Equal(t, 150.0, FinalPrice(pricey, alloc))
}

func TestAllocate_PercentageOverEligibleSubtotal(t *testing.T) {
	a := cartLine("P1", "SC1", 2, 100) // 200
	b := cartLine("P2", "SC1", 1, 300) // 300
	c := &model.Coupon{Code: "PCT10", DiscountType: model.DiscountPercentage, DiscountValue: 10, Criteria: model.CriteriaAll}

	alloc := Allocate(c, []model.LineItem{a, b})

	// 10% of 500 split across two lines.
	assert.Equal(t, 25.0, alloc.PerLineDiscount)
	assert.Equal(t, 50.0, alloc.TotalApplied)
}

func TestAllocate_FixedValueIsNotMultipliedByCount(t *testing.T) {
	items := []model.LineItem{
		cartLine("P1", "SC1", 1, 500),
		cartLine("P2", "SC1", 1, 500),
		cartLine("P3", "SC1", 1, 500),
	}
	c := &model.Coupon{Code: "FLAT90", DiscountType: model.DiscountFixed, DiscountValue: 90, Criteria: model.CriteriaAll}

	alloc := Allocate(c, items)
	assert.Equal(t, 30.0, alloc.PerLineDiscount)
	assert.Equal(t, 90.0, alloc.TotalApplied)
}

func TestAllocate_Eligibility(t *testing.T) {
	mug := cartLine("P1", "SC1", 1, 100)
	shirt := cartLine("P2", "SC2", 1, 100)

	tests := []struct {
		name         string
		coupon       *model.Coupon
		wantEligible int
	}{
		{
			name:         "Criteria all selects every line",
			coupon:       &model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: 10, Criteria: model.CriteriaAll},
			wantEligible: 2,
		},
		{
			name:         "Criteria users selects every line",
			coupon:       &model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: 10, Criteria: model.CriteriaUsers},
			wantEligible: 2,
		},
		{
			name:         "Criteria categories selects matching sub-categories",
			coupon:       &model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: 10, Criteria: model.CriteriaCategories, TargetCategoryIDs: []string{"SC2"}},
			wantEligible: 1,
		},
		{
			name:         "Criteria products selects matching product ids",
			coupon:       &model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: 10, Criteria: model.CriteriaProducts, TargetProductIDs: []string{"P1"}},
			wantEligible: 1,
		},
		{
			name:         "No eligible lines yields a zero allocation",
			coupon:       &model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: 10, Criteria: model.CriteriaProducts, TargetProductIDs: []string{"P9"}},
			wantEligible: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := Allocate(tt.coupon, []model.LineItem{mug, shirt})
			assert.Len(t, alloc.EligibleLineIDs, tt.wantEligible)
			if tt.wantEligible == 0 {
				assert.Zero(t, alloc.PerLineDiscount)
				assert.Zero(t, alloc.TotalApplied)
			}
		})
	}
}

// For every eligible line the applied amount never exceeds the line's own
// value, across a spread of prices and discount magnitudes.
func TestAllocate_AppliedNeverExceedsLineValue(t *testing.T) {
	items := []model.LineItem{
		cartLine("P1", "SC1", 1, 1),
		cartLine("P2", "SC1", 3, 15),
		cartLine("P3", "SC2", 2, 250),
		cartLine("P4", "SC2", 5, 999),
	}

	coupons := []model.Coupon{
		{DiscountType: model.DiscountFixed, DiscountValue: 10000, Criteria: model.CriteriaAll},
		{DiscountType: model.DiscountFixed, DiscountValue: 3, Criteria: model.CriteriaAll},
		{DiscountType: model.DiscountPercentage, DiscountValue: 100, Criteria: model.CriteriaAll},
		{DiscountType: model.DiscountPercentage, DiscountValue: 33, Criteria: model.CriteriaCategories, TargetCategoryIDs: []string{"SC2"}},
	}

	for i := range coupons {
		alloc := Allocate(&coupons[i], items)
		for _, item := range items {
			applied, ok := alloc.AppliedPerLine[item.ID]
			if !ok {
				continue
			}
			require.LessOrEqual(t, applied, item.Total())
			require.GreaterOrEqual(t, FinalPrice(item, alloc), 0.0)
		}
	}
}

func TestAllocate_NilCoupon(t *testing.T) {
	alloc := Allocate(nil, []model.LineItem{cartLine("P1", "SC1", 1, 100)})
	assert.Empty(t, alloc.EligibleLineIDs)
	assert.Zero(t, alloc.TotalApplied)
}
