package coupon

import (
	"fmt"

	"quickkart/internal/model"
)

// Validate checks a candidate coupon against the cart snapshot. Checks run
// in a fixed order and the first failure wins. The function is pure: it is
// used both to filter candidate lists and to gate a single apply, and
// identical inputs always yield the identical verdict.
func Validate(c *model.Coupon, subtotal float64, items []model.LineItem) Verdict {
	if c == nil {
		return reject("no coupon provided")
	}

	if c.MinOrder != nil && subtotal < *c.MinOrder {
		return reject(fmt.Sprintf("order subtotal must be at least %g to use this coupon", *c.MinOrder))
	}

	if c.MaxOrder != nil && subtotal > *c.MaxOrder {
		return reject(fmt.Sprintf("order subtotal must not exceed %g to use this coupon", *c.MaxOrder))
	}

	if c.TargetsProducts() && !anyProductMatch(c.TargetProductIDs, items) {
		return reject("coupon is not applicable to products in cart")
	}

	if c.TargetsCategories() && !anyCategoryMatch(c.TargetCategoryIDs, items) {
		return reject("coupon is not applicable to any category in cart")
	}

	// Affordability pre-check: an equal split across the applicable subset
	// must not exceed any single line's own value, or the split would drive
	// that line negative at allocation time.
	subset := applicableSubset(c, items)
	if len(subset) > 0 {
		total := hypotheticalDiscount(c, subset)
		perItem := total / float64(len(subset))
		for _, item := range subset {
			if perItem > item.Total() {
				return reject(fmt.Sprintf("discount exceeds product price for %s", item.Name))
			}
		}
	}

	return Verdict{IsValid: true}
}

// FilterEligible returns the coupons from the candidate list that validate
// against the given cart snapshot.
func FilterEligible(coupons []model.Coupon, subtotal float64, items []model.LineItem) []model.Coupon {
	eligible := make([]model.Coupon, 0, len(coupons))
	for i := range coupons {
		if Validate(&coupons[i], subtotal, items).IsValid {
			eligible = append(eligible, coupons[i])
		}
	}
	return eligible
}

func reject(reason string) Verdict {
	return Verdict{IsValid: false, Reason: reason}
}

// applicableSubset returns the lines the coupon's discount would spread
// over: the product-filtered lines for a product-targeted coupon, otherwise
// every line.
func applicableSubset(c *model.Coupon, items []model.LineItem) []model.LineItem {
	if !c.TargetsProducts() {
		return items
	}
	var subset []model.LineItem
	for _, item := range items {
		if productTargeted(c.TargetProductIDs, item) {
			subset = append(subset, item)
		}
	}
	return subset
}

// hypotheticalDiscount computes the nominal total the coupon would grant
// over the subset, before any per-line clamping.
func hypotheticalDiscount(c *model.Coupon, subset []model.LineItem) float64 {
	if c.DiscountType == model.DiscountPercentage {
		var subsetTotal float64
		for _, item := range subset {
			subsetTotal += item.Total()
		}
		return subsetTotal * c.DiscountValue / 100
	}
	return c.DiscountValue
}

func productTargeted(targetIDs []string, item model.LineItem) bool {
	for _, id := range targetIDs {
		if item.Product.IDs.Contains(id) {
			return true
		}
	}
	return false
}

func anyProductMatch(targetIDs []string, items []model.LineItem) bool {
	for _, item := range items {
		if productTargeted(targetIDs, item) {
			return true
		}
	}
	return false
}

func anyCategoryMatch(targetCategoryIDs []string, items []model.LineItem) bool {
	for _, item := range items {
		for _, id := range targetCategoryIDs {
			if item.SubCategoryID == id {
				return true
			}
		}
	}
	return false
}
