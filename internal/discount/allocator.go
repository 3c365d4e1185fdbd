// Package discount distributes a validated coupon's discount across the
// eligible cart lines.
package discount

import (
	"quickkart/internal/model"

	"github.com/google/uuid"
)

// Allocation is the per-line distribution of a coupon's discount.
// PerLineDiscount is the nominal equal share; AppliedPerLine holds the
// clamped amount each line actually receives. TotalApplied may fall short
// of the nominal total when any line was clamped; the shortfall is not
// redistributed.
type Allocation struct {
	EligibleLineIDs []uuid.UUID           `json:"eligibleLineIds"`
	PerLineDiscount float64               `json:"perLineDiscount"`
	AppliedPerLine  map[uuid.UUID]float64 `json:"appliedPerLine"`
	TotalApplied    float64               `json:"totalApplied"`
}

// EligibleLines returns the lines the coupon's criteria select.
func EligibleLines(c *model.Coupon, items []model.LineItem) []model.LineItem {
	var eligible []model.LineItem
	for _, item := range items {
		if lineEligible(c, item) {
			eligible = append(eligible, item)
		}
	}
	return eligible
}

func lineEligible(c *model.Coupon, item model.LineItem) bool {
	switch c.Criteria {
	case model.CriteriaCategories:
		for _, id := range c.TargetCategoryIDs {
			if item.SubCategoryID == id {
				return true
			}
		}
		return false
	case model.CriteriaProducts:
		for _, id := range c.TargetProductIDs {
			if item.Product.IDs.Contains(id) {
				return true
			}
		}
		return false
	default:
		// all and users address every line.
		return true
	}
}

// Allocate distributes the coupon's discount over the eligible lines: an
// unweighted equal split, clamped per line so no line's value goes
// negative. No eligible lines yields a zero allocation, not an error.
func Allocate(c *model.Coupon, items []model.LineItem) Allocation {
	alloc := Allocation{AppliedPerLine: make(map[uuid.UUID]float64)}
	if c == nil {
		return alloc
	}

	eligible := EligibleLines(c, items)
	if len(eligible) == 0 {
		return alloc
	}

	var total float64
	if c.DiscountType == model.DiscountPercentage {
		var eligibleTotal float64
		for _, item := range eligible {
			eligibleTotal += item.Total()
		}
		total = eligibleTotal * c.DiscountValue / 100
	} else {
		// Fixed discounts apply once for the whole cart, never per line.
		total = c.DiscountValue
	}

	alloc.PerLineDiscount = total / float64(len(eligible))
	for _, item := range eligible {
		applied := alloc.PerLineDiscount
		if lineTotal := item.Total(); applied > lineTotal {
			applied = lineTotal
		}
		alloc.EligibleLineIDs = append(alloc.EligibleLineIDs, item.ID)
		alloc.AppliedPerLine[item.ID] = applied
		alloc.TotalApplied += applied
	}

	return alloc
}

// FinalPrice returns a line's value after its applied discount, floored at
// zero.
func FinalPrice(item model.LineItem, alloc Allocation) float64 {
	price := item.Total() - alloc.AppliedPerLine[item.ID]
	if price < 0 {
		price = 0
	}
	return price
}
