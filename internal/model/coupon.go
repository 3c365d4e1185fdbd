package model

// DiscountType describes how a coupon's discount value is interpreted.
type DiscountType string

const (
	// DiscountFixed applies the value verbatim, once for the whole cart.
	DiscountFixed DiscountType = "fixed"
	// DiscountPercentage applies value percent of the eligible subtotal.
	DiscountPercentage DiscountType = "percentage"
)

// CouponCriteria selects which cart lines a coupon applies to.
type CouponCriteria string

const (
	CriteriaAll        CouponCriteria = "all"
	CriteriaCategories CouponCriteria = "categories"
	CriteriaProducts   CouponCriteria = "products"
	CriteriaUsers      CouponCriteria = "users"
)

// Coupon is one promotional offer as published in the coupon catalog.
// MinOrder and MaxOrder are optional subtotal bounds; nil means unbounded.
type Coupon struct {
	Code              string         `json:"code"`
	Description       string         `json:"description,omitempty"`
	DiscountType      DiscountType   `json:"discountType"`
	DiscountValue     float64        `json:"discountValue"`
	Criteria          CouponCriteria `json:"criteria"`
	MinOrder          *float64       `json:"minOrder,omitempty"`
	MaxOrder          *float64       `json:"maxOrder,omitempty"`
	TargetCategoryIDs []string       `json:"targetCategoryIds,omitempty"`
	TargetProductIDs  []string       `json:"targetProductIds,omitempty"`
}

// TargetsProducts reports whether the coupon restricts itself to specific
// products.
func (c *Coupon) TargetsProducts() bool {
	return len(c.TargetProductIDs) > 0
}

// TargetsCategories reports whether the coupon restricts itself to specific
// sub-categories.
func (c *Coupon) TargetsCategories() bool {
	return len(c.TargetCategoryIDs) > 0
}
