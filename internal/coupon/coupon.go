package coupon

import (
	"context"

	"quickkart/internal/model"
)

// Verdict is the outcome of evaluating a coupon against a cart snapshot.
// Reason is set only when the coupon is rejected and is safe to surface to
// the user verbatim.
type Verdict struct {
	IsValid bool   `json:"isValid"`
	Reason  string `json:"reason,omitempty"`
}

// Catalog is the loaded set of published coupons.
type Catalog interface {
	// Lookup returns the coupon for a code, or nil when unknown.
	Lookup(code string) *model.Coupon

	// All returns every loaded coupon.
	All() []model.Coupon

	// Size returns the number of loaded coupons.
	Size() int
}

// Loader reads one published coupon catalog file: gzipped JSON lines, one
// coupon per line.
type Loader interface {
	Load(ctx context.Context, path string) ([]model.Coupon, error)
}
