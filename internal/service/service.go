package service

import (
	"context"

	"quickkart/internal/discount"
	"quickkart/internal/model"
)

// CartService defines the cart operations exposed to the API surface.
type CartService interface {
	// State returns the current cart snapshot for a device.
	State(ctx context.Context, deviceID string) (model.CartState, error)

	// AddItem adds a product to the cart, clamped to the quantity budgets
	// and live stock.
	AddItem(ctx context.Context, deviceID string, req *model.AddItemRequest) (*model.LineItem, error)

	// UpdateQuantity adjusts a line by a signed delta. A decrease at
	// quantity 1 removes the line.
	UpdateQuantity(ctx context.Context, deviceID string, req *model.UpdateItemRequest) (*model.CartState, error)

	// RemoveItem drops the line matching the request's identity.
	RemoveItem(ctx context.Context, deviceID string, req *model.RemoveItemRequest) (*model.CartState, error)

	// Merge performs the login-time merge of the guest cart into the
	// authenticated cart.
	Merge(ctx context.Context, deviceID string) (*model.CartState, error)

	// Logout discards the authenticated cart and restores the guest cart.
	Logout(ctx context.Context, deviceID string) (*model.CartState, error)

	// Checkout prices the cart (optionally with a coupon), clears it and
	// returns the order summary.
	Checkout(ctx context.Context, deviceID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// BuyNow prices a single item for immediate purchase without touching
	// the cart.
	BuyNow(ctx context.Context, deviceID string, req *model.AddItemRequest) (*model.CheckoutResponse, error)
}

// CouponApplication is the outcome of applying a coupon to the cart.
type CouponApplication struct {
	Coupon     model.Coupon        `json:"coupon"`
	Allocation discount.Allocation `json:"allocation"`
}

// CouponService defines the coupon operations exposed to the API surface.
type CouponService interface {
	// Candidates returns the loaded coupons valid for the current cart.
	Candidates(ctx context.Context, deviceID string) ([]model.Coupon, error)

	// Apply validates one code against the current cart and returns its
	// discount allocation.
	Apply(ctx context.Context, deviceID, code string) (*CouponApplication, error)
}

// CouponApplier is the upstream coupon service contract: server-side
// confirmation of an applied code.
type CouponApplier interface {
	Apply(ctx context.Context, code string, items []model.LineItem) (float64, error)
}
