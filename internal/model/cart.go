package model

import (
	"time"

	"quickkart/internal/identity"

	"github.com/google/uuid"
)

// CartMode distinguishes a device-local guest cart from a server-confirmed
// authenticated cart.
type CartMode string

const (
	ModeGuest         CartMode = "guest"
	ModeAuthenticated CartMode = "authenticated"
)

// LineStatus is the upstream-reported availability of an authenticated line.
type LineStatus string

const (
	LineStatusActive     LineStatus = "active"
	LineStatusOutOfStock LineStatus = "out_of_stock"
)

// LineItem is one cart row: a resolved product identity plus variant
// identity, a quantity, and the pricing/category attributes coupon
// evaluation needs.
type LineItem struct {
	ID             uuid.UUID                  `json:"id"`
	Product        identity.ProductKey        `json:"product"`
	Variant        identity.VariantDescriptor `json:"variant"`
	Name           string                     `json:"name"`
	Quantity       int                        `json:"quantity"`
	UnitPrice      float64                    `json:"unitPrice"`
	AvailableStock int                        `json:"availableStock"`
	SubCategoryID  string                     `json:"subCategoryId,omitempty"`
	CategoryID     string                     `json:"categoryId,omitempty"`
	SellerID       string                     `json:"sellerId,omitempty"`
	Status         LineStatus                 `json:"status,omitempty"`
	Pending        bool                       `json:"-"`
	AddedAt        time.Time                  `json:"addedAt"`
}

// Total returns the line's gross value.
func (l LineItem) Total() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// SameIdentity reports whether another line resolves to the same
// (product, variant) identity.
func (l LineItem) SameIdentity(other LineItem) bool {
	return identity.MatchesProduct(l.Product, other.Product) &&
		identity.MatchesVariant(l.Variant, other.Variant)
}

// CartState is a snapshot of the cart: the lines plus the session mode.
// Snapshots are value copies; mutating one never touches the store.
type CartState struct {
	Items []LineItem `json:"items"`
	Mode  CartMode   `json:"mode"`
	Open  bool       `json:"open"`
}

// Subtotal returns the gross value of every line in the snapshot.
func (s CartState) Subtotal() float64 {
	var total float64
	for _, item := range s.Items {
		total += item.Total()
	}
	return total
}

// ProductIDs collects every product identifier present in the snapshot.
func (s CartState) ProductIDs() []string {
	var ids []string
	for _, item := range s.Items {
		ids = append(ids, item.Product.IDs.Values()...)
	}
	return ids
}

// AddItemRequest is the payload for adding a product to the cart. Identity
// fields are raw references; the service resolves them and enriches the line
// from the catalog.
type AddItemRequest struct {
	Product  identity.ProductRef `json:"product"`
	Variant  identity.VariantRef `json:"variant"`
	Quantity int                 `json:"quantity"`
}

// UpdateItemRequest adjusts an existing line's quantity by a signed delta.
type UpdateItemRequest struct {
	Product identity.ProductRef `json:"product"`
	Variant identity.VariantRef `json:"variant"`
	Delta   int                 `json:"delta"`
}

// RemoveItemRequest drops the line matching the given identity.
type RemoveItemRequest struct {
	Product identity.ProductRef `json:"product"`
	Variant identity.VariantRef `json:"variant"`
}

// CheckoutRequest finalises the cart, optionally applying a coupon code.
type CheckoutRequest struct {
	CouponCode *string `json:"couponCode,omitempty"`
}

// CheckoutResponse reports the priced outcome of a checkout.
type CheckoutResponse struct {
	OrderID         uuid.UUID          `json:"orderId"`
	Items           []LineItem         `json:"items"`
	Subtotal        float64            `json:"subtotal"`
	AppliedDiscount float64            `json:"appliedDiscount"`
	Total           float64            `json:"total"`
	AppliedPerLine  map[string]float64 `json:"appliedPerLine,omitempty"`
}
