package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeCouponInvalid    = "COUPON_INVALID"
	ErrCodeProductLimit     = "PRODUCT_LIMIT_REACHED"
	ErrCodeVariantLimit     = "VARIANT_LIMIT_REACHED"
	ErrCodeOutOfStock       = "OUT_OF_STOCK"
	ErrCodeLineNotFound     = "LINE_NOT_FOUND"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeUpstreamFailure  = "UPSTREAM_FAILURE"
	ErrCodeCartEmpty        = "CART_EMPTY"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ErrProductLimitReached builds the capacity error for a per-product budget,
// worded with the effective limit so the client can surface it directly.
func ErrProductLimitReached(limit int) *DomainError {
	return NewDomainError(ErrCodeProductLimit, fmt.Sprintf("you can add up to %d units of this product", limit))
}

// ErrVariantLimitReached builds the capacity error for a per-variant budget.
func ErrVariantLimitReached(limit int) *DomainError {
	return NewDomainError(ErrCodeVariantLimit, fmt.Sprintf("you can add up to %d units of this variant", limit))
}

// ErrCouponRejected wraps a coupon rejection reason in a domain error so the
// reason string reaches the client untouched.
func ErrCouponRejected(reason string) *DomainError {
	return NewDomainError(ErrCodeCouponInvalid, reason)
}

// Common domain errors
var (
	ErrOutOfStock      = NewDomainError(ErrCodeOutOfStock, "This item is out of stock")
	ErrLineNotFound    = NewDomainError(ErrCodeLineNotFound, "Item is not in the cart")
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "Product not found in catalogue")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrCartEmpty       = NewDomainError(ErrCodeCartEmpty, "Cart is empty")
	ErrCouponNotFound  = NewDomainError(ErrCodeCouponInvalid, "Coupon code not recognised")
)
