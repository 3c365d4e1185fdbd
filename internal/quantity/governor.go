// Package quantity computes how far a cart line's quantity may move given
// two nested budgets (per-variant and per-product) and live stock.
package quantity

import "quickkart/internal/identity"

// Mutation action names reported through the delta callback.
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
)

// BoundsInput carries everything needed to bound one line's quantity.
// TotalProductQty is the aggregate quantity across every variant of the
// product, including the current line.
type BoundsInput struct {
	Requested       int
	AvailableStock  int
	CurrentQty      int
	TotalProductQty int
	VariantLimit    int
	ProductLimit    int
}

// Bounds is the computed envelope for a line's quantity. Quantity is the
// requested value clamped into the envelope; MaxAllowed is the hard ceiling.
type Bounds struct {
	Quantity    int
	MaxAllowed  int
	CanIncrease bool
	CanDecrease bool
}

// ComputeBounds derives the quantity envelope for one line.
//
// The baseline is the quantity held by the product's other variants; both
// the variant budget and the product budget are reduced by that same
// baseline before the smaller of the two becomes the ceiling. Live stock
// caps the result, so zero stock forces MaxAllowed to zero no matter how
// much budget remains.
func ComputeBounds(in BoundsInput) Bounds {
	otherVariants := in.TotalProductQty - in.CurrentQty
	if otherVariants < 0 {
		otherVariants = 0
	}

	variantCapacity := in.VariantLimit - otherVariants
	if variantCapacity < 0 {
		variantCapacity = 0
	}
	productCapacity := in.ProductLimit - otherVariants
	if productCapacity < 0 {
		productCapacity = 0
	}

	ceiling := variantCapacity
	if productCapacity < ceiling {
		ceiling = productCapacity
	}

	maxAllowed := in.AvailableStock
	if ceiling < maxAllowed {
		maxAllowed = ceiling
	}
	if maxAllowed < 0 {
		maxAllowed = 0
	}

	qty := in.Requested
	if qty > maxAllowed {
		qty = maxAllowed
	}
	if qty < 0 {
		qty = 0
	}

	return Bounds{
		Quantity:    qty,
		MaxAllowed:  maxAllowed,
		CanIncrease: qty < maxAllowed,
		CanDecrease: qty > 1,
	}
}

// DeltaFunc receives the signed unit change and the action name for every
// successful step, letting the cart store persist the mutation without the
// governor knowing anything about persistence.
type DeltaFunc func(delta int, action string)

// Counter steps a single line's quantity inside its computed envelope.
type Counter struct {
	variant    identity.VariantDescriptor
	quantity   int
	maxAllowed int
	onDelta    DeltaFunc
}

// NewCounter builds a counter for the given variant, starting at the
// clamped requested quantity.
func NewCounter(variant identity.VariantDescriptor, in BoundsInput, onDelta DeltaFunc) *Counter {
	b := ComputeBounds(in)
	return &Counter{
		variant:    variant,
		quantity:   b.Quantity,
		maxAllowed: b.MaxAllowed,
		onDelta:    onDelta,
	}
}

// Quantity returns the current quantity.
func (c *Counter) Quantity() int {
	return c.quantity
}

// Bounds returns the current envelope.
func (c *Counter) Bounds() Bounds {
	return Bounds{
		Quantity:    c.quantity,
		MaxAllowed:  c.maxAllowed,
		CanIncrease: c.quantity < c.maxAllowed,
		CanDecrease: c.quantity > 1,
	}
}

// Increase steps the quantity up by one, clamped at the ceiling. It reports
// whether the step was applied; at the ceiling it is a no-op.
func (c *Counter) Increase() bool {
	if c.quantity >= c.maxAllowed {
		return false
	}
	c.quantity++
	if c.onDelta != nil {
		c.onDelta(+1, ActionIncrease)
	}
	return true
}

// Decrease steps the quantity down by one, floored at 1. It reports whether
// the step was applied; a refused decrease at 1 is the caller's signal to
// remove the line instead.
func (c *Counter) Decrease() bool {
	if c.quantity <= 1 {
		return false
	}
	c.quantity--
	if c.onDelta != nil {
		c.onDelta(-1, ActionDecrease)
	}
	return true
}

// Rebind points the counter at a (possibly different) variant. When the
// variant identity actually changes the quantity resets to the new clamped
// request; rebinding to the same variant keeps the current count.
func (c *Counter) Rebind(variant identity.VariantDescriptor, in BoundsInput) {
	b := ComputeBounds(in)
	c.maxAllowed = b.MaxAllowed
	if !identity.MatchesVariant(c.variant, variant) {
		c.variant = variant
		c.quantity = b.Quantity
		return
	}
	if c.quantity > c.maxAllowed {
		c.quantity = c.maxAllowed
	}
}
