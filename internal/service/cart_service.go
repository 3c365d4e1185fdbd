package service

import (
	"context"
	"fmt"
	"time"

	"quickkart/internal/cart"
	"quickkart/internal/coupon"
	"quickkart/internal/discount"
	"quickkart/internal/identity"
	"quickkart/internal/model"
	"quickkart/internal/quantity"
	"quickkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService on top of the store manager, the
// catalog/stock source and the quantity governor.
type cartService struct {
	manager *cart.Manager
	catalog repository.CatalogRepository
	coupons coupon.Catalog
	limits  cart.Limits
	logger  zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	manager *cart.Manager,
	catalog repository.CatalogRepository,
	coupons coupon.Catalog,
	limits cart.Limits,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		manager: manager,
		catalog: catalog,
		coupons: coupons,
		limits:  limits,
		logger:  logger.With().Str("service", "cart").Logger(),
	}
}

// State returns the current cart snapshot for a device.
func (s *cartService) State(ctx context.Context, deviceID string) (model.CartState, error) {
	store, err := s.manager.ForDevice(ctx, deviceID)
	if err != nil {
		return model.CartState{}, err
	}
	return store.Snapshot(), nil
}

// lookupEntry finds the catalog row for a resolved identity by trying each
// known id shape until one hits.
func (s *cartService) lookupEntry(ctx context.Context, product identity.ProductKey, variant identity.VariantDescriptor) (*model.CatalogEntry, error) {
	variantIDs := variant.IDs.Values()
	if len(variantIDs) == 0 {
		variantIDs = []string{""}
	}
	for _, productID := range product.IDs.Values() {
		for _, variantID := range variantIDs {
			entry, err := s.catalog.Lookup(ctx, productID, variantID)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				return entry, nil
			}
		}
	}
	return nil, nil
}

// buildLine assembles a cart line from the request identity and the catalog
// row, widening the product key with every id shape the catalog knows.
func buildLine(req *model.AddItemRequest, entry *model.CatalogEntry, qty int) model.LineItem {
	product := identity.ResolveProductKeys(req.Product).Merge(
		identity.ResolveProductKeys(identity.ProductRef{
			CatalogID:   entry.ProductID,
			CanonicalID: entry.CanonicalID,
			RetailerID:  entry.RetailerID,
			Slug:        entry.Slug,
		}))

	variant := identity.ResolveVariant(req.Variant)
	if variant.IsEmpty && (entry.VariantID != "" || entry.VariantName != "") {
		variant = identity.ResolveVariant(identity.VariantRef{ID: entry.VariantID, Name: entry.VariantName})
	}

	return model.LineItem{
		ID:             uuid.New(),
		Product:        product,
		Variant:        variant,
		Name:           entry.Name,
		Quantity:       qty,
		UnitPrice:      entry.UnitPrice,
		AvailableStock: entry.AvailableStock,
		SubCategoryID:  entry.SubCategoryID,
		CategoryID:     entry.CategoryID,
		SellerID:       entry.SellerID,
		Status:         model.LineStatusActive,
		AddedAt:        time.Now(),
	}
}

// quantities returns the current quantity held by the matching line and the
// aggregate across every variant of the product.
func quantities(state model.CartState, product identity.ProductKey, variant identity.VariantDescriptor) (current, total int) {
	for _, item := range state.Items {
		if !identity.MatchesProduct(item.Product, product) {
			continue
		}
		total += item.Quantity
		if identity.MatchesVariant(item.Variant, variant) {
			current = item.Quantity
		}
	}
	return current, total
}

// AddItem adds a product to the cart, clamped to the quantity budgets and
// live stock.
func (s *cartService) AddItem(ctx context.Context, deviceID string, req *model.AddItemRequest) (*model.LineItem, error) {
	if req == nil {
		return nil, fmt.Errorf("add request is nil")
	}

	product := identity.ResolveProductKeys(req.Product)
	variant := identity.ResolveVariant(req.Variant)

	entry, err := s.lookupEntry(ctx, product, variant)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if entry == nil {
		s.logger.Warn().Strs("product_ids", product.IDs.Values()).Msg("product not in catalogue")
		return nil, model.ErrProductNotFound
	}

	store, err := s.manager.ForDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	state := store.Snapshot()
	current, total := quantities(state, product, variant)

	requested := req.Quantity
	if requested < 1 {
		requested = 1
	}

	bounds := quantity.ComputeBounds(quantity.BoundsInput{
		Requested:       current + requested,
		AvailableStock:  entry.AvailableStock,
		CurrentQty:      current,
		TotalProductQty: total,
		VariantLimit:    s.limits.VariantLimit,
		ProductLimit:    s.limits.ProductLimit,
	})

	if state.Mode == model.ModeAuthenticated {
		if bounds.Quantity <= 0 {
			if entry.AvailableStock <= 0 {
				return nil, model.ErrOutOfStock
			}
			return nil, model.ErrProductLimitReached(s.limits.ProductLimit)
		}
		line := buildLine(req, entry, bounds.Quantity)
		return store.UpsertAuthenticated(ctx, line)
	}

	if current > 0 {
		incoming := bounds.Quantity - current
		if incoming <= 0 {
			// Already at the budget: the add clamps silently to the cap.
			updated, err := store.UpdateGuest(ctx, product, variant, 0)
			if err != nil {
				return nil, err
			}
			return &updated, nil
		}
		merged, err := store.AddGuest(ctx, buildLine(req, entry, incoming))
		if err != nil {
			return nil, err
		}
		return &merged, nil
	}

	if bounds.Quantity <= 0 {
		if entry.AvailableStock <= 0 {
			return nil, model.ErrOutOfStock
		}
		return nil, model.ErrProductLimitReached(s.limits.ProductLimit)
	}

	added, err := store.AddGuest(ctx, buildLine(req, entry, bounds.Quantity))
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("product", entry.ProductID).
		Int("quantity", added.Quantity).
		Msg("item added to cart")
	return &added, nil
}

// UpdateQuantity adjusts a line by a signed delta. A decrease while the
// line holds a single unit removes the line instead of storing zero.
func (s *cartService) UpdateQuantity(ctx context.Context, deviceID string, req *model.UpdateItemRequest) (*model.CartState, error) {
	if req == nil || req.Delta == 0 {
		return nil, model.ErrInvalidQuantity
	}

	product := identity.ResolveProductKeys(req.Product)
	variant := identity.ResolveVariant(req.Variant)

	store, err := s.manager.ForDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	state := store.Snapshot()

	var line *model.LineItem
	for i := range state.Items {
		if identity.MatchesProduct(state.Items[i].Product, product) &&
			identity.MatchesVariant(state.Items[i].Variant, variant) {
			line = &state.Items[i]
			break
		}
	}
	if line == nil {
		return nil, model.ErrLineNotFound
	}

	if req.Delta < 0 && line.Quantity <= 1 {
		return s.RemoveItem(ctx, deviceID, &model.RemoveItemRequest{Product: req.Product, Variant: req.Variant})
	}

	if state.Mode == model.ModeAuthenticated {
		target := line.Quantity + req.Delta
		if target < 1 {
			target = 1
		}
		updated := *line
		updated.Quantity = target
		if _, err := store.UpsertAuthenticated(ctx, updated); err != nil {
			return nil, err
		}
		snapshot := store.Snapshot()
		return &snapshot, nil
	}

	delta := req.Delta
	if delta > 0 {
		stock := line.AvailableStock
		if entry, err := s.lookupEntry(ctx, line.Product, line.Variant); err == nil && entry != nil {
			stock = entry.AvailableStock
		}
		_, total := quantities(state, line.Product, line.Variant)
		bounds := quantity.ComputeBounds(quantity.BoundsInput{
			Requested:       line.Quantity + delta,
			AvailableStock:  stock,
			CurrentQty:      line.Quantity,
			TotalProductQty: total,
			VariantLimit:    s.limits.VariantLimit,
			ProductLimit:    s.limits.ProductLimit,
		})
		delta = bounds.Quantity - line.Quantity
	}

	if delta != 0 {
		if _, err := store.UpdateGuest(ctx, line.Product, line.Variant, delta); err != nil {
			return nil, err
		}
	}
	snapshot := store.Snapshot()
	return &snapshot, nil
}

// RemoveItem drops the line matching the request's identity.
func (s *cartService) RemoveItem(ctx context.Context, deviceID string, req *model.RemoveItemRequest) (*model.CartState, error) {
	if req == nil {
		return nil, model.ErrLineNotFound
	}

	product := identity.ResolveProductKeys(req.Product)
	variant := identity.ResolveVariant(req.Variant)

	store, err := s.manager.ForDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if store.Mode() == model.ModeAuthenticated {
		err = store.RemoveAuthenticated(ctx, product, variant)
	} else {
		_, err = store.RemoveGuest(ctx, product, variant)
	}
	if err != nil {
		return nil, err
	}

	snapshot := store.Snapshot()
	return &snapshot, nil
}

// Merge performs the login-time merge of the guest cart into the
// authenticated cart.
func (s *cartService) Merge(ctx context.Context, deviceID string) (*model.CartState, error) {
	store, err := s.manager.ForDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if err := store.MergeOnLogin(ctx); err != nil {
		return nil, err
	}
	snapshot := store.Snapshot()
	s.logger.Info().Str("device_id", deviceID).Int("lines", len(snapshot.Items)).Msg("cart merged on login")
	return &snapshot, nil
}

// Logout discards the authenticated cart and restores the guest cart.
func (s *cartService) Logout(ctx context.Context, deviceID string) (*model.CartState, error) {
	store, err := s.manager.ForDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if err := store.Logout(ctx); err != nil {
		return nil, err
	}
	snapshot := store.Snapshot()
	return &snapshot, nil
}

// Checkout prices the cart, optionally applying a coupon, then clears it.
func (s *cartService) Checkout(ctx context.Context, deviceID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	store, err := s.manager.ForDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	state := store.Snapshot()
	if len(state.Items) == 0 {
		return nil, model.ErrCartEmpty
	}

	resp := &model.CheckoutResponse{
		OrderID:  uuid.New(),
		Items:    state.Items,
		Subtotal: state.Subtotal(),
	}
	resp.Total = resp.Subtotal

	if req != nil && req.CouponCode != nil && *req.CouponCode != "" {
		c := s.coupons.Lookup(*req.CouponCode)
		if c == nil {
			return nil, model.ErrCouponNotFound
		}
		verdict := coupon.Validate(c, resp.Subtotal, state.Items)
		if !verdict.IsValid {
			s.logger.Warn().
				Str("coupon_code", c.Code).
				Str("reason", verdict.Reason).
				Msg("coupon rejected at checkout")
			return nil, model.ErrCouponRejected(verdict.Reason)
		}

		alloc := discount.Allocate(c, state.Items)
		resp.AppliedDiscount = alloc.TotalApplied
		resp.Total = resp.Subtotal - alloc.TotalApplied
		resp.AppliedPerLine = make(map[string]float64, len(alloc.AppliedPerLine))
		for id, amount := range alloc.AppliedPerLine {
			resp.AppliedPerLine[id.String()] = amount
		}
	}

	if err := store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear cart after checkout: %w", err)
	}

	s.logger.Info().
		Str("order_id", resp.OrderID.String()).
		Float64("subtotal", resp.Subtotal).
		Float64("applied_discount", resp.AppliedDiscount).
		Msg("checkout completed")
	return resp, nil
}

// BuyNow prices a single item for immediate purchase. The ephemeral line
// never enters the cart, so there is nothing to tear down on completion.
func (s *cartService) BuyNow(ctx context.Context, deviceID string, req *model.AddItemRequest) (*model.CheckoutResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("buy-now request is nil")
	}

	product := identity.ResolveProductKeys(req.Product)
	variant := identity.ResolveVariant(req.Variant)

	entry, err := s.lookupEntry(ctx, product, variant)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if entry == nil {
		return nil, model.ErrProductNotFound
	}

	requested := req.Quantity
	if requested < 1 {
		requested = 1
	}
	bounds := quantity.ComputeBounds(quantity.BoundsInput{
		Requested:      requested,
		AvailableStock: entry.AvailableStock,
		VariantLimit:   s.limits.VariantLimit,
		ProductLimit:   s.limits.ProductLimit,
	})
	if bounds.Quantity <= 0 {
		return nil, model.ErrOutOfStock
	}

	line := buildLine(req, entry, bounds.Quantity)
	subtotal := line.Total()
	return &model.CheckoutResponse{
		OrderID:  uuid.New(),
		Items:    []model.LineItem{line},
		Subtotal: subtotal,
		Total:    subtotal,
	}, nil
}
