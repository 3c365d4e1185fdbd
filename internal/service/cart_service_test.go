package service

import (
	"context"
	"testing"

	"quickkart/internal/cart"
	"quickkart/internal/identity"
	"quickkart/internal/model"
	"quickkart/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCatalogRepository is a mock implementation of repository.CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Lookup(ctx context.Context, productID, variantID string) (*model.CatalogEntry, error) {
	args := m.Called(ctx, productID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CatalogEntry), args.Error(1)
}

func (m *MockCatalogRepository) AvailableStock(ctx context.Context, productID, variantID string) (int, error) {
	args := m.Called(ctx, productID, variantID)
	return args.Int(0), args.Error(1)
}

// stubCoupons is a fixed in-memory coupon catalog.
type stubCoupons struct {
	coupons []model.Coupon
}

func (s *stubCoupons) Lookup(code string) *model.Coupon {
	for i := range s.coupons {
		if s.coupons[i].Code == code {
			c := s.coupons[i]
			return &c
		}
	}
	return nil
}

func (s *stubCoupons) All() []model.Coupon { return s.coupons }
func (s *stubCoupons) Size() int           { return len(s.coupons) }

func entry(productID, variantID string, price float64, stock int) *model.CatalogEntry {
	return &model.CatalogEntry{
		ProductID:      productID,
		Name:           "Product " + productID,
		VariantID:      variantID,
		UnitPrice:      price,
		AvailableStock: stock,
		SubCategoryID:  "SC1",
		CategoryID:     "C1",
		SellerID:       "S1",
	}
}

func addReq(productID, variantID string, qty int) *model.AddItemRequest {
	return &model.AddItemRequest{
		Product:  identity.ProductRef{CatalogID: productID},
		Variant:  identity.VariantRef{ID: variantID},
		Quantity: qty,
	}
}

func newCartService(catalog *MockCatalogRepository, coupons *stubCoupons) CartService {
	if coupons == nil {
		coupons = &stubCoupons{}
	}
	manager := cart.NewManager(cart.DefaultLimits(), repository.NewMemoryCartRepository(), nil, zerolog.Nop())
	return NewCartService(manager, catalog, coupons, cart.DefaultLimits(), zerolog.Nop())
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Adds a known product with the requested quantity", func(t *testing.T) {
		catalog := new(MockCatalogRepository)
		catalog.On("Lookup", mock.Anything, "P1", "V1").Return(entry("P1", "V1", 100.0, 10), nil)
		svc := newCartService(catalog, nil)

		line, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 2))
		require.NoError(t, err)
		assert.Equal(t, 2, line.Quantity)
		assert.Equal(t, 100.0, line.UnitPrice)
		assert.Equal(t, "SC1", line.SubCategoryID)
	})

	t.Run("Unknown product is rejected", func(t *testing.T) {
		catalog := new(MockCatalogRepository)
		catalog.On("Lookup", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		svc := newCartService(catalog, nil)

		_, err := svc.AddItem(ctx, "d1", addReq("P9", "V1", 1))
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Low stock clamps the requested quantity", func(t *testing.T) {
		catalog := new(MockCatalogRepository)
		catalog.On("Lookup", mock.Anything, "P1", "V1").Return(entry("P1", "V1", 100.0, 3), nil)
		svc := newCartService(catalog, nil)

		line, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 5))
		require.NoError(t, err)
		assert.Equal(t, 3, line.Quantity)
	})

	t.Run("Zero stock is rejected outright", func(t *testing.T) {
		catalog := new(MockCatalogRepository)
		catalog.On("Lookup", mock.Anything, "P1", "V1").Return(entry("P1", "V1", 100.0, 0), nil)
		svc := newCartService(catalog, nil)

		_, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 1))
		assert.ErrorIs(t, err, model.ErrOutOfStock)
	})

	t.Run("Third variant rejected when the product budget is spent", func(t *testing.T) {
		catalog := new(MockCatalogRepository)
		catalog.On("Lookup", mock.Anything, "P1", "V1").Return(entry("P1", "V1", 100.0, 10), nil)
		catalog.On("Lookup", mock.Anything, "P1", "V2").Return(entry("P1", "V2", 100.0, 10), nil)
		catalog.On("Lookup", mock.Anything, "P1", "V3").Return(entry("P1", "V3", 100.0, 10), nil)
		svc := newCartService(catalog, nil)

		_, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 3))
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, "d1", addReq("P1", "V2", 2))
		require.NoError(t, err)

		_, err = svc.AddItem(ctx, "d1", addReq("P1", "V3", 1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "up to 5 units of this product")
	})

	t.Run("Re-adding at the variant budget is a silent no-op", func(t *testing.T) {
		catalog := new(MockCatalogRepository)
		catalog.On("Lookup", mock.Anything, "P1", "V1").Return(entry("P1", "V1", 100.0, 10), nil)
		svc := newCartService(catalog, nil)

		_, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 5))
		require.NoError(t, err)

		line, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 1))
		require.NoError(t, err)
		assert.Equal(t, 5, line.Quantity)
	})
}

func TestCartService_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, stock int) CartService {
		t.Helper()
		catalog := new(MockCatalogRepository)
		catalog.On("Lookup", mock.Anything, "P1", "V1").Return(entry("P1", "V1", 100.0, stock), nil)
		return newCartService(catalog, nil)
	}

	t.Run("Positive delta clamps against live stock", func(t *testing.T) {
		svc := setup(t, 3)
		_, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 2))
		require.NoError(t, err)

		state, err := svc.UpdateQuantity(ctx, "d1", &model.UpdateItemRequest{
			Product: identity.ProductRef{CatalogID: "P1"},
			Variant: identity.VariantRef{ID: "V1"},
			Delta:   +4,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, state.Items[0].Quantity)
	})

	t.Run("Decrease at quantity one removes the line", func(t *testing.T) {
		svc := setup(t, 10)
		_, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 1))
		require.NoError(t, err)

		state, err := svc.UpdateQuantity(ctx, "d1", &model.UpdateItemRequest{
			Product: identity.ProductRef{CatalogID: "P1"},
			Variant: identity.VariantRef{ID: "V1"},
			Delta:   -1,
		})
		require.NoError(t, err)
		assert.Empty(t, state.Items, "decreasing at 1 removes, never stores 0")
	})

	t.Run("Unknown line is reported", func(t *testing.T) {
		svc := setup(t, 10)
		_, err := svc.UpdateQuantity(ctx, "d1", &model.UpdateItemRequest{
			Product: identity.ProductRef{CatalogID: "P1"},
			Variant: identity.VariantRef{ID: "V1"},
			Delta:   +1,
		})
		assert.ErrorIs(t, err, model.ErrLineNotFound)
	})

	t.Run("Zero delta is rejected", func(t *testing.T) {
		svc := setup(t, 10)
		_, err := svc.UpdateQuantity(ctx, "d1", &model.UpdateItemRequest{Delta: 0})
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	})
}

func TestCartService_Checkout(t *testing.T) {
	ctx := context.Background()
	code := "SAVE50"

	coupons := &stubCoupons{coupons: []model.Coupon{
		{Code: "SAVE50", DiscountType: model.DiscountFixed, DiscountValue: 50, Criteria: model.CriteriaAll},
		{Code: "MIN500", DiscountType: model.DiscountFixed, DiscountValue: 50, Criteria: model.CriteriaAll, MinOrder: floatPtr(500)},
	}}

	setup := func(t *testing.T) CartService {
		t.Helper()
		catalog := new(MockCatalogRepository)
		catalog.On("Lookup", mock.Anything, "P1", "V1").Return(entry("P1", "V1", 100.0, 10), nil)
		return newCartService(catalog, coupons)
	}

	t.Run("Empty cart cannot check out", func(t *testing.T) {
		svc := setup(t)
		_, err := svc.Checkout(ctx, "d1", &model.CheckoutRequest{})
		assert.ErrorIs(t, err, model.ErrCartEmpty)
	})

	t.Run("Checkout without coupon prices the cart and clears it", func(t *testing.T) {
		svc := setup(t)
		_, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 3))
		require.NoError(t, err)

		resp, err := svc.Checkout(ctx, "d1", nil)
		require.NoError(t, err)
		assert.Equal(t, 300.0, resp.Subtotal)
		assert.Equal(t, 300.0, resp.Total)
		assert.Zero(t, resp.AppliedDiscount)

		state, err := svc.State(ctx, "d1")
		require.NoError(t, err)
		assert.Empty(t, state.Items, "checkout clears the cart")
	})

	t.Run("Valid coupon discounts the total", func(t *testing.T) {
		svc := setup(t)
		_, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 3))
		require.NoError(t, err)

		resp, err := svc.Checkout(ctx, "d1", &model.CheckoutRequest{CouponCode: &code})
		require.NoError(t, err)
		assert.Equal(t, 300.0, resp.Subtotal)
		assert.Equal(t, 50.0, resp.AppliedDiscount)
		assert.Equal(t, 250.0, resp.Total)
	})

	t.Run("Rejected coupon surfaces its reason and keeps the cart", func(t *testing.T) {
		svc := setup(t)
		_, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 3))
		require.NoError(t, err)

		badCode := "MIN500"
		_, err = svc.Checkout(ctx, "d1", &model.CheckoutRequest{CouponCode: &badCode})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")

		state, err := svc.State(ctx, "d1")
		require.NoError(t, err)
		assert.Len(t, state.Items, 1, "a failed checkout must not clear the cart")
	})

	t.Run("Unknown code is rejected", func(t *testing.T) {
		svc := setup(t)
		_, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 1))
		require.NoError(t, err)

		nope := "NOPE"
		_, err = svc.Checkout(ctx, "d1", &model.CheckoutRequest{CouponCode: &nope})
		assert.ErrorIs(t, err, model.ErrCouponNotFound)
	})
}

func TestCartService_BuyNow(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalogRepository)
	catalog.On("Lookup", mock.Anything, "P1", "V1").Return(entry("P1", "V1", 100.0, 10), nil)
	svc := newCartService(catalog, nil)

	_, err := svc.AddItem(ctx, "d1", addReq("P1", "V1", 1))
	require.NoError(t, err)

	resp, err := svc.BuyNow(ctx, "d1", addReq("P1", "V1", 2))
	require.NoError(t, err)
	assert.Equal(t, 200.0, resp.Subtotal)

	state, err := svc.State(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, state.Items, 1)
	assert.Equal(t, 1, state.Items[0].Quantity, "buy-now must not touch the cart")
}

func floatPtr(v float64) *float64 { return &v }
