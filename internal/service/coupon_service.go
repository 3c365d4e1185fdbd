package service

import (
	"context"

	"quickkart/internal/coupon"
	"quickkart/internal/discount"
	"quickkart/internal/model"

	"github.com/rs/zerolog"
)

// couponService implements CouponService over the loaded catalog, the
// evaluator and the allocator. The evaluator and allocator are pure
// functions over a cart snapshot; this service only feeds them.
type couponService struct {
	catalog coupon.Catalog
	carts   CartService
	applier CouponApplier
	logger  zerolog.Logger
}

// NewCouponService creates a new coupon service. applier may be nil when no
// upstream confirmation is configured.
func NewCouponService(catalog coupon.Catalog, carts CartService, applier CouponApplier, logger zerolog.Logger) CouponService {
	return &couponService{
		catalog: catalog,
		carts:   carts,
		applier: applier,
		logger:  logger.With().Str("service", "coupon").Logger(),
	}
}

// Candidates returns the loaded coupons valid for the current cart.
func (s *couponService) Candidates(ctx context.Context, deviceID string) ([]model.Coupon, error) {
	state, err := s.carts.State(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if len(state.Items) == 0 {
		return []model.Coupon{}, nil
	}

	eligible := coupon.FilterEligible(s.catalog.All(), state.Subtotal(), state.Items)
	s.logger.Debug().
		Int("catalog_size", s.catalog.Size()).
		Int("eligible", len(eligible)).
		Msg("coupon candidates filtered")
	return eligible, nil
}

// Apply validates one code against the current cart and returns its
// discount allocation. In authenticated mode the code is also confirmed
// upstream; a server rejection wins over the local verdict.
func (s *couponService) Apply(ctx context.Context, deviceID, code string) (*CouponApplication, error) {
	state, err := s.carts.State(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	c := s.catalog.Lookup(code)
	if c == nil {
		s.logger.Warn().Str("coupon_code", code).Msg("unknown coupon code")
		return nil, model.ErrCouponNotFound
	}

	verdict := coupon.Validate(c, state.Subtotal(), state.Items)
	if !verdict.IsValid {
		s.logger.Warn().
			Str("coupon_code", code).
			Str("reason", verdict.Reason).
			Msg("coupon rejected")
		return nil, model.ErrCouponRejected(verdict.Reason)
	}

	alloc := discount.Allocate(c, state.Items)

	if state.Mode == model.ModeAuthenticated && s.applier != nil {
		confirmed, err := s.applier.Apply(ctx, code, state.Items)
		if err != nil {
			return nil, err
		}
		if confirmed != alloc.TotalApplied {
			s.logger.Warn().
				Str("coupon_code", code).
				Float64("local", alloc.TotalApplied).
				Float64("server", confirmed).
				Msg("server-applied discount differs from local allocation")
		}
	}

	return &CouponApplication{Coupon: *c, Allocation: alloc}, nil
}
