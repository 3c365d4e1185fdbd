package router

import (
	"net/http"

	"quickkart/internal/handler"
	"quickkart/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	cartHandler *handler.CartHandler,
	couponHandler *handler.CouponHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Cart routes. The bare path serves the cart snapshot; everything else
	// is a sub-action.
	mux.HandleFunc("/api/cart", cartHandler.Get)
	mux.HandleFunc("/api/cart/", cartHandler.Get)
	mux.HandleFunc("/api/cart/items", cartHandler.AddItem)
	mux.HandleFunc("/api/cart/items/update", cartHandler.UpdateItem)
	mux.HandleFunc("/api/cart/items/remove", cartHandler.RemoveItem)
	mux.HandleFunc("/api/cart/merge", cartHandler.Merge)
	mux.HandleFunc("/api/cart/logout", cartHandler.Logout)
	mux.HandleFunc("/api/cart/checkout", cartHandler.Checkout)
	mux.HandleFunc("/api/cart/buy-now", cartHandler.BuyNow)

	// Coupon routes
	mux.HandleFunc("/api/coupons", couponHandler.Candidates)
	mux.HandleFunc("/api/coupons/", couponHandler.Candidates)
	mux.HandleFunc("/api/coupons/apply", couponHandler.Apply)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	return h
}
