package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickkart/internal/cart"
	"quickkart/internal/config"
	"quickkart/internal/coupon"
	"quickkart/internal/database"
	"quickkart/internal/handler"
	"quickkart/internal/repository"
	"quickkart/internal/router"
	"quickkart/internal/service"
	"quickkart/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting quickkart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	cartRepo := repository.NewCartRepository(pool, logger)
	catalogRepo := repository.NewCatalogRepository(pool, logger)

	// Initialize coupon loader with S3 and local fallback
	fileLoader := coupon.NewFileLoader(logger)
	var couponLoader coupon.Loader = fileLoader

	if cfg.S3.Enabled {
		s3Loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			couponLoader = coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	} else {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
	}

	// Load the coupon catalog
	catalog, err := coupon.NewCatalog(ctx, &coupon.CatalogConfig{FilePaths: cfg.Coupons.FilePaths}, couponLoader, logger)
	if err != nil {
		return fmt.Errorf("failed to load coupon catalog: %w", err)
	}

	// Initialize the upstream cart backend when configured. Without it the
	// API serves guest carts only.
	var backend cart.Backend
	var applier service.CouponApplier
	if cfg.Upstream.BaseURL != "" {
		client := upstream.NewClient(
			cfg.Upstream.BaseURL,
			cfg.Upstream.APIKey,
			time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second,
			logger,
		)
		backend = client
		applier = client
	} else {
		logger.Info().Msg("no upstream cart backend configured, running guest-only")
	}

	// Initialize the cart manager and services
	limits := cart.Limits{
		VariantLimit: cfg.Cart.VariantLimit,
		ProductLimit: cfg.Cart.ProductLimit,
	}
	manager := cart.NewManager(limits, cartRepo, backend, logger)

	cartService := service.NewCartService(manager, catalogRepo, catalog, limits, logger)
	couponService := service.NewCouponService(catalog, cartService, applier, logger)

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(cartService, logger)
	couponHandler := handler.NewCouponHandler(couponService, logger)

	// Initialize router
	mux := router.New(cartHandler, couponHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
