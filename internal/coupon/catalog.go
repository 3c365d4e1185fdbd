package coupon

import (
	"context"
	"fmt"
	"sync"

	"quickkart/internal/model"

	"github.com/rs/zerolog"
)

// mapCatalog implements Catalog using a map for O(1) code lookups.
// Read-only after initialisation, so no locking is needed.
type mapCatalog struct {
	byCode  map[string]model.Coupon
	ordered []model.Coupon
}

// CatalogConfig holds configuration for the coupon catalog.
type CatalogConfig struct {
	// FilePaths is the list of catalog files to load.
	FilePaths []string
}

// DefaultCatalogConfig returns the default catalog configuration.
func DefaultCatalogConfig() *CatalogConfig {
	return &CatalogConfig{
		FilePaths: []string{
			"data/coupons/catalog.jsonl.gz",
		},
	}
}

// NewCatalog loads every configured catalog file concurrently and merges
// the results. A code appearing in more than one file keeps the last
// loaded definition, in file order.
func NewCatalog(ctx context.Context, config *CatalogConfig, loader Loader, logger zerolog.Logger) (Catalog, error) {
	if config == nil {
		config = DefaultCatalogConfig()
	}

	logger = logger.With().Str("component", "coupon-catalog").Logger()
	logger.Info().
		Int("file_count", len(config.FilePaths)).
		Msg("loading coupon catalog")

	type loadResult struct {
		index   int
		coupons []model.Coupon
		err     error
	}

	resultChan := make(chan loadResult, len(config.FilePaths))
	var wg sync.WaitGroup

	for i, path := range config.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			coupons, err := loader.Load(ctx, path)
			resultChan <- loadResult{index: index, coupons: coupons, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in file order so later files win on code clashes.
	results := make([]loadResult, len(config.FilePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	catalog := &mapCatalog{byCode: make(map[string]model.Coupon)}
	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", config.FilePaths[i]).
				Msg("failed to load catalog file")
			return nil, fmt.Errorf("failed to load catalog file %s: %w", config.FilePaths[i], result.err)
		}
		for _, c := range result.coupons {
			if _, seen := catalog.byCode[c.Code]; !seen {
				catalog.ordered = append(catalog.ordered, c)
			}
			catalog.byCode[c.Code] = c
		}
		logger.Info().
			Str("file", config.FilePaths[i]).
			Int("coupons", len(result.coupons)).
			Msg("catalog file loaded")
	}

	logger.Info().
		Int("total_coupons", len(catalog.byCode)).
		Msg("coupon catalog loaded")

	return catalog, nil
}

// Lookup returns the coupon for a code, or nil when unknown.
func (c *mapCatalog) Lookup(code string) *model.Coupon {
	coupon, ok := c.byCode[code]
	if !ok {
		return nil
	}
	return &coupon
}

// All returns every loaded coupon.
func (c *mapCatalog) All() []model.Coupon {
	out := make([]model.Coupon, len(c.ordered))
	for i, coupon := range c.ordered {
		// The byCode map holds the winning definition for clashing codes.
		out[i] = c.byCode[coupon.Code]
	}
	return out
}

// Size returns the number of loaded coupons.
func (c *mapCatalog) Size() int {
	return len(c.byCode)
}
