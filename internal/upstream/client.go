// Package upstream holds the HTTP clients for the retailer's cart and
// coupon services. The wire contract is fixed by the retailer; only the
// endpoints the cart core consumes are implemented.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"quickkart/internal/identity"
	"quickkart/internal/model"

	"github.com/rs/zerolog"
)

// Client talks to the upstream cart and coupon services. It implements
// cart.Backend and the coupon apply contract.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an upstream client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "upstream-client").Logger(),
	}
}

// lineItemPayload is the wire form of a cart line: raw ids, not identity
// sets, because the upstream predates the resolver.
type lineItemPayload struct {
	ProductID      string  `json:"productId"`
	VariantID      string  `json:"variantId,omitempty"`
	VariantName    string  `json:"variantName,omitempty"`
	Name           string  `json:"name,omitempty"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	AvailableStock int     `json:"availableStock"`
	SubCategoryID  string  `json:"subCategoryId,omitempty"`
	CategoryID     string  `json:"categoryId,omitempty"`
	SellerID       string  `json:"sellerId,omitempty"`
	Status         string  `json:"status,omitempty"`
}

func toPayload(item model.LineItem) lineItemPayload {
	p := lineItemPayload{
		Name:           item.Name,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		AvailableStock: item.AvailableStock,
		SubCategoryID:  item.SubCategoryID,
		CategoryID:     item.CategoryID,
		SellerID:       item.SellerID,
		Status:         string(item.Status),
	}
	if ids := item.Product.IDs.Values(); len(ids) > 0 {
		p.ProductID = ids[0]
	}
	if ids := item.Variant.IDs.Values(); len(ids) > 0 {
		p.VariantID = ids[0]
	}
	if names := item.Variant.Names.Values(); len(names) > 0 {
		p.VariantName = names[0]
	}
	return p
}

func (p lineItemPayload) toLineItem() model.LineItem {
	return model.LineItem{
		Product:        identity.ResolveProductKeys(identity.ProductRef{CatalogID: p.ProductID}),
		Variant:        identity.ResolveVariant(identity.VariantRef{ID: p.VariantID, Name: p.VariantName}),
		Name:           p.Name,
		Quantity:       p.Quantity,
		UnitPrice:      p.UnitPrice,
		AvailableStock: p.AvailableStock,
		SubCategoryID:  p.SubCategoryID,
		CategoryID:     p.CategoryID,
		SellerID:       p.SellerID,
		Status:         model.LineStatus(p.Status),
	}
}

// Fetch returns the authenticated cart as the server holds it.
func (c *Client) Fetch(ctx context.Context) ([]model.LineItem, error) {
	var payloads []lineItemPayload
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &payloads); err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}

	items := make([]model.LineItem, len(payloads))
	for i, p := range payloads {
		items[i] = p.toLineItem()
	}
	return items, nil
}

// Upsert adds or updates a line, returning the server-confirmed line.
func (c *Client) Upsert(ctx context.Context, item model.LineItem) (*model.LineItem, error) {
	var echo lineItemPayload
	if err := c.do(ctx, http.MethodPost, "/cart", toPayload(item), &echo); err != nil {
		return nil, fmt.Errorf("failed to upsert cart line: %w", err)
	}

	confirmed := echo.toLineItem()
	confirmed.ID = item.ID
	return &confirmed, nil
}

// Remove drops the line matching the given identity from the server cart.
func (c *Client) Remove(ctx context.Context, product identity.ProductKey, variant identity.VariantDescriptor) error {
	req := struct {
		ProductID string `json:"productId"`
		VariantID string `json:"variantId,omitempty"`
	}{}
	if ids := product.IDs.Values(); len(ids) > 0 {
		req.ProductID = ids[0]
	}
	if ids := variant.IDs.Values(); len(ids) > 0 {
		req.VariantID = ids[0]
	}

	if err := c.do(ctx, http.MethodPost, "/cart/remove", req, nil); err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	return nil
}

// SyncGuest submits guest lines during the login-time merge.
func (c *Client) SyncGuest(ctx context.Context, items []model.LineItem) error {
	payloads := make([]lineItemPayload, len(items))
	for i, item := range items {
		payloads[i] = toPayload(item)
	}
	body := struct {
		Items []lineItemPayload `json:"items"`
	}{Items: payloads}

	if err := c.do(ctx, http.MethodPost, "/cart/sync-guest", body, nil); err != nil {
		return fmt.Errorf("failed to sync guest cart: %w", err)
	}
	return nil
}

// Apply submits a coupon code for server-side application and returns the
// discount the server granted.
func (c *Client) Apply(ctx context.Context, code string, items []model.LineItem) (float64, error) {
	payloads := make([]lineItemPayload, len(items))
	for i, item := range items {
		payloads[i] = toPayload(item)
	}
	body := struct {
		Code     string            `json:"code"`
		Products []lineItemPayload `json:"products"`
	}{Code: code, Products: payloads}

	var resp struct {
		AppliedDiscount float64 `json:"appliedDiscount"`
	}
	if err := c.do(ctx, http.MethodPost, "/coupons/apply", body, &resp); err != nil {
		return 0, fmt.Errorf("failed to apply coupon: %w", err)
	}
	return resp.AppliedDiscount, nil
}

// do runs one JSON request/response round trip against the upstream.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("upstream request failed")
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("upstream request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr model.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return model.NewDomainError(model.ErrCodeUpstreamFailure, apiErr.Message)
		}
		return fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
