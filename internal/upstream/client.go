// Package upstream fetches the product catalog and inventory ledger over HTTP.
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"price-aggregator/internal/models"
	"price-aggregator/internal/service"
	"price-aggregator/internal/util"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	productsPath    = "/products"
	inventoriesPath = "/inventories"
)

// Client calls one upstream HTTP service
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		logger: util.GetLogger(),
	}
}

// get decodes a JSON array from path. Non-2xx answers fail with the HTTP
// reason phrase; transport and decode errors fail with the error text.
func get[T any](ctx context.Context, c *Client, path string) service.FetchResult[T] {
	var items []T

	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&items).
		Get(path)
	if err != nil {
		c.logger.Warn("Upstream request failed", zap.String("path", path), zap.Error(err))
		return service.Failed[T](err.Error())
	}

	if !resp.IsSuccess() {
		c.logger.Warn("Upstream returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()))
		return service.Failed[T](reasonPhrase(resp.StatusCode(), resp.Status()))
	}

	if items == nil {
		items = []T{}
	}
	return service.FetchResult[T]{Items: items, OK: true, Message: reasonPhrase(resp.StatusCode(), resp.Status())}
}

// reasonPhrase extracts the reason phrase from a status line such as
// "503 Service Unavailable", falling back to the standard text for code.
func reasonPhrase(code int, status string) string {
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(status), strconv.Itoa(code)))
	if text != "" {
		return text
	}
	if text = http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", code)
}

// ProductsClient is a service.ProductSource backed by GET /products
type ProductsClient struct {
	*Client
}

// NewProductsClient creates a new products client
func NewProductsClient(baseURL string, timeout time.Duration) *ProductsClient {
	return &ProductsClient{Client: NewClient(baseURL, timeout)}
}

// FetchProducts fetches the full catalog
func (c *ProductsClient) FetchProducts(ctx context.Context) service.FetchResult[models.Product] {
	return get[models.Product](ctx, c.Client, productsPath)
}

// InventoriesClient is a service.InventorySource backed by GET /inventories
type InventoriesClient struct {
	*Client
}

// NewInventoriesClient creates a new inventories client
func NewInventoriesClient(baseURL string, timeout time.Duration) *InventoriesClient {
	return &InventoriesClient{Client: NewClient(baseURL, timeout)}
}

// FetchInventories fetches the full inventory ledger
func (c *InventoriesClient) FetchInventories(ctx context.Context) service.FetchResult[models.Inventory] {
	return get[models.Inventory](ctx, c.Client, inventoriesPath)
}
