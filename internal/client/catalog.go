package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// CatalogClient reads the remote product catalog. Nothing is cached between
// calls. Concurrent list calls share one request, so a caller joining one
// already in flight sees the catalog as of that request.
type CatalogClient struct {
	api   *Client
	group singleflight.Group
}

func NewCatalogClient(api *Client) *CatalogClient {
	return &CatalogClient{api: api}
}

func (c *CatalogClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := c.group.Do("products", func() (interface{}, error) {
		var products []domain.Product
		if err := c.api.DoJSON(ctx, Request{Method: http.MethodGet, Path: "/products"}, &products); err != nil {
			return nil, err
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	// callers share the result of a coalesced call
	shared := v.([]domain.Product)
	products := make([]domain.Product, len(shared))
	copy(products, shared)
	return products, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := c.api.DoJSON(ctx, Request{
		Method: http.MethodGet,
		Path:   "/products/" + strconv.FormatInt(id, 10),
	}, &p)
	return p, err
}

func (c *CatalogClient) Search(ctx context.Context, name string) ([]domain.Product, error) {
	var products []domain.Product
	err := c.api.DoJSON(ctx, Request{
		Method: http.MethodGet,
		Path:   "/products/search",
		Query:  url.Values{"nombre": []string{name}},
	}, &products)
	return products, err
}

// Available lists the products with stock left.
func (c *CatalogClient) Available(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := c.api.DoJSON(ctx, Request{Method: http.MethodGet, Path: "/products/available"}, &products)
	return products, err
}

// Featured returns the first n products of the catalog.
func (c *CatalogClient) Featured(ctx context.Context, n int) ([]domain.Product, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n < len(products) {
		products = products[:n]
	}
	return products, nil
}
