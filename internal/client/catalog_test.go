package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/apitest"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Café molido", Price: decimal.RequireFromString("12.50"), Stock: 3, Image: "cafe.png"},
		{ID: 2, Name: "Taza", Price: decimal.NewFromInt(8), Stock: 0},
		{ID: 3, Name: "Café en grano", Price: decimal.NewFromInt(15), Stock: 10},
	}
}

func setupCatalog(t *testing.T) (*CatalogClient, *apitest.Server) {
	api := apitest.New(t)
	api.SetProducts(seedProducts()...)
	return NewCatalogClient(newTestClient(t, api.URL(), 0)), api
}

func TestListProducts_BareArrayAndEnvelope(t *testing.T) {
	catalog, api := setupCatalog(t)
	ctx := context.Background()

	bare, err := catalog.ListProducts(ctx)
	require.NoError(t, err)

	api.UseEnvelope(true)
	wrapped, err := catalog.ListProducts(ctx)
	require.NoError(t, err)

	require.Len(t, bare, 3)
	require.Len(t, wrapped, 3)
	for i := range bare {
		assert.Equal(t, bare[i].ID, wrapped[i].ID)
		assert.Equal(t, bare[i].Stock, wrapped[i].Stock)
		assert.True(t, bare[i].Price.Equal(wrapped[i].Price))
	}
	assert.Equal(t, "12.5", bare[0].Price.String())
	assert.Equal(t, 2, api.Calls("GET /products"))
}

func TestListProducts_EveryCallHitsServer(t *testing.T) {
	catalog, api := setupCatalog(t)
	ctx := context.Background()

	_, err := catalog.ListProducts(ctx)
	require.NoError(t, err)
	api.SetStock(1, 0)

	products, err := catalog.ListProducts(ctx)
	require.NoError(t, err)

	p, ok := domain.FindProduct(products, 1)
	require.True(t, ok)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, 2, api.Calls("GET /products"))
}

func TestListProducts_ConcurrentCallersGetOwnCopy(t *testing.T) {
	catalog, _ := setupCatalog(t)

	var wg sync.WaitGroup
	results := make([][]domain.Product, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			products, err := catalog.ListProducts(context.Background())
			assert.NoError(t, err)
			results[i] = products
		}(i)
	}
	wg.Wait()

	results[0][0].Stock = 99
	for _, r := range results[1:] {
		require.Len(t, r, 3)
		assert.Equal(t, 3, r[0].Stock)
	}
}

func TestListProducts_ServerError(t *testing.T) {
	catalog, api := setupCatalog(t)
	api.Fail("GET /products", http.StatusServiceUnavailable, "")

	_, err := catalog.ListProducts(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestGetProduct(t *testing.T) {
	catalog, _ := setupCatalog(t)
	ctx := context.Background()

	p, err := catalog.GetProduct(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Café en grano", p.Name)

	_, err = catalog.GetProduct(ctx, 42)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Producto no encontrado", apiErr.Message)
}

func TestSearchAndAvailable(t *testing.T) {
	catalog, _ := setupCatalog(t)
	ctx := context.Background()

	found, err := catalog.Search(ctx, "café")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	available, err := catalog.Available(ctx)
	require.NoError(t, err)
	ids := []int64{}
	for _, p := range available {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestFeatured(t *testing.T) {
	catalog, _ := setupCatalog(t)
	ctx := context.Background()

	two, err := catalog.Featured(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	all, err := catalog.Featured(ctx, 6)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := catalog.Featured(ctx, -1)
	require.NoError(t, err)
	assert.Empty(t, none)
}
