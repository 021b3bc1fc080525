package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// OrderClient talks to the order endpoints. Every call needs a bearer token.
type OrderClient struct {
	api *Client
}

func NewOrderClient(api *Client) *OrderClient {
	return &OrderClient{api: api}
}

// CreateOrder submits an order. The service may answer 2xx with an empty
// body, in which case the returned record is zero.
func (c *OrderClient) CreateOrder(ctx context.Context, token string, order domain.Order) (domain.OrderRecord, error) {
	var rec domain.OrderRecord
	err := c.api.DoJSON(ctx, Request{
		Method: http.MethodPost,
		Path:   "/orders",
		Token:  token,
		Body:   order,
	}, &rec)
	return rec, err
}

func (c *OrderClient) ListByUser(ctx context.Context, token string, userID int64) ([]domain.OrderRecord, error) {
	var orders []domain.OrderRecord
	err := c.api.DoJSON(ctx, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/orders/user/%d", userID),
		Token:  token,
	}, &orders)
	return orders, err
}

func (c *OrderClient) GetOrder(ctx context.Context, token string, id int64) (domain.OrderRecord, error) {
	var rec domain.OrderRecord
	err := c.api.DoJSON(ctx, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/orders/%d", id),
		Token:  token,
	}, &rec)
	return rec, err
}

func (c *OrderClient) CancelOrder(ctx context.Context, token string, id int64) (domain.OrderRecord, error) {
	var rec domain.OrderRecord
	err := c.api.DoJSON(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/orders/%d/cancel", id),
		Token:  token,
	}, &rec)
	return rec, err
}
