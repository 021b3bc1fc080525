package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type AuthClient struct {
	api *Client
}

func NewAuthClient(api *Client) *AuthClient {
	return &AuthClient{api: api}
}

// Login exchanges credentials for a bearer token and the user profile.
func (c *AuthClient) Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error) {
	var res domain.LoginResult
	if err := c.api.DoJSON(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: creds}, &res); err != nil {
		return domain.LoginResult{}, err
	}
	if res.Token == "" || res.User == nil {
		return domain.LoginResult{}, fmt.Errorf("login response without token or user: %w", ErrMalformedResponse)
	}
	return res, nil
}

func (c *AuthClient) Register(ctx context.Context, reg domain.Registration) error {
	return c.api.DoJSON(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: reg}, nil)
}
