package apiclient

import (
	"context"
	"net/http"

	"github.com/ariefcatur/lexi-storefront/internal/shop"
)

// ObtainToken exchanges credentials for an access/refresh pair.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (shop.TokenPair, error) {
	var tp shop.TokenPair
	in := map[string]string{"username": username, "password": password}
	err := c.doJSON(ctx, http.MethodPost, "/auth/token/", false, in, &tp)
	return tp, err
}

// RefreshToken exchanges a refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/token/refresh/", false, map[string]string{"refresh": refresh}, &out)
	return out.Access, err
}

func (c *Client) Me(ctx context.Context) (shop.Identity, error) {
	var id shop.Identity
	err := c.doJSON(ctx, http.MethodGet, "/auth/me", true, nil, &id)
	return id, err
}

func (c *Client) Register(ctx context.Context, req shop.RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register/", false, req, nil)
}
