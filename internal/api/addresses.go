package api

import (
	"context"
	"net/http"

	"github.com/feiralivre/storefront/internal/commerce"
)

func (c *Client) ListAddresses(ctx context.Context) ([]commerce.Address, error) {
	var addresses []commerce.Address
	if err := c.do(ctx, http.MethodGet, "/users/me/addresses", nil, nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *Client) AddAddress(ctx context.Context, addr commerce.NewAddress) (*commerce.Address, error) {
	var created commerce.Address
	if err := c.do(ctx, http.MethodPost, "/users/me/addresses", nil, addr, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
