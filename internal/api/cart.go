package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/feiralivre/storefront/internal/commerce"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context) ([]commerce.CartItem, error) {
	var items []commerce.CartItem
	if err := c.do(ctx, http.MethodGet, "/cart", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddCartItem adds a line to the cart. The response body is deliberately
// discarded: the cart store re-fetches the full cart after every mutation
// instead of trusting a mutation's own payload.
func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) error {
	return c.do(ctx, http.MethodPost, "/cart/items", nil, addCartItemRequest{ProductID: productID, Quantity: quantity}, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, productID int64, quantity int) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/items/%d", productID), nil, updateCartItemRequest{Quantity: quantity}, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", productID), nil, nil, nil)
}
