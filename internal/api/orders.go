package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/feiralivre/storefront/internal/commerce"
)

type createOrderRequest struct {
	AddressID     string          `json:"address_id"`
	ShippingValue decimal.Decimal `json:"shipping_value"`
}

// QuoteShipping computes carrier options for the cart against a destination
// address. Quotes are ephemeral; callers must not cache them across address
// changes.
func (c *Client) QuoteShipping(ctx context.Context, addressID string) ([]commerce.ShippingOption, error) {
	query := url.Values{"addressId": {addressID}}
	var options []commerce.ShippingOption
	if err := c.do(ctx, http.MethodPost, "/orders/shipping/quote", query, nil, &options); err != nil {
		return nil, err
	}
	return options, nil
}

func (c *Client) CreateOrder(ctx context.Context, addressID string, shippingValue decimal.Decimal) (*commerce.Order, error) {
	var order commerce.Order
	err := c.do(ctx, http.MethodPost, "/orders", nil, createOrderRequest{AddressID: addressID, ShippingValue: shippingValue}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the authenticated user's order history, newest first as
// the backend sends them.
func (c *Client) ListOrders(ctx context.Context) ([]commerce.Order, error) {
	var orders []commerce.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*commerce.Order, error) {
	var order commerce.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) RequestPixCharge(ctx context.Context, orderID string) (*commerce.PixPayment, error) {
	path := fmt.Sprintf("/orders/%s/pay-pix", url.PathEscape(orderID))
	var charge commerce.PixPayment
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}
