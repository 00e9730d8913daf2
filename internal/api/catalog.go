package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/feiralivre/storefront/internal/commerce"
)

func (c *Client) ListProducts(ctx context.Context) ([]commerce.Product, error) {
	var products []commerce.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*commerce.Product, error) {
	var product commerce.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]commerce.Category, error) {
	var categories []commerce.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) ListTags(ctx context.Context) ([]commerce.Tag, error) {
	var tags []commerce.Tag
	if err := c.do(ctx, http.MethodGet, "/tags", nil, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
