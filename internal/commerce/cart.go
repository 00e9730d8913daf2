package commerce

import "github.com/shopspring/decimal"

// ProductSnapshot is the slice of product data the backend denormalizes
// into each cart line so the cart can render without a catalog lookup.
type ProductSnapshot struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type CartItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Product   ProductSnapshot `json:"product"`
}

// ItemsSubtotal sums unit price times quantity over lines with a positive
// quantity. Lines with quantity <= 0 never exist server-side, but a stale
// payload must not produce a negative subtotal.
func ItemsSubtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// ItemsCount sums quantities over all lines.
func ItemsCount(items []CartItem) int {
	n := 0
	for _, it := range items {
		if it.Quantity > 0 {
			n += it.Quantity
		}
	}
	return n
}
