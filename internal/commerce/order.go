package commerce

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderStatusPaid            OrderStatus = "PAID"
	OrderStatusShipped         OrderStatus = "SHIPPED"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
)

var statusRank = map[OrderStatus]int{
	OrderStatusAwaitingPayment: 0,
	OrderStatusPaid:            1,
	OrderStatusShipped:         2,
	OrderStatusDelivered:       3,
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the server-reported progression from s to
// next respects the monotonic lifecycle. The client never advances a status
// itself; this guards polled payloads against regressions.
func CanTransitionTo(s, next OrderStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCanceled {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

type OrderLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Order is a read-only projection of the server-side order. The client
// re-fetches it to observe status changes; it never mutates one.
type Order struct {
	ID            string          `json:"id"`
	Status        OrderStatus     `json:"status"`
	Items         []OrderLine     `json:"items"`
	ItemsTotal    decimal.Decimal `json:"items_total"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Address       Address         `json:"address"`
}
