package commerce

import "github.com/shopspring/decimal"

// ShippingOption is a single carrier quote for a destination address.
// Quotes are ephemeral: every address change recomputes them and nothing
// persists a quote client-side.
type ShippingOption struct {
	Carrier         string          `json:"carrier"`
	Price           decimal.Decimal `json:"price"`
	ETABusinessDays int             `json:"eta_business_days"`
}
