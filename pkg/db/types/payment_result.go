package types

import "github.com/shopspring/decimal"

// PaymentResult records the provider-side evidence attached to an order by
// the settlement path. Constructed only inside reconciliation and the
// coordinators; never assembled ad hoc by callers.
type PaymentResult struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	EmailAddress string          `json:"email_address"`
	PricePaid    decimal.Decimal `json:"price_paid"`
}
