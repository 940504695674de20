package enums

// PaymentMethod is the closed set of ways an order can be paid.
type PaymentMethod string

const (
	PaymentMethodPayPal         PaymentMethod = "PayPal"
	PaymentMethodStripe         PaymentMethod = "Stripe"
	PaymentMethodCashOnDelivery PaymentMethod = "CashOnDelivery"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPayPal, PaymentMethodStripe, PaymentMethodCashOnDelivery:
		return true
	default:
		return false
	}
}

// UserRole distinguishes shoppers from administrative actors.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// PaymentStatusCompleted is the settled-payment sentinel recorded on a
// PaymentResult regardless of which provider produced it.
const PaymentStatusCompleted = "COMPLETED"
