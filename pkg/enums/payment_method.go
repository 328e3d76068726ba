package enums

import "fmt"

// PaymentMethod describes how a customer settles an order or a plan.
type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodCash,
	PaymentMethodUPI,
	PaymentMethodNetBanking,
}

// Orders accept card or cash on delivery.
var orderPaymentMethods = []PaymentMethod{PaymentMethodCard, PaymentMethodCash}

// Plans are prepaid: card, UPI or net banking.
var planPaymentMethods = []PaymentMethod{PaymentMethodCard, PaymentMethodUPI, PaymentMethodNetBanking}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	return containsMethod(validPaymentMethods, p)
}

// AllowedForOrder reports whether checkout accepts the method.
func (p PaymentMethod) AllowedForOrder() bool {
	return containsMethod(orderPaymentMethods, p)
}

// AllowedForPlan reports whether plan subscriptions accept the method.
func (p PaymentMethod) AllowedForPlan() bool {
	return containsMethod(planPaymentMethods, p)
}

// Online reports whether the method is collected through the payment gateway.
func (p PaymentMethod) Online() bool {
	return p != PaymentMethodCash
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

func containsMethod(set []PaymentMethod, p PaymentMethod) bool {
	for _, candidate := range set {
		if candidate == p {
			return true
		}
	}
	return false
}
