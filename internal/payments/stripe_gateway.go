package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
)

// IntentCreator is the slice of the Stripe API the gateway needs.
// *pkg/stripe.Client satisfies it.
type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway charges through Stripe PaymentIntents.
type StripeGateway struct {
	intents  IntentCreator
	currency string
}

// NewStripeGateway builds a gateway charging in currency (ISO code, lower case).
func NewStripeGateway(intents IntentCreator, currency string) (*StripeGateway, error) {
	if intents == nil {
		return nil, errors.New("stripe intent creator required")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return nil, errors.New("currency required")
	}
	return &StripeGateway{intents: intents, currency: currency}, nil
}

// Charge creates a PaymentIntent for amount. With a payment method the intent
// is confirmed immediately; without one it stays open and the client secret
// is returned for client-side confirmation.
func (g *StripeGateway) Charge(ctx context.Context, amount decimal.Decimal, billing BillingInfo) (Confirmation, error) {
	if err := validateCharge(amount, billing); err != nil {
		return Confirmation{}, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(ToMinorUnits(amount)),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if billing.Description != "" {
		params.Description = stripe.String(billing.Description)
	}
	if billing.Email != "" {
		params.ReceiptEmail = stripe.String(billing.Email)
	}
	if billing.PaymentMethodID != "" {
		params.PaymentMethod = stripe.String(billing.PaymentMethodID)
		params.Confirm = stripe.Bool(true)
		params.AutomaticPaymentMethods.AllowRedirects = stripe.String("never")
	}
	params.AddMetadata(MetaUserID, billing.UserID.String())
	params.AddMetadata(MetaReference, billing.Reference.String())
	params.AddMetadata(MetaPurpose, string(billing.Purpose))

	intent, err := g.intents.CreatePaymentIntent(ctx, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return Confirmation{}, pkgerrors.Wrap(pkgerrors.CodePayment, err, "card declined")
		}
		return Confirmation{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}
	return confirmationFromIntent(intent)
}

func confirmationFromIntent(intent *stripe.PaymentIntent) (Confirmation, error) {
	if intent == nil {
		return Confirmation{}, pkgerrors.New(pkgerrors.CodeDependency, "payment intent missing")
	}
	conf := Confirmation{ID: intent.ID, ClientSecret: intent.ClientSecret}
	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		conf.Status = enums.PaymentStatusPaid
		conf.ClientSecret = ""
	case stripe.PaymentIntentStatusCanceled:
		conf.Status = enums.PaymentStatusFailed
		return conf, pkgerrors.New(pkgerrors.CodePayment, "payment canceled")
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if intent.LastPaymentError != nil {
			conf.Status = enums.PaymentStatusFailed
			return conf, pkgerrors.New(pkgerrors.CodePayment, "payment declined")
		}
		conf.Status = enums.PaymentStatusPending
	default:
		conf.Status = enums.PaymentStatusPending
	}
	return conf, nil
}
