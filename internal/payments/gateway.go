// Package payments charges customers through the configured payment gateway
// and settles orders and plans from gateway webhooks.
package payments

import (
	"context"
	"strings"

	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purpose tags a charge with what it pays for.
type Purpose string

const (
	PurposeOrder Purpose = "order"
	PurposePlan  Purpose = "plan"
)

// Metadata keys written on gateway charges and read back from webhooks.
const (
	MetaUserID    = "user_id"
	MetaReference = "reference"
	MetaPurpose   = "purpose"
)

// BillingInfo identifies the payer and the record being paid for.
type BillingInfo struct {
	UserID          uuid.UUID
	Name            string
	Email           string
	Purpose         Purpose
	Reference       uuid.UUID
	Description     string
	PaymentMethodID string
}

// Confirmation is the gateway's answer to a charge.
type Confirmation struct {
	ID           string              `json:"id"`
	Status       enums.PaymentStatus `json:"status"`
	ClientSecret string              `json:"client_secret,omitempty"`
}

// Gateway charges an amount in the application currency.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, billing BillingInfo) (Confirmation, error)
}

// ToMinorUnits converts rupees to paise, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func validateCharge(amount decimal.Decimal, billing BillingInfo) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	if billing.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payer required")
	}
	if billing.Reference == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}
	switch billing.Purpose {
	case PurposeOrder, PurposePlan:
	default:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown payment purpose %q", billing.Purpose)
	}
	return nil
}

type paymentRecorder interface {
	IncPayment(purpose string, err error)
}

type instrumented struct {
	next    Gateway
	metrics paymentRecorder
}

// WithMetrics counts every charge outcome on the wrapped gateway.
func WithMetrics(next Gateway, metrics paymentRecorder) Gateway {
	if metrics == nil {
		return next
	}
	return &instrumented{next: next, metrics: metrics}
}

func (g *instrumented) Charge(ctx context.Context, amount decimal.Decimal, billing BillingInfo) (Confirmation, error) {
	conf, err := g.next.Charge(ctx, amount, billing)
	g.metrics.IncPayment(string(billing.Purpose), err)
	return conf, err
}

// SandboxGateway approves every valid charge without contacting a provider.
// It backs local runs where no Stripe key is configured.
type SandboxGateway struct{}

func (SandboxGateway) Charge(_ context.Context, amount decimal.Decimal, billing BillingInfo) (Confirmation, error) {
	if err := validateCharge(amount, billing); err != nil {
		return Confirmation{}, err
	}
	return Confirmation{
		ID:     "sandbox_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Status: enums.PaymentStatusPaid,
	}, nil
}
