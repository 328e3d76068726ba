package payments

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

// Settler records the final payment outcome of one order or plan.
type Settler interface {
	SettlePayment(ctx context.Context, reference uuid.UUID, intentID string, status enums.PaymentStatus) error
}

// WebhookService applies Stripe payment intent events.
type WebhookService struct {
	orders Settler
	plans  Settler
	logg   *logger.Logger
}

func NewWebhookService(orders, plans Settler, logg *logger.Logger) (*WebhookService, error) {
	if orders == nil {
		return nil, errors.New("order settler required")
	}
	if plans == nil {
		return nil, errors.New("plan settler required")
	}
	return &WebhookService{orders: orders, plans: plans, logg: logg}, nil
}

// HandleEvent settles the record referenced by a payment intent. Event types
// other than succeeded and payment_failed are acknowledged and ignored.
func (s *WebhookService) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	var status enums.PaymentStatus
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		status = enums.PaymentStatusPaid
	case stripe.EventTypePaymentIntentPaymentFailed:
		status = enums.PaymentStatusFailed
	default:
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent")
	}

	reference, err := uuid.Parse(intent.Metadata[MetaReference])
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "payment intent "+intent.ID+" has no reference; skipping")
		}
		return nil
	}

	switch Purpose(intent.Metadata[MetaPurpose]) {
	case PurposeOrder:
		return s.orders.SettlePayment(ctx, reference, intent.ID, status)
	case PurposePlan:
		return s.plans.SettlePayment(ctx, reference, intent.ID, status)
	default:
		return nil
	}
}
