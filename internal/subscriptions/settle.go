package subscriptions

import (
	"context"

	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/google/uuid"
)

// PaymentSettler applies gateway outcomes to subscriptions.
type PaymentSettler struct {
	repo Repository
}

func NewPaymentSettler(repo Repository) (*PaymentSettler, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions repository required")
	}
	return &PaymentSettler{repo: repo}, nil
}

// SettlePayment records the final payment status of a plan. Paid plans are
// left untouched and unknown plans are ignored.
func (p *PaymentSettler) SettlePayment(ctx context.Context, id uuid.UUID, intentID string, status enums.PaymentStatus) error {
	sub, err := p.repo.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if !sub.PaymentStatus.CanBecome(status) {
		return nil
	}
	if err := p.repo.UpdatePayment(ctx, id, status, optional(intentID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle plan payment")
	}
	return nil
}
