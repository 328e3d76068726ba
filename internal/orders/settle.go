package orders

import (
	"context"
	"errors"

	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/google/uuid"
)

// PaymentSettler applies gateway outcomes to orders.
type PaymentSettler struct {
	repo Repository
}

func NewPaymentSettler(repo Repository) (*PaymentSettler, error) {
	if repo == nil {
		return nil, errors.New("orders repository required")
	}
	return &PaymentSettler{repo: repo}, nil
}

// SettlePayment marks the order paid and confirmed, or failed. A paid order
// never moves back to failed, and unknown orders are ignored.
func (p *PaymentSettler) SettlePayment(ctx context.Context, orderID uuid.UUID, intentID string, status enums.PaymentStatus) error {
	order, err := p.repo.FindByID(ctx, orderID)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !order.PaymentStatus.CanBecome(status) {
		return nil
	}

	update := PaymentUpdate{PaymentStatus: status}
	if intentID != "" {
		update.PaymentIntentID = &intentID
	}
	if status == enums.PaymentStatusPaid && order.Status == enums.OrderStatusPending {
		confirmed := enums.OrderStatusConfirmed
		update.Status = &confirmed
	}
	if err := p.repo.UpdatePayment(ctx, orderID, update); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle order payment")
	}
	return nil
}
