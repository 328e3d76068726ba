package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/delish-app/tiffin-backend/internal/orders"
	"github.com/delish-app/tiffin-backend/internal/subscriptions"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const defaultPaymentTTL = 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PaymentExpiryJobParams configure the stale payment sweeper.
type PaymentExpiryJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Orders        orders.Repository
	Subscriptions subscriptions.Repository
	TTL           time.Duration
}

// NewPaymentExpiryJob builds the job that fails card orders and plans whose
// gateway charge never settled within the TTL.
func NewPaymentExpiryJob(params PaymentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPaymentTTL
	}
	return &paymentExpiryJob{
		logg:          params.Logger,
		db:            params.DB,
		orders:        params.Orders,
		subscriptions: params.Subscriptions,
		ttl:           ttl,
		now:           time.Now,
	}, nil
}

type paymentExpiryJob struct {
	logg          *logger.Logger
	db            txRunner
	orders        orders.Repository
	subscriptions subscriptions.Repository
	ttl           time.Duration
	now           func() time.Time
}

func (j *paymentExpiryJob) Name() string { return "payment-expiry" }

func (j *paymentExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	var expiredOrders, expiredPlans int64
	var errs []error

	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.orders.WithTx(tx).ExpireStalePayments(ctx, cutoff)
		expiredOrders = rows
		return err
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("expire order payments: %w", err))
	}

	// plans run in their own transaction so an order failure does not block them
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.subscriptions.WithTx(tx).ExpireStalePayments(ctx, cutoff)
		expiredPlans = rows
		return err
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("expire plan payments: %w", err))
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":                cutoff,
		"orders_expired":        expiredOrders,
		"subscriptions_expired": expiredPlans,
	})
	j.logg.Info(logCtx, "payment expiry sweep complete")
	return multierr.Combine(errs...)
}
