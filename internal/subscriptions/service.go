// Package subscriptions prices and sells daily, weekly and monthly meal plans.
package subscriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/delish-app/tiffin-backend/internal/payments"
	"github.com/delish-app/tiffin-backend/internal/pricing"
	"github.com/delish-app/tiffin-backend/pkg/auth"
	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service quotes plans and manages a customer's subscriptions.
type Service interface {
	Plans() []PresetView
	Quote(tier enums.PlanTier, pricePerMeal decimal.Decimal) (*PlanQuote, error)
	Subscribe(ctx context.Context, userID uuid.UUID, req SubscribeRequest) (*SubscribeResult, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]SubscriptionDTO, error)
	Get(ctx context.Context, viewer auth.Principal, id uuid.UUID) (*SubscriptionDTO, error)
}

// ServiceParams wires the subscription service.
type ServiceParams struct {
	Repo       Repository
	Calculator pricing.Calculator
	Gateway    payments.Gateway
	Logger     *logger.Logger
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
}

type service struct {
	repo    Repository
	calc    pricing.Calculator
	gateway payments.Gateway
	logg    *logger.Logger
	clock   func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("subscriptions repository required")
	}
	if params.Gateway == nil {
		return nil, errors.New("payment gateway required")
	}
	if params.Calculator.GSTRate().IsNegative() {
		return nil, errors.New("gst rate must be non-negative")
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		calc:    params.Calculator,
		gateway: params.Gateway,
		logg:    params.Logger,
		clock:   clock,
	}, nil
}

func (s *service) Plans() []PresetView {
	presets := pricing.Presets()
	out := make([]PresetView, 0, len(presets))
	for _, p := range presets {
		quote, err := s.Quote(p.Tier, p.PricePerMeal)
		if err != nil {
			continue
		}
		out = append(out, PresetView{
			Name:        p.Name,
			Description: p.Description,
			Popular:     p.Popular,
			Features:    p.Features,
			Quote:       *quote,
		})
	}
	return out
}

func (s *service) Quote(tier enums.PlanTier, pricePerMeal decimal.Decimal) (*PlanQuote, error) {
	details, totals, err := s.price(tier, pricePerMeal)
	if err != nil {
		return nil, err
	}
	return &PlanQuote{Plan: planView(details), Totals: totalsView(totals)}, nil
}

func (s *service) price(tier enums.PlanTier, pricePerMeal decimal.Decimal) (pricing.PlanDetails, pricing.TotalsBreakdown, error) {
	if pricePerMeal.IsNegative() {
		return pricing.PlanDetails{}, pricing.TotalsBreakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "price per meal must be non-negative")
	}
	details, err := s.calc.Details(tier, pricePerMeal)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownPlan) {
			return pricing.PlanDetails{}, pricing.TotalsBreakdown{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown plan")
		}
		return pricing.PlanDetails{}, pricing.TotalsBreakdown{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "price plan")
	}
	return details, pricing.Totals(details), nil
}

func (s *service) Subscribe(ctx context.Context, userID uuid.UUID, req SubscribeRequest) (*SubscribeResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	if req.PricePerMeal == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per meal is required")
	}
	if err := validateCustomer(req.Customer); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.AllowedForPlan() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "payment method %q is not accepted for plans", req.PaymentMethod)
	}
	slot, err := enums.ParseDeliverySlot(string(req.DeliverySlot))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery slot")
	}
	diet, err := enums.ParseDietaryPreference(string(req.DietaryPreference))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dietary preference")
	}
	serviceName := strings.TrimSpace(req.ServiceName)
	if serviceName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service name is required")
	}

	details, totals, err := s.price(req.Tier, *req.PricePerMeal)
	if err != nil {
		return nil, err
	}
	if !totals.Total.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan total must be positive")
	}

	startsOn := s.startDate()
	sub := &models.Subscription{
		UserID:            userID,
		ServiceName:       serviceName,
		Tier:              details.Tier,
		PricePerMeal:      details.PricePerMeal,
		MealsPerDay:       details.MealsPerDay,
		BillableDays:      details.BillableDays,
		FreeDays:          details.FreeDays,
		BasePrice:         totals.BasePrice,
		Tax:               totals.Tax,
		Total:             totals.Total,
		FreeDaysValue:     totals.FreeDaysValue,
		FullName:          strings.TrimSpace(req.Customer.FullName),
		Email:             strings.ToLower(strings.TrimSpace(req.Customer.Email)),
		Phone:             strings.TrimSpace(req.Customer.Phone),
		Address:           strings.TrimSpace(req.Customer.Address),
		City:              strings.TrimSpace(req.Customer.City),
		Pincode:           strings.TrimSpace(req.Customer.Pincode),
		DeliverySlot:      slot,
		DietaryPreference: diet,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     enums.PaymentStatusPending,
		StartsOn:          startsOn,
		EndsOn:            startsOn.AddDate(0, 0, details.DurationDays),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
	}
	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "subscription_id", sub.ID.String())
	}

	var confirmation *payments.Confirmation
	if req.PaymentMethod == enums.PaymentMethodCard {
		conf, chargeErr := s.gateway.Charge(ctx, totals.Total, payments.BillingInfo{
			UserID:          userID,
			Name:            sub.FullName,
			Email:           sub.Email,
			Purpose:         payments.PurposePlan,
			Reference:       sub.ID,
			Description:     serviceName + " " + string(details.Tier) + " plan",
			PaymentMethodID: req.PaymentMethodID,
		})
		if chargeErr != nil {
			s.record(ctx, sub, enums.PaymentStatusFailed, conf.ID)
			return nil, chargeErr
		}
		if err := s.repo.UpdatePayment(ctx, sub.ID, conf.Status, optional(conf.ID)); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record plan payment")
		}
		confirmation = &conf
	}

	stored, err := s.repo.FindByID(ctx, sub.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload subscription")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "subscription created")
	}
	return &SubscribeResult{Subscription: FromModel(*stored), Payment: confirmation}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]SubscriptionDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	out := make([]SubscriptionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, viewer auth.Principal, id uuid.UUID) (*SubscriptionDTO, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if !viewer.Owns(sub.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	dto := FromModel(*sub)
	return &dto, nil
}

// startDate is the first delivery day: midnight UTC of the following day.
func (s *service) startDate() time.Time {
	now := s.clock().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, 1)
}

func (s *service) record(ctx context.Context, sub *models.Subscription, status enums.PaymentStatus, reference string) {
	if err := s.repo.UpdatePayment(ctx, sub.ID, status, optional(reference)); err != nil && s.logg != nil {
		s.logg.Error(ctx, "record plan payment", err)
	}
}

func validateCustomer(c Customer) error {
	fields := []struct {
		name  string
		value string
	}{
		{"full_name", c.FullName},
		{"email", c.Email},
		{"phone", c.Phone},
		{"address", c.Address},
		{"city", c.City},
		{"pincode", c.Pincode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "%s is required", f.name)
		}
	}
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
