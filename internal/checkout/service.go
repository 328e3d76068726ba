// Package checkout turns a session cart into a placed, paid order.
package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/delish-app/tiffin-backend/internal/cart"
	"github.com/delish-app/tiffin-backend/internal/orders"
	"github.com/delish-app/tiffin-backend/internal/payments"
	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/google/uuid"
)

type cartReader interface {
	Get(ctx context.Context, key string) (cart.State, error)
	Consume(ctx context.Context, key string, ordered []cart.Line) (cart.State, error)
}

type totalsRecorder interface {
	ObserveCheckoutTotal(amount float64)
}

// Quote is the current cart with its payable breakdown.
type Quote struct {
	Cart   cart.State    `json:"cart"`
	Totals BreakdownView `json:"totals"`
}

// Address is the delivery destination of an order.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// Input is everything Execute needs besides the cart itself.
type Input struct {
	UserID          uuid.UUID
	Name            string
	Email           string
	CartKey         string
	Address         Address
	PaymentMethod   enums.PaymentMethod
	PaymentMethodID string
}

// Result is the placed order plus the gateway answer for online payments.
type Result struct {
	Order   orders.OrderDTO        `json:"order"`
	Payment *payments.Confirmation `json:"payment,omitempty"`
}

// Service quotes and places orders.
type Service interface {
	Quote(ctx context.Context, cartKey string) (*Quote, error)
	Execute(ctx context.Context, input Input) (*Result, error)
}

// ServiceParams wires the checkout service.
type ServiceParams struct {
	Carts    cartReader
	Orders   orders.Repository
	Gateway  payments.Gateway
	Fees     Fees
	Currency string
	Metrics  totalsRecorder
	Logger   *logger.Logger
}

type service struct {
	carts    cartReader
	orders   orders.Repository
	gateway  payments.Gateway
	fees     Fees
	currency string
	metrics  totalsRecorder
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, errors.New("cart service required")
	}
	if params.Orders == nil {
		return nil, errors.New("orders repository required")
	}
	if params.Gateway == nil {
		return nil, errors.New("payment gateway required")
	}
	if params.Fees.DeliveryFee.IsNegative() || params.Fees.TaxRate.IsNegative() {
		return nil, errors.New("fees must be non-negative")
	}
	currency := strings.ToLower(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "inr"
	}
	return &service{
		carts:    params.Carts,
		orders:   params.Orders,
		gateway:  params.Gateway,
		fees:     params.Fees,
		currency: currency,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) Quote(ctx context.Context, cartKey string) (*Quote, error) {
	state, err := s.carts.Get(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	return &Quote{Cart: state, Totals: Totals(state.Total, s.fees).View(s.fees)}, nil
}

func (s *service) Execute(ctx context.Context, input Input) (*Result, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	state, err := s.carts.Get(ctx, input.CartKey)
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	totals := Totals(state.Total, s.fees)
	order, err := s.buildOrder(input, state, totals)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	ctx = s.withOrder(ctx, order.ID)

	var confirmation *payments.Confirmation
	if input.PaymentMethod.Online() {
		conf, chargeErr := s.gateway.Charge(ctx, totals.FinalTotal, payments.BillingInfo{
			UserID:          input.UserID,
			Name:            input.Name,
			Email:           input.Email,
			Purpose:         payments.PurposeOrder,
			Reference:       order.ID,
			Description:     "Food order " + order.ID.String(),
			PaymentMethodID: input.PaymentMethodID,
		})
		if chargeErr != nil {
			s.markFailed(ctx, order.ID, conf.ID)
			return nil, chargeErr
		}
		if err := s.recordPayment(ctx, order.ID, conf); err != nil {
			return nil, err
		}
		confirmation = &conf
	}

	if _, err := s.carts.Consume(ctx, input.CartKey, state.Lines); err != nil && s.logg != nil {
		s.logg.Error(ctx, "consume cart after checkout", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveCheckoutTotal(totals.FinalTotal.InexactFloat64())
	}

	placed, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "order placed")
	}
	return &Result{Order: orders.FromModel(*placed), Payment: confirmation}, nil
}

func validateInput(input Input) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	if !input.PaymentMethod.AllowedForOrder() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "payment method %q is not accepted for orders", input.PaymentMethod)
	}
	if strings.TrimSpace(input.Address.Street) == "" || strings.TrimSpace(input.Address.City) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery street and city are required")
	}
	return nil
}

func (s *service) buildOrder(input Input, state cart.State, totals Breakdown) (*models.Order, error) {
	items := make([]models.OrderItem, 0, len(state.Lines))
	var restaurantID *uuid.UUID
	for _, line := range state.Lines {
		menuItemID, err := uuid.Parse(line.Item.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cart holds an unknown item")
		}
		if restaurantID == nil {
			if id, err := uuid.Parse(line.Item.RestaurantID); err == nil {
				restaurantID = &id
			}
		}
		items = append(items, models.OrderItem{
			MenuItemID: menuItemID,
			Name:       line.Item.Name,
			Price:      line.Item.Price,
			Quantity:   line.Quantity,
			LineTotal:  line.Subtotal(),
		})
	}

	return &models.Order{
		UserID:          input.UserID,
		RestaurantID:    restaurantID,
		Subtotal:        totals.Subtotal,
		DeliveryFee:     totals.DeliveryFee,
		Tax:             totals.Tax,
		TotalAmount:     totals.FinalTotal,
		Currency:        s.currency,
		DeliveryStreet:  strings.TrimSpace(input.Address.Street),
		DeliveryCity:    strings.TrimSpace(input.Address.City),
		DeliveryState:   optional(input.Address.State),
		DeliveryZipCode: optional(input.Address.ZipCode),
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		PaymentMethod:   input.PaymentMethod,
		Items:           items,
	}, nil
}

func (s *service) recordPayment(ctx context.Context, orderID uuid.UUID, conf payments.Confirmation) error {
	update := orders.PaymentUpdate{PaymentStatus: conf.Status}
	if conf.ID != "" {
		update.PaymentIntentID = &conf.ID
	}
	if conf.Status == enums.PaymentStatusPaid {
		confirmed := enums.OrderStatusConfirmed
		update.Status = &confirmed
	}
	if err := s.orders.UpdatePayment(ctx, orderID, update); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
	}
	return nil
}

func (s *service) markFailed(ctx context.Context, orderID uuid.UUID, intentID string) {
	update := orders.PaymentUpdate{PaymentStatus: enums.PaymentStatusFailed}
	if intentID != "" {
		update.PaymentIntentID = &intentID
	}
	if err := s.orders.UpdatePayment(ctx, orderID, update); err != nil && s.logg != nil {
		s.logg.Error(ctx, "mark order payment failed", err)
	}
}

func (s *service) withOrder(ctx context.Context, orderID uuid.UUID) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithField(ctx, "order_id", orderID.String())
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
