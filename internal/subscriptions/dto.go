package subscriptions

import (
	"time"

	"github.com/delish-app/tiffin-backend/internal/payments"
	"github.com/delish-app/tiffin-backend/internal/pricing"
	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteRequest prices a tier at a service's per-meal price.
type QuoteRequest struct {
	Tier         enums.PlanTier   `json:"tier" validate:"required"`
	PricePerMeal *decimal.Decimal `json:"price_per_meal" validate:"required"`
}

// Customer holds the delivery contact collected before payment.
type Customer struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Address  string `json:"address" validate:"required,max=500"`
	City     string `json:"city" validate:"required,max=120"`
	Pincode  string `json:"pincode" validate:"required,max=12"`
}

// SubscribeRequest purchases a plan.
type SubscribeRequest struct {
	ServiceName       string                  `json:"service_name" validate:"required,max=120"`
	Tier              enums.PlanTier          `json:"tier" validate:"required"`
	PricePerMeal      *decimal.Decimal        `json:"price_per_meal" validate:"required"`
	Customer          Customer                `json:"customer"`
	DeliverySlot      enums.DeliverySlot      `json:"delivery_slot,omitempty"`
	DietaryPreference enums.DietaryPreference `json:"dietary_preference,omitempty"`
	PaymentMethod     enums.PaymentMethod     `json:"payment_method" validate:"required"`
	PaymentMethodID   string                  `json:"payment_method_id,omitempty"`
}

// PlanView renders PlanDetails for clients.
type PlanView struct {
	Tier         enums.PlanTier `json:"tier"`
	PricePerMeal string         `json:"price_per_meal"`
	MealsPerDay  int            `json:"meals_per_day"`
	BillableDays int            `json:"billable_days"`
	FreeDays     int            `json:"free_days"`
	DurationDays int            `json:"duration_days"`
	GSTRate      string         `json:"gst_rate,omitempty"`
}

// TotalsView renders a TotalsBreakdown with two-decimal amounts.
type TotalsView struct {
	BasePrice     string `json:"base_price"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
	FreeDaysValue string `json:"free_days_value"`
}

// PlanQuote is a priced plan.
type PlanQuote struct {
	Plan   PlanView   `json:"plan"`
	Totals TotalsView `json:"totals"`
}

// PresetView is a marketing plan card with its quote at the preset price.
type PresetView struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Popular     bool      `json:"popular"`
	Features    []string  `json:"features"`
	Quote       PlanQuote `json:"quote"`
}

// SubscriptionDTO is the stored plan as returned to its owner.
type SubscriptionDTO struct {
	ID                uuid.UUID               `json:"id"`
	UserID            uuid.UUID               `json:"user_id"`
	ServiceName       string                  `json:"service_name"`
	Plan              PlanView                `json:"plan"`
	Totals            TotalsView              `json:"totals"`
	Customer          Customer                `json:"customer"`
	DeliverySlot      enums.DeliverySlot      `json:"delivery_slot"`
	DietaryPreference enums.DietaryPreference `json:"dietary_preference"`
	PaymentMethod     enums.PaymentMethod     `json:"payment_method"`
	PaymentStatus     enums.PaymentStatus     `json:"payment_status"`
	PaymentReference  *string                 `json:"payment_reference,omitempty"`
	StartsOn          time.Time               `json:"starts_on"`
	EndsOn            time.Time               `json:"ends_on"`
	CreatedAt         time.Time               `json:"created_at"`
}

// SubscribeResult is the stored plan plus the gateway answer for card payments.
type SubscribeResult struct {
	Subscription SubscriptionDTO        `json:"subscription"`
	Payment      *payments.Confirmation `json:"payment,omitempty"`
}

func planView(d pricing.PlanDetails) PlanView {
	return PlanView{
		Tier:         d.Tier,
		PricePerMeal: d.PricePerMeal.StringFixed(2),
		MealsPerDay:  d.MealsPerDay,
		BillableDays: d.BillableDays,
		FreeDays:     d.FreeDays,
		DurationDays: d.DurationDays,
		GSTRate:      d.GSTRate.String(),
	}
}

func totalsView(t pricing.TotalsBreakdown) TotalsView {
	return TotalsView{
		BasePrice:     t.BasePrice.StringFixed(2),
		Tax:           t.Tax.StringFixed(2),
		Total:         t.Total.StringFixed(2),
		FreeDaysValue: t.FreeDaysValue.StringFixed(2),
	}
}

// FromModel converts a stored subscription for transport.
func FromModel(s models.Subscription) SubscriptionDTO {
	schedule, _ := pricing.ScheduleFor(s.Tier)
	return SubscriptionDTO{
		ID:          s.ID,
		UserID:      s.UserID,
		ServiceName: s.ServiceName,
		Plan: PlanView{
			Tier:         s.Tier,
			PricePerMeal: s.PricePerMeal.StringFixed(2),
			MealsPerDay:  s.MealsPerDay,
			BillableDays: s.BillableDays,
			FreeDays:     s.FreeDays,
			DurationDays: schedule.DurationDays,
		},
		Totals: TotalsView{
			BasePrice:     s.BasePrice.StringFixed(2),
			Tax:           s.Tax.StringFixed(2),
			Total:         s.Total.StringFixed(2),
			FreeDaysValue: s.FreeDaysValue.StringFixed(2),
		},
		Customer: Customer{
			FullName: s.FullName,
			Email:    s.Email,
			Phone:    s.Phone,
			Address:  s.Address,
			City:     s.City,
			Pincode:  s.Pincode,
		},
		DeliverySlot:      s.DeliverySlot,
		DietaryPreference: s.DietaryPreference,
		PaymentMethod:     s.PaymentMethod,
		PaymentStatus:     s.PaymentStatus,
		PaymentReference:  s.PaymentReference,
		StartsOn:          s.StartsOn,
		EndsOn:            s.EndsOn,
		CreatedAt:         s.CreatedAt,
	}
}
