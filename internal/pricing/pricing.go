// Package pricing computes subscription meal-plan totals. Every function is
// pure; amounts keep full decimal precision and are only rounded by callers
// when rendered.
package pricing

import (
	"errors"
	"fmt"

	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// MealsPerDay is fixed across every tier.
const MealsPerDay = 2

// DefaultGSTRate is the plan tax rate. It is independent of the checkout tax.
var DefaultGSTRate = decimal.RequireFromString("0.05")

// ErrUnknownPlan is returned for tiers outside the schedule table.
var ErrUnknownPlan = errors.New("unknown plan tier")

// Schedule is the billing calendar of one tier.
type Schedule struct {
	BillableDays int
	FreeDays     int
	DurationDays int
}

var schedules = map[enums.PlanTier]Schedule{
	enums.PlanTierDaily:   {BillableDays: 1, FreeDays: 0, DurationDays: 1},
	enums.PlanTierWeekly:  {BillableDays: 6, FreeDays: 1, DurationDays: 7},
	enums.PlanTierMonthly: {BillableDays: 26, FreeDays: 4, DurationDays: 30},
}

// ScheduleFor returns the calendar of tier.
func ScheduleFor(tier enums.PlanTier) (Schedule, error) {
	s, ok := schedules[tier]
	if !ok {
		return Schedule{}, fmt.Errorf("%w: %q", ErrUnknownPlan, tier)
	}
	return s, nil
}

// PlanDetails is the immutable description of a priced tier.
type PlanDetails struct {
	Tier         enums.PlanTier
	PricePerMeal decimal.Decimal
	MealsPerDay  int
	BillableDays int
	FreeDays     int
	DurationDays int
	GSTRate      decimal.Decimal
}

// TotalsBreakdown is recomputed for every request and never stored as-is.
type TotalsBreakdown struct {
	BasePrice     decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	FreeDaysValue decimal.Decimal
}

// Calculator prices plans at a fixed GST rate.
type Calculator struct {
	gstRate decimal.Decimal
}

// NewCalculator returns a calculator using gstRate.
func NewCalculator(gstRate decimal.Decimal) Calculator {
	return Calculator{gstRate: gstRate}
}

// GSTRate reports the rate applied to the base price.
func (c Calculator) GSTRate() decimal.Decimal {
	return c.gstRate
}

// Details builds the PlanDetails record of tier at pricePerMeal.
func (c Calculator) Details(tier enums.PlanTier, pricePerMeal decimal.Decimal) (PlanDetails, error) {
	s, err := ScheduleFor(tier)
	if err != nil {
		return PlanDetails{}, err
	}
	return PlanDetails{
		Tier:         tier,
		PricePerMeal: pricePerMeal,
		MealsPerDay:  MealsPerDay,
		BillableDays: s.BillableDays,
		FreeDays:     s.FreeDays,
		DurationDays: s.DurationDays,
		GSTRate:      c.gstRate,
	}, nil
}

// Calculate prices tier at pricePerMeal.
//
//	base  = price × 2 × billableDays
//	tax   = base × gst
//	total = base + tax
//	free  = price × 2 × freeDays (savings label, never subtracted)
func (c Calculator) Calculate(tier enums.PlanTier, pricePerMeal decimal.Decimal) (TotalsBreakdown, error) {
	d, err := c.Details(tier, pricePerMeal)
	if err != nil {
		return TotalsBreakdown{}, err
	}
	return Totals(d), nil
}

// Totals computes the breakdown for an already resolved PlanDetails.
func Totals(d PlanDetails) TotalsBreakdown {
	perDay := d.PricePerMeal.Mul(decimal.NewFromInt(int64(d.MealsPerDay)))
	base := perDay.Mul(decimal.NewFromInt(int64(d.BillableDays)))
	tax := base.Mul(d.GSTRate)
	return TotalsBreakdown{
		BasePrice:     base,
		Tax:           tax,
		Total:         base.Add(tax),
		FreeDaysValue: perDay.Mul(decimal.NewFromInt(int64(d.FreeDays))),
	}
}

// Calculate prices a plan at DefaultGSTRate.
func Calculate(tier enums.PlanTier, pricePerMeal decimal.Decimal) (TotalsBreakdown, error) {
	return NewCalculator(DefaultGSTRate).Calculate(tier, pricePerMeal)
}
