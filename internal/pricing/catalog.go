package pricing

import (
	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Preset is the marketing card shown for a tier before a service is chosen.
type Preset struct {
	Tier         enums.PlanTier
	Name         string
	Description  string
	PricePerMeal decimal.Decimal
	Popular      bool
	Features     []string
}

var presets = []Preset{
	{
		Tier:         enums.PlanTierDaily,
		Name:         "Daily Plan",
		Description:  "Perfect for trying out our service",
		PricePerMeal: decimal.NewFromInt(79),
		Features: []string{
			"2 meals per day (Lunch + Dinner)",
			"Flexible timing",
			"Cancel anytime",
			"Fresh meals daily",
			"Free delivery",
			"No commitment",
		},
	},
	{
		Tier:         enums.PlanTierWeekly,
		Name:         "Weekly Plan",
		Description:  "Best value with 1 day free",
		PricePerMeal: decimal.NewFromInt(69),
		Features: []string{
			"2 meals per day (Lunch + Dinner)",
			"Build Your Own Tiffin",
			"Priority delivery",
			"1 day free (7 days for price of 6)",
			"Weekly menu customization",
			"Free delivery",
		},
	},
	{
		Tier:         enums.PlanTierMonthly,
		Name:         "Monthly Plan",
		Description:  "Most popular with 4 days free",
		PricePerMeal: decimal.NewFromInt(59),
		Popular:      true,
		Features: []string{
			"2 meals per day (Lunch + Dinner)",
			"Advanced customization",
			"Dedicated support",
			"4 days free (30 days for price of 26)",
			"Monthly menu planning",
			"Free delivery",
			"Priority customer support",
			"Special occasion meals",
		},
	},
}

// Presets returns the default plan cards in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	for i, p := range presets {
		p.Features = append([]string(nil), p.Features...)
		out[i] = p
	}
	return out
}
