package enums

import "fmt"

// PlanTier is a subscription meal plan length.
type PlanTier string

const (
	PlanTierDaily   PlanTier = "daily"
	PlanTierWeekly  PlanTier = "weekly"
	PlanTierMonthly PlanTier = "monthly"
)

var validPlanTiers = []PlanTier{
	PlanTierDaily,
	PlanTierWeekly,
	PlanTierMonthly,
}

// PlanTiers returns the tiers in display order.
func PlanTiers() []PlanTier {
	out := make([]PlanTier, len(validPlanTiers))
	copy(out, validPlanTiers)
	return out
}

// String implements fmt.Stringer.
func (p PlanTier) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanTier.
func (p PlanTier) IsValid() bool {
	for _, candidate := range validPlanTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlanTier converts raw input into a PlanTier.
func ParsePlanTier(value string) (PlanTier, error) {
	for _, candidate := range validPlanTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan tier %q", value)
}
