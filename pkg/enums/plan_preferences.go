package enums

import "fmt"

// DeliverySlot is when plan meals are dropped off.
type DeliverySlot string

const (
	DeliverySlotLunch  DeliverySlot = "lunch"
	DeliverySlotDinner DeliverySlot = "dinner"
	DeliverySlotCustom DeliverySlot = "custom"
)

// DietaryPreference restricts the meals a plan subscriber receives.
type DietaryPreference string

const (
	DietVegetarian    DietaryPreference = "vegetarian"
	DietNonVegetarian DietaryPreference = "non-vegetarian"
	DietVegan         DietaryPreference = "vegan"
	DietJain          DietaryPreference = "jain"
)

var validDeliverySlots = []DeliverySlot{DeliverySlotLunch, DeliverySlotDinner, DeliverySlotCustom}

var validDietaryPreferences = []DietaryPreference{DietVegetarian, DietNonVegetarian, DietVegan, DietJain}

func (d DeliverySlot) String() string { return string(d) }

// IsValid reports whether the value is a known DeliverySlot.
func (d DeliverySlot) IsValid() bool {
	for _, candidate := range validDeliverySlots {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliverySlot converts raw input into a DeliverySlot. Empty input
// defaults to lunch.
func ParseDeliverySlot(value string) (DeliverySlot, error) {
	if value == "" {
		return DeliverySlotLunch, nil
	}
	if slot := DeliverySlot(value); slot.IsValid() {
		return slot, nil
	}
	return "", fmt.Errorf("invalid delivery slot %q", value)
}

func (d DietaryPreference) String() string { return string(d) }

// IsValid reports whether the value is a known DietaryPreference.
func (d DietaryPreference) IsValid() bool {
	for _, candidate := range validDietaryPreferences {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDietaryPreference converts raw input into a DietaryPreference. Empty
// input defaults to vegetarian.
func ParseDietaryPreference(value string) (DietaryPreference, error) {
	if value == "" {
		return DietVegetarian, nil
	}
	if pref := DietaryPreference(value); pref.IsValid() {
		return pref, nil
	}
	return "", fmt.Errorf("invalid dietary preference %q", value)
}
