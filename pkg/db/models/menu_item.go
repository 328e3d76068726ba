package models

import (
	"time"

	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuItem is a dish sold by a restaurant.
type MenuItem struct {
	ID                     uuid.UUID        `gorm:"type:uuid;primaryKey"`
	RestaurantID           uuid.UUID        `gorm:"column:restaurant_id;type:uuid;not null"`
	Name                   string           `gorm:"column:name;not null"`
	Description            string           `gorm:"column:description;not null;default:''"`
	Price                  decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	Category               string           `gorm:"column:category;not null"`
	Image                  *string          `gorm:"column:image"`
	IsVegetarian           bool             `gorm:"column:is_vegetarian;not null"`
	IsVegan                bool             `gorm:"column:is_vegan;not null"`
	IsGlutenFree           bool             `gorm:"column:is_gluten_free;not null"`
	IsAvailable            bool             `gorm:"column:is_available;not null"`
	Ingredients            pq.StringArray   `gorm:"column:ingredients;type:text;not null"`
	Allergens              pq.StringArray   `gorm:"column:allergens;type:text;not null"`
	Tags                   pq.StringArray   `gorm:"column:tags;type:text;not null"`
	PreparationTimeMinutes int              `gorm:"column:preparation_time_minutes;not null;default:15"`
	SpiceLevel             enums.SpiceLevel `gorm:"column:spice_level;not null;default:'mild'"`
	Calories               *int             `gorm:"column:calories"`
	CreatedAt              time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MenuItem) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	for _, arr := range []*pq.StringArray{&m.Ingredients, &m.Allergens, &m.Tags} {
		if *arr == nil {
			*arr = pq.StringArray{}
		}
	}
	if m.SpiceLevel == "" {
		m.SpiceLevel = enums.DefaultSpiceLevel
	}
	return nil
}
