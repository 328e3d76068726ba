package models

import (
	"time"

	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Subscription is a purchased meal plan with the totals quoted at purchase.
type Subscription struct {
	ID                uuid.UUID               `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID               `gorm:"column:user_id;type:uuid;not null"`
	ServiceName       string                  `gorm:"column:service_name;not null"`
	Tier              enums.PlanTier          `gorm:"column:tier;not null"`
	PricePerMeal      decimal.Decimal         `gorm:"column:price_per_meal;type:numeric(12,2);not null"`
	MealsPerDay       int                     `gorm:"column:meals_per_day;not null"`
	BillableDays      int                     `gorm:"column:billable_days;not null"`
	FreeDays          int                     `gorm:"column:free_days;not null"`
	BasePrice         decimal.Decimal         `gorm:"column:base_price;type:numeric(12,2);not null"`
	Tax               decimal.Decimal         `gorm:"column:tax;type:numeric(12,2);not null"`
	Total             decimal.Decimal         `gorm:"column:total;type:numeric(12,2);not null"`
	FreeDaysValue     decimal.Decimal         `gorm:"column:free_days_value;type:numeric(12,2);not null"`
	FullName          string                  `gorm:"column:full_name;not null"`
	Email             string                  `gorm:"column:email;not null"`
	Phone             string                  `gorm:"column:phone;not null"`
	Address           string                  `gorm:"column:address;not null"`
	City              string                  `gorm:"column:city;not null"`
	Pincode           string                  `gorm:"column:pincode;not null"`
	DeliverySlot      enums.DeliverySlot      `gorm:"column:delivery_slot;not null"`
	DietaryPreference enums.DietaryPreference `gorm:"column:dietary_preference;not null"`
	PaymentMethod     enums.PaymentMethod     `gorm:"column:payment_method;not null"`
	PaymentStatus     enums.PaymentStatus     `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentReference  *string                 `gorm:"column:payment_reference"`
	StartsOn          time.Time               `gorm:"column:starts_on;not null"`
	EndsOn            time.Time               `gorm:"column:ends_on;not null"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Subscription) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
