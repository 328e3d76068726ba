package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Restaurant is a kitchen listed in the catalog. New rows start unapproved.
type Restaurant struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name                string          `gorm:"column:name;not null"`
	Description         string          `gorm:"column:description;not null;default:''"`
	Street              *string         `gorm:"column:street"`
	City                *string         `gorm:"column:city"`
	State               *string         `gorm:"column:state"`
	ZipCode             *string         `gorm:"column:zip_code"`
	Country             string          `gorm:"column:country;not null;default:'India'"`
	Cuisines            pq.StringArray  `gorm:"column:cuisines;type:text;not null"`
	Rating              decimal.Decimal `gorm:"column:rating;type:numeric(2,1);not null"`
	DeliveryTimeMinutes int             `gorm:"column:delivery_time_minutes;not null;default:30"`
	MinOrder            decimal.Decimal `gorm:"column:min_order;type:numeric(12,2);not null"`
	Phone               *string         `gorm:"column:phone"`
	Email               *string         `gorm:"column:email"`
	Image               *string         `gorm:"column:image"`
	OpeningHours        *string         `gorm:"column:opening_hours"`
	IsActive            bool            `gorm:"column:is_active;not null"`
	IsApproved          bool            `gorm:"column:is_approved;not null"`
	CreatedBy           uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Restaurant) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	if r.Cuisines == nil {
		r.Cuisines = pq.StringArray{}
	}
	return nil
}
