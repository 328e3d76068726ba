package models

import (
	"time"

	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account of any role.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"column:name;not null"`
	Email        string     `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         enums.Role `gorm:"column:role;not null;default:'customer'"`
	Phone        *string    `gorm:"column:phone"`
	Avatar       *string    `gorm:"column:avatar"`
	Street       *string    `gorm:"column:street"`
	City         *string    `gorm:"column:city"`
	State        *string    `gorm:"column:state"`
	ZipCode      *string    `gorm:"column:zip_code"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
