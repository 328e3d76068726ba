package users

import (
	"strings"
	"time"

	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/google/uuid"
)

// Address is the postal address attached to a profile.
type Address struct {
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	ZipCode *string `json:"zip_code,omitempty"`
}

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	Phone     *string    `json:"phone,omitempty"`
	Avatar    *string    `json:"avatar,omitempty"`
	Address   Address    `json:"address"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Role         enums.Role
	Phone        *string
}

// UpdateProfileRequest carries the profile fields a user may change. Email,
// role and password are not editable here.
type UpdateProfileRequest struct {
	Name    *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Phone   *string  `json:"phone,omitempty" validate:"omitempty,max=32"`
	Avatar  *string  `json:"avatar,omitempty" validate:"omitempty,max=2048"`
	Address *Address `json:"address,omitempty"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Phone:  u.Phone,
		Avatar: u.Avatar,
		Address: Address{
			Street:  u.Street,
			City:    u.City,
			State:   u.State,
			ZipCode: u.ZipCode,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleCustomer
	}
	return &models.User{
		Name:         strings.TrimSpace(c.Name),
		Email:        strings.ToLower(strings.TrimSpace(c.Email)),
		PasswordHash: c.PasswordHash,
		Role:         role,
		Phone:        c.Phone,
	}
}
