package catalog

import (
	"time"

	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Address is a postal address on a restaurant.
type Address struct {
	Street  *string `json:"street,omitempty" validate:"omitempty,max=200"`
	City    *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State   *string `json:"state,omitempty" validate:"omitempty,max=100"`
	ZipCode *string `json:"zip_code,omitempty" validate:"omitempty,max=20"`
	Country string  `json:"country,omitempty" validate:"omitempty,max=100"`
}

// RestaurantInput is the writable shape of a restaurant.
type RestaurantInput struct {
	Name                string           `json:"name" validate:"required,min=2,max=120"`
	Description         string           `json:"description" validate:"max=2000"`
	Address             Address          `json:"address"`
	Cuisines            []string         `json:"cuisines" validate:"max=20,dive,min=1,max=40"`
	DeliveryTimeMinutes *int             `json:"delivery_time_minutes" validate:"omitempty,min=5,max=240"`
	MinOrder            *decimal.Decimal `json:"min_order"`
	Phone               *string          `json:"phone" validate:"omitempty,max=30"`
	Email               *string          `json:"email" validate:"omitempty,email"`
	Image               *string          `json:"image" validate:"omitempty,url"`
	OpeningHours        *string          `json:"opening_hours" validate:"omitempty,max=200"`
	IsActive            *bool            `json:"is_active"`
}

// RestaurantDTO is a restaurant as returned to clients.
type RestaurantDTO struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Address             Address   `json:"address"`
	Cuisines            []string  `json:"cuisines"`
	Rating              string    `json:"rating"`
	DeliveryTimeMinutes int       `json:"delivery_time_minutes"`
	MinOrder            string    `json:"min_order"`
	Phone               *string   `json:"phone,omitempty"`
	Email               *string   `json:"email,omitempty"`
	Image               *string   `json:"image,omitempty"`
	OpeningHours        *string   `json:"opening_hours,omitempty"`
	IsActive            bool      `json:"is_active"`
	IsApproved          bool      `json:"is_approved"`
	CreatedBy           uuid.UUID `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
}

// MenuItemInput is the writable shape of a menu item.
type MenuItemInput struct {
	RestaurantID           uuid.UUID        `json:"restaurant_id" validate:"required"`
	Name                   string           `json:"name" validate:"required,min=2,max=120"`
	Description            string           `json:"description" validate:"max=1000"`
	Price                  *decimal.Decimal `json:"price" validate:"required"`
	Category               string           `json:"category" validate:"required,max=60"`
	Image                  *string          `json:"image" validate:"omitempty,url"`
	IsVegetarian           bool             `json:"is_vegetarian"`
	IsVegan                bool             `json:"is_vegan"`
	IsGlutenFree           bool             `json:"is_gluten_free"`
	IsAvailable            *bool            `json:"is_available"`
	Ingredients            []string         `json:"ingredients" validate:"max=50,dive,min=1,max=60"`
	Allergens              []string         `json:"allergens" validate:"max=20,dive,min=1,max=60"`
	Tags                   []string         `json:"tags" validate:"max=20,dive,min=1,max=40"`
	PreparationTimeMinutes *int             `json:"preparation_time" validate:"omitempty,min=1,max=240"`
	SpiceLevel             enums.SpiceLevel `json:"spice_level"`
	Calories               *int             `json:"calories" validate:"omitempty,min=0"`
}

// MenuItemDTO is a menu item as returned to clients.
type MenuItemDTO struct {
	ID                     uuid.UUID        `json:"id"`
	RestaurantID           uuid.UUID        `json:"restaurant_id"`
	Name                   string           `json:"name"`
	Description            string           `json:"description"`
	Price                  string           `json:"price"`
	Category               string           `json:"category"`
	Image                  *string          `json:"image,omitempty"`
	IsVegetarian           bool             `json:"is_vegetarian"`
	IsVegan                bool             `json:"is_vegan"`
	IsGlutenFree           bool             `json:"is_gluten_free"`
	IsAvailable            bool             `json:"is_available"`
	Ingredients            []string         `json:"ingredients"`
	Allergens              []string         `json:"allergens"`
	Tags                   []string         `json:"tags"`
	PreparationTimeMinutes int              `json:"preparation_time"`
	SpiceLevel             enums.SpiceLevel `json:"spice_level"`
	Calories               *int             `json:"calories,omitempty"`
}

func RestaurantFromModel(r models.Restaurant) RestaurantDTO {
	return RestaurantDTO{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Address: Address{
			Street:  r.Street,
			City:    r.City,
			State:   r.State,
			ZipCode: r.ZipCode,
			Country: r.Country,
		},
		Cuisines:            nonNil(r.Cuisines),
		Rating:              r.Rating.StringFixed(1),
		DeliveryTimeMinutes: r.DeliveryTimeMinutes,
		MinOrder:            r.MinOrder.StringFixed(2),
		Phone:               r.Phone,
		Email:               r.Email,
		Image:               r.Image,
		OpeningHours:        r.OpeningHours,
		IsActive:            r.IsActive,
		IsApproved:          r.IsApproved,
		CreatedBy:           r.CreatedBy,
		CreatedAt:           r.CreatedAt,
	}
}

func MenuItemFromModel(m models.MenuItem) MenuItemDTO {
	return MenuItemDTO{
		ID:                     m.ID,
		RestaurantID:           m.RestaurantID,
		Name:                   m.Name,
		Description:            m.Description,
		Price:                  m.Price.StringFixed(2),
		Category:               m.Category,
		Image:                  m.Image,
		IsVegetarian:           m.IsVegetarian,
		IsVegan:                m.IsVegan,
		IsGlutenFree:           m.IsGlutenFree,
		IsAvailable:            m.IsAvailable,
		Ingredients:            nonNil(m.Ingredients),
		Allergens:              nonNil(m.Allergens),
		Tags:                   nonNil(m.Tags),
		PreparationTimeMinutes: m.PreparationTimeMinutes,
		SpiceLevel:             m.SpiceLevel,
		Calories:               m.Calories,
	}
}

func restaurantsFromModels(rows []models.Restaurant) []RestaurantDTO {
	out := make([]RestaurantDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, RestaurantFromModel(row))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
