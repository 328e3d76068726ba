package orders

import (
	"time"

	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/google/uuid"
)

// DeliveryAddress is where an order is dropped off.
type DeliveryAddress struct {
	Street  string  `json:"street"`
	City    string  `json:"city"`
	State   *string `json:"state,omitempty"`
	ZipCode *string `json:"zip_code,omitempty"`
}

// ItemDTO is one order line as returned to clients.
type ItemDTO struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	Quantity   int       `json:"quantity"`
	LineTotal  string    `json:"line_total"`
}

// OrderDTO renders an order with money fixed to two places.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	RestaurantID    *uuid.UUID          `json:"restaurant_id,omitempty"`
	Items           []ItemDTO           `json:"items"`
	Subtotal        string              `json:"subtotal"`
	DeliveryFee     string              `json:"delivery_fee"`
	Tax             string              `json:"tax"`
	TotalAmount     string              `json:"total_amount"`
	Currency        string              `json:"currency"`
	DeliveryAddress DeliveryAddress     `json:"delivery_address"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentIntentID *string             `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// OrderList is a page of orders plus the cursor of the next page.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromModel maps a stored order.
func FromModel(o models.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemDTO{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price.StringFixed(2),
			Quantity:   it.Quantity,
			LineTotal:  it.LineTotal.StringFixed(2),
		})
	}
	return OrderDTO{
		ID:           o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Items:        items,
		Subtotal:     o.Subtotal.StringFixed(2),
		DeliveryFee:  o.DeliveryFee.StringFixed(2),
		Tax:          o.Tax.StringFixed(2),
		TotalAmount:  o.TotalAmount.StringFixed(2),
		Currency:     o.Currency,
		DeliveryAddress: DeliveryAddress{
			Street:  o.DeliveryStreet,
			City:    o.DeliveryCity,
			State:   o.DeliveryState,
			ZipCode: o.DeliveryZipCode,
		},
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		PaymentIntentID: o.PaymentIntentID,
		CreatedAt:       o.CreatedAt,
	}
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
